package handlers

import (
	"encoding/json"
	"fmt"

	"frontend/clients"
	"frontend/metrics"
	"frontend/models"
	"frontend/utils"

	"github.com/go-kit/log/level"
	"github.com/gofiber/fiber/v2"
)

const (
	msgBackendUnavailable = "Backend service is unavailable. Please ensure the backend server is running."
	msgSolutionFailed     = "Failed to fetch solution from backend"
	msgQueryRequired      = "Query Input is required"
)

// GetSolution proxies a solution lookup. The query arrives as ?query= and is
// forwarded path-embedded to the backend exactly as received; only the
// emptiness check looks at the trimmed copy.
func (h *Handler) GetSolution(c *fiber.Ctx) error {
	query := c.Query("query")
	if err := utils.ValidateQuery(utils.SanitizeInput(query)); err != nil {
		observe(RouteSolution, metrics.OutcomeValidationError)
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: msgQueryRequired})
	}

	resp, err := h.client.GetSolution(requestContext(c), query)
	if err != nil {
		return h.solutionUnavailable(c, err)
	}

	if !resp.OK() {
		observe(RouteSolution, metrics.OutcomeBackendError)
		return c.Status(resp.StatusCode).JSON(models.ErrorResponse{Error: backendErrorMessage(resp)})
	}

	if !resp.IsJSON() {
		// Plain text and HTML answers become the solution itself.
		observe(RouteSolution, metrics.OutcomeSuccess)
		return c.Status(resp.StatusCode).JSON(fiber.Map{"solution": string(resp.Body)})
	}

	if err := decodeBackendJSON(resp.Body); err != nil {
		return h.solutionUnavailable(c, fmt.Errorf("decode solution: %w", err))
	}
	observe(RouteSolution, metrics.OutcomeSuccess)
	return relayJSON(c, resp)
}

func (h *Handler) solutionUnavailable(c *fiber.Ctx, err error) error {
	msg := msgSolutionFailed
	if clients.IsConnectionError(err) {
		msg = msgBackendUnavailable
	}
	level.Error(h.logger).Log("msg", "solution lookup failed", "route", RouteSolution, "err", err)
	observe(RouteSolution, metrics.OutcomeTransportError)

	return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
		Error:   msg,
		Details: err.Error(),
	})
}

// backendErrorMessage extracts the error text of a non-2xx backend reply.
// An undecodable JSON body reads "HTTP error! status: N"; a reply that
// decodes but carries no error text reads "HTTP error status: N".
func backendErrorMessage(resp *clients.Response) string {
	msg := string(resp.Body)
	if resp.IsJSON() {
		var envelope models.ErrorResponse
		if err := json.Unmarshal(resp.Body, &envelope); err != nil {
			return fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
		}
		msg = envelope.Error
	}
	if msg == "" {
		return fmt.Sprintf("HTTP error status: %d", resp.StatusCode)
	}
	return msg
}
