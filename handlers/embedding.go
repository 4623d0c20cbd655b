package handlers

import (
	"fmt"

	"frontend/clients"
	"frontend/metrics"
	"frontend/models"

	"github.com/go-kit/log/level"
	"github.com/gofiber/fiber/v2"
)

// ProcessDocument forwards a single blob embedding request
func (h *Handler) ProcessDocument(c *fiber.Ctx) error {
	var req models.EmbeddingProcessRequest
	if err := c.BodyParser(&req); err != nil {
		observe(RouteProcess, metrics.OutcomeValidationError)
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid request body"})
	}
	if msg := h.validationMessage(req); msg != "" {
		observe(RouteProcess, metrics.OutcomeValidationError)
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: msg})
	}
	req.SetDefaults()

	resp, err := h.client.ProcessDocument(requestContext(c), req)
	return h.relayEmbedding(c, RouteProcess, resp, err)
}

// ProcessBatch forwards a multi blob embedding request as one backend call
func (h *Handler) ProcessBatch(c *fiber.Ctx) error {
	var req models.EmbeddingBatchRequest
	if err := c.BodyParser(&req); err != nil {
		observe(RouteProcessBatch, metrics.OutcomeValidationError)
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid request body"})
	}
	if msg := h.validationMessage(req); msg != "" {
		observe(RouteProcessBatch, metrics.OutcomeValidationError)
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: msg})
	}
	req.SetDefaults()

	resp, err := h.client.ProcessBatch(requestContext(c), req)
	return h.relayEmbedding(c, RouteProcessBatch, resp, err)
}

// ListBlobs lists stored blobs, optionally narrowed by ?prefix=
func (h *Handler) ListBlobs(c *fiber.Ctx) error {
	resp, err := h.client.ListBlobs(requestContext(c), c.Query("prefix"))
	if err == nil {
		err = decodeBackendJSON(resp.Body)
	}
	if err != nil {
		level.Error(h.logger).Log("msg", "list blobs failed", "route", RouteListBlobs, "err", err)
		observe(RouteListBlobs, metrics.OutcomeLocalError)

		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   err.Error(),
			Details: fmt.Sprintf("%T: %v", err, err),
		})
	}

	observe(RouteListBlobs, outcomeFor(resp))
	return relayJSON(c, resp)
}

// relayEmbedding relays a backend embedding reply, or reports a local failure
// when the call failed or the reply is not JSON.
func (h *Handler) relayEmbedding(c *fiber.Ctx, route string, resp *clients.Response, err error) error {
	if err == nil {
		err = decodeBackendJSON(resp.Body)
	}
	if err != nil {
		level.Error(h.logger).Log("msg", "embedding request failed", "route", route, "err", err)
		observe(route, metrics.OutcomeLocalError)

		out := models.ErrorResponse{Error: err.Error()}
		if h.cfg.Server.Debug {
			out.Details = fmt.Sprintf("%T: %v", err, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(out)
	}

	observe(route, outcomeFor(resp))
	return relayJSON(c, resp)
}
