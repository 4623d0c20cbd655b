package handlers

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"

	"frontend/clients"
	"frontend/config"
	"frontend/metrics"
	"frontend/models"

	"github.com/go-kit/log"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Route labels for the proxy request counter.
const (
	RouteSolution     = "solution"
	RouteUpload       = "upload"
	RouteProcess      = "embedding_process"
	RouteProcessBatch = "embedding_process_batch"
	RouteListBlobs    = "embedding_list_blobs"
)

type Handler struct {
	cfg      *config.Config
	client   *clients.Client
	logger   log.Logger
	validate *validator.Validate
}

func NewHandler(cfg *config.Config, client *clients.Client, logger log.Logger) *Handler {
	v := validator.New()
	// Report json names so messages read "blob_name is required".
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		cfg:      cfg,
		client:   client,
		logger:   log.With(logger, "component", "proxy"),
		validate: v,
	}
}

// RegisterRoutes mounts the health check and every proxy route. Each proxy
// path answers other verbs with 405.
func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Get("/health", h.Health)

	r.Get("/api/solution_service/query", h.GetSolution)
	r.All("/api/solution_service/query", h.MethodNotAllowed)

	r.Post("/api/upload", h.UploadDocument)
	r.All("/api/upload", h.MethodNotAllowed)

	embedding := r.Group("/api/embedding")
	embedding.Post("/process", h.ProcessDocument)
	embedding.All("/process", h.MethodNotAllowed)
	embedding.Post("/process-batch", h.ProcessBatch)
	embedding.All("/process-batch", h.MethodNotAllowed)
	embedding.Get("/list-blobs", h.ListBlobs)
	embedding.All("/list-blobs", h.MethodNotAllowed)
}

// Health returns service health status
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "frontend-gateway",
		"backend": h.client.BaseURL(),
	})
}

// MethodNotAllowed answers any verb a proxy route does not serve
func (h *Handler) MethodNotAllowed(c *fiber.Ctx) error {
	return c.Status(fiber.StatusMethodNotAllowed).JSON(models.ErrorResponse{Error: "Method not allowed"})
}

// validationMessage turns the first validator failure into the client facing text.
func (h *Handler) validationMessage(payload any) string {
	err := h.validate.Struct(payload)
	if err == nil {
		return ""
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return err.Error()
	}

	fe := errs[0]
	field := fe.Field()
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	switch fe.Tag() {
	case "required", "min":
		return field + " is required"
	default:
		return field + " is invalid"
	}
}

// relayJSON writes a backend JSON body unchanged under the backend status.
func relayJSON(c *fiber.Ctx, resp *clients.Response) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Status(resp.StatusCode).Send(resp.Body)
}

// decodeBackendJSON reports whether body can be relayed as JSON.
func decodeBackendJSON(body []byte) error {
	var v any
	return json.Unmarshal(body, &v)
}

func observe(route, outcome string) {
	metrics.ProxyRequests.WithLabelValues(route, outcome).Inc()
}

func outcomeFor(resp *clients.Response) string {
	if resp.OK() {
		return metrics.OutcomeSuccess
	}
	return metrics.OutcomeBackendError
}

// requestContext carries the inbound request id onto the backend call.
func requestContext(c *fiber.Ctx) context.Context {
	id, _ := c.Locals("requestid").(string)
	return clients.WithRequestID(c.UserContext(), id)
}
