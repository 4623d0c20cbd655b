package handlers

import (
	"errors"
	"fmt"

	"frontend/metrics"
	"frontend/models"
	"frontend/utils"

	"github.com/go-kit/log/level"
	"github.com/gofiber/fiber/v2"
)

const msgUploadFailed = "Failed to upload file to backend"

var errNotJSON = errors.New("backend reply is not JSON")

// UploadDocument stages the multipart "file" part on local disk, re-encodes it
// for the backend upload endpoint and relays the backend's answer.
func (h *Handler) UploadDocument(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return h.uploadFailed(c, fmt.Errorf("parse multipart form: %w", err))
	}
	defer c.Request().RemoveMultipartFormFiles()

	files := form.File["file"]
	if len(files) == 0 {
		observe(RouteUpload, metrics.OutcomeValidationError)
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "No file provided"})
	}
	fileHeader := files[0]

	src, err := fileHeader.Open()
	if err != nil {
		return h.uploadFailed(c, fmt.Errorf("open upload: %w", err))
	}
	staged, err := utils.StageTempFile(h.cfg.Upload.TempDir, src)
	src.Close()
	if err != nil {
		return h.uploadFailed(c, err)
	}
	metrics.StagedUploads.Inc()
	defer func() {
		metrics.StagedUploads.Dec()
		if err := staged.Release(); err != nil {
			level.Warn(h.logger).Log("msg", "temp file not removed", "path", staged.Path, "err", err)
		}
	}()

	content, err := staged.ReadAll()
	if err != nil {
		return h.uploadFailed(c, err)
	}

	mimeType := fileHeader.Header.Get(fiber.HeaderContentType)
	if mimeType == "" {
		mimeType = fiber.MIMEOctetStream
	}
	filename := fileHeader.Filename
	if filename == "" {
		filename = "file"
	}

	resp, err := h.client.UploadDocument(requestContext(c), filename, mimeType, content)
	if err != nil {
		return h.uploadFailed(c, err)
	}
	if !resp.IsJSON() {
		return h.uploadFailed(c, fmt.Errorf("status %d: %w", resp.StatusCode, errNotJSON))
	}
	if err := decodeBackendJSON(resp.Body); err != nil {
		return h.uploadFailed(c, fmt.Errorf("decode upload reply: %w", err))
	}

	level.Info(h.logger).Log("msg", "upload relayed", "filename", filename, "bytes", staged.Size, "status", resp.StatusCode)
	observe(RouteUpload, outcomeFor(resp))
	return relayJSON(c, resp)
}

func (h *Handler) uploadFailed(c *fiber.Ctx, err error) error {
	level.Error(h.logger).Log("msg", "upload failed", "route", RouteUpload, "err", err)
	observe(RouteUpload, metrics.OutcomeLocalError)

	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error:   msgUploadFailed,
		Details: err.Error(),
	})
}
