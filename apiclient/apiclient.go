// Package apiclient is the typed client of the gateway's proxy endpoints.
// It never talks to the backend service directly.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"frontend/models"
	"frontend/utils"
)

// APIError is a non-success reply from the gateway
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the gateway served at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetSolution looks up the solution for query
func (c *Client) GetSolution(ctx context.Context, query string) (*models.SolutionResult, error) {
	params := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/solution_service/query?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var out models.SolutionResult
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadDocument sends content as the multipart field "file"
func (c *Client) UploadDocument(ctx context.Context, filename, mimeType string, content io.Reader) (*models.UploadResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`,
		strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(filename)))
	if mimeType != "" {
		header.Set("Content-Type", mimeType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copy file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out models.UploadResult
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProcessDocument embeds one stored blob. Empty model names fall back to the defaults.
func (c *Client) ProcessDocument(ctx context.Context, blobName, modelID, embeddingModel string) (*models.EmbeddingProcessResult, error) {
	in := models.EmbeddingProcessRequest{BlobName: blobName, ModelID: modelID, EmbeddingModel: embeddingModel}
	in.SetDefaults()

	var out models.EmbeddingProcessResult
	if err := c.postJSON(ctx, "/api/embedding/process", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProcessBatchDocuments embeds several blobs in one request, in the given order
func (c *Client) ProcessBatchDocuments(ctx context.Context, blobNames []string, modelID, embeddingModel string) (*models.EmbeddingBatchResult, error) {
	in := models.EmbeddingBatchRequest{BlobNames: blobNames, ModelID: modelID, EmbeddingModel: embeddingModel}
	in.SetDefaults()

	var out models.EmbeddingBatchResult
	if err := c.postJSON(ctx, "/api/embedding/process-batch", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBlobs lists stored blobs whose names start with prefix
func (c *Client) ListBlobs(ctx context.Context, prefix string) (*models.BlobListResult, error) {
	endpoint := c.baseURL + "/api/embedding/list-blobs"
	if prefix != "" {
		endpoint += "?prefix=" + utils.EncodeURIComponent(prefix)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out models.BlobListResult
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
		var envelope models.ErrorResponse
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
			msg = envelope.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
