package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"frontend/metrics"
	"frontend/models"
	"frontend/utils"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Backend operation names, used for logging and metrics.
const (
	OpSolution     = "solution"
	OpUpload       = "upload"
	OpProcess      = "process"
	OpProcessBatch = "process_batch"
	OpListBlobs    = "list_blobs"
)

// Client handles communication with the backend service
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     log.Logger
}

// NewClient creates a new backend client rooted at baseURL
func NewClient(baseURL string, httpClient *http.Client, logger log.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// NewHTTPClient creates an HTTP client with connection pooling. A zero
// timeout leaves requests unbounded.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        200,
			MaxIdleConnsPerHost: 100,
			MaxConnsPerHost:     100,
			IdleConnTimeout:     90 * time.Second,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// BaseURL returns the backend root this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response is a fully buffered backend reply
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsJSON reports whether the backend declared a JSON body
func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType, "application/json")
}

// GetSolution fetches the solution for query; the query is embedded in the path
func (c *Client) GetSolution(ctx context.Context, query string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/solution_service/"+utils.EncodeURIComponent(query), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, OpSolution)
}

// UploadDocument re-encodes content as a multipart body under field "file"
func (c *Client) UploadDocument(ctx context.Context, filename, mimeType string, content []byte) (*Response, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}

	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("copy file content: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload_service", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	metrics.UploadBytes.Add(float64(len(content)))
	return c.do(req, OpUpload)
}

// ProcessDocument asks the backend to embed a single blob
func (c *Client) ProcessDocument(ctx context.Context, in models.EmbeddingProcessRequest) (*Response, error) {
	return c.postJSON(ctx, "/api/embedding/process", in, OpProcess)
}

// ProcessBatch asks the backend to embed several blobs in a single request
func (c *Client) ProcessBatch(ctx context.Context, in models.EmbeddingBatchRequest) (*Response, error) {
	return c.postJSON(ctx, "/api/embedding/process-batch", in, OpProcessBatch)
}

// ListBlobs lists stored blobs; an empty prefix hits the bare endpoint
func (c *Client) ListBlobs(ctx context.Context, prefix string) (*Response, error) {
	endpoint := c.baseURL + "/api/embedding/list-blobs"
	if prefix != "" {
		endpoint += "?prefix=" + utils.EncodeURIComponent(prefix)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, OpListBlobs)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, op string) (*Response, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, op)
}

func (c *Client) do(req *http.Request, op string) (*Response, error) {
	if id := RequestID(req.Context()); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.BackendDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	level.Debug(c.logger).Log("msg", "backend call", "op", op, "url", redactQuery(req.URL), "status", resp.StatusCode, "bytes", len(body))

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func redactQuery(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.EscapedPath()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
