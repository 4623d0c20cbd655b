package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestProcessDocumentDefaults(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantModel string
		wantEmbed string
	}{
		{name: "both omitted", body: `{"blob_name":"docs/a.pdf"}`, wantModel: "prebuilt-layout", wantEmbed: "text-embedding-3-small"},
		{name: "empty strings", body: `{"blob_name":"docs/a.pdf","model_id":"","embedding_model":""}`, wantModel: "prebuilt-layout", wantEmbed: "text-embedding-3-small"},
		{name: "overrides kept", body: `{"blob_name":"docs/a.pdf","model_id":"prebuilt-read","embedding_model":"text-embedding-3-large"}`, wantModel: "prebuilt-read", wantEmbed: "text-embedding-3-large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, backend, _ := newTestApp(t, jsonReply(http.StatusOK,
				`{"status":"success","result":{"blob_name":"docs/a.pdf","stored_embeddings":12,"pages":3}}`))

			status, body := doRequest(t, app, jsonRequest(http.MethodPost, "/api/embedding/process", tt.body))
			if status != http.StatusOK {
				t.Fatalf("status = %d", status)
			}
			result, _ := body["result"].(map[string]any)
			if result["stored_embeddings"] != float64(12) || result["pages"] != float64(3) {
				t.Errorf("result = %v", result)
			}

			var sent map[string]string
			if err := json.Unmarshal([]byte(backend.LastBody()), &sent); err != nil {
				t.Fatalf("backend body %q: %v", backend.LastBody(), err)
			}
			want := map[string]string{"blob_name": "docs/a.pdf", "model_id": tt.wantModel, "embedding_model": tt.wantEmbed}
			if !reflect.DeepEqual(sent, want) {
				t.Errorf("backend got %v, want %v", sent, want)
			}
			if backend.LastURI() != "/api/embedding/process" {
				t.Errorf("backend URI = %s", backend.LastURI())
			}
		})
	}
}

func TestProcessDocumentValidation(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantError string
	}{
		{name: "missing blob", body: `{"model_id":"prebuilt-read"}`, wantError: "blob_name is required"},
		{name: "empty blob", body: `{"blob_name":""}`, wantError: "blob_name is required"},
		{name: "malformed body", body: `{"blob_name":`, wantError: "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, backend, _ := newTestApp(t, jsonReply(http.StatusOK, `{}`))

			status, body := doRequest(t, app, jsonRequest(http.MethodPost, "/api/embedding/process", tt.body))
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
			if body["error"] != tt.wantError {
				t.Errorf("error = %v, want %q", body["error"], tt.wantError)
			}
			if backend.Calls() != 0 {
				t.Errorf("backend calls = %d", backend.Calls())
			}
		})
	}
}

func TestProcessBatch(t *testing.T) {
	reply := `{"status":"success","total_documents":2,"total_embeddings_stored":7,` +
		`"results":[{"blob_name":"b.pdf","stored_embeddings":3},{"blob_name":"a.pdf","stored_embeddings":4}]}`
	app, backend, _ := newTestApp(t, jsonReply(http.StatusOK, reply))

	status, body := doRequest(t, app, jsonRequest(http.MethodPost, "/api/embedding/process-batch",
		`{"blob_names":["b.pdf","a.pdf"],"model_id":"prebuilt-read"}`))
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["total_embeddings_stored"] != float64(7) {
		t.Errorf("body = %v", body)
	}

	var sent struct {
		BlobNames      []string `json:"blob_names"`
		ModelID        string   `json:"model_id"`
		EmbeddingModel string   `json:"embedding_model"`
	}
	if err := json.Unmarshal([]byte(backend.LastBody()), &sent); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sent.BlobNames, []string{"b.pdf", "a.pdf"}) {
		t.Errorf("blob_names = %v, order must be preserved", sent.BlobNames)
	}
	if sent.ModelID != "prebuilt-read" || sent.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("models = %q %q", sent.ModelID, sent.EmbeddingModel)
	}
	if backend.Calls() != 1 {
		t.Errorf("batch fanned out into %d backend calls", backend.Calls())
	}
}

func TestProcessBatchValidation(t *testing.T) {
	for _, body := range []string{`{}`, `{"blob_names":[]}`, `{"blob_names":["a.pdf",""]}`} {
		app, backend, _ := newTestApp(t, jsonReply(http.StatusOK, `{}`))

		status, got := doRequest(t, app, jsonRequest(http.MethodPost, "/api/embedding/process-batch", body))
		if status != http.StatusBadRequest || got["error"] != "blob_names is required" {
			t.Errorf("%s: status = %d, body = %v", body, status, got)
		}
		if backend.Calls() != 0 {
			t.Errorf("%s: backend calls = %d", body, backend.Calls())
		}
	}
}

func TestEmbeddingBackendStatusMirrored(t *testing.T) {
	app, _, _ := newTestApp(t, jsonReply(http.StatusNotFound, `{"error":"blob not found","blob_name":"x"}`))

	status, body := doRequest(t, app, jsonRequest(http.MethodPost, "/api/embedding/process", `{"blob_name":"x"}`))
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
	if body["error"] != "blob not found" || body["blob_name"] != "x" {
		t.Errorf("body = %v", body)
	}
}

func TestEmbeddingLocalFailures(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		app, _ := newUnreachableApp(t)

		status, body := doRequest(t, app, jsonRequest(http.MethodPost, "/api/embedding/process-batch", `{"blob_names":["a"]}`))
		if status != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", status)
		}
		if msg, _ := body["error"].(string); !strings.Contains(msg, "refused") {
			t.Errorf("error = %q", msg)
		}
	})

	t.Run("non json reply", func(t *testing.T) {
		app, _, _ := newTestApp(t, textReply(http.StatusOK, "text/html", "<html></html>"))

		status, body := doRequest(t, app, jsonRequest(http.MethodPost, "/api/embedding/process", `{"blob_name":"a"}`))
		if status != http.StatusInternalServerError || body["error"] == "" {
			t.Errorf("status = %d, body = %v", status, body)
		}
	})
}

func TestListBlobs(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		wantURI string
	}{
		{name: "no prefix", target: "/api/embedding/list-blobs", wantURI: "/api/embedding/list-blobs"},
		{name: "empty prefix", target: "/api/embedding/list-blobs?prefix=", wantURI: "/api/embedding/list-blobs"},
		{name: "folder prefix", target: "/api/embedding/list-blobs?prefix=docs%2F", wantURI: "/api/embedding/list-blobs?prefix=docs%2F"},
		{name: "unescaped slash", target: "/api/embedding/list-blobs?prefix=docs/", wantURI: "/api/embedding/list-blobs?prefix=docs%2F"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, backend, _ := newTestApp(t, jsonReply(http.StatusOK, `{"status":"success","count":2,"blobs":["docs/b","docs/a"]}`))

			status, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, tt.target, nil))
			if status != http.StatusOK {
				t.Fatalf("status = %d", status)
			}
			if backend.LastURI() != tt.wantURI {
				t.Errorf("backend URI = %q, want %q", backend.LastURI(), tt.wantURI)
			}
			blobs, _ := body["blobs"].([]any)
			if len(blobs) != 2 || blobs[0] != "docs/b" || blobs[1] != "docs/a" {
				t.Errorf("blobs = %v", blobs)
			}
		})
	}
}

func TestListBlobsLocalFailure(t *testing.T) {
	app, _ := newUnreachableApp(t)

	status, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/embedding/list-blobs", nil))
	if status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", status)
	}
	if body["error"] == "" || body["details"] == nil {
		t.Errorf("body = %v", body)
	}
}
