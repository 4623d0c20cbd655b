package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"frontend/apiclient"
)

func runCLI(t *testing.T, handler http.HandlerFunc, args ...string) (string, error) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--url", srv.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestListBlobsCommand(t *testing.T) {
	var gotURI string
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.RequestURI
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"status":"success","count":1,"blobs":["docs/a.pdf"]}`)
	}, "list-blobs", "--prefix", "docs/")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if gotURI != "/api/embedding/list-blobs?prefix=docs%2F" {
		t.Errorf("request URI = %q", gotURI)
	}
	var printed map[string]any
	if err := json.Unmarshal([]byte(out), &printed); err != nil {
		t.Fatalf("output is not JSON: %q", out)
	}
	if printed["count"] != float64(1) {
		t.Errorf("printed = %v", printed)
	}
}

func TestProcessBatchCommand(t *testing.T) {
	var sent struct {
		BlobNames []string `json:"blob_names"`
		ModelID   string   `json:"model_id"`
	}
	_, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&sent)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"status":"success","total_documents":2,"total_embeddings_stored":3,"results":[]}`)
	}, "process-batch", "--model-id", "prebuilt-read", "b.pdf", "a.pdf")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.Join(sent.BlobNames, ",") != "b.pdf,a.pdf" || sent.ModelID != "prebuilt-read" {
		t.Errorf("sent = %+v", sent)
	}
}

func TestUploadCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	var gotName, gotType string
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotName, gotType = header.Filename, header.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"message":"ok","filename":"notes.txt","blob_name":"uploads/notes.txt"}`)
	}, "upload", path)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if gotName != "notes.txt" || !strings.HasPrefix(gotType, "text/plain") {
		t.Errorf("gateway saw %q %q", gotName, gotType)
	}
	if !strings.Contains(out, `"blob_name": "uploads/notes.txt"`) {
		t.Errorf("output = %s", out)
	}
}

func TestCommandSurfacesGatewayError(t *testing.T) {
	_, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error":"Backend service is unavailable. Please ensure the backend server is running."}`)
	}, "solution", "E-42")

	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("error = %v", err)
	}
}
