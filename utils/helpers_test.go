package utils

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-kit/log/level"
)

func TestEncodeURIComponent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "ABC123", expected: "ABC123"},
		{name: "space", input: "pump failure", expected: "pump%20failure"},
		{name: "slash", input: "docs/", expected: "docs%2F"},
		{name: "reserved kept", input: "a-b_c.d!e~f*g'h(i)", expected: "a-b_c.d!e~f*g'h(i)"},
		{name: "query separators", input: "a&b=c?d#e", expected: "a%26b%3Dc%3Fd%23e"},
		{name: "plus", input: "1+1", expected: "1%2B1"},
		{name: "utf8", input: "故障", expected: "%E6%95%85%E9%9A%9C"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeURIComponent(tt.input); got != tt.expected {
				t.Errorf("EncodeURIComponent(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty", input: "", wantErr: ErrQueryRequired},
		{name: "blank after sanitize", input: SanitizeInput("  \x00 "), wantErr: ErrQueryRequired},
		{name: "valid", input: SanitizeInput(" E-42 "), wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateQuery(tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateQuery(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}

	if msg := ErrQueryRequired.Error(); msg != strings.ToLower(msg) {
		t.Errorf("ErrQueryRequired = %q, want a lowercase error string", msg)
	}
}

func TestStageTempFileLifecycle(t *testing.T) {
	dir := t.TempDir()

	staged, err := StageTempFile(dir, strings.NewReader("hello blob"))
	if err != nil {
		t.Fatalf("StageTempFile() error = %v", err)
	}
	if filepath.Dir(staged.Path) != dir {
		t.Errorf("staged in %s, want %s", filepath.Dir(staged.Path), dir)
	}
	if staged.Size != int64(len("hello blob")) {
		t.Errorf("Size = %d", staged.Size)
	}

	data, err := staged.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "hello blob" {
		t.Errorf("ReadAll() = %q", data)
	}

	if err := staged.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if err := staged.Release(); err != nil {
		t.Fatalf("second Release() error = %v", err)
	}
	if _, err := os.Stat(staged.Path); !os.IsNotExist(err) {
		t.Errorf("temp file still present: %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestStageTempFileCleansUpOnCopyError(t *testing.T) {
	dir := t.TempDir()

	if _, err := StageTempFile(dir, failingReader{}); err == nil {
		t.Fatal("StageTempFile() error = nil, want copy failure")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("left %d files behind", len(entries))
	}
}

func TestNewLoggerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")

	level.Info(logger).Log("msg", "hidden")
	level.Warn(logger).Log("msg", "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line passed a warn filter: %s", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "svc=frontend-gateway") {
		t.Errorf("unexpected output: %s", out)
	}
}
