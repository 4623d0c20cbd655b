package clients

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// IsConnectionError reports whether err means the backend could not be
// reached at all, as opposed to a failure after it answered.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "ECONNREFUSED") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "fetch failed")
}

type requestIDKey struct{}

// WithRequestID attaches the inbound request id so it is forwarded to the backend.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
