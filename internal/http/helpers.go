package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// requestID reuses a caller supplied X-Request-ID when it looks sane.
func requestID(r *http.Request) string {
	if id := sanitizeInput(r.Header.Get("X-Request-ID")); id != "" && len(id) <= 64 {
		return id
	}
	return generateRequestID()
}
