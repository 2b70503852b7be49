package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"
)

// Limiter decides whether a client identity has exhausted its attempt budget
// for the current window.
//
// The in-process MemoryStore keeps counters per process instance: a
// deployment running multiple instances gets independent counters and a
// weaker effective limit than configured. That is an accepted trade-off for
// a lightweight local limiter; swap in RedisStore for shared counters
// without changing callers.
type Limiter interface {
	// Check records an attempt for key and reports whether it exceeds
	// maxAttempts within the rolling window. A limited attempt does not
	// reset the window.
	Check(ctx context.Context, key string, maxAttempts int, window time.Duration) (limited bool, err error)
}

// ClientKey derives the rate-limit identity for a request: the first hop of
// X-Forwarded-For when present, otherwise the peer address. Requests behind
// the same proxy address share a bucket; accepted imprecision.
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0]); first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
