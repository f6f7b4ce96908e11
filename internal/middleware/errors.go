package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Problem represents an RFC 7807 problem details object
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Trace  string `json:"trace_id,omitempty"`
}

// ErrRateLimitExceeded is the detail of a 429 from the rate limiter
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// writeProblem writes p as application/problem+json
func writeProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// ProblemFromStatus creates the Problem written by the recoverer (500) and
// the rate limiter (429).
func ProblemFromStatus(status int, detail string, traceID string) Problem {
	problemType := "/errors/unknown"
	switch status {
	case http.StatusTooManyRequests:
		problemType = "/errors/rate-limit-exceeded"
	case http.StatusInternalServerError:
		problemType = "/errors/internal-server-error"
	}

	return Problem{
		Type:   problemType,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Trace:  traceID,
	}
}
