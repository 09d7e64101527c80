package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"regexp"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// retryBackoff is the delay schedule between attempts at a transient
// failure. Its length caps the retries, so a call is made at most
// len(retryBackoff)+1 times.
var retryBackoff = []time.Duration{time.Second, 2 * time.Second}

// transientMessageRe catches provider errors that only surface the failure
// in the message text, as the sidecar's wrapped stream errors do.
var transientMessageRe = regexp.MustCompile(
	`(?i)\bstatus (?:5\d\d|429)\b|\brate limit|\btoo many requests\b|\btimeout\b`)

// IsTransient reports whether the error is a fault worth retrying: server
// errors (5xx), rate limiting (429), and timeouts. Client errors, malformed
// responses, and cancellation are permanent.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Aborted:
			return true
		default:
			return false
		}
	}
	return transientMessageRe.MatchString(err.Error())
}
