package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/abelbrown/truthlens/internal/client"
)

// Reason classifies why a submission failed.
type Reason string

const (
	NetworkUnavailable Reason = "network_unavailable"
	ServerError        Reason = "server_error"
	Timeout            Reason = "timeout"
	Unparseable        Reason = "unparseable"
	Cancelled          Reason = "cancelled"
)

const (
	msgNetwork    = "Could not reach the analysis service. Check your connection and try again."
	msgTimeout    = "The analysis took too long to complete. Please try again."
	msgMalformed  = "The analysis service returned a response that could not be read."
	msgIncomplete = "The analysis service returned an incomplete result (no overall trust score)."
	msgCancelled  = "Analysis cancelled."
	msgRateLimit  = "Too many requests. Please wait a moment and try again."
)

// Failure is the terminal error of a Failed submission. Status is the HTTP
// status for ServerError and zero otherwise.
type Failure struct {
	Reason  Reason
	Status  int
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

// classify maps an Analyzer error onto a Failure with a user-facing message.
func classify(ctx context.Context, err error) *Failure {
	var se *client.StatusError
	var ne net.Error

	switch {
	case errors.As(err, &se):
		msg := se.Message
		if msg == "" {
			msg = genericStatusMessage(se.Status)
		}
		return &Failure{Reason: ServerError, Status: se.Status, Message: msg}
	case errors.Is(err, client.ErrRateLimited):
		return &Failure{Reason: ServerError, Status: http.StatusTooManyRequests, Message: msgRateLimit}
	case errors.Is(err, client.ErrMalformed):
		return &Failure{Reason: Unparseable, Message: msgMalformed}
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(ctx.Err(), context.DeadlineExceeded),
		errors.As(err, &ne) && ne.Timeout():
		return &Failure{Reason: Timeout, Message: msgTimeout}
	case errors.Is(err, context.Canceled):
		return &Failure{Reason: Cancelled, Message: msgCancelled}
	}
	return &Failure{Reason: NetworkUnavailable, Message: msgNetwork}
}

func genericStatusMessage(status int) string {
	if status == http.StatusTooManyRequests {
		return msgRateLimit
	}
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("The analysis service returned an error (%d %s). Please try again.", status, text)
	}
	return fmt.Sprintf("The analysis service returned an error (%d). Please try again.", status)
}
