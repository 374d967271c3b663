package docintel

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/docvoice/docvoice/internal/core/domain"
	"github.com/docvoice/docvoice/internal/infrastructure/resilience"
)

// countsAgainstBreaker decides which failures trip the circuit. Rejections
// the service itself produced (bad input, wrong password, taken username)
// are healthy responses from the breaker's point of view.
func countsAgainstBreaker(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return true
}

// mapServiceError converts raw transport failures into the client's typed
// error kinds. Service-reported details stay in the message verbatim.
func mapServiceError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized:
			return domain.WrapError(domain.ErrAuthenticationFailed, operation, err)
		case http.StatusConflict:
			return domain.WrapError(domain.ErrConflict, operation, err)
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return domain.WrapError(domain.ErrValidation, operation, err)
		default:
			return domain.WrapError(domain.ErrTransport, operation, err)
		}
	}

	if resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTransport, operation, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.WrapError(domain.ErrTransport, operation+" timeout", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	return domain.WrapError(domain.ErrTransport, operation, err)
}
