package google

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

// ErrRateLimited indicates the API rate limit or quota was exceeded.
var ErrRateLimited = errors.New("google: rate limit exceeded")

func code(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return code(err) == http.StatusNotFound
}

// IsPreconditionFailed returns true if a conditional write lost, for
// example ifGenerationMatch=0 against an existing object.
func IsPreconditionFailed(err error) bool {
	return code(err) == http.StatusPreconditionFailed
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited) || code(err) == http.StatusTooManyRequests
}

// WrapError maps a Google API error onto the domain errors. op names the call.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch code(err) {
	case 0:
		return fmt.Errorf("%s: %w", op, err)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w: %w", op, ErrRateLimited, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
