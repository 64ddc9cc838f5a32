package streak

import (
	"errors"
	"fmt"
)

var (
	// ErrFreezeQuotaExceeded is returned when the once-per-rolling-week
	// freeze has already been spent.
	ErrFreezeQuotaExceeded = errors.New("streak freeze already used this week")

	// ErrNoActiveStreak is returned when a freeze is requested but there is
	// no streak to protect.
	ErrNoActiveStreak = errors.New("no active streak to freeze")
)

// InvalidInputError reports a malformed timestamp or date. Inputs are
// rejected, never silently coerced.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
