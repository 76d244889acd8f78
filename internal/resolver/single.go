package resolver

import (
	"fmt"
	"strings"

	"github.com/dyluth/aurora-cli/internal/clierr"
	"github.com/dyluth/aurora-cli/pkg/scheduler"
)

// maxListed is how many candidates an ambiguity message lists.
const maxListed = 10

// RequireSingle returns the only key in keys.
// Returns *NotFoundError or *AmbiguousError otherwise; both are invalid parameters.
func RequireSingle(keys []scheduler.JobKey, raw string) (scheduler.JobKey, error) {
	switch len(keys) {
	case 0:
		return scheduler.JobKey{}, &NotFoundError{Pattern: raw}
	case 1:
		return keys[0], nil
	default:
		return scheduler.JobKey{}, &AmbiguousError{Pattern: raw, Matches: keys}
	}
}

// NotFoundError indicates no job matched a pattern.
type NotFoundError struct {
	Pattern string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no jobs found matching '%s'", e.Pattern)
}

func (e *NotFoundError) Unwrap() error { return clierr.ErrInvalidParameter }

// AmbiguousError indicates a pattern matched more than one job where exactly
// one was required.
type AmbiguousError struct {
	Pattern string
	Matches []scheduler.JobKey
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous job key '%s' matches %d jobs", e.Pattern, len(e.Matches))
}

func (e *AmbiguousError) Unwrap() error { return clierr.ErrInvalidParameter }

// Details lists the matching jobs (up to 10, then "...and N more").
func (e *AmbiguousError) Details() string {
	var b strings.Builder
	n := min(len(e.Matches), maxListed)
	for _, k := range e.Matches[:n] {
		fmt.Fprintf(&b, "  %s\n", k)
	}
	if len(e.Matches) > maxListed {
		fmt.Fprintf(&b, "  ...and %d more\n", len(e.Matches)-maxListed)
	}
	return b.String()
}
