package resolve

import (
	"errors"
	"fmt"

	"voxlis/internal/report"
)

// ErrNotFound matches every *NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// Reason says why a lookup found nothing.
type Reason string

const (
	// ReasonUnknownExecutor: neither the listing nor the slug table knows the name.
	ReasonUnknownExecutor Reason = "unknown-executor"
	// ReasonKindUnavailable: the executor is known but has no report of the kind asked for.
	ReasonKindUnavailable Reason = "kind-unavailable"
)

// NotFoundError is returned when no source can supply a report.
type NotFoundError struct {
	Executor string
	Kind     report.Kind
	Reason   Reason
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resolve %s (%s): %s", e.Executor, e.Kind, e.Reason)
}

// Is makes errors.Is(err, ErrNotFound) hold for any NotFoundError.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(name string, kind report.Kind, reason Reason) error {
	return &NotFoundError{Executor: name, Kind: kind, Reason: reason}
}
