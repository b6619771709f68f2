package reconcile

import (
	"errors"
	"fmt"
)

// ErrTemplateNotFound matches any *TemplateNotFoundError via errors.Is.
var ErrTemplateNotFound = errors.New("template profile not found")

// TemplateNotFoundError is returned when the profile a new profile should be
// cloned from does not exist on the service.
type TemplateNotFoundError struct {
	Template string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("%q profile not found to use as template", e.Template)
}

func (e *TemplateNotFoundError) Is(target error) bool {
	return target == ErrTemplateNotFound
}
