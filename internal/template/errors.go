package template

import (
	"errors"
	"fmt"
)

// ErrTemplateNotFound is returned by a Loader that has no source for a world
// name. Chain moves on to the next loader when it sees it.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateLoadError reports that the template for a world name could not be
// built. Nothing is cached, so a later call retries.
type TemplateLoadError struct {
	World string
	Err   error
}

func (e *TemplateLoadError) Error() string {
	return fmt.Sprintf("failed to load template %q: %v", e.World, e.Err)
}

func (e *TemplateLoadError) Unwrap() error {
	return e.Err
}
