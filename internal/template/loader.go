package template

import (
	"context"
	"errors"
	"fmt"
)

//go:generate mockgen -source=loader.go -destination=../testmocks/mocktemplate/mock_loader.go -package=mocktemplate

// Loader produces the template for a world name. Implementations may block;
// they are only ever called from the cache's first-build path.
type Loader interface {
	LoadTemplate(ctx context.Context, worldName string) (*WorldTemplate, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, worldName string) (*WorldTemplate, error)

func (f LoaderFunc) LoadTemplate(ctx context.Context, worldName string) (*WorldTemplate, error) {
	return f(ctx, worldName)
}

type chain []Loader

// Chain returns a Loader that asks each loader in order and returns the first
// answer that is not ErrTemplateNotFound.
func Chain(loaders ...Loader) Loader {
	return chain(loaders)
}

func (c chain) LoadTemplate(ctx context.Context, worldName string) (*WorldTemplate, error) {
	for _, l := range c {
		tmpl, err := l.LoadTemplate(ctx, worldName)
		if errors.Is(err, ErrTemplateNotFound) {
			continue
		}
		return tmpl, err
	}
	return nil, fmt.Errorf("world %q: %w", worldName, ErrTemplateNotFound)
}
