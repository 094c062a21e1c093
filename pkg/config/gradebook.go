package config

import (
	"fmt"
	"log/slog"

	"github.com/macropower/standing/api/v1beta1/gradebooks"
)

// LoadGradebook validates and decodes a Gradebook document, then checks its
// weights, thresholds, palette and rules.
func LoadGradebook(data []byte, opts ...LoaderOpt) (*gradebooks.Gradebook, error) {
	return loadGradebook(NewLoaderFromBytes(data, gradebooks.New, gradebooks.DefaultValidator, opts...))
}

// LoadGradebookFile reads a Gradebook document from path. See
// [LoadGradebook].
func LoadGradebookFile(path string, opts ...LoaderOpt) (*gradebooks.Gradebook, error) {
	l, err := NewLoaderFromFile(path, gradebooks.New, gradebooks.DefaultValidator, opts...)
	if err != nil {
		return nil, fmt.Errorf("read gradebook: %w", err)
	}

	g, err := loadGradebook(l)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	slog.Debug("loaded gradebook",
		slog.String("path", path),
		slog.Int("rules", len(g.Rules)),
	)

	return g, nil
}

func loadGradebook(l *Loader[*gradebooks.Gradebook]) (*gradebooks.Gradebook, error) {
	err := l.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate gradebook: %w", err)
	}

	g, err := l.Load()
	if err != nil {
		return nil, fmt.Errorf("load gradebook: %w", err)
	}

	err = g.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid gradebook: %w", err)
	}

	return g, nil
}
