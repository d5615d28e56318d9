package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lvs170603/Quantum-Observer/internal/models"
)

// FallbackNote is attached to snapshots served by the secondary source.
const FallbackNote = "Live API unavailable, showing demo data."

// FallbackSource serves the primary source and falls back to the secondary
// one when the primary fails.
type FallbackSource struct {
	primary   Source
	secondary Source
	logger    *slog.Logger
}

// NewFallbackSource creates a fallback source.
func NewFallbackSource(primary, secondary Source, logger *slog.Logger) *FallbackSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackSource{primary: primary, secondary: secondary, logger: logger}
}

// Name reports the primary source's name.
func (f *FallbackSource) Name() string { return f.primary.Name() }

// Fetch returns the primary snapshot, or the secondary one with a note.
func (f *FallbackSource) Fetch(ctx context.Context) (*models.Snapshot, error) {
	snap, err := f.primary.Fetch(ctx)
	if err == nil {
		return snap, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	if errors.Is(err, ErrUnavailable) {
		f.logger.Debug("primary source unavailable, using fallback", "primary", f.primary.Name(), "fallback", f.secondary.Name())
	} else {
		f.logger.Warn("primary source failed, using fallback", "primary", f.primary.Name(), "fallback", f.secondary.Name(), "error", err)
	}

	fallback, fbErr := f.secondary.Fetch(ctx)
	if fbErr != nil {
		return nil, fmt.Errorf("fallback %s: %w (primary: %v)", f.secondary.Name(), fbErr, err)
	}
	fallback.Note = FallbackNote
	return fallback, nil
}
