// Package source provides the collaborators that produce job snapshots:
// a seeded mock generator, a live scheduling-API adapter, a file replayer
// and a fallback combinator.
package source

import (
	"context"
	"errors"

	"github.com/lvs170603/Quantum-Observer/internal/models"
)

// ErrUnavailable indicates the source is not configured (e.g. no API key).
var ErrUnavailable = errors.New("source unavailable")

// Source fetches a fresh snapshot. Implementations must return a snapshot
// the caller may retain; it is never modified after return.
type Source interface {
	Fetch(ctx context.Context) (*models.Snapshot, error)
	Name() string
}

// Source names reported in Snapshot.Source.
const (
	NameMock = "mock"
	NameLive = "live"
	NameFile = "file"
)
