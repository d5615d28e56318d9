// Package service turns snapshots into dashboards and exposes the job,
// export and assistant operations shared by the REST API, the MCP tools and
// the CLI.
package service

import (
	"errors"
	"strconv"

	"github.com/lvs170603/Quantum-Observer/internal/cache"
)

var (
	// ErrJobNotFound is returned when a job ID is not in the snapshot.
	ErrJobNotFound = errors.New("job not found")
	// ErrUnsupportedFormat is returned for unknown export formats.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// Mode selects the data source: generated demo data or the live API.
type Mode string

const (
	ModeDemo Mode = "demo"
	ModeLive Mode = "live"
)

// ModeFor maps a demo flag to a mode.
func ModeFor(demo bool) Mode {
	if demo {
		return ModeDemo
	}
	return ModeLive
}

// cacheKey is the snapshot cache key for the mode.
func (m Mode) cacheKey() string {
	if m == ModeLive {
		return cache.KeyLive
	}
	return cache.KeyDemo
}

// ParseMode interprets a demo query value ("true", "false", "1", ...).
// Empty or malformed values yield def.
func ParseMode(demo string, def Mode) Mode {
	if demo == "" {
		return def
	}
	b, err := strconv.ParseBool(demo)
	if err != nil {
		return def
	}
	return ModeFor(b)
}
