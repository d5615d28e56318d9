package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lvs170603/Quantum-Observer/internal/models"
	"gopkg.in/yaml.v3"
)

// FileSource replays a snapshot stored as YAML or JSON.
//
// When the file records taken_at, every timestamp is shifted so that
// taken_at lines up with the current time; a recording therefore keeps
// filling the trailing chart window however old it is.
type FileSource struct {
	path string
	now  func() time.Time
}

// NewFileSource creates a file replay source. A nil now uses time.Now.
func NewFileSource(path string, now func() time.Time) *FileSource {
	if now == nil {
		now = time.Now
	}
	return &FileSource{path: path, now: now}
}

// Name returns the source name.
func (f *FileSource) Name() string { return NameFile }

// Fetch reads and decodes the file on every call.
func (f *FileSource) Fetch(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	var snap models.Snapshot
	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &snap)
	default:
		err = json.Unmarshal(data, &snap)
	}
	if err != nil {
		return nil, fmt.Errorf("decode snapshot file %s: %w", filepath.Base(f.path), err)
	}

	now := f.now()
	if !snap.TakenAt.IsZero() {
		shiftSnapshot(&snap, now.Sub(snap.TakenAt))
	}
	snap.TakenAt = now
	snap.Source = NameFile
	return &snap, nil
}

// shiftSnapshot moves every known timestamp by d. Missing ones stay missing.
func shiftSnapshot(snap *models.Snapshot, d time.Duration) {
	shift := func(ts models.Timestamp) models.Timestamp {
		if ts.IsZero() {
			return ts
		}
		return models.NewTimestamp(ts.Add(d))
	}
	for i := range snap.Jobs {
		job := &snap.Jobs[i]
		job.Submitted = shift(job.Submitted)
		for k := range job.StatusHistory {
			job.StatusHistory[k].Timestamp = shift(job.StatusHistory[k].Timestamp)
		}
	}
}
