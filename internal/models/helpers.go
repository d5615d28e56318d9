package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// statusAliases maps upstream spellings onto the closed status set.
var statusAliases = map[string]JobStatus{
	"QUEUED":    StatusQueued,
	"RUNNING":   StatusRunning,
	"COMPLETED": StatusCompleted,
	"DONE":      StatusCompleted,
	"ERROR":     StatusError,
	"CANCELLED": StatusCancelled,
	"CANCELED":  StatusCancelled,
	"UNKNOWN":   StatusUnknown,
}

// ParseJobStatus normalizes an upstream status string.
// Unrecognized or empty values become StatusUnknown.
func ParseJobStatus(s string) JobStatus {
	if st, ok := statusAliases[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return st
	}
	return StatusUnknown
}

// UnmarshalJSON normalizes the status while decoding.
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		// Non-string status (number, object) is tolerated as unknown.
		*s = StatusUnknown
		return nil
	}
	*s = ParseJobStatus(raw)
	return nil
}

// UnmarshalYAML normalizes the status while decoding.
func (s *JobStatus) UnmarshalYAML(value *yaml.Node) error {
	*s = ParseJobStatus(value.Value)
	return nil
}

// ParseBackendStatus normalizes a backend status. The live API reports
// healthy devices as "online"; unrecognized values read as inactive.
func ParseBackendStatus(s string) BackendStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "online", "available":
		return BackendActive
	case "maintenance":
		return BackendMaintenance
	case "inactive", "offline", "paused":
		return BackendInactive
	default:
		return BackendInactive
	}
}

// timestampLayouts are tried in order when parsing.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Timestamp is an instant that decodes leniently: empty or malformed input
// yields the zero value, which readers treat as missing.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses s with the accepted layouts. Zone-less values are UTC.
func ParseTimestamp(s string) (Timestamp, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, true
		}
	}
	return Timestamp{}, false
}

// MarshalJSON encodes the zero instant as null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// UnmarshalJSON never fails; unparseable input leaves the zero instant.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	*t, _ = ParseTimestamp(raw)
	return nil
}

// MarshalYAML encodes the zero instant as null.
func (t Timestamp) MarshalYAML() (any, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.Time.Format(time.RFC3339Nano), nil
}

// UnmarshalYAML never fails; unparseable input leaves the zero instant.
func (t *Timestamp) UnmarshalYAML(value *yaml.Node) error {
	*t, _ = ParseTimestamp(value.Value)
	return nil
}
