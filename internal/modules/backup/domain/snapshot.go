package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	apperrors "studytracker/internal/platform/errors"
)

const Version = 1

type SubjectRecord struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Archived bool   `json:"archived,omitempty"`
}

// SessionRecord mirrors a sessions row.
type SessionRecord struct {
	ID             int64      `json:"id"`
	SubjectID      int64      `json:"subject_id"`
	StartTime      Timestamp  `json:"start_time"`
	PlannedEndTime Timestamp  `json:"planned_end_time"`
	EndTime        *Timestamp `json:"end_time"`
	DurationMin    *int       `json:"duration_min"`
	StartDay       string     `json:"start_day"`
}

// isoMillis is the UTC layout of JavaScript's Date.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z"

// Timestamp is an instant in epoch milliseconds. It is written as an
// ISO-8601 UTC string and read from either that form or a bare integer.
type Timestamp int64

func TimestampOf(t time.Time) Timestamp { return Timestamp(t.UnixMilli()) }

func (ts Timestamp) Time() time.Time { return time.UnixMilli(int64(ts)) }

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Time().UTC().Format(isoMillis))
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return fmt.Errorf("timestamp %q: %w", text, err)
		}
		*ts = TimestampOf(t)
		return nil
	}
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("timestamp %s: %w", string(data), err)
	}
	*ts = Timestamp(ms)
	return nil
}

type Snapshot struct {
	Version    int             `json:"version"`
	ExportedAt string          `json:"exported_at"`
	Subjects   []SubjectRecord `json:"subjects"`
	Sessions   []SessionRecord `json:"sessions"`
}

func NewSnapshot(exportedAt time.Time, subjects []SubjectRecord, sessions []SessionRecord) Snapshot {
	if subjects == nil {
		subjects = []SubjectRecord{}
	}
	if sessions == nil {
		sessions = []SessionRecord{}
	}
	return Snapshot{
		Version:    Version,
		ExportedAt: exportedAt.UTC().Format(isoMillis),
		Subjects:   subjects,
		Sessions:   sessions,
	}
}

func Encode(s Snapshot) ([]byte, error) {
	payload, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return append(payload, '\n'), nil
}

// Decode parses a backup document. Both collections must be present as JSON
// arrays; nothing is returned for a document that fails any check.
func Decode(payload []byte) (Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Snapshot{}, invalid("not a JSON object: %v", err)
	}
	for _, key := range []string{"subjects", "sessions"} {
		if !isArray(raw[key]) {
			return Snapshot{}, invalid("%s must be an array", key)
		}
	}
	if v, ok := raw["version"]; ok && !isNull(v) {
		var version int
		if err := json.Unmarshal(v, &version); err != nil || version != Version {
			return Snapshot{}, invalid("unsupported version %s", string(v))
		}
	}

	var s Snapshot
	if err := json.Unmarshal(payload, &s); err != nil {
		return Snapshot{}, invalid("%v", err)
	}
	s.Version = Version
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// Validate rejects snapshots that could not be restored as-is.
func (s Snapshot) Validate() error {
	names := make(map[string]struct{}, len(s.Subjects))
	ids := make(map[int64]struct{}, len(s.Subjects))
	for _, subject := range s.Subjects {
		if subject.ID <= 0 {
			return invalid("subject id %d must be positive", subject.ID)
		}
		if subject.Name == "" {
			return invalid("subject %d has an empty name", subject.ID)
		}
		if _, dup := ids[subject.ID]; dup {
			return invalid("duplicate subject id %d", subject.ID)
		}
		if _, dup := names[subject.Name]; dup {
			return invalid("duplicate subject name %q", subject.Name)
		}
		ids[subject.ID] = struct{}{}
		names[subject.Name] = struct{}{}
	}

	sessionIDs := make(map[int64]struct{}, len(s.Sessions))
	active := 0
	for _, session := range s.Sessions {
		if session.ID <= 0 {
			return invalid("session id %d must be positive", session.ID)
		}
		if _, dup := sessionIDs[session.ID]; dup {
			return invalid("duplicate session id %d", session.ID)
		}
		sessionIDs[session.ID] = struct{}{}
		if _, err := time.Parse(time.DateOnly, session.StartDay); err != nil {
			return invalid("session %d has start_day %q", session.ID, session.StartDay)
		}
		if session.EndTime == nil {
			active++
		}
	}
	if active > 1 {
		return invalid("%d active sessions", active)
	}
	return nil
}

// FileName is the default export file name for the local date of t.
func FileName(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return "StudyTracker_backup_" + t.In(loc).Format(time.DateOnly) + ".json"
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{apperrors.ErrInvalidBackupFormat}, args...)...)
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
