package domain_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"studytracker/internal/modules/backup/domain"
	apperrors "studytracker/internal/platform/errors"
)

func TestEncodeWritesEmptyArraysAndFieldNames(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 7, 1, 12, 30, 0, 5_000_000, time.FixedZone("KST", 9*3600))
	payload, err := domain.Encode(domain.NewSnapshot(at, nil, nil))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	text := string(payload)
	for _, want := range []string{`"version": 1`, `"exported_at": "2026-07-01T03:30:00.005Z"`, `"subjects": []`, `"sessions": []`} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %s in %s", want, text)
		}
	}
}

func TestDecodeAcceptsMissingVersion(t *testing.T) {
	t.Parallel()
	s, err := domain.Decode([]byte(`{
		"subjects": [{"id": 3, "name": "Math"}],
		"sessions": [{"id": 9, "subject_id": 3, "start_time": 1000, "planned_end_time": 61000,
			"end_time": 31000, "duration_min": 1, "start_day": "2026-01-01"}]
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Version != domain.Version || len(s.Subjects) != 1 || len(s.Sessions) != 1 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
	if s.Sessions[0].EndTime == nil || *s.Sessions[0].EndTime != 31000 {
		t.Fatalf("unexpected end time: %+v", s.Sessions[0])
	}
}

func TestDecodeRejectsMalformedDocuments(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"not json":          `nope`,
		"array root":        `[]`,
		"missing subjects":  `{"sessions": []}`,
		"missing sessions":  `{"subjects": []}`,
		"subjects object":   `{"subjects": {}, "sessions": []}`,
		"sessions null":     `{"subjects": [], "sessions": null}`,
		"future version":    `{"version": 2, "subjects": [], "sessions": []}`,
		"string version":    `{"version": "1", "subjects": [], "sessions": []}`,
		"bad record":        `{"subjects": [{"id": "x", "name": "Math"}], "sessions": []}`,
		"empty name":        `{"subjects": [{"id": 1, "name": ""}], "sessions": []}`,
		"duplicate name":    `{"subjects": [{"id": 1, "name": "A"}, {"id": 2, "name": "A"}], "sessions": []}`,
		"bad day":           `{"subjects": [], "sessions": [{"id": 1, "subject_id": 1, "start_time": 0, "planned_end_time": 0, "start_day": "today"}]}`,
		"two active":        `{"subjects": [], "sessions": [{"id": 1, "start_day": "2026-01-01"}, {"id": 2, "start_day": "2026-01-01"}]}`,
		"duplicate session": `{"subjects": [], "sessions": [{"id": 1, "start_day": "2026-01-01", "end_time": 5}, {"id": 1, "start_day": "2026-01-01", "end_time": 5}]}`,
	}
	for name, payload := range cases {
		if _, err := domain.Decode([]byte(payload)); !errors.Is(err, apperrors.ErrInvalidBackupFormat) {
			t.Fatalf("%s: expected invalid backup format, got %v", name, err)
		}
	}
}

func TestFileNameUsesLocalDate(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 7, 1, 20, 0, 0, 0, time.UTC)
	if got := domain.FileName(at, time.FixedZone("KST", 9*3600)); got != "StudyTracker_backup_2026-07-02.json" {
		t.Fatalf("unexpected file name %q", got)
	}
}

func TestDecodeReadsISOTimestamps(t *testing.T) {
	t.Parallel()
	s, err := domain.Decode([]byte(`{
		"version": 1,
		"exported_at": "2025-05-01T10:00:00.000Z",
		"subjects": [{"id": 1, "name": "Math"}],
		"sessions": [
			{"id": 1, "subject_id": 1, "start_time": "2025-05-01T09:00:00.000Z",
				"planned_end_time": "2025-05-01T09:25:00.000Z", "end_time": "2025-05-01T09:25:00.000Z",
				"duration_min": 25, "start_day": "2025-05-01"},
			{"id": 2, "subject_id": 1, "start_time": "2025-05-01T09:30:00.000Z",
				"planned_end_time": "2025-05-01T09:55:00.000Z", "end_time": null,
				"duration_min": null, "start_day": "2025-05-01"}
		]
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	start := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	first := s.Sessions[0]
	if !first.StartTime.Time().Equal(start) {
		t.Fatalf("unexpected start %v", first.StartTime.Time())
	}
	if first.EndTime == nil || *first.EndTime != domain.TimestampOf(start.Add(25*time.Minute)) {
		t.Fatalf("unexpected end %+v", first.EndTime)
	}
	if s.Sessions[1].EndTime != nil {
		t.Fatalf("expected the second session to stay active")
	}
}

func TestEncodeWritesISOTimestamps(t *testing.T) {
	t.Parallel()
	start := domain.TimestampOf(time.Date(2025, 5, 1, 9, 0, 0, 7_000_000, time.UTC))
	payload, err := domain.Encode(domain.NewSnapshot(time.Now(), nil, []domain.SessionRecord{
		{ID: 1, SubjectID: 1, StartTime: start, PlannedEndTime: start, StartDay: "2025-05-01"},
	}))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(payload), `"start_time": "2025-05-01T09:00:00.007Z"`) {
		t.Fatalf("expected an ISO start_time in %s", payload)
	}
	decoded, err := domain.Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Sessions[0].StartTime != start {
		t.Fatalf("start_time changed: %d != %d", decoded.Sessions[0].StartTime, start)
	}
}

func TestDecodeRejectsBadTimestamps(t *testing.T) {
	t.Parallel()
	for _, ts := range []string{`"yesterday"`, `true`, `1.5`} {
		payload := `{"subjects": [], "sessions": [{"id": 1, "start_time": ` + ts + `, "start_day": "2026-01-01", "end_time": 5}]}`
		if _, err := domain.Decode([]byte(payload)); !errors.Is(err, apperrors.ErrInvalidBackupFormat) {
			t.Fatalf("%s: expected invalid backup format, got %v", ts, err)
		}
	}
}
