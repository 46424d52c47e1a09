package domain_test

import (
	"errors"
	"testing"

	"studytracker/internal/modules/subject/domain"
	apperrors "studytracker/internal/platform/errors"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()
	got, err := domain.NormalizeName("  Math \n")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != "Math" {
		t.Fatalf("expected trimmed name, got %q", got)
	}
	for _, blank := range []string{"", "   ", "\t\n"} {
		if _, err := domain.NormalizeName(blank); !errors.Is(err, apperrors.ErrEmptyName) {
			t.Fatalf("expected empty name error for %q, got %v", blank, err)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()
	for raw, want := range map[string]domain.DeletePolicy{
		"keep":      domain.PolicyKeep,
		" Cascade ": domain.PolicyCascade,
		"ARCHIVE":   domain.PolicyArchive,
	} {
		got, err := domain.ParsePolicy(raw)
		if err != nil || got != want {
			t.Fatalf("parse %q: got %q, %v", raw, got, err)
		}
	}
	if _, err := domain.ParsePolicy("shred"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
