package domain

import (
	"fmt"
	"strings"

	apperrors "studytracker/internal/platform/errors"
)

type Subject struct {
	ID       int64
	Name     string
	Archived bool
}

// DeletePolicy decides what happens to a subject's sessions on delete.
type DeletePolicy string

const (
	// PolicyKeep removes the subject row only; its sessions stay orphaned and
	// drop out of every stats view.
	PolicyKeep    DeletePolicy = "keep"
	PolicyCascade DeletePolicy = "cascade"
	// PolicyArchive hides the subject but keeps the row and its name.
	PolicyArchive DeletePolicy = "archive"
)

func ParsePolicy(raw string) (DeletePolicy, error) {
	switch p := DeletePolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case PolicyKeep, PolicyCascade, PolicyArchive:
		return p, nil
	default:
		return "", fmt.Errorf("%w %q", apperrors.ErrInvalidPolicy, raw)
	}
}

// NormalizeName trims name and rejects blank input.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.ErrEmptyName
	}
	return name, nil
}
