package out

import (
	"context"

	"studytracker/internal/modules/stats/domain"
	statsout "studytracker/internal/modules/stats/port/out"
	subjectin "studytracker/internal/modules/subject/port/in"
)

type SubjectSourceAdapter struct {
	subjects subjectin.Usecase
}

func NewSubjectSourceAdapter(subjects subjectin.Usecase) statsout.SubjectSource {
	return &SubjectSourceAdapter{subjects: subjects}
}

func (a *SubjectSourceAdapter) Subjects(ctx context.Context, includeArchived bool) ([]domain.SubjectRef, error) {
	subjects, err := a.subjects.List(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	refs := make([]domain.SubjectRef, 0, len(subjects))
	for _, s := range subjects {
		refs = append(refs, domain.SubjectRef{ID: s.ID, Name: s.Name, Archived: s.Archived})
	}
	return refs, nil
}
