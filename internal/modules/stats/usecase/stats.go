package usecase

import (
	"context"

	"studytracker/internal/modules/stats/domain"
	"studytracker/internal/modules/stats/dto"
	statsin "studytracker/internal/modules/stats/port/in"
	"studytracker/internal/modules/stats/service"
)

type Interactor struct {
	svc *service.StatsService
}

func NewInteractor(svc *service.StatsService) statsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Today(ctx context.Context, input dto.ReportInput) (dto.ReportOutput, error) {
	day := i.svc.Today()
	return i.report(ctx, dto.ScopeToday, day, domain.OnDay(day), input.IncludeArchived)
}

func (i *Interactor) Total(ctx context.Context, input dto.ReportInput) (dto.ReportOutput, error) {
	return i.report(ctx, dto.ScopeTotal, "", domain.AllDays, input.IncludeArchived)
}

func (i *Interactor) ByDay(ctx context.Context, input dto.ReportInput) (dto.ReportOutput, error) {
	day, err := domain.ParseDay(input.Day)
	if err != nil {
		return dto.ReportOutput{}, err
	}
	return i.report(ctx, dto.ScopeDay, day, domain.OnDay(day), input.IncludeArchived)
}

func (i *Interactor) report(ctx context.Context, scope, day string, include domain.Filter, includeArchived bool) (dto.ReportOutput, error) {
	rows, err := i.svc.Report(ctx, include, includeArchived)
	if err != nil {
		return dto.ReportOutput{}, err
	}
	total := domain.TotalMinutes(rows)
	out := dto.ReportOutput{
		Scope:        scope,
		Day:          day,
		Rows:         make([]dto.RowOutput, 0, len(rows)),
		TotalMinutes: total,
		TotalHours:   domain.Hours(total),
	}
	for _, r := range rows {
		out.Rows = append(out.Rows, dto.RowOutput{SubjectID: r.SubjectID, Name: r.Name, Minutes: r.Minutes, Archived: r.Archived})
	}
	return out, nil
}
