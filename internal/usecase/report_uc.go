package usecase

import (
	"bytes"
	"context"
	"time"

	"github.com/Keganchiaa/fyp-bank/internal/domain"
	"github.com/Keganchiaa/fyp-bank/internal/report"
	"github.com/Keganchiaa/fyp-bank/internal/repository"
)

const reportWindowDays = 7

type ReportUsecase struct {
	reports repository.ReportRepository
	now     func() time.Time
}

func NewReportUsecase(reports repository.ReportRepository) *ReportUsecase {
	return &ReportUsecase{reports: reports, now: time.Now}
}

// Snapshot is everything the admin dashboard and the export need.
type Snapshot struct {
	Counts *domain.ReportCounts
	Daily  []*domain.DailyCount
}

func (uc *ReportUsecase) Snapshot(ctx context.Context) (*Snapshot, error) {
	counts, err := uc.reports.Counts(ctx)
	if err != nil {
		return nil, err
	}
	daily, err := uc.reports.TransactionsPerDay(ctx, uc.now().AddDate(0, 0, -reportWindowDays))
	if err != nil {
		return nil, err
	}
	return &Snapshot{Counts: counts, Daily: daily}, nil
}

// Export renders the snapshot as an xlsx workbook.
func (uc *ReportUsecase) Export(ctx context.Context) (*bytes.Buffer, error) {
	snap, err := uc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return report.Workbook(snap.Counts, snap.Daily)
}
