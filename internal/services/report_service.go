package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"libraryapi/internal/models"
	"libraryapi/internal/repositories"
)

// ReportService is the read-only query layer over borrowing history.
type ReportService interface {
	Aggregate(start, end models.Date) (*models.BorrowingStats, error)
	BorrowingHistory() ([]models.LoanRecord, error)
	OverdueOfPreviousMonth() ([]models.OverdueLoan, error)
}

// LastNDaysWindow selects the inclusive window [now − n days, now].
func LastNDaysWindow(now time.Time, n int) (models.Date, models.Date) {
	end := models.NewDate(now)
	return end.AddDays(-n), end
}

// PreviousMonthWindow selects the previous calendar month, first day through
// last day inclusive.
func PreviousMonthWindow(now time.Time) (models.Date, models.Date) {
	y, m, _ := now.UTC().Date()
	firstOfThisMonth := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	start := models.NewDate(firstOfThisMonth.AddDate(0, -1, 0))
	end := models.NewDate(firstOfThisMonth.AddDate(0, 0, -1))
	return start, end
}

type reportService struct {
	borrowingRepo repositories.BorrowingRepository
	log           *logrus.Logger
}

func NewReportService(borrowingRepo repositories.BorrowingRepository, log *logrus.Logger) ReportService {
	return &reportService{borrowingRepo: borrowingRepo, log: log}
}

// Aggregate counts total / currently-outstanding / returned processes whose
// check_out_date falls inside the inclusive window.
func (s *reportService) Aggregate(start, end models.Date) (*models.BorrowingStats, error) {
	stats, err := s.borrowingRepo.Aggregate(nil, start, end)
	if err != nil {
		s.log.WithError(err).Error("Aggregate: query failed")
		return nil, infraErr("error generating report", err)
	}
	return stats, nil
}

func (s *reportService) BorrowingHistory() ([]models.LoanRecord, error) {
	rows, err := s.borrowingRepo.ListHistory(nil)
	if err != nil {
		s.log.WithError(err).Error("BorrowingHistory: query failed")
		return nil, infraErr("error generating report", err)
	}
	return rows, nil
}

// OverdueOfPreviousMonth lists loans still outstanding whose due date fell in
// the previous calendar month.
func (s *reportService) OverdueOfPreviousMonth() ([]models.OverdueLoan, error) {
	start, end := PreviousMonthWindow(time.Now())
	rows, err := s.borrowingRepo.ListOverdueDueBetween(nil, models.Today(), start, end)
	if err != nil {
		s.log.WithError(err).Error("OverdueOfPreviousMonth: query failed")
		return nil, infraErr("error generating report", err)
	}
	return rows, nil
}
