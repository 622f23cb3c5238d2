package services

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"libraryapi/internal/models"
	"libraryapi/internal/repositories"
)

// LoanPeriodDays is the fixed loan policy: due_date = check_out_date + 15 days.
const LoanPeriodDays = 15

// BorrowingService is the checkout/return state machine. Both workflows run
// inside a single transaction and use conditional updates whose affected-row
// count is the authoritative success signal, so a lost race rolls the whole
// operation back instead of driving available_quantity negative.
type BorrowingService interface {
	CheckOut(borrowerID, bookID uint) (*models.BorrowingProcess, error)
	Return(processID uint) error
	ListBorrowedByBorrower(borrowerID uint) ([]models.BorrowedBook, error)
	ListOverdue() ([]models.OverdueLoan, error)
}

type borrowingService struct {
	db            *gorm.DB
	bookRepo      repositories.BookRepository
	borrowerRepo  repositories.BorrowerRepository
	borrowingRepo repositories.BorrowingRepository
	log           *logrus.Logger
}

func NewBorrowingService(
	db *gorm.DB,
	bookRepo repositories.BookRepository,
	borrowerRepo repositories.BorrowerRepository,
	borrowingRepo repositories.BorrowingRepository,
	log *logrus.Logger,
) BorrowingService {
	return &borrowingService{
		db:            db,
		bookRepo:      bookRepo,
		borrowerRepo:  borrowerRepo,
		borrowingRepo: borrowingRepo,
		log:           log,
	}
}

// CheckOut creates an outstanding BorrowingProcess and decrements the book's
// available quantity, atomically.
//
// The quantity pre-read only fast-fails obviously unavailable books without
// opening a transaction. The conditional decrement inside the transaction
// (available_quantity > 0) is the real guard: if a concurrent checkout takes
// the last copy between the read and the write, the decrement affects zero
// rows and the insert is rolled back.
func (s *borrowingService) CheckOut(borrowerID, bookID uint) (*models.BorrowingProcess, error) {
	if _, err := s.borrowerRepo.GetByID(nil, borrowerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("borrower not found")
		}
		s.log.WithError(err).WithField("borrower_id", borrowerID).Error("CheckOut: borrower lookup failed")
		return nil, infraErr("error checking out book", err)
	}

	book, err := s.bookRepo.GetByID(nil, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("book not found")
		}
		s.log.WithError(err).WithField("book_id", bookID).Error("CheckOut: book lookup failed")
		return nil, infraErr("error checking out book", err)
	}
	if book.AvailableQuantity <= 0 {
		return nil, businessErr("book is not available")
	}

	today := models.Today()
	process := &models.BorrowingProcess{
		BorrowerID:   borrowerID,
		BookID:       bookID,
		CheckOutDate: today,
		DueDate:      today.AddDays(LoanPeriodDays),
		Status:       models.StatusOutstanding,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.borrowingRepo.Create(tx, process); err != nil {
			s.log.WithError(err).Error("CheckOut: failed to create borrowing process")
			return infraErr("error checking out book", err)
		}
		affected, err := s.bookRepo.DecrementAvailable(tx, bookID)
		if err != nil {
			s.log.WithError(err).WithField("book_id", bookID).Error("CheckOut: quantity decrement failed")
			return infraErr("error checking out book", err)
		}
		if affected != 1 {
			// Lost the race for the last copy; roll back the insert.
			return businessErr("book is not available")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"process_id":  process.ProcessID,
		"borrower_id": borrowerID,
		"book_id":     bookID,
		"due_date":    process.DueDate.String(),
	}).Info("CheckOut: checkout created")
	return process, nil
}

// Return flips an outstanding process to returned and restores the book's
// available quantity, atomically. The conditional update on status is the
// guard: zero affected rows means the process is unknown or already returned,
// and nothing is mutated.
func (s *borrowingService) Return(processID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		affected, err := s.borrowingRepo.MarkReturned(tx, processID, models.Today())
		if err != nil {
			s.log.WithError(err).WithField("process_id", processID).Error("Return: status update failed")
			return infraErr("error returning book", err)
		}
		if affected == 0 {
			if _, err := s.borrowingRepo.GetByID(tx, processID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFoundErr("borrowing process not found")
				}
				s.log.WithError(err).WithField("process_id", processID).Error("Return: lookup failed")
				return infraErr("error returning book", err)
			}
			return businessErr("book is not currently borrowed")
		}

		process, err := s.borrowingRepo.GetByID(tx, processID)
		if err != nil {
			s.log.WithError(err).WithField("process_id", processID).Error("Return: reload failed")
			return infraErr("error returning book", err)
		}
		if err := s.bookRepo.IncrementAvailable(tx, process.BookID); err != nil {
			s.log.WithError(err).WithField("book_id", process.BookID).Error("Return: quantity increment failed")
			return infraErr("error returning book", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithField("process_id", processID).Info("Return: book returned")
	return nil
}

func (s *borrowingService) ListBorrowedByBorrower(borrowerID uint) ([]models.BorrowedBook, error) {
	rows, err := s.borrowingRepo.ListOutstandingByBorrower(nil, borrowerID)
	if err != nil {
		s.log.WithError(err).WithField("borrower_id", borrowerID).Error("ListBorrowedByBorrower: query failed")
		return nil, infraErr("error fetching borrowed books", err)
	}
	return rows, nil
}

// ListOverdue returns outstanding loans whose due date has passed; a loan due
// today is not yet overdue.
func (s *borrowingService) ListOverdue() ([]models.OverdueLoan, error) {
	rows, err := s.borrowingRepo.ListOverdue(nil, models.Today())
	if err != nil {
		s.log.WithError(err).Error("ListOverdue: query failed")
		return nil, infraErr("error fetching overdue books", err)
	}
	return rows, nil
}
