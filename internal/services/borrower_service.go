package services

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"libraryapi/internal/models"
	"libraryapi/internal/repositories"
)

// BorrowerService is the registry of library members. RegisteredDate is fixed
// at creation time and excluded from updates.
type BorrowerService interface {
	ListBorrowers() ([]models.Borrower, error)
	RegisterBorrower(name, email string) (*models.Borrower, error)
	UpdateBorrower(id uint, name, email string) error
	DeleteBorrower(id uint) error
}

type borrowerService struct {
	borrowerRepo repositories.BorrowerRepository
	log          *logrus.Logger
}

func NewBorrowerService(borrowerRepo repositories.BorrowerRepository, log *logrus.Logger) BorrowerService {
	return &borrowerService{borrowerRepo: borrowerRepo, log: log}
}

func (s *borrowerService) ListBorrowers() ([]models.Borrower, error) {
	borrowers, err := s.borrowerRepo.List(nil)
	if err != nil {
		s.log.WithError(err).Error("ListBorrowers: query failed")
		return nil, infraErr("error fetching borrowers", err)
	}
	return borrowers, nil
}

func (s *borrowerService) RegisterBorrower(name, email string) (*models.Borrower, error) {
	if name == "" || email == "" {
		return nil, validationErr("name and email are required")
	}

	borrower := &models.Borrower{
		Name:           name,
		Email:          email,
		RegisteredDate: models.Today(),
	}
	if err := s.borrowerRepo.Create(nil, borrower); err != nil {
		if isUniqueViolation(err) {
			return nil, conflictErr("a borrower with the same email already exists")
		}
		s.log.WithError(err).Error("RegisterBorrower: insert failed")
		return nil, infraErr("error adding borrower", err)
	}
	s.log.WithFields(logrus.Fields{"borrower_id": borrower.BorrowerID, "email": email}).Info("RegisterBorrower: borrower added")
	return borrower, nil
}

func (s *borrowerService) UpdateBorrower(id uint, name, email string) error {
	if name == "" || email == "" {
		return validationErr("invalid borrower data")
	}

	existing, err := s.borrowerRepo.GetByID(nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundErr("borrower not found")
		}
		s.log.WithError(err).WithField("borrower_id", id).Error("UpdateBorrower: lookup failed")
		return infraErr("error updating borrower", err)
	}

	// No-op updates are rejected rather than silently rewritten.
	if existing.Name == name && existing.Email == email {
		return validationErr("borrower already has the same values")
	}

	if err := s.borrowerRepo.Update(nil, id, name, email); err != nil {
		if isUniqueViolation(err) {
			return conflictErr("a borrower with the same email already exists")
		}
		s.log.WithError(err).WithField("borrower_id", id).Error("UpdateBorrower: update failed")
		return infraErr("error updating borrower", err)
	}
	return nil
}

func (s *borrowerService) DeleteBorrower(id uint) error {
	if _, err := s.borrowerRepo.GetByID(nil, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundErr("borrower not found")
		}
		s.log.WithError(err).WithField("borrower_id", id).Error("DeleteBorrower: lookup failed")
		return infraErr("error deleting borrower", err)
	}
	if err := s.borrowerRepo.Delete(nil, id); err != nil {
		s.log.WithError(err).WithField("borrower_id", id).Error("DeleteBorrower: delete failed")
		return infraErr("error deleting borrower", err)
	}
	s.log.WithField("borrower_id", id).Info("DeleteBorrower: borrower deleted")
	return nil
}
