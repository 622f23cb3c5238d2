package services

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"libraryapi/internal/models"
	"libraryapi/internal/repositories"
)

// BookInput carries the writable fields of a book.
type BookInput struct {
	Title             string
	Author            string
	ISBN              string
	AvailableQuantity int
	ShelfLocation     string
}

// CatalogService owns the book inventory: plain CRUD plus the OR-combined
// search. Quantity mutations during checkout/return belong to BorrowingService.
type CatalogService interface {
	ListBooks() ([]models.Book, error)
	GetBook(id uint) (*models.Book, error)
	SearchBooks(title, author, isbn string) ([]models.Book, error)
	AddBook(in BookInput) (*models.Book, error)
	UpdateBook(id uint, in BookInput) error
	DeleteBook(id uint) error
}

type catalogService struct {
	bookRepo repositories.BookRepository
	log      *logrus.Logger
}

func NewCatalogService(bookRepo repositories.BookRepository, log *logrus.Logger) CatalogService {
	return &catalogService{bookRepo: bookRepo, log: log}
}

func (s *catalogService) ListBooks() ([]models.Book, error) {
	books, err := s.bookRepo.List(nil)
	if err != nil {
		s.log.WithError(err).Error("ListBooks: query failed")
		return nil, infraErr("error fetching books", err)
	}
	return books, nil
}

func (s *catalogService) GetBook(id uint) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("book not found")
		}
		s.log.WithError(err).WithField("book_id", id).Error("GetBook: query failed")
		return nil, infraErr("error fetching book", err)
	}
	return book, nil
}

func (s *catalogService) SearchBooks(title, author, isbn string) ([]models.Book, error) {
	books, err := s.bookRepo.Search(nil, title, author, isbn)
	if err != nil {
		s.log.WithError(err).Error("SearchBooks: query failed")
		return nil, infraErr("error searching books", err)
	}
	return books, nil
}

func (s *catalogService) AddBook(in BookInput) (*models.Book, error) {
	if in.Title == "" || in.Author == "" || in.ISBN == "" {
		return nil, validationErr("title, author and ISBN are required")
	}
	if in.AvailableQuantity < 0 {
		return nil, validationErr("available_quantity must not be negative")
	}

	book := &models.Book{
		Title:             in.Title,
		Author:            in.Author,
		ISBN:              in.ISBN,
		AvailableQuantity: in.AvailableQuantity,
		ShelfLocation:     in.ShelfLocation,
	}
	if err := s.bookRepo.Create(nil, book); err != nil {
		if isUniqueViolation(err) {
			return nil, conflictErr("a book with the same ISBN already exists")
		}
		s.log.WithError(err).Error("AddBook: insert failed")
		return nil, infraErr("error adding book", err)
	}
	s.log.WithFields(logrus.Fields{"book_id": book.BookID, "isbn": book.ISBN}).Info("AddBook: book added")
	return book, nil
}

func (s *catalogService) UpdateBook(id uint, in BookInput) error {
	if in.Title == "" || in.Author == "" || in.ISBN == "" || in.AvailableQuantity <= 0 {
		return validationErr("invalid book data")
	}

	book := &models.Book{
		BookID:            id,
		Title:             in.Title,
		Author:            in.Author,
		ISBN:              in.ISBN,
		AvailableQuantity: in.AvailableQuantity,
		ShelfLocation:     in.ShelfLocation,
	}
	affected, err := s.bookRepo.Update(nil, book)
	if err != nil {
		if isUniqueViolation(err) {
			return conflictErr("a book with the same ISBN already exists")
		}
		s.log.WithError(err).WithField("book_id", id).Error("UpdateBook: update failed")
		return infraErr("error updating book", err)
	}
	if affected == 0 {
		return notFoundErr("book not found")
	}
	return nil
}

// DeleteBook is unconditional once the book is known to exist: no check
// against outstanding loans is performed.
func (s *catalogService) DeleteBook(id uint) error {
	if _, err := s.bookRepo.GetByID(nil, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundErr("book not found")
		}
		s.log.WithError(err).WithField("book_id", id).Error("DeleteBook: lookup failed")
		return infraErr("error deleting book", err)
	}
	if err := s.bookRepo.Delete(nil, id); err != nil {
		s.log.WithError(err).WithField("book_id", id).Error("DeleteBook: delete failed")
		return infraErr("error deleting book", err)
	}
	s.log.WithField("book_id", id).Info("DeleteBook: book deleted")
	return nil
}
