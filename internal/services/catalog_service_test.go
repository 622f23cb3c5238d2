package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/models"
	"libraryapi/internal/repositories"
)

func newCatalog(t *testing.T) (CatalogService, *fixtureCatalog) {
	db := newTestDB(t)
	repo := repositories.NewBookRepository(db)
	return NewCatalogService(repo, testLogger()), &fixtureCatalog{repo: repo}
}

type fixtureCatalog struct {
	repo repositories.BookRepository
}

func validBook(isbn string) BookInput {
	return BookInput{
		Title:             "The Go Programming Language",
		Author:            "Donovan",
		ISBN:              isbn,
		AvailableQuantity: 3,
		ShelfLocation:     "A1",
	}
}

func TestAddBook(t *testing.T) {
	catalog, f := newCatalog(t)

	book, err := catalog.AddBook(validBook("isbn-1"))
	require.NoError(t, err)
	assert.NotZero(t, book.BookID)

	stored, err := f.repo.GetByID(nil, book.BookID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.AvailableQuantity)
}

func TestAddBookValidation(t *testing.T) {
	catalog, _ := newCatalog(t)

	in := validBook("isbn-1")
	in.Title = ""
	_, err := catalog.AddBook(in)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	in = validBook("isbn-1")
	in.AvailableQuantity = -1
	_, err = catalog.AddBook(in)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestAddBookDuplicateISBN(t *testing.T) {
	catalog, _ := newCatalog(t)

	_, err := catalog.AddBook(validBook("isbn-dup"))
	require.NoError(t, err)

	_, err = catalog.AddBook(validBook("isbn-dup"))
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestUpdateBook(t *testing.T) {
	catalog, f := newCatalog(t)

	book, err := catalog.AddBook(validBook("isbn-1"))
	require.NoError(t, err)

	in := validBook("isbn-1")
	in.ShelfLocation = "B7"
	in.AvailableQuantity = 9
	require.NoError(t, catalog.UpdateBook(book.BookID, in))

	stored, err := f.repo.GetByID(nil, book.BookID)
	require.NoError(t, err)
	assert.Equal(t, "B7", stored.ShelfLocation)
	assert.Equal(t, 9, stored.AvailableQuantity)
}

func TestUpdateBookValidation(t *testing.T) {
	catalog, _ := newCatalog(t)
	book, err := catalog.AddBook(validBook("isbn-1"))
	require.NoError(t, err)

	in := validBook("isbn-1")
	in.AvailableQuantity = 0 // updates require a positive quantity
	err = catalog.UpdateBook(book.BookID, in)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestUpdateBookNotFound(t *testing.T) {
	catalog, _ := newCatalog(t)
	err := catalog.UpdateBook(404, validBook("isbn-x"))
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestDeleteBook(t *testing.T) {
	catalog, _ := newCatalog(t)
	book, err := catalog.AddBook(validBook("isbn-1"))
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteBook(book.BookID))

	_, err = catalog.GetBook(book.BookID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	// Deleting again reports not found, not success.
	err = catalog.DeleteBook(book.BookID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestGetBookNotFound(t *testing.T) {
	catalog, _ := newCatalog(t)
	_, err := catalog.GetBook(404)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSearchBooksService(t *testing.T) {
	catalog, _ := newCatalog(t)
	_, err := catalog.AddBook(validBook("isbn-1"))
	require.NoError(t, err)
	other := validBook("isbn-2")
	other.Title = "Clean Architecture"
	other.Author = "Martin"
	_, err = catalog.AddBook(other)
	require.NoError(t, err)

	books, err := catalog.SearchBooks("clean", "", "")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Martin", books[0].Author)

	books, err = catalog.SearchBooks("", "", "")
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestBorrowerRegistry(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewBorrowerRepository(db)
	registry := NewBorrowerService(repo, testLogger())

	borrower, err := registry.RegisterBorrower("Sam", "sam@example.com")
	require.NoError(t, err)
	assert.NotZero(t, borrower.BorrowerID)
	assert.Equal(t, models.Today().String(), borrower.RegisteredDate.String())

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := registry.RegisterBorrower("Other", "sam@example.com")
		require.Error(t, err)
		assert.Equal(t, KindConflict, KindOf(err))
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		_, err := registry.RegisterBorrower("", "x@example.com")
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("no-op update rejected", func(t *testing.T) {
		err := registry.UpdateBorrower(borrower.BorrowerID, "Sam", "sam@example.com")
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("update keeps registered_date", func(t *testing.T) {
		require.NoError(t, registry.UpdateBorrower(borrower.BorrowerID, "Samuel", "sam@example.com"))
		stored, err := repo.GetByID(nil, borrower.BorrowerID)
		require.NoError(t, err)
		assert.Equal(t, "Samuel", stored.Name)
		assert.Equal(t, borrower.RegisteredDate.String(), stored.RegisteredDate.String())
	})

	t.Run("update unknown borrower", func(t *testing.T) {
		err := registry.UpdateBorrower(404, "X", "x@example.com")
		require.Error(t, err)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("delete unknown borrower", func(t *testing.T) {
		err := registry.DeleteBorrower(404)
		require.Error(t, err)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("delete removes the borrower", func(t *testing.T) {
		require.NoError(t, registry.DeleteBorrower(borrower.BorrowerID))
		borrowers, err := registry.ListBorrowers()
		require.NoError(t, err)
		assert.Empty(t, borrowers)
	})
}
