package services

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"libraryapi/internal/models"
	"libraryapi/internal/repositories"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Book{}, &models.Borrower{}, &models.BorrowingProcess{}))
	return db
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fixture struct {
	db        *gorm.DB
	books     repositories.BookRepository
	borrowers repositories.BorrowerRepository
	loans     repositories.BorrowingRepository
	borrowing BorrowingService
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	books := repositories.NewBookRepository(db)
	borrowers := repositories.NewBorrowerRepository(db)
	loans := repositories.NewBorrowingRepository(db)
	return &fixture{
		db:        db,
		books:     books,
		borrowers: borrowers,
		loans:     loans,
		borrowing: NewBorrowingService(db, books, borrowers, loans, testLogger()),
	}
}

func (f *fixture) addBook(t *testing.T, isbn string, qty int) *models.Book {
	t.Helper()
	book := &models.Book{Title: "T-" + isbn, Author: "A", ISBN: isbn, AvailableQuantity: qty}
	require.NoError(t, f.db.Create(book).Error)
	return book
}

func (f *fixture) addBorrower(t *testing.T, email string) *models.Borrower {
	t.Helper()
	borrower := &models.Borrower{Name: "N-" + email, Email: email, RegisteredDate: models.Today()}
	require.NoError(t, f.db.Create(borrower).Error)
	return borrower
}

func (f *fixture) bookQuantity(t *testing.T, id uint) int {
	t.Helper()
	book, err := f.books.GetByID(nil, id)
	require.NoError(t, err)
	return book.AvailableQuantity
}

func (f *fixture) processCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.BorrowingProcess{}).Count(&n).Error)
	return n
}

func TestCheckOutHappyPath(t *testing.T) {
	f := newFixture(t)
	book := f.addBook(t, "isbn-1", 3)
	borrower := f.addBorrower(t, "sam@example.com")

	process, err := f.borrowing.CheckOut(borrower.BorrowerID, book.BookID)
	require.NoError(t, err)
	require.NotZero(t, process.ProcessID)

	today := models.Today()
	assert.Equal(t, models.StatusOutstanding, process.Status)
	assert.Equal(t, today.String(), process.CheckOutDate.String())
	assert.Equal(t, today.AddDays(LoanPeriodDays).String(), process.DueDate.String())
	assert.Nil(t, process.ReturnDate)
	assert.Equal(t, 2, f.bookQuantity(t, book.BookID))
}

// The spec's end-to-end last-copy scenario: one copy, two borrowers, then a
// return frees it again.
func TestCheckOutReturnLastCopyScenario(t *testing.T) {
	f := newFixture(t)
	book := f.addBook(t, "isbn-last", 1)
	first := f.addBorrower(t, "first@example.com")
	second := f.addBorrower(t, "second@example.com")

	process, err := f.borrowing.CheckOut(first.BorrowerID, book.BookID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.bookQuantity(t, book.BookID))
	assert.Equal(t, models.Today().AddDays(15).String(), process.DueDate.String())

	_, err = f.borrowing.CheckOut(second.BorrowerID, book.BookID)
	require.Error(t, err)
	assert.Equal(t, KindBusinessRule, KindOf(err))
	assert.Equal(t, 0, f.bookQuantity(t, book.BookID))
	assert.EqualValues(t, 1, f.processCount(t))

	require.NoError(t, f.borrowing.Return(process.ProcessID))
	assert.Equal(t, 1, f.bookQuantity(t, book.BookID))

	reloaded, err := f.loans.GetByID(nil, process.ProcessID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, reloaded.Status)
	require.NotNil(t, reloaded.ReturnDate)
	assert.Equal(t, models.Today().String(), reloaded.ReturnDate.String())
}

func TestCheckOutUnavailableBookCreatesNothing(t *testing.T) {
	f := newFixture(t)
	book := f.addBook(t, "isbn-0", 0)
	borrower := f.addBorrower(t, "sam@example.com")

	_, err := f.borrowing.CheckOut(borrower.BorrowerID, book.BookID)
	require.Error(t, err)
	assert.Equal(t, KindBusinessRule, KindOf(err))
	assert.EqualValues(t, 0, f.processCount(t))
	assert.Equal(t, 0, f.bookQuantity(t, book.BookID))
}

func TestCheckOutRolledBackWhenDecrementMisses(t *testing.T) {
	f := newFixture(t)
	book := f.addBook(t, "isbn-race", 1)
	borrower := f.addBorrower(t, "sam@example.com")

	// Simulate losing the race after the pre-read: the last copy disappears
	// before the transaction's conditional decrement runs.
	raced := NewBorrowingService(f.db, racingBookRepo{BookRepository: f.books, db: f.db, bookID: book.BookID}, f.borrowers, f.loans, testLogger())

	_, err := raced.CheckOut(borrower.BorrowerID, book.BookID)
	require.Error(t, err)
	assert.Equal(t, KindBusinessRule, KindOf(err))

	// The insert must have been rolled back and quantity never went negative.
	assert.EqualValues(t, 0, f.processCount(t))
	assert.Equal(t, 0, f.bookQuantity(t, book.BookID))
}

// racingBookRepo steals the last copy between the service's pre-read and its
// transaction, by draining the quantity on first GetByID.
type racingBookRepo struct {
	repositories.BookRepository
	db     *gorm.DB
	bookID uint
}

func (r racingBookRepo) GetByID(db *gorm.DB, id uint) (*models.Book, error) {
	book, err := r.BookRepository.GetByID(db, id)
	if err != nil {
		return nil, err
	}
	if id == r.bookID {
		if err := r.db.Model(&models.Book{}).
			Where("book_id = ?", id).
			UpdateColumn("available_quantity", 0).Error; err != nil {
			return nil, err
		}
	}
	return book, nil
}

func TestCheckOutUnknownBook(t *testing.T) {
	f := newFixture(t)
	borrower := f.addBorrower(t, "sam@example.com")

	_, err := f.borrowing.CheckOut(borrower.BorrowerID, 999)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCheckOutUnknownBorrower(t *testing.T) {
	f := newFixture(t)
	book := f.addBook(t, "isbn-1", 1)

	_, err := f.borrowing.CheckOut(999, book.BookID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestReturnUnknownProcess(t *testing.T) {
	f := newFixture(t)

	err := f.borrowing.Return(12345)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestReturnTwiceFailsWithoutMutation(t *testing.T) {
	f := newFixture(t)
	book := f.addBook(t, "isbn-1", 1)
	borrower := f.addBorrower(t, "sam@example.com")

	process, err := f.borrowing.CheckOut(borrower.BorrowerID, book.BookID)
	require.NoError(t, err)
	require.NoError(t, f.borrowing.Return(process.ProcessID))
	assert.Equal(t, 1, f.bookQuantity(t, book.BookID))

	err = f.borrowing.Return(process.ProcessID)
	require.Error(t, err)
	assert.Equal(t, KindBusinessRule, KindOf(err))
	// Quantity untouched by the failed second return.
	assert.Equal(t, 1, f.bookQuantity(t, book.BookID))
}

func TestListOverdueExcludesDueToday(t *testing.T) {
	f := newFixture(t)
	book := f.addBook(t, "isbn-1", 5)
	borrower := f.addBorrower(t, "sam@example.com")
	today := models.Today()

	mk := func(due models.Date, status models.LoanStatus) {
		require.NoError(t, f.db.Create(&models.BorrowingProcess{
			BorrowerID:   borrower.BorrowerID,
			BookID:       book.BookID,
			CheckOutDate: due.AddDays(-15),
			DueDate:      due,
			Status:       status,
		}).Error)
	}
	mk(today.AddDays(-1), models.StatusOutstanding) // overdue
	mk(today, models.StatusOutstanding)             // due today, not overdue
	mk(today.AddDays(1), models.StatusOutstanding)  // not due yet
	mk(today.AddDays(-3), models.StatusReturned)    // past due but returned

	rows, err := f.borrowing.ListOverdue()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, today.AddDays(-1).String(), rows[0].DueDate.String())
}

func TestListBorrowedByBorrower(t *testing.T) {
	f := newFixture(t)
	book := f.addBook(t, "isbn-1", 5)
	borrower := f.addBorrower(t, "sam@example.com")

	_, err := f.borrowing.CheckOut(borrower.BorrowerID, book.BookID)
	require.NoError(t, err)

	rows, err := f.borrowing.ListBorrowedByBorrower(borrower.BorrowerID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, book.BookID, rows[0].BookID)
	assert.Equal(t, book.Title, rows[0].Title)

	// Unknown borrower simply has nothing outstanding.
	rows, err = f.borrowing.ListBorrowedByBorrower(999)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
