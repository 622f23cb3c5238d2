package repositories

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"libraryapi/internal/models"
)

// Every method takes an optional *gorm.DB so callers can pass a transaction
// handle; nil falls back to the repository's own connection.

type BookRepository interface {
	List(db *gorm.DB) ([]models.Book, error)
	GetByID(db *gorm.DB, id uint) (*models.Book, error)
	Search(db *gorm.DB, title, author, isbn string) ([]models.Book, error)
	Create(db *gorm.DB, book *models.Book) error
	Update(db *gorm.DB, book *models.Book) (int64, error)
	Delete(db *gorm.DB, id uint) error
	// DecrementAvailable is the authoritative checkout guard: it decrements
	// available_quantity only while it is still positive and reports the
	// affected row count, so a lost race shows up as zero rows.
	DecrementAvailable(db *gorm.DB, id uint) (int64, error)
	IncrementAvailable(db *gorm.DB, id uint) error
}

type BorrowerRepository interface {
	List(db *gorm.DB) ([]models.Borrower, error)
	GetByID(db *gorm.DB, id uint) (*models.Borrower, error)
	Create(db *gorm.DB, borrower *models.Borrower) error
	Update(db *gorm.DB, id uint, name, email string) error
	Delete(db *gorm.DB, id uint) error
}

type BorrowingRepository interface {
	Create(db *gorm.DB, process *models.BorrowingProcess) error
	GetByID(db *gorm.DB, id uint) (*models.BorrowingProcess, error)
	// MarkReturned flips outstanding → returned conditionally and reports the
	// affected row count; zero means unknown id or already returned.
	MarkReturned(db *gorm.DB, id uint, returned models.Date) (int64, error)
	ListOutstandingByBorrower(db *gorm.DB, borrowerID uint) ([]models.BorrowedBook, error)
	ListOverdue(db *gorm.DB, today models.Date) ([]models.OverdueLoan, error)
	ListOverdueDueBetween(db *gorm.DB, today, start, end models.Date) ([]models.OverdueLoan, error)
	ListHistory(db *gorm.DB) ([]models.LoanRecord, error)
	Aggregate(db *gorm.DB, start, end models.Date) (*models.BorrowingStats, error)
}

// ─── Books ────────────────────────────────────────────────────────────────────

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) List(db *gorm.DB) ([]models.Book, error) {
	if db == nil {
		db = r.db
	}
	var books []models.Book
	if err := db.Order("book_id").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) GetByID(db *gorm.DB, id uint) (*models.Book, error) {
	if db == nil {
		db = r.db
	}
	var book models.Book
	if err := db.First(&book, "book_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// Search OR-combines whichever filters are present: title and author match as
// case-insensitive substrings, ISBN matches exactly. With no filters the whole
// catalogue is returned.
func (r *bookRepository) Search(db *gorm.DB, title, author, isbn string) ([]models.Book, error) {
	if db == nil {
		db = r.db
	}

	var preds []clause.Expression
	if title != "" {
		preds = append(preds, clause.Expr{SQL: "LOWER(title) LIKE ?", Vars: []interface{}{contains(title)}})
	}
	if author != "" {
		preds = append(preds, clause.Expr{SQL: "LOWER(author) LIKE ?", Vars: []interface{}{contains(author)}})
	}
	if isbn != "" {
		preds = append(preds, clause.Eq{Column: clause.Column{Name: "isbn"}, Value: isbn})
	}

	q := db.Model(&models.Book{})
	if len(preds) > 0 {
		q = q.Clauses(clause.Where{Exprs: []clause.Expression{clause.Or(preds...)}})
	}

	var books []models.Book
	if err := q.Order("book_id").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func contains(term string) string {
	return "%" + strings.ToLower(term) + "%"
}

func (r *bookRepository) Create(db *gorm.DB, book *models.Book) error {
	if db == nil {
		db = r.db
	}
	return db.Create(book).Error
}

func (r *bookRepository) Update(db *gorm.DB, book *models.Book) (int64, error) {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.Book{}).
		Where("book_id = ?", book.BookID).
		Updates(map[string]interface{}{
			"title":              book.Title,
			"author":             book.Author,
			"isbn":               book.ISBN,
			"available_quantity": book.AvailableQuantity,
			"shelf_location":     book.ShelfLocation,
		})
	return res.RowsAffected, res.Error
}

func (r *bookRepository) Delete(db *gorm.DB, id uint) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Book{}, "book_id = ?", id).Error
}

func (r *bookRepository) DecrementAvailable(db *gorm.DB, id uint) (int64, error) {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.Book{}).
		Where("book_id = ? AND available_quantity > 0", id).
		UpdateColumn("available_quantity", gorm.Expr("available_quantity - 1"))
	return res.RowsAffected, res.Error
}

func (r *bookRepository) IncrementAvailable(db *gorm.DB, id uint) error {
	if db == nil {
		db = r.db
	}
	return db.Model(&models.Book{}).
		Where("book_id = ?", id).
		UpdateColumn("available_quantity", gorm.Expr("available_quantity + 1")).
		Error
}

// ─── Borrowers ────────────────────────────────────────────────────────────────

type borrowerRepository struct {
	db *gorm.DB
}

func NewBorrowerRepository(db *gorm.DB) BorrowerRepository {
	return &borrowerRepository{db: db}
}

func (r *borrowerRepository) List(db *gorm.DB) ([]models.Borrower, error) {
	if db == nil {
		db = r.db
	}
	var borrowers []models.Borrower
	if err := db.Order("borrower_id").Find(&borrowers).Error; err != nil {
		return nil, err
	}
	return borrowers, nil
}

func (r *borrowerRepository) GetByID(db *gorm.DB, id uint) (*models.Borrower, error) {
	if db == nil {
		db = r.db
	}
	var borrower models.Borrower
	if err := db.First(&borrower, "borrower_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &borrower, nil
}

func (r *borrowerRepository) Create(db *gorm.DB, borrower *models.Borrower) error {
	if db == nil {
		db = r.db
	}
	return db.Create(borrower).Error
}

// Update never touches registered_date.
func (r *borrowerRepository) Update(db *gorm.DB, id uint, name, email string) error {
	if db == nil {
		db = r.db
	}
	return db.Model(&models.Borrower{}).
		Where("borrower_id = ?", id).
		Updates(map[string]interface{}{"name": name, "email": email}).
		Error
}

func (r *borrowerRepository) Delete(db *gorm.DB, id uint) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Borrower{}, "borrower_id = ?", id).Error
}

// ─── Borrowing Processes ──────────────────────────────────────────────────────

type borrowingRepository struct {
	db *gorm.DB
}

func NewBorrowingRepository(db *gorm.DB) BorrowingRepository {
	return &borrowingRepository{db: db}
}

func (r *borrowingRepository) Create(db *gorm.DB, process *models.BorrowingProcess) error {
	if db == nil {
		db = r.db
	}
	return db.Create(process).Error
}

func (r *borrowingRepository) GetByID(db *gorm.DB, id uint) (*models.BorrowingProcess, error) {
	if db == nil {
		db = r.db
	}
	var process models.BorrowingProcess
	if err := db.First(&process, "process_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &process, nil
}

func (r *borrowingRepository) MarkReturned(db *gorm.DB, id uint, returned models.Date) (int64, error) {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.BorrowingProcess{}).
		Where("process_id = ? AND status = ?", id, models.StatusOutstanding).
		Updates(map[string]interface{}{
			"status":      models.StatusReturned,
			"return_date": returned,
		})
	return res.RowsAffected, res.Error
}

func (r *borrowingRepository) ListOutstandingByBorrower(db *gorm.DB, borrowerID uint) ([]models.BorrowedBook, error) {
	if db == nil {
		db = r.db
	}
	var rows []models.BorrowedBook
	err := db.Table("borrowingprocess").
		Select("book.book_id, book.title, borrowingprocess.check_out_date, borrowingprocess.due_date").
		Joins("INNER JOIN book ON borrowingprocess.book_id = book.book_id").
		Where("borrowingprocess.borrower_id = ? AND borrowingprocess.status = ?", borrowerID, models.StatusOutstanding).
		Order("borrowingprocess.check_out_date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *borrowingRepository) ListOverdue(db *gorm.DB, today models.Date) ([]models.OverdueLoan, error) {
	if db == nil {
		db = r.db
	}
	var rows []models.OverdueLoan
	err := db.Table("borrowingprocess").
		Select("borrower.borrower_id, borrower.name, book.book_id, book.title, borrowingprocess.check_out_date, borrowingprocess.due_date").
		Joins("INNER JOIN book ON borrowingprocess.book_id = book.book_id").
		Joins("INNER JOIN borrower ON borrowingprocess.borrower_id = borrower.borrower_id").
		Where("borrowingprocess.status = ? AND borrowingprocess.due_date < ?", models.StatusOutstanding, today).
		Order("borrowingprocess.due_date, borrowingprocess.process_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *borrowingRepository) ListOverdueDueBetween(db *gorm.DB, today, start, end models.Date) ([]models.OverdueLoan, error) {
	if db == nil {
		db = r.db
	}
	var rows []models.OverdueLoan
	err := db.Table("borrowingprocess").
		Select("borrower.borrower_id, borrower.name, book.book_id, book.title, borrowingprocess.check_out_date, borrowingprocess.due_date").
		Joins("INNER JOIN book ON borrowingprocess.book_id = book.book_id").
		Joins("INNER JOIN borrower ON borrowingprocess.borrower_id = borrower.borrower_id").
		Where("borrowingprocess.status = ? AND borrowingprocess.due_date < ?", models.StatusOutstanding, today).
		Where("borrowingprocess.due_date BETWEEN ? AND ?", start, end).
		Order("borrowingprocess.due_date, borrowingprocess.process_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *borrowingRepository) ListHistory(db *gorm.DB) ([]models.LoanRecord, error) {
	if db == nil {
		db = r.db
	}
	var rows []models.LoanRecord
	err := db.Table("borrowingprocess").
		Select("borrowingprocess.process_id, borrower.borrower_id, borrower.name AS borrower_name, book.book_id, book.title, borrowingprocess.check_out_date, borrowingprocess.due_date, borrowingprocess.status, borrowingprocess.return_date").
		Joins("INNER JOIN book ON borrowingprocess.book_id = book.book_id").
		Joins("INNER JOIN borrower ON borrowingprocess.borrower_id = borrower.borrower_id").
		Order("borrowingprocess.process_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Aggregate counts processes checked out inside the inclusive window.
// SUM(CASE …) instead of postgres' COUNT(*) FILTER so the same statement runs
// against the sqlite test database.
func (r *borrowingRepository) Aggregate(db *gorm.DB, start, end models.Date) (*models.BorrowingStats, error) {
	if db == nil {
		db = r.db
	}
	var stats models.BorrowingStats
	err := db.Table("borrowingprocess").
		Select("COUNT(*) AS total_borrowed, "+
			"COALESCE(SUM(CASE WHEN status = 'outstanding' THEN 1 ELSE 0 END), 0) AS currently_borrowed, "+
			"COALESCE(SUM(CASE WHEN status = 'returned' THEN 1 ELSE 0 END), 0) AS returned").
		Where("check_out_date BETWEEN ? AND ?", start, end).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
