package models

// LoanStatus is the lifecycle state of a borrowing process.
type LoanStatus string

const (
	StatusOutstanding LoanStatus = "outstanding"
	StatusReturned    LoanStatus = "returned"
)

// Book is a catalogue entry. AvailableQuantity counts copies currently on the
// shelf; it is decremented only by a successful checkout and incremented only
// by a successful return, and must never go negative.
type Book struct {
	BookID            uint   `gorm:"column:book_id;primaryKey;autoIncrement" json:"book_id"`
	Title             string `gorm:"size:255;not null" json:"title"`
	Author            string `gorm:"size:255;not null" json:"author"`
	ISBN              string `gorm:"column:isbn;size:20;uniqueIndex;not null" json:"ISBN"`
	AvailableQuantity int    `gorm:"not null" json:"available_quantity"`
	ShelfLocation     string `gorm:"size:100" json:"shelf_location"`
}

func (Book) TableName() string { return "book" }

// Borrower is a registered library member. RegisteredDate is set at creation
// and never updated.
type Borrower struct {
	BorrowerID     uint   `gorm:"column:borrower_id;primaryKey;autoIncrement" json:"borrower_id"`
	Name           string `gorm:"size:255;not null" json:"name"`
	Email          string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	RegisteredDate Date   `gorm:"not null" json:"registered_date"`
}

func (Borrower) TableName() string { return "borrower" }

// BorrowingProcess records one loan of one book copy to one borrower. Created
// only by checkout, flipped outstanding → returned exactly once by the return
// workflow, never deleted.
type BorrowingProcess struct {
	ProcessID    uint       `gorm:"column:process_id;primaryKey;autoIncrement" json:"process_id"`
	BorrowerID   uint       `gorm:"column:borrower_id;not null;index" json:"borrower_id"`
	Borrower     Borrower   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	BookID       uint       `gorm:"column:book_id;not null;index" json:"book_id"`
	Book         Book       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	CheckOutDate Date       `gorm:"not null" json:"check_out_date"`
	DueDate      Date       `gorm:"not null;index" json:"due_date"`
	Status       LoanStatus `gorm:"size:20;not null;index" json:"status"`
	ReturnDate   *Date      `json:"return_date"`
}

func (BorrowingProcess) TableName() string { return "borrowingprocess" }

// ─── Query Projections ────────────────────────────────────────────────────────

// BorrowedBook is one outstanding loan as shown on a borrower's list.
type BorrowedBook struct {
	BookID        uint   `gorm:"column:book_id" json:"book_id"`
	Title         string `gorm:"column:title" json:"title"`
	BorrowedSince Date   `gorm:"column:check_out_date" json:"borrowed_since"`
	DueDate       Date   `gorm:"column:due_date" json:"due_date"`
}

// OverdueLoan is an outstanding loan past its due date, joined with book and
// borrower display fields.
type OverdueLoan struct {
	BorrowerID   uint   `gorm:"column:borrower_id" json:"borrower_id"`
	Name         string `gorm:"column:name" json:"name"`
	BookID       uint   `gorm:"column:book_id" json:"book_id"`
	Title        string `gorm:"column:title" json:"title"`
	CheckOutDate Date   `gorm:"column:check_out_date" json:"check_out_date"`
	DueDate      Date   `gorm:"column:due_date" json:"due_date"`
}

// LoanRecord is one row of the full borrowing-history report.
type LoanRecord struct {
	ProcessID    uint       `gorm:"column:process_id" json:"process_id"`
	BorrowerID   uint       `gorm:"column:borrower_id" json:"borrower_id"`
	BorrowerName string     `gorm:"column:borrower_name" json:"borrower_name"`
	BookID       uint       `gorm:"column:book_id" json:"book_id"`
	Title        string     `gorm:"column:title" json:"title"`
	CheckOutDate Date       `gorm:"column:check_out_date" json:"check_out_date"`
	DueDate      Date       `gorm:"column:due_date" json:"due_date"`
	Status       LoanStatus `gorm:"column:status" json:"status"`
	ReturnDate   *Date      `gorm:"column:return_date" json:"return_date"`
}

// BorrowingStats aggregates borrowing activity over a check-out-date window.
type BorrowingStats struct {
	TotalBorrowed     int64 `gorm:"column:total_borrowed" json:"total_borrowed"`
	CurrentlyBorrowed int64 `gorm:"column:currently_borrowed" json:"currently_borrowed"`
	Returned          int64 `gorm:"column:returned" json:"returned"`
}
