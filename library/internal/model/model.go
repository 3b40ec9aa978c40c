package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	LoanPeriod     = 14 * 24 * time.Hour
	BorrowingLimit = 5
)

type ListBooks struct {
	Paging `json:",inline"`
	Items  []Book `json:"items"`
}

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type Book struct {
	ID              int    `json:"id" db:"id"`
	Title           string `json:"title" db:"title"`
	Author          string `json:"author" db:"author"`
	ISBN            string `json:"isbn" db:"isbn"`
	TotalCopies     int    `json:"totalCopies" db:"total_copies"`
	AvailableCopies int    `json:"availableCopies" db:"available_copies"`
}

type AddBookRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Author      string `json:"author" validate:"required,max=100"`
	ISBN        string `json:"isbn" validate:"required,isbn13digits"`
	TotalCopies int    `json:"totalCopies" validate:"gt=0"`
}

type SearchType string

const (
	SearchTitle  SearchType = "title"
	SearchAuthor SearchType = "author"
	SearchISBN   SearchType = "isbn"
)

func (t SearchType) Valid() bool {
	switch t {
	case SearchTitle, SearchAuthor, SearchISBN:
		return true
	}
	return false
}

// BorrowRecord is open while ReturnedAt is nil.
type BorrowRecord struct {
	ID         int        `json:"id" db:"id"`
	PatronID   string     `json:"patronId" db:"patron_id"`
	BookID     int        `json:"bookId" db:"book_id"`
	BorrowedAt time.Time  `json:"borrowedAt" db:"borrow_date"`
	DueAt      time.Time  `json:"dueAt" db:"due_date"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty" db:"return_date"`
}

func (r BorrowRecord) Open() bool { return r.ReturnedAt == nil }

type CirculationRequest struct {
	PatronID string `json:"patronId"`
	BookID   int    `json:"bookId" validate:"gt=0"`
}

type Loan struct {
	PatronID   string    `json:"patronId"`
	BookID     int       `json:"bookId"`
	Title      string    `json:"title"`
	BorrowedAt time.Time `json:"borrowedAt"`
	DueAt      time.Time `json:"dueAt"`
	Message    string    `json:"message"`
}

type Return struct {
	PatronID    string          `json:"patronId"`
	BookID      int             `json:"bookId"`
	Title       string          `json:"title"`
	ReturnedAt  time.Time       `json:"returnedAt"`
	LateFee     decimal.Decimal `json:"lateFee"`
	DaysOverdue int             `json:"daysOverdue"`
	Message     string          `json:"message"`
}

type FeeStatus string

const (
	FeeNotOverdue      FeeStatus = "NOT_OVERDUE"
	FeeOverdue         FeeStatus = "OVERDUE"
	FeeNoRecord        FeeStatus = "NO_RECORD"
	FeeAlreadyReturned FeeStatus = "ALREADY_RETURNED"
)

var feeStatusText = map[FeeStatus]string{
	FeeNotOverdue:      "Not overdue",
	FeeOverdue:         "Overdue",
	FeeNoRecord:        "No active borrow record found",
	FeeAlreadyReturned: "Book already returned",
}

func (s FeeStatus) Text() string { return feeStatusText[s] }

type LateFee struct {
	PatronID    string          `json:"patronId"`
	BookID      int             `json:"bookId"`
	Title       string          `json:"title,omitempty"`
	FeeAmount   decimal.Decimal `json:"feeAmount"`
	DaysOverdue int             `json:"daysOverdue"`
	Status      FeeStatus       `json:"status"`
}

type BorrowedBook struct {
	BookID      int             `json:"bookId"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	BorrowedAt  time.Time       `json:"borrowedAt"`
	DueAt       time.Time       `json:"dueAt"`
	LateFee     decimal.Decimal `json:"lateFee"`
	DaysOverdue int             `json:"daysOverdue"`
}

type HistoryEntry struct {
	BookID     int        `json:"bookId"`
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	BorrowedAt time.Time  `json:"borrowedAt"`
	DueAt      time.Time  `json:"dueAt"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty"`
}

type PatronStatus struct {
	PatronID               string          `json:"patronId"`
	CurrentlyBorrowed      []BorrowedBook  `json:"currentlyBorrowed"`
	NumBooksBorrowed       int             `json:"numBooksBorrowed"`
	TotalLateFees          decimal.Decimal `json:"totalLateFees"`
	BorrowingHistory       []HistoryEntry  `json:"borrowingHistory"`
	BorrowingLimit         int             `json:"borrowingLimit"`
	BooksAvailableToBorrow int             `json:"booksAvailableToBorrow"`
}

// GatewayResponse is the outcome reported by the payment gateway.
type GatewayResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId,omitempty"`
	Message       string `json:"message"`
}

type PaymentRequest struct {
	PatronID string `json:"patronId"`
	BookID   int    `json:"bookId" validate:"gt=0"`
}

type Payment struct {
	PatronID      string          `json:"patronId"`
	BookID        int             `json:"bookId"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transactionId"`
	Message       string          `json:"message"`
}

type RefundRequest struct {
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
}

type Refund struct {
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	Message       string          `json:"message"`
}

// Event is a persisted circulation event.
type Event struct {
	ID            string          `json:"id" db:"event_uid"`
	EventType     string          `json:"eventType" db:"event_type"`
	PatronID      string          `json:"patronId" db:"patron_id"`
	BookID        int             `json:"bookId" db:"book_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	TransactionID string          `json:"transactionId" db:"transaction_id"`
	OccurredAt    time.Time       `json:"occurredAt" db:"occurred_at"`
}

type PatronStats struct {
	PatronID     string          `json:"patronId" db:"patron_id"`
	Borrowed     int             `json:"borrowed" db:"borrowed"`
	Returned     int             `json:"returned" db:"returned"`
	FeesPaid     decimal.Decimal `json:"feesPaid" db:"fees_paid"`
	FeesRefunded decimal.Decimal `json:"feesRefunded" db:"fees_refunded"`
}
