package errs

import (
	"github.com/pkg/errors"
)

// Store level errors, returned by the repository.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
	ErrConflict  = errors.New("conflict")
)

type Reason string

const (
	ReasonInvalidPatron      Reason = "INVALID_PATRON"
	ReasonInvalidTransaction Reason = "INVALID_TRANSACTION"
	ReasonInvalidAmount      Reason = "INVALID_AMOUNT"
	ReasonInvalidBook        Reason = "INVALID_BOOK"
	ReasonDuplicateISBN      Reason = "DUPLICATE_ISBN"
	ReasonBookNotFound       Reason = "BOOK_NOT_FOUND"
	ReasonBookUnavailable    Reason = "BOOK_UNAVAILABLE"
	ReasonBorrowLimit        Reason = "BORROW_LIMIT_REACHED"
	ReasonAlreadyBorrowed    Reason = "ALREADY_BORROWED"
	ReasonNoActiveBorrow     Reason = "NO_ACTIVE_BORROW"
	ReasonNoFeesOwed         Reason = "NO_FEES_OWED"
	ReasonGatewayDeclined    Reason = "GATEWAY_DECLINED"
	ReasonGatewayError       Reason = "GATEWAY_ERROR"
	ReasonStoreError         Reason = "STORE_ERROR"
)

// Error is an expected, recoverable outcome of a circulation operation.
type Error struct {
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Reason so callers can compare against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Reason == e.Reason
}

func New(reason Reason, msg string) *Error {
	return &Error{Reason: reason, Message: msg}
}

func Wrap(reason Reason, msg string, err error) *Error {
	return &Error{Reason: reason, Message: msg, Err: err}
}

func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

// MessageOf returns the user facing message without the wrapped cause.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

var (
	ErrInvalidPatron   = New(ReasonInvalidPatron, "Invalid patron ID. Must be exactly 6 digits.")
	ErrBookNotFound    = New(ReasonBookNotFound, "Book not found.")
	ErrBookUnavailable = New(ReasonBookUnavailable, "This book is currently not available.")
	ErrBorrowLimit     = New(ReasonBorrowLimit, "You have reached the maximum borrowing limit of 5 books.")
	ErrAlreadyBorrowed = New(ReasonAlreadyBorrowed, "You have already borrowed this book.")
	ErrNoActiveBorrow  = New(ReasonNoActiveBorrow, "No active borrow record found for this book and patron.")
	ErrNoFeesOwed      = New(ReasonNoFeesOwed, "No late fees to pay for this book.")
	ErrInvalidTxn      = New(ReasonInvalidTransaction, "Invalid transaction ID.")
	ErrDuplicateISBN   = New(ReasonDuplicateISBN, "A book with this ISBN already exists.")
)
