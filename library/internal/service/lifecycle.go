package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/library/internal/repository"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Borrow opens a borrow record for the patron and takes one copy off the shelf.
// All checks run before any mutation; the record insert and the availability
// change commit together or not at all.
func (s *Service) Borrow(ctx context.Context, patronID string, bookID int) (model.Loan, error) {
	if !ValidPatronID(patronID) {
		return model.Loan{}, errs.ErrInvalidPatron
	}

	var loan model.Loan
	err := s.repo.WithTx(ctx, func(repo repository.Repository) error {
		book, err := repo.GetBook(ctx, bookID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return errs.ErrBookNotFound
			}
			return err
		}
		if book.AvailableCopies <= 0 {
			return errs.ErrBookUnavailable
		}

		borrowed, err := repo.CountOpenBorrows(ctx, patronID)
		if err != nil {
			return err
		}
		if borrowed >= model.BorrowingLimit {
			return errs.ErrBorrowLimit
		}

		if s.rejectDuplicateBorrow {
			_, err := repo.GetOpenBorrow(ctx, patronID, bookID)
			switch {
			case err == nil:
				return errs.ErrAlreadyBorrowed
			case !errors.Is(err, errs.ErrNotFound):
				return err
			}
		}

		now := s.clock.Now()
		rec, err := repo.InsertBorrowRecord(ctx, patronID, bookID, now, now.Add(model.LoanPeriod))
		if err != nil {
			return errors.Wrap(err, "insert borrow record")
		}
		if err := repo.UpdateBookAvailability(ctx, bookID, -1); err != nil {
			if errors.Is(err, errs.ErrConflict) {
				return errs.ErrBookUnavailable
			}
			return errors.Wrap(err, "update availability")
		}

		loan = model.Loan{
			PatronID:   patronID,
			BookID:     bookID,
			Title:      book.Title,
			BorrowedAt: rec.BorrowedAt,
			DueAt:      rec.DueAt,
			Message:    fmt.Sprintf("Successfully borrowed \"%s\". Due date: %s.", book.Title, rec.DueAt.Format(time.DateOnly)),
		}
		return nil
	})
	if err != nil {
		return model.Loan{}, s.storeErr("Borrow", "Database error occurred while creating borrow record.", err)
	}

	s.log.Debug("borrowed", zap.String("patron", patronID), zap.Int("book", bookID))
	return loan, nil
}

// Return closes the patron's open record for the book, puts the copy back and
// reports the late fee accrued at the time of return.
func (s *Service) Return(ctx context.Context, patronID string, bookID int) (model.Return, error) {
	if !ValidPatronID(patronID) {
		return model.Return{}, errs.ErrInvalidPatron
	}

	var ret model.Return
	err := s.repo.WithTx(ctx, func(repo repository.Repository) error {
		book, err := repo.GetBook(ctx, bookID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return errs.ErrBookNotFound
			}
			return err
		}

		rec, err := repo.GetOpenBorrow(ctx, patronID, bookID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return errs.ErrNoActiveBorrow
			}
			return err
		}

		now := s.clock.Now()
		if err := repo.CloseBorrowRecord(ctx, rec.ID, now); err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return errs.ErrNoActiveBorrow
			}
			return errors.Wrap(err, "close borrow record")
		}
		if err := repo.UpdateBookAvailability(ctx, bookID, 1); err != nil {
			return errors.Wrap(err, "update availability")
		}

		assessed := s.fees.Compute(rec.DueAt, now)
		ret = model.Return{
			PatronID:    patronID,
			BookID:      bookID,
			Title:       book.Title,
			ReturnedAt:  now,
			LateFee:     assessed.Amount,
			DaysOverdue: assessed.DaysOverdue,
		}
		if assessed.Overdue() {
			ret.Message = fmt.Sprintf("Book \"%s\" returned successfully. Late fee: $%s (%d days overdue).",
				book.Title, assessed.Amount.StringFixed(2), assessed.DaysOverdue)
		} else {
			ret.Message = fmt.Sprintf("Book \"%s\" returned successfully. No late fees.", book.Title)
		}
		return nil
	})
	if err != nil {
		return model.Return{}, s.storeErr("Return", "Database error occurred while recording return.", err)
	}

	s.log.Debug("returned", zap.String("patron", patronID), zap.Int("book", bookID),
		zap.Stringer("fee", ret.LateFee))
	return ret, nil
}

// AssessLateFee reports the fee owed right now on the patron's record for the book.
func (s *Service) AssessLateFee(ctx context.Context, patronID string, bookID int) (model.LateFee, error) {
	if !ValidPatronID(patronID) {
		return model.LateFee{}, errs.ErrInvalidPatron
	}
	res := model.LateFee{
		PatronID: patronID,
		BookID:   bookID,
	}

	book, err := s.repo.GetBook(ctx, bookID)
	switch {
	case err == nil:
		res.Title = book.Title
	case !errors.Is(err, errs.ErrNotFound):
		return model.LateFee{}, s.storeErr("AssessLateFee", "Database error occurred while loading the book.", err)
	}

	rec, err := s.repo.GetOpenBorrow(ctx, patronID, bookID)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			return model.LateFee{}, s.storeErr("AssessLateFee", "Database error occurred while loading the borrow record.", err)
		}
		res.Status = model.FeeNoRecord
		if _, err := s.repo.GetLatestBorrow(ctx, patronID, bookID); err == nil {
			res.Status = model.FeeAlreadyReturned
		} else if !errors.Is(err, errs.ErrNotFound) {
			return model.LateFee{}, s.storeErr("AssessLateFee", "Database error occurred while loading the borrow record.", err)
		}
		res.FeeAmount = decimal.Zero
		return res, nil
	}

	assessed := s.fees.Compute(rec.DueAt, s.clock.Now())
	res.FeeAmount = assessed.Amount
	res.DaysOverdue = assessed.DaysOverdue
	res.Status = model.FeeNotOverdue
	if assessed.Overdue() {
		res.Status = model.FeeOverdue
	}
	return res, nil
}
