package service

import (
	"context"
	"sync"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func (s *Service) PatronStatus(ctx context.Context, patronID string) (model.PatronStatus, error) {
	if !ValidPatronID(patronID) {
		return model.PatronStatus{}, errs.ErrInvalidPatron
	}
	records, err := s.repo.ListBorrowRecords(ctx, patronID)
	if err != nil {
		return model.PatronStatus{}, s.storeErr("PatronStatus", "Database error occurred while loading borrow records.", err)
	}

	books, err := s.loadBooks(ctx, records)
	if err != nil {
		return model.PatronStatus{}, s.storeErr("PatronStatus", "Database error occurred while loading books.", err)
	}

	now := s.clock.Now()
	st := model.PatronStatus{
		PatronID:          patronID,
		CurrentlyBorrowed: []model.BorrowedBook{},
		BorrowingHistory:  []model.HistoryEntry{},
		TotalLateFees:     decimal.Zero,
		BorrowingLimit:    model.BorrowingLimit,
	}
	for _, rec := range records {
		book, ok := books[rec.BookID]
		if !ok {
			continue
		}
		if rec.Open() {
			assessed := s.fees.Compute(rec.DueAt, now)
			st.CurrentlyBorrowed = append(st.CurrentlyBorrowed, model.BorrowedBook{
				BookID:      book.ID,
				Title:       book.Title,
				Author:      book.Author,
				BorrowedAt:  rec.BorrowedAt,
				DueAt:       rec.DueAt,
				LateFee:     assessed.Amount,
				DaysOverdue: assessed.DaysOverdue,
			})
			st.TotalLateFees = st.TotalLateFees.Add(assessed.Amount)
		}
		st.BorrowingHistory = append(st.BorrowingHistory, model.HistoryEntry{
			BookID:     book.ID,
			Title:      book.Title,
			Author:     book.Author,
			BorrowedAt: rec.BorrowedAt,
			DueAt:      rec.DueAt,
			ReturnedAt: rec.ReturnedAt,
		})
	}
	st.NumBooksBorrowed = len(st.CurrentlyBorrowed)
	if left := model.BorrowingLimit - st.NumBooksBorrowed; left > 0 {
		st.BooksAvailableToBorrow = left
	}
	return st, nil
}

// loadBooks fetches each distinct book once. Books that no longer exist are left out.
func (s *Service) loadBooks(ctx context.Context, records []model.BorrowRecord) (map[int]model.Book, error) {
	var (
		mu    sync.Mutex
		books = make(map[int]model.Book, len(records))
		seen  = make(map[int]struct{}, len(records))
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.statusWorkers)
	for _, rec := range records {
		if _, ok := seen[rec.BookID]; ok {
			continue
		}
		seen[rec.BookID] = struct{}{}
		bookID := rec.BookID
		g.Go(func() error {
			book, err := s.repo.GetBook(gCtx, bookID)
			if err != nil {
				if errors.Is(err, errs.ErrNotFound) {
					s.log.Warn("borrow record references missing book", zap.Int("book", bookID))
					return nil
				}
				return err
			}
			mu.Lock()
			books[bookID] = book
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return books, nil
}
