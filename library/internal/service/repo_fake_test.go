package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/library/internal/repository"
	"github.com/pkg/errors"
)

var errStore = errors.New("db down")

// memRepo keeps books and records in memory. WithTx snapshots state and
// restores it when fn fails. failOn makes the named method return errStore.
type memRepo struct {
	mu      sync.Mutex
	books   map[int]model.Book
	records []model.BorrowRecord
	events  []model.Event
	nextID  int
	failOn  map[string]bool
}

var _ repository.Repository = (*memRepo)(nil)

func newMemRepo(books ...model.Book) *memRepo {
	r := &memRepo{books: map[int]model.Book{}, failOn: map[string]bool{}}
	for _, b := range books {
		r.books[b.ID] = b
	}
	return r
}

func (r *memRepo) fail(op string) error {
	if r.failOn[op] {
		return errStore
	}
	return nil
}

func (r *memRepo) WithTx(_ context.Context, fn func(repo repository.Repository) error) error {
	r.mu.Lock()
	books := make(map[int]model.Book, len(r.books))
	for k, v := range r.books {
		books[k] = v
	}
	records := append([]model.BorrowRecord(nil), r.records...)
	nextID := r.nextID
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.books, r.records, r.nextID = books, records, nextID
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *memRepo) GetBook(_ context.Context, id int) (model.Book, error) {
	if err := r.fail("GetBook"); err != nil {
		return model.Book{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return model.Book{}, errs.ErrNotFound
	}
	return b, nil
}

func (r *memRepo) GetBookByISBN(_ context.Context, isbn string) (model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.books {
		if b.ISBN == isbn {
			return b, nil
		}
	}
	return model.Book{}, errs.ErrNotFound
}

func (r *memRepo) InsertBook(_ context.Context, req model.AddBookRequest) (model.Book, error) {
	if err := r.fail("InsertBook"); err != nil {
		return model.Book{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := len(r.books) + 1
	for r.books[id].ID != 0 {
		id++
	}
	b := model.Book{ID: id, Title: req.Title, Author: req.Author, ISBN: req.ISBN, TotalCopies: req.TotalCopies, AvailableCopies: req.TotalCopies}
	r.books[id] = b
	return b, nil
}

func (r *memRepo) sortedBooks() []model.Book {
	out := make([]model.Book, 0, len(r.books))
	for _, b := range r.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memRepo) ListBooks(_ context.Context, page, size int) (model.ListBooks, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.sortedBooks()
	return model.ListBooks{Paging: model.Paging{Page: page, PageSize: size, TotalElements: len(items)}, Items: items}, nil
}

func (r *memRepo) SearchBooks(_ context.Context, term string, searchType model.SearchType) ([]model.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Book
	for _, b := range r.sortedBooks() {
		switch searchType {
		case model.SearchTitle:
			if strings.Contains(strings.ToLower(b.Title), strings.ToLower(term)) {
				out = append(out, b)
			}
		case model.SearchAuthor:
			if strings.Contains(strings.ToLower(b.Author), strings.ToLower(term)) {
				out = append(out, b)
			}
		case model.SearchISBN:
			if b.ISBN == term {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

func (r *memRepo) UpdateBookAvailability(_ context.Context, bookID, delta int) error {
	if err := r.fail("UpdateBookAvailability"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[bookID]
	if !ok {
		return errs.ErrNotFound
	}
	next := b.AvailableCopies + delta
	if next < 0 || next > b.TotalCopies {
		return errs.ErrConflict
	}
	b.AvailableCopies = next
	r.books[bookID] = b
	return nil
}

func (r *memRepo) InsertBorrowRecord(_ context.Context, patronID string, bookID int, borrowedAt, dueAt time.Time) (model.BorrowRecord, error) {
	if err := r.fail("InsertBorrowRecord"); err != nil {
		return model.BorrowRecord{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rec := model.BorrowRecord{ID: r.nextID, PatronID: patronID, BookID: bookID, BorrowedAt: borrowedAt, DueAt: dueAt}
	r.records = append(r.records, rec)
	return rec, nil
}

func (r *memRepo) GetOpenBorrow(_ context.Context, patronID string, bookID int) (model.BorrowRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.records) - 1; i >= 0; i-- {
		rec := r.records[i]
		if rec.PatronID == patronID && rec.BookID == bookID && rec.Open() {
			return rec, nil
		}
	}
	return model.BorrowRecord{}, errs.ErrNotFound
}

func (r *memRepo) GetLatestBorrow(_ context.Context, patronID string, bookID int) (model.BorrowRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.records) - 1; i >= 0; i-- {
		rec := r.records[i]
		if rec.PatronID == patronID && rec.BookID == bookID {
			return rec, nil
		}
	}
	return model.BorrowRecord{}, errs.ErrNotFound
}

func (r *memRepo) CountOpenBorrows(_ context.Context, patronID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if rec.PatronID == patronID && rec.Open() {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) ListBorrowRecords(_ context.Context, patronID string) ([]model.BorrowRecord, error) {
	if err := r.fail("ListBorrowRecords"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.BorrowRecord
	for _, rec := range r.records {
		if rec.PatronID == patronID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memRepo) CloseBorrowRecord(_ context.Context, id int, returnedAt time.Time) error {
	if err := r.fail("CloseBorrowRecord"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == id && r.records[i].Open() {
			t := returnedAt
			r.records[i].ReturnedAt = &t
			return nil
		}
	}
	return errs.ErrNotFound
}

func (r *memRepo) InsertEvent(_ context.Context, ev model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *memRepo) PatronStats(context.Context, string) ([]model.PatronStats, error) {
	return nil, nil
}

func (r *memRepo) openRecords() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if rec.Open() {
			n++
		}
	}
	return n
}
