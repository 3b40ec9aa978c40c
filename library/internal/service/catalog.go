package service

import (
	"context"
	"strings"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

func (s *Service) AddBook(ctx context.Context, req model.AddBookRequest) (model.Book, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	if err := s.valid.Validate(req); err != nil {
		return model.Book{}, InvalidBook(err)
	}

	_, err := s.repo.GetBookByISBN(ctx, req.ISBN)
	switch {
	case err == nil:
		return model.Book{}, errs.ErrDuplicateISBN
	case !errors.Is(err, errs.ErrNotFound):
		return model.Book{}, s.storeErr("AddBook", "Database error occurred while adding the book.", err)
	}

	book, err := s.repo.InsertBook(ctx, req)
	if err != nil {
		if errors.Is(err, errs.ErrDuplicate) {
			return model.Book{}, errs.ErrDuplicateISBN
		}
		return model.Book{}, s.storeErr("AddBook", "Database error occurred while adding the book.", err)
	}
	return book, nil
}

var bookFieldMessages = map[string]string{
	"Title.required":    "Title is required.",
	"Title.max":         "Title must be less than 200 characters.",
	"Author.required":   "Author is required.",
	"Author.max":        "Author must be less than 100 characters.",
	"ISBN.required":     "ISBN must be exactly 13 digits.",
	"ISBN.isbn13digits": "ISBN must be exactly 13 digits.",
	"TotalCopies.gt":    "Total copies must be a positive integer.",
}

// InvalidBook turns a validation failure of model.AddBookRequest into an INVALID_BOOK error
// carrying the message of the first failed field.
func InvalidBook(err error) error {
	msg := err.Error()
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if m, ok := bookFieldMessages[fe.Field()+"."+fe.Tag()]; ok {
			msg = m
		}
	}
	return errs.New(errs.ReasonInvalidBook, msg)
}

func (s *Service) GetBook(ctx context.Context, id int) (model.Book, error) {
	book, err := s.repo.GetBook(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Book{}, errs.ErrBookNotFound
		}
		return model.Book{}, s.storeErr("GetBook", "Database error occurred while loading the book.", err)
	}
	return book, nil
}

func (s *Service) ListBooks(ctx context.Context, page, size int) (model.ListBooks, error) {
	books, err := s.repo.ListBooks(ctx, page, size)
	if err != nil {
		return model.ListBooks{}, s.storeErr("ListBooks", "Database error occurred while listing books.", err)
	}
	return books, nil
}

// SearchBooks matches title and author case-insensitively by substring and isbn exactly.
// A blank term or an unknown search type yields no results.
func (s *Service) SearchBooks(ctx context.Context, term string, searchType model.SearchType) ([]model.Book, error) {
	term = strings.TrimSpace(term)
	if term == "" || !searchType.Valid() {
		return []model.Book{}, nil
	}
	books, err := s.repo.SearchBooks(ctx, term, searchType)
	if err != nil {
		return nil, s.storeErr("SearchBooks", "Database error occurred while searching books.", err)
	}
	if books == nil {
		books = []model.Book{}
	}
	return books, nil
}
