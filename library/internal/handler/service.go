package handler

import (
	"context"

	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/library/internal/service"
	"github.com/Astemirdum/library-circulation/library/internal/service/settlement"
	"github.com/shopspring/decimal"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

var (
	_ CirculationService = (*service.Service)(nil)
	_ StatsService       = (*service.Service)(nil)
	_ SettlementService  = (*settlement.Service)(nil)
)

type CirculationService interface {
	ListBooks(ctx context.Context, page, size int) (model.ListBooks, error)
	GetBook(ctx context.Context, id int) (model.Book, error)
	SearchBooks(ctx context.Context, term string, searchType model.SearchType) ([]model.Book, error)
	AddBook(ctx context.Context, req model.AddBookRequest) (model.Book, error)

	Borrow(ctx context.Context, patronID string, bookID int) (model.Loan, error)
	Return(ctx context.Context, patronID string, bookID int) (model.Return, error)
	AssessLateFee(ctx context.Context, patronID string, bookID int) (model.LateFee, error)
	PatronStatus(ctx context.Context, patronID string) (model.PatronStatus, error)
}

type SettlementService interface {
	PayLateFees(ctx context.Context, patronID string, bookID int) (model.Payment, error)
	RefundLateFeePayment(ctx context.Context, transactionID string, amount decimal.Decimal) (model.Refund, error)
}

type StatsService interface {
	RecordEvent(ctx context.Context, ev model.Event) error
	Stats(ctx context.Context, patronID string) ([]model.PatronStats, error)
}
