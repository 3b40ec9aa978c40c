package settlement

import (
	"context"

	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/library/internal/service"
	"github.com/Astemirdum/library-circulation/library/internal/service/paygate"
	"github.com/shopspring/decimal"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

var (
	_ FeeAssessor    = (*service.Service)(nil)
	_ PaymentGateway = (*paygate.Service)(nil)
)

type FeeAssessor interface {
	AssessLateFee(ctx context.Context, patronID string, bookID int) (model.LateFee, error)
}

type PaymentGateway interface {
	ProcessPayment(ctx context.Context, patronID string, amount decimal.Decimal, description string) (model.GatewayResponse, error)
	RefundPayment(ctx context.Context, transactionID string, amount decimal.Decimal) (model.GatewayResponse, error)
}
