// Package settlement charges and refunds late fees through the payment gateway.
package settlement

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/fee"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/library/internal/service"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var transactionIDRe = regexp.MustCompile(`^txn_[A-Za-z0-9_-]+$`)

type Service struct {
	log     *zap.Logger
	fees    FeeAssessor
	gateway PaymentGateway
}

func NewService(fees FeeAssessor, gateway PaymentGateway, log *zap.Logger) *Service {
	return &Service{
		log:     log.Named("settlement"),
		fees:    fees,
		gateway: gateway,
	}
}

// PayLateFees charges the fee currently owed on the patron's open record for the book.
// A successful charge is not written back to the record.
func (s *Service) PayLateFees(ctx context.Context, patronID string, bookID int) (model.Payment, error) {
	if !service.ValidPatronID(patronID) {
		return model.Payment{}, errs.ErrInvalidPatron
	}

	owed, err := s.fees.AssessLateFee(ctx, patronID, bookID)
	if err != nil {
		return model.Payment{}, err
	}
	if !owed.FeeAmount.IsPositive() {
		return model.Payment{}, errs.ErrNoFeesOwed
	}

	description := fmt.Sprintf("Late fees for '%s'", owed.Title)
	var resp model.GatewayResponse
	err = guard(func() (err error) {
		resp, err = s.gateway.ProcessPayment(ctx, patronID, owed.FeeAmount, description)
		return err
	})
	if err != nil {
		s.log.Error("ProcessPayment", zap.String("patron", patronID), zap.Int("book", bookID), zap.Error(err))
		return model.Payment{}, errs.Wrap(errs.ReasonGatewayError, "Payment processing error: "+err.Error(), err)
	}
	if !resp.Success {
		return model.Payment{}, errs.New(errs.ReasonGatewayDeclined, "Payment failed: "+resp.Message)
	}

	s.log.Info("late fee paid",
		zap.String("patron", patronID),
		zap.Int("book", bookID),
		zap.Stringer("amount", owed.FeeAmount),
		zap.String("txn", resp.TransactionID))
	return model.Payment{
		PatronID:      patronID,
		BookID:        bookID,
		Amount:        owed.FeeAmount,
		TransactionID: resp.TransactionID,
		Message:       "Payment successful! " + resp.Message,
	}, nil
}

// RefundLateFeePayment returns up to the largest possible late fee on a previous charge.
func (s *Service) RefundLateFeePayment(ctx context.Context, transactionID string, amount decimal.Decimal) (model.Refund, error) {
	if !transactionIDRe.MatchString(transactionID) {
		return model.Refund{}, errs.ErrInvalidTxn
	}
	if !amount.IsPositive() {
		return model.Refund{}, errs.New(errs.ReasonInvalidAmount, "Refund amount must be greater than 0.")
	}
	if amount.GreaterThan(fee.MaxFee) {
		return model.Refund{}, errs.New(errs.ReasonInvalidAmount, "Refund amount exceeds maximum late fee.")
	}

	var resp model.GatewayResponse
	err := guard(func() (err error) {
		resp, err = s.gateway.RefundPayment(ctx, transactionID, amount)
		return err
	})
	if err != nil {
		s.log.Error("RefundPayment", zap.String("txn", transactionID), zap.Error(err))
		return model.Refund{}, errs.Wrap(errs.ReasonGatewayError, "Refund processing error: "+err.Error(), err)
	}
	if !resp.Success {
		return model.Refund{}, errs.New(errs.ReasonGatewayDeclined, resp.Message)
	}
	return model.Refund{
		TransactionID: transactionID,
		Amount:        amount,
		Message:       resp.Message,
	}, nil
}

// guard turns a panic inside a gateway implementation into an error.
func guard(call func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("%v", r)
		}
	}()
	return call()
}
