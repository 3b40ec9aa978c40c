// Package fee computes overdue fees for a borrow record.
package fee

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	PolicyTiered = "tiered"
	PolicyFlat   = "flat"
)

const day = 24 * time.Hour

var (
	// MaxFee caps a tiered assessment and bounds refunds.
	MaxFee = decimal.RequireFromString("15.00")

	firstTierRate = decimal.RequireFromString("0.50")
	laterTierRate = decimal.RequireFromString("1.00")
	flatRate      = decimal.RequireFromString("0.50")
)

const firstTierDays = 7

type Assessment struct {
	Amount      decimal.Decimal
	DaysOverdue int
}

func (a Assessment) Overdue() bool { return a.DaysOverdue > 0 }

// Policy maps a due date and an evaluation instant to a fee. Implementations must not read the clock.
type Policy interface {
	Compute(due, asOf time.Time) Assessment
}

func New(name string) (Policy, error) {
	switch name {
	case "", PolicyTiered:
		return Tiered{}, nil
	case PolicyFlat:
		return Flat{}, nil
	default:
		return nil, errors.Errorf("unknown fee policy %q", name)
	}
}

// DaysOverdue counts whole days elapsed after due; partial days are dropped.
func DaysOverdue(due, asOf time.Time) int {
	if !asOf.After(due) {
		return 0
	}
	return int(asOf.Sub(due) / day)
}

// Tiered charges 0.50 per day for the first week, 1.00 per day after, capped at MaxFee.
type Tiered struct{}

func (Tiered) Compute(due, asOf time.Time) Assessment {
	days := DaysOverdue(due, asOf)
	if days == 0 {
		return Assessment{Amount: decimal.Zero}
	}
	var amount decimal.Decimal
	if days <= firstTierDays {
		amount = firstTierRate.Mul(decimal.NewFromInt(int64(days)))
	} else {
		amount = firstTierRate.Mul(decimal.NewFromInt(firstTierDays)).
			Add(laterTierRate.Mul(decimal.NewFromInt(int64(days - firstTierDays))))
	}
	if amount.GreaterThan(MaxFee) {
		amount = MaxFee
	}
	return Assessment{Amount: amount, DaysOverdue: days}
}

// Flat is the legacy uncapped 0.50 per day rate.
type Flat struct{}

func (Flat) Compute(due, asOf time.Time) Assessment {
	days := DaysOverdue(due, asOf)
	return Assessment{
		Amount:      flatRate.Mul(decimal.NewFromInt(int64(days))),
		DaysOverdue: days,
	}
}
