package library

import (
	"time"

	"github.com/shopspring/decimal"
)

// Charge is the amount billed when a book comes back.
type Charge struct {
	RentalFee   decimal.Decimal
	LatePenalty decimal.Decimal
	Total       decimal.Decimal
}

// FeeEngine computes rental fees and late penalties. It never mutates state.
type FeeEngine struct {
	lateFee LateFeePercentage
}

// NewFeeEngine builds an engine for the given late-fee percentage.
func NewFeeEngine(lateFee LateFeePercentage) FeeEngine {
	return FeeEngine{lateFee: lateFee}
}

// RentalFee returns the base fee the member pays for the book.
func (engine FeeEngine) RentalFee(member *Member, book *Book) decimal.Decimal {
	return member.policy.RentalFee(book)
}

// LatePenalty is zero until the due date has passed, then
// lateFee * (rentalFee * overdueDays) / 100.
func (engine FeeEngine) LatePenalty(member *Member, book *Book, now time.Time) (decimal.Decimal, error) {
	remaining, err := member.RemainingDue(book, now)
	if err != nil {
		return decimal.Zero, err
	}
	if remaining > 0 {
		return decimal.Zero, nil
	}
	overdue := decimal.NewFromInt(overdueDays(remaining))
	return engine.lateFee.value.Mul(engine.RentalFee(member, book).Mul(overdue)).Div(hundred), nil
}

// TotalCharge returns rental fee plus late penalty.
func (engine FeeEngine) TotalCharge(member *Member, book *Book, now time.Time) (Charge, error) {
	penalty, err := engine.LatePenalty(member, book, now)
	if err != nil {
		return Charge{}, err
	}
	rentalFee := engine.RentalFee(member, book)
	return Charge{
		RentalFee:   rentalFee,
		LatePenalty: penalty,
		Total:       rentalFee.Add(penalty),
	}, nil
}

// overdueDays is |floor(remaining / 1 day)| for a non-positive remaining duration,
// so any started day past the due date counts as a whole day.
func overdueDays(remaining time.Duration) int64 {
	day := hoursPerDay * time.Hour
	days := int64(remaining / day)
	if remaining%day != 0 {
		days--
	}
	return -days
}
