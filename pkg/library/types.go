package library

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// EditionID identifies one printing of a book.
type EditionID struct {
	value string
}

// MemberName identifies a member within a registry.
type MemberName struct {
	value string
}

// LibraryID identifies a library system; members reference it instead of holding the system.
type LibraryID struct {
	value string
}

// DiscountRate is the percentage of the rental fee a discounted member pays.
type DiscountRate struct {
	value decimal.Decimal
}

// LateFeePercentage scales late penalties uniformly for all members.
type LateFeePercentage struct {
	value decimal.Decimal
}

// NewEditionID validates and normalizes an edition identifier.
func NewEditionID(raw string) (EditionID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return EditionID{}, fmt.Errorf("%w: empty value", ErrInvalidEditionID)
	}
	return EditionID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id EditionID) String() string {
	return id.value
}

// NewMemberName validates and normalizes a member name.
func NewMemberName(raw string) (MemberName, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return MemberName{}, fmt.Errorf("%w: empty value", ErrInvalidMemberName)
	}
	return MemberName{value: trimmed}, nil
}

// String returns the normalized name.
func (name MemberName) String() string {
	return name.value
}

// NewLibraryID validates a library identifier.
func NewLibraryID(raw string) (LibraryID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return LibraryID{}, fmt.Errorf("%w: empty value", ErrInvalidLibraryID)
	}
	return LibraryID{value: trimmed}, nil
}

// String returns the identifier.
func (id LibraryID) String() string {
	return id.value
}

// IsZero reports whether the identifier is unset.
func (id LibraryID) IsZero() bool {
	return id.value == ""
}

// NewDiscountRate accepts percentages between 0 and 100 inclusive.
func NewDiscountRate(raw decimal.Decimal) (DiscountRate, error) {
	if raw.IsNegative() || raw.GreaterThan(hundred) {
		return DiscountRate{}, fmt.Errorf("%w: %s is outside [0, 100]", ErrInvalidDiscountRate, raw.String())
	}
	return DiscountRate{value: raw}, nil
}

// Decimal returns the percentage.
func (rate DiscountRate) Decimal() decimal.Decimal {
	return rate.value
}

// NewLateFeePercentage accepts any non-negative percentage.
func NewLateFeePercentage(raw decimal.Decimal) (LateFeePercentage, error) {
	if raw.IsNegative() {
		return LateFeePercentage{}, fmt.Errorf("%w: must not be negative", ErrInvalidLateFee)
	}
	return LateFeePercentage{value: raw}, nil
}

// Decimal returns the percentage.
func (percentage LateFeePercentage) Decimal() decimal.Decimal {
	return percentage.value
}

// NewRentalFee validates a book's flat rental fee.
func NewRentalFee(raw decimal.Decimal) (decimal.Decimal, error) {
	if raw.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: rental fee must not be negative", ErrInvalidAmount)
	}
	return raw, nil
}

// NewDepositAmount validates an amount credited to a balance.
func NewDepositAmount(raw decimal.Decimal) (decimal.Decimal, error) {
	if !raw.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	return raw, nil
}
