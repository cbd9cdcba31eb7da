package library

import (
	"errors"
	"testing"
	"time"
)

func TestRentalFeeByPolicy(test *testing.T) {
	test.Parallel()
	book := mustBook(test, "Dune", "10.00", nil)
	engine := NewFeeEngine(mustLateFee(test, "10"))
	standard := NewMember(mustMemberName(test, "Alice"), mustDecimal(test, "100"))
	discounted := NewDiscountedMember(mustMemberName(test, "Carol"), mustDecimal(test, "100"), mustDiscountRate(test, "50"))

	assertDecimal(test, "standard fee", "10.00", engine.RentalFee(standard, book))
	assertDecimal(test, "discounted fee", "5.00", engine.RentalFee(discounted, book))
}

func TestLatePenaltyRequiresLoan(test *testing.T) {
	test.Parallel()
	book := mustBook(test, "Dune", "2.00", nil)
	member := NewMember(mustMemberName(test, "Alice"), mustDecimal(test, "100"))
	_, err := NewFeeEngine(mustLateFee(test, "10")).LatePenalty(member, book, testEpoch)
	if !errors.Is(err, ErrNotFound) {
		test.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLatePenaltyArithmetic(test *testing.T) {
	test.Parallel()
	system := mustSystem(test, "10", mustBook(test, "Dune", "2.00", map[string]int{"1": 1}))
	member := mustJoin(test, system, "Alice", "100")
	loan := mustBorrow(test, system, "Alice", "Dune", "1", testEpoch)
	book, _ := system.GetBook("Dune")
	engine := system.Library().Fees()
	day := 24 * time.Hour

	cases := []struct {
		name    string
		now     time.Time
		penalty string
	}{
		{name: "immediately", now: testEpoch, penalty: "0"},
		{name: "exactly at due date", now: loan.DueAt(), penalty: "0"},
		{name: "one second late", now: loan.DueAt().Add(time.Second), penalty: "0.2"},
		{name: "exactly one day late", now: loan.DueAt().Add(day), penalty: "0.2"},
		{name: "one day and a bit late", now: loan.DueAt().Add(day + time.Minute), penalty: "0.4"},
		{name: "three days late", now: loan.DueAt().Add(3 * day), penalty: "0.6"},
	}
	for _, tc := range cases {
		penalty, err := engine.LatePenalty(member, book, tc.now)
		if err != nil {
			test.Fatalf("%s: %v", tc.name, err)
		}
		assertDecimal(test, tc.name, tc.penalty, penalty)
	}
}

func TestLatePenaltyIsMonotonic(test *testing.T) {
	test.Parallel()
	system := mustSystem(test, "25", mustBook(test, "Dune", "3.50", map[string]int{"1": 1}))
	member := mustJoin(test, system, "Alice", "100")
	loan := mustBorrow(test, system, "Alice", "Dune", "1", testEpoch)
	book, _ := system.GetBook("Dune")
	engine := system.Library().Fees()

	previous, err := engine.LatePenalty(member, book, testEpoch)
	if err != nil {
		test.Fatalf("late penalty: %v", err)
	}
	for step := time.Duration(0); step < 10*24*time.Hour; step += 7 * time.Hour {
		now := loan.DueAt().Add(-time.Hour).Add(step)
		penalty, err := engine.LatePenalty(member, book, now)
		if err != nil {
			test.Fatalf("late penalty: %v", err)
		}
		if penalty.LessThan(previous) {
			test.Fatalf("penalty decreased from %s to %s at %s", previous, penalty, now)
		}
		if !now.After(loan.DueAt()) && !penalty.IsZero() {
			test.Fatalf("expected zero penalty before due date, got %s", penalty)
		}
		previous = penalty
	}
}

func TestTotalChargeDiscountedLate(test *testing.T) {
	test.Parallel()
	system := mustSystem(test, "10", mustBook(test, "Dune", "10.00", map[string]int{"1": 1}))
	member := NewDiscountedMember(mustMemberName(test, "Carol"), mustDecimal(test, "100"), mustDiscountRate(test, "50"))
	if err := system.AddMember(member); err != nil {
		test.Fatalf("add member: %v", err)
	}
	loan := mustBorrow(test, system, "Carol", "Dune", "1", testEpoch)
	book, _ := system.GetBook("Dune")

	charge, err := system.Library().Fees().TotalCharge(member, book, loan.DueAt().Add(2*24*time.Hour))
	if err != nil {
		test.Fatalf("total charge: %v", err)
	}
	assertDecimal(test, "rental fee", "5", charge.RentalFee)
	assertDecimal(test, "late penalty", "1", charge.LatePenalty)
	assertDecimal(test, "total", "6", charge.Total)
}

func TestOverdueDays(test *testing.T) {
	test.Parallel()
	day := 24 * time.Hour
	cases := []struct {
		remaining time.Duration
		want      int64
	}{
		{remaining: 0, want: 0},
		{remaining: -time.Nanosecond, want: 1},
		{remaining: -day, want: 1},
		{remaining: -day - time.Second, want: 2},
		{remaining: -5 * day, want: 5},
	}
	for _, tc := range cases {
		if got := overdueDays(tc.remaining); got != tc.want {
			test.Fatalf("overdueDays(%s): expected %d, got %d", tc.remaining, tc.want, got)
		}
	}
}
