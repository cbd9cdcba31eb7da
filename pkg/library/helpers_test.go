package library

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var testEpoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func mustDecimal(test *testing.T, raw string) decimal.Decimal {
	test.Helper()
	value, err := decimal.NewFromString(raw)
	if err != nil {
		test.Fatalf("decimal %q: %v", raw, err)
	}
	return value
}

func mustMemberName(test *testing.T, raw string) MemberName {
	test.Helper()
	value, err := NewMemberName(raw)
	if err != nil {
		test.Fatalf("member name: %v", err)
	}
	return value
}

func mustEditionID(test *testing.T, raw string) EditionID {
	test.Helper()
	value, err := NewEditionID(raw)
	if err != nil {
		test.Fatalf("edition id: %v", err)
	}
	return value
}

func mustLateFee(test *testing.T, raw string) LateFeePercentage {
	test.Helper()
	value, err := NewLateFeePercentage(mustDecimal(test, raw))
	if err != nil {
		test.Fatalf("late fee: %v", err)
	}
	return value
}

func mustDiscountRate(test *testing.T, raw string) DiscountRate {
	test.Helper()
	value, err := NewDiscountRate(mustDecimal(test, raw))
	if err != nil {
		test.Fatalf("discount rate: %v", err)
	}
	return value
}

func mustBook(test *testing.T, title string, rentalFee string, stock map[string]int) *Book {
	test.Helper()
	editions := make(map[EditionID]int, len(stock))
	for raw, count := range stock {
		editions[mustEditionID(test, raw)] = count
	}
	book, err := NewBook(title, []string{title + " Author"}, 1965, editions, mustDecimal(test, rentalFee))
	if err != nil {
		test.Fatalf("book: %v", err)
	}
	return book
}

func mustSystem(test *testing.T, lateFee string, books ...*Book) *System {
	test.Helper()
	library, err := NewLibrary(books, mustLateFee(test, lateFee))
	if err != nil {
		test.Fatalf("library: %v", err)
	}
	system, err := NewSystem(library, nil)
	if err != nil {
		test.Fatalf("system: %v", err)
	}
	return system
}

func mustJoin(test *testing.T, system *System, name string, balance string) *Member {
	test.Helper()
	member := NewMember(mustMemberName(test, name), mustDecimal(test, balance))
	if err := system.AddMember(member); err != nil {
		test.Fatalf("add member: %v", err)
	}
	return member
}

func mustBorrow(test *testing.T, system *System, name string, title string, edition string, now time.Time) Loan {
	test.Helper()
	loan, err := system.Borrow(mustMemberName(test, name), title, mustEditionID(test, edition), now)
	if err != nil {
		test.Fatalf("borrow %q: %v", title, err)
	}
	return loan
}

func stockOf(test *testing.T, book *Book, edition string) int {
	test.Helper()
	count, ok := book.Stock(mustEditionID(test, edition))
	if !ok {
		test.Fatalf("edition %q not registered on %q", edition, book.Title())
	}
	return count
}

func assertDecimal(test *testing.T, label string, want string, got decimal.Decimal) {
	test.Helper()
	if !got.Equal(mustDecimal(test, want)) {
		test.Fatalf("%s: expected %s, got %s", label, want, got.String())
	}
}
