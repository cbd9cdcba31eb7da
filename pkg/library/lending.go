package library

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Borrow lends one copy of an edition to a member.
//
// Validation happens before any mutation; stock is taken before the ledger is written,
// so a failed stock removal leaves nothing to undo.
func (system *System) Borrow(name MemberName, title string, edition EditionID, now time.Time) (Loan, error) {
	member, err := system.GetMember(name)
	if err != nil {
		return Loan{}, err
	}
	return system.borrow(member, title, edition, now)
}

func (system *System) borrow(member *Member, title string, edition EditionID, now time.Time) (Loan, error) {
	if !system.isMember(member) {
		return Loan{}, fmt.Errorf("%w: %q", ErrNullMember, member.name.value)
	}
	if member.BorrowedCount() >= maxBorrowedBooks {
		return Loan{}, fmt.Errorf("%w: %q already holds %d book(s)", ErrTooManyBorrowed, member.name.value, member.BorrowedCount())
	}
	book, err := system.library.FindByTitle(title)
	if err != nil {
		return Loan{}, err
	}
	key := book.Key()
	if _, held := member.loans[key]; held {
		return Loan{}, fmt.Errorf("%w: %q already holds %q", ErrAlreadyExists, member.name.value, title)
	}
	if err := book.RemoveEdition(edition); err != nil {
		return Loan{}, err
	}
	loan := Loan{
		book:    key,
		title:   book.title,
		edition: edition,
		dueAt:   now.Add(LoanPeriod),
	}
	member.loans[key] = loan
	return loan, nil
}

// Return bills the member and puts the edition back on the shelf.
// When the balance cannot cover the charge nothing changes.
func (system *System) Return(name MemberName, title string, now time.Time) (Charge, error) {
	member, err := system.GetMember(name)
	if err != nil {
		return Charge{}, err
	}
	book, err := system.library.FindByTitle(title)
	if err != nil {
		return Charge{}, err
	}
	return system.returnBook(member, book, now)
}

func (system *System) returnBook(member *Member, book *Book, now time.Time) (Charge, error) {
	charge, err := system.library.Fees().TotalCharge(member, book, now)
	if err != nil {
		return Charge{}, err
	}
	if charge.Total.GreaterThan(member.balance) {
		return Charge{}, fmt.Errorf("%w: charge %s exceeds balance %s", ErrLowBalance, charge.Total.String(), member.balance.String())
	}
	key := book.Key()
	loan := member.loans[key]
	member.balance = member.balance.Sub(charge.Total)
	book.AddEdition(loan.edition)
	delete(member.loans, key)
	return charge, nil
}

// Quote computes what returning the book now would cost, without changing anything.
func (system *System) Quote(name MemberName, title string, now time.Time) (Charge, error) {
	member, book, err := system.memberAndBook(name, title)
	if err != nil {
		return Charge{}, err
	}
	return system.library.Fees().TotalCharge(member, book, now)
}

// RemainingDue returns the signed time left on a loan; negative means overdue.
func (system *System) RemainingDue(name MemberName, title string, now time.Time) (time.Duration, error) {
	member, book, err := system.memberAndBook(name, title)
	if err != nil {
		return 0, err
	}
	return member.RemainingDue(book, now)
}

// Deposit credits a member's balance.
func (system *System) Deposit(name MemberName, amount decimal.Decimal) error {
	member, err := system.GetMember(name)
	if err != nil {
		return err
	}
	return member.Deposit(amount)
}

func (system *System) memberAndBook(name MemberName, title string) (*Member, *Book, error) {
	member, err := system.GetMember(name)
	if err != nil {
		return nil, nil, err
	}
	book, err := system.library.FindByTitle(title)
	if err != nil {
		return nil, nil, err
	}
	return member, book, nil
}
