package library

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SystemSnapshot is the plain-data form of a System handed to persistence.
type SystemSnapshot struct {
	LibraryID         string           `json:"library_id"`
	LateFeePercentage decimal.Decimal  `json:"late_fee_percentage"`
	Books             []BookSnapshot   `json:"books"`
	Members           []MemberSnapshot `json:"members"`
}

// BookSnapshot is the plain-data form of a Book.
type BookSnapshot struct {
	Title         string          `json:"title"`
	Authors       []string        `json:"authors"`
	PublishedYear int             `json:"published_year"`
	Editions      map[string]int  `json:"editions"`
	RentalFee     decimal.Decimal `json:"rental_fee"`
}

// MemberSnapshot is the plain-data form of a Member and its ledger.
type MemberSnapshot struct {
	Name         string           `json:"name"`
	Balance      decimal.Decimal  `json:"balance"`
	FeePolicy    string           `json:"fee_policy"`
	DiscountRate *decimal.Decimal `json:"discount_rate,omitempty"`
	Loans        []LoanSnapshot   `json:"loans"`
}

// LoanSnapshot is one ledger record.
type LoanSnapshot struct {
	Title   string    `json:"title"`
	Edition string    `json:"edition"`
	DueAt   time.Time `json:"due_at"`
}

// Snapshot copies the system into plain data.
func (system *System) Snapshot() SystemSnapshot {
	snapshot := SystemSnapshot{
		LibraryID:         system.id.String(),
		LateFeePercentage: system.library.lateFee.value,
		Books:             make([]BookSnapshot, 0, len(system.library.books)),
		Members:           make([]MemberSnapshot, 0, len(system.members)),
	}
	for _, book := range system.library.books {
		editions := make(map[string]int, len(book.editions))
		for edition, count := range book.editions {
			editions[edition.value] = count
		}
		snapshot.Books = append(snapshot.Books, BookSnapshot{
			Title:         book.title,
			Authors:       book.Authors(),
			PublishedYear: book.publishedYear,
			Editions:      editions,
			RentalFee:     book.rentalFee,
		})
	}
	for _, member := range system.members {
		memberSnapshot := MemberSnapshot{
			Name:      member.name.value,
			Balance:   member.balance,
			FeePolicy: member.policy.Kind().String(),
			Loans:     make([]LoanSnapshot, 0, len(member.loans)),
		}
		if rate, ok := member.policy.DiscountRate(); ok {
			value := rate.value
			memberSnapshot.DiscountRate = &value
		}
		for _, loan := range member.Loans() {
			memberSnapshot.Loans = append(memberSnapshot.Loans, LoanSnapshot{
				Title:   loan.title,
				Edition: loan.edition.value,
				DueAt:   loan.dueAt,
			})
		}
		snapshot.Members = append(snapshot.Members, memberSnapshot)
	}
	return snapshot
}

// RestoreSystem rebuilds a System, validating every value on the way in.
func RestoreSystem(snapshot SystemSnapshot) (*System, error) {
	id, err := NewLibraryID(snapshot.LibraryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSystemNotInitialized, err)
	}
	lateFee, err := NewLateFeePercentage(snapshot.LateFeePercentage)
	if err != nil {
		return nil, err
	}
	books := make([]*Book, 0, len(snapshot.Books))
	for _, bookSnapshot := range snapshot.Books {
		book, err := restoreBook(bookSnapshot)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	library, err := NewLibrary(books, lateFee)
	if err != nil {
		return nil, err
	}
	system, err := newSystemWithID(id, library, nil)
	if err != nil {
		return nil, err
	}
	for _, memberSnapshot := range snapshot.Members {
		member, err := restoreMember(library, memberSnapshot)
		if err != nil {
			return nil, err
		}
		if err := system.AddMember(member); err != nil {
			return nil, err
		}
	}
	return system, nil
}

func restoreBook(snapshot BookSnapshot) (*Book, error) {
	editions := make(map[EditionID]int, len(snapshot.Editions))
	for raw, count := range snapshot.Editions {
		edition, err := NewEditionID(raw)
		if err != nil {
			return nil, err
		}
		editions[edition] = count
	}
	return NewBook(snapshot.Title, snapshot.Authors, snapshot.PublishedYear, editions, snapshot.RentalFee)
}

func restoreMember(library *Library, snapshot MemberSnapshot) (*Member, error) {
	name, err := NewMemberName(snapshot.Name)
	if err != nil {
		return nil, err
	}
	kind, err := ParseFeePolicyKind(snapshot.FeePolicy)
	if err != nil {
		return nil, err
	}
	var member *Member
	switch kind {
	case FeePolicyDiscounted:
		if snapshot.DiscountRate == nil {
			return nil, fmt.Errorf("%w: member %q has no discount rate", ErrInvalidDiscountRate, snapshot.Name)
		}
		rate, err := NewDiscountRate(*snapshot.DiscountRate)
		if err != nil {
			return nil, err
		}
		member = NewDiscountedMember(name, snapshot.Balance, rate)
	default:
		member = NewMember(name, snapshot.Balance)
	}
	for _, loanSnapshot := range snapshot.Loans {
		book, err := library.FindByTitle(loanSnapshot.Title)
		if err != nil {
			return nil, fmt.Errorf("restore loan of %q: %w", snapshot.Name, err)
		}
		edition, err := NewEditionID(loanSnapshot.Edition)
		if err != nil {
			return nil, err
		}
		key := book.Key()
		if _, duplicate := member.loans[key]; duplicate {
			return nil, fmt.Errorf("%w: %q holds %q twice", ErrAlreadyExists, snapshot.Name, loanSnapshot.Title)
		}
		member.loans[key] = Loan{
			book:    key,
			title:   book.title,
			edition: edition,
			dueAt:   loanSnapshot.DueAt,
		}
	}
	return member, nil
}
