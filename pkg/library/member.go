package library

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// FeePolicyKind tags the rental-fee rule a member is billed under.
type FeePolicyKind string

const (
	FeePolicyStandard   FeePolicyKind = "standard"
	FeePolicyDiscounted FeePolicyKind = "discounted"
)

// ParseFeePolicyKind validates a stored policy tag.
func ParseFeePolicyKind(raw string) (FeePolicyKind, error) {
	switch FeePolicyKind(raw) {
	case FeePolicyStandard, FeePolicyDiscounted:
		return FeePolicyKind(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFeePolicy, raw)
	}
}

// String returns the tag value.
func (kind FeePolicyKind) String() string {
	return string(kind)
}

// FeePolicy is the rental-fee rule of a member: either the book's flat fee or a discounted share of it.
type FeePolicy struct {
	kind         FeePolicyKind
	discountRate DiscountRate
}

// StandardFeePolicy charges the book's flat rental fee.
func StandardFeePolicy() FeePolicy {
	return FeePolicy{kind: FeePolicyStandard}
}

// DiscountedFeePolicy charges rentalFee * rate / 100.
func DiscountedFeePolicy(rate DiscountRate) FeePolicy {
	return FeePolicy{kind: FeePolicyDiscounted, discountRate: rate}
}

// Kind returns the policy tag.
func (policy FeePolicy) Kind() FeePolicyKind {
	if policy.kind == "" {
		return FeePolicyStandard
	}
	return policy.kind
}

// DiscountRate returns the rate for discounted policies.
func (policy FeePolicy) DiscountRate() (DiscountRate, bool) {
	if policy.kind != FeePolicyDiscounted {
		return DiscountRate{}, false
	}
	return policy.discountRate, true
}

// RentalFee computes the base fee this policy charges for the book.
func (policy FeePolicy) RentalFee(book *Book) decimal.Decimal {
	switch policy.kind {
	case FeePolicyDiscounted:
		return book.rentalFee.Mul(policy.discountRate.value).Div(hundred)
	default:
		return book.rentalFee
	}
}

// Loan is a ledger record: which edition of a book a member holds and when it is due back.
// Edition and due date live in one record so neither can exist without the other.
type Loan struct {
	book    BookKey
	title   string
	edition EditionID
	dueAt   time.Time
}

// Book returns the identity of the borrowed book.
func (loan Loan) Book() BookKey {
	return loan.book
}

// Title returns the borrowed book's title.
func (loan Loan) Title() string {
	return loan.title
}

// Edition returns the edition held.
func (loan Loan) Edition() EditionID {
	return loan.edition
}

// DueAt returns the absolute due timestamp.
func (loan Loan) DueAt() time.Time {
	return loan.dueAt
}

// Member is a library patron with a balance and a lending ledger.
type Member struct {
	name    MemberName
	balance decimal.Decimal
	policy  FeePolicy
	loans   map[BookKey]Loan
	library LibraryID
}

// NewMember builds a standard member with an empty ledger.
func NewMember(name MemberName, balance decimal.Decimal) *Member {
	return newMember(name, balance, StandardFeePolicy())
}

// NewDiscountedMember builds a member whose rental fee is scaled by rate.
func NewDiscountedMember(name MemberName, balance decimal.Decimal, rate DiscountRate) *Member {
	return newMember(name, balance, DiscountedFeePolicy(rate))
}

func newMember(name MemberName, balance decimal.Decimal, policy FeePolicy) *Member {
	return &Member{
		name:    name,
		balance: balance,
		policy:  policy,
		loans:   make(map[BookKey]Loan),
	}
}

// Name returns the member name.
func (member *Member) Name() MemberName {
	return member.name
}

// Balance returns the current balance.
func (member *Member) Balance() decimal.Decimal {
	return member.balance
}

// FeePolicy returns the member's rental-fee rule.
func (member *Member) FeePolicy() FeePolicy {
	return member.policy
}

// LibraryID returns the library the member joined, if any.
func (member *Member) LibraryID() (LibraryID, bool) {
	return member.library, !member.library.IsZero()
}

// BorrowedCount returns the number of books currently held.
func (member *Member) BorrowedCount() int {
	return len(member.loans)
}

// Loan returns the ledger record for a book.
func (member *Member) Loan(key BookKey) (Loan, bool) {
	loan, ok := member.loans[key]
	return loan, ok
}

// Loans returns the ledger ordered by title.
func (member *Member) Loans() []Loan {
	out := make([]Loan, 0, len(member.loans))
	for _, loan := range member.loans {
		out = append(out, loan)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].title < out[j].title })
	return out
}

// BorrowedBooks returns book → edition for every active loan.
func (member *Member) BorrowedBooks() map[BookKey]EditionID {
	out := make(map[BookKey]EditionID, len(member.loans))
	for key, loan := range member.loans {
		out[key] = loan.edition
	}
	return out
}

// DueDates returns book → due timestamp for every active loan.
func (member *Member) DueDates() map[BookKey]time.Time {
	out := make(map[BookKey]time.Time, len(member.loans))
	for key, loan := range member.loans {
		out[key] = loan.dueAt
	}
	return out
}

// RemainingDue returns the signed time left until the book is due; negative means overdue.
func (member *Member) RemainingDue(book *Book, now time.Time) (time.Duration, error) {
	loan, ok := member.loans[book.Key()]
	if !ok {
		return 0, fmt.Errorf("%w: %q has not borrowed %q", ErrNotFound, member.name.value, book.title)
	}
	return loan.dueAt.Sub(now), nil
}

// Deposit credits a strictly positive amount to the balance.
func (member *Member) Deposit(amount decimal.Decimal) error {
	validated, err := NewDepositAmount(amount)
	if err != nil {
		return err
	}
	member.balance = member.balance.Add(validated)
	return nil
}

func (member *Member) joinLibrary(id LibraryID) {
	member.library = id
}

func (member *Member) leaveLibrary() {
	member.library = LibraryID{}
}
