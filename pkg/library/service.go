package library

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is the persistence contract used by Service. The whole aggregate is
// loaded and saved as one snapshot; Load fails with ErrSystemNotInitialized when nothing was saved.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error
	Load(ctx context.Context) (SystemSnapshot, error)
	Save(ctx context.Context, snapshot SystemSnapshot) error
}

// Service runs lending operations against a Store: load, mutate, save.
type Service struct {
	store         Store
	nowFn         func() time.Time
	logger        OperationLogger
	operationIDFn func() string
}

// NewService wires a Service.
func NewService(store Store, now func() time.Time, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	service := &Service{store: store, nowFn: now, operationIDFn: uuid.NewString}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// CreateLibrary replaces any stored system with a fresh one holding the given catalog.
func (service *Service) CreateLibrary(ctx context.Context, books []*Book, lateFee LateFeePercentage) (LibraryID, error) {
	var id LibraryID
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		library, err := NewLibrary(books, lateFee)
		if err != nil {
			return err
		}
		system, err := NewSystem(library, nil)
		if err != nil {
			return err
		}
		id = system.ID()
		return transactionStore.Save(ctx, system.Snapshot())
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationCreateLibrary,
		Amount:    lateFee.value,
		Error:     operationError,
	})
	return id, operationError
}

// AddMember enrolls a member.
func (service *Service) AddMember(ctx context.Context, member *Member) error {
	operationError := service.mutate(ctx, func(system *System) error {
		return system.AddMember(member)
	})
	entry := OperationLog{Operation: operationAddMember, Error: operationError}
	if member != nil {
		entry.Member = member.name.value
		entry.Amount = member.balance
	}
	service.logOperation(ctx, entry)
	return operationError
}

// RemoveMember drops a member without outstanding loans.
func (service *Service) RemoveMember(ctx context.Context, name MemberName) error {
	operationError := service.mutate(ctx, func(system *System) error {
		return system.RemoveMember(name)
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationRemoveMember,
		Member:    name.value,
		Error:     operationError,
	})
	return operationError
}

// Deposit credits a member's balance.
func (service *Service) Deposit(ctx context.Context, name MemberName, amount decimal.Decimal) error {
	operationError := service.mutate(ctx, func(system *System) error {
		return system.Deposit(name, amount)
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationDeposit,
		Member:    name.value,
		Amount:    amount,
		Error:     operationError,
	})
	return operationError
}

// AddBook appends a book to the catalog.
func (service *Service) AddBook(ctx context.Context, book *Book) error {
	operationError := service.mutate(ctx, func(system *System) error {
		return system.AddBook(book)
	})
	entry := OperationLog{Operation: operationAddBook, Error: operationError}
	if book != nil {
		entry.Title = book.title
	}
	service.logOperation(ctx, entry)
	return operationError
}

// RemoveBook drops a book nobody holds.
func (service *Service) RemoveBook(ctx context.Context, title string) error {
	operationError := service.mutate(ctx, func(system *System) error {
		return system.RemoveBook(title)
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationRemoveBook,
		Title:     title,
		Error:     operationError,
	})
	return operationError
}

// AddEdition restocks one copy of an edition.
func (service *Service) AddEdition(ctx context.Context, title string, edition EditionID) error {
	operationError := service.mutate(ctx, func(system *System) error {
		return system.library.AddEdition(title, edition)
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationAddEdition,
		Title:     title,
		Edition:   edition.value,
		Error:     operationError,
	})
	return operationError
}

// RemoveEdition takes one copy of an edition out of stock.
func (service *Service) RemoveEdition(ctx context.Context, title string, edition EditionID) error {
	operationError := service.mutate(ctx, func(system *System) error {
		return system.library.RemoveEdition(title, edition)
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationRemoveEdition,
		Title:     title,
		Edition:   edition.value,
		Error:     operationError,
	})
	return operationError
}

// Borrow lends an edition to a member.
func (service *Service) Borrow(ctx context.Context, name MemberName, title string, edition EditionID) (Loan, error) {
	var loan Loan
	operationError := service.mutate(ctx, func(system *System) error {
		var err error
		loan, err = system.Borrow(name, title, edition, service.nowFn())
		return err
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationBorrow,
		Member:    name.value,
		Title:     title,
		Edition:   edition.value,
		Error:     operationError,
	})
	return loan, operationError
}

// Return bills the member and restocks the book.
func (service *Service) Return(ctx context.Context, name MemberName, title string) (Charge, error) {
	var charge Charge
	operationError := service.mutate(ctx, func(system *System) error {
		var err error
		charge, err = system.Return(name, title, service.nowFn())
		return err
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationReturn,
		Member:    name.value,
		Title:     title,
		Amount:    charge.Total,
		Error:     operationError,
	})
	return charge, operationError
}

// Quote reports what returning a book now would cost.
func (service *Service) Quote(ctx context.Context, name MemberName, title string) (Charge, error) {
	var charge Charge
	err := service.view(ctx, func(system *System) error {
		var quoteErr error
		charge, quoteErr = system.Quote(name, title, service.nowFn())
		return quoteErr
	})
	return charge, err
}

// RemainingDue returns the signed time left on a loan.
func (service *Service) RemainingDue(ctx context.Context, name MemberName, title string) (time.Duration, error) {
	var remaining time.Duration
	err := service.view(ctx, func(system *System) error {
		var dueErr error
		remaining, dueErr = system.RemainingDue(name, title, service.nowFn())
		return dueErr
	})
	return remaining, err
}

// Member returns one member.
func (service *Service) Member(ctx context.Context, name MemberName) (*Member, error) {
	var member *Member
	err := service.view(ctx, func(system *System) error {
		var lookupErr error
		member, lookupErr = system.GetMember(name)
		return lookupErr
	})
	return member, err
}

// Members returns the roster.
func (service *Service) Members(ctx context.Context) ([]*Member, error) {
	var members []*Member
	err := service.view(ctx, func(system *System) error {
		members = system.Members()
		return nil
	})
	return members, err
}

// Book returns one book by exact title.
func (service *Service) Book(ctx context.Context, title string) (*Book, error) {
	var book *Book
	err := service.view(ctx, func(system *System) error {
		var lookupErr error
		book, lookupErr = system.GetBook(title)
		return lookupErr
	})
	return book, err
}

// Books returns the catalog.
func (service *Service) Books(ctx context.Context) ([]*Book, error) {
	var books []*Book
	err := service.view(ctx, func(system *System) error {
		books = system.Books()
		return nil
	})
	return books, err
}

// SearchByTitle returns the first fuzzy title match.
func (service *Service) SearchByTitle(ctx context.Context, query string) (*Book, bool, error) {
	var (
		book  *Book
		found bool
	)
	err := service.view(ctx, func(system *System) error {
		book, found = system.library.SearchByTitle(query)
		return nil
	})
	return book, found, err
}

// SearchByAuthor returns every fuzzy author match.
func (service *Service) SearchByAuthor(ctx context.Context, query string) ([]*Book, error) {
	var books []*Book
	err := service.view(ctx, func(system *System) error {
		books = system.library.SearchByAuthor(query)
		return nil
	})
	return books, err
}

// mutate saves only when fn succeeds.
func (service *Service) mutate(ctx context.Context, fn func(system *System) error) error {
	return service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		system, err := loadSystem(ctx, transactionStore)
		if err != nil {
			return err
		}
		if err := fn(system); err != nil {
			return err
		}
		return transactionStore.Save(ctx, system.Snapshot())
	})
}

func (service *Service) view(ctx context.Context, fn func(system *System) error) error {
	system, err := loadSystem(ctx, service.store)
	if err != nil {
		return err
	}
	return fn(system)
}

func loadSystem(ctx context.Context, store Store) (*System, error) {
	snapshot, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return RestoreSystem(snapshot)
}

func (service *Service) logOperation(ctx context.Context, entry OperationLog) {
	if service.logger == nil {
		return
	}
	if entry.OperationID == "" {
		entry.OperationID = service.operationIDFn()
	}
	if entry.Status == "" {
		if entry.Error != nil {
			entry.Status = operationStatusError
		} else {
			entry.Status = operationStatusOK
		}
	}
	service.logger.LogOperation(ctx, entry)
}
