package library

import (
	"fmt"

	"github.com/google/uuid"
)

// System aggregates one library and its members. It is the unit of persistence.
type System struct {
	id      LibraryID
	library *Library
	members []*Member
}

// NewSystem creates a system with a fresh identifier and enrolls the given members.
func NewSystem(library *Library, members []*Member) (*System, error) {
	id, err := NewLibraryID(uuid.NewString())
	if err != nil {
		return nil, err
	}
	return newSystemWithID(id, library, members)
}

func newSystemWithID(id LibraryID, library *Library, members []*Member) (*System, error) {
	if library == nil {
		return nil, fmt.Errorf("%w: nil library", ErrSystemNotInitialized)
	}
	system := &System{id: id, library: library}
	for _, member := range members {
		if err := system.AddMember(member); err != nil {
			return nil, err
		}
	}
	return system, nil
}

// ID returns the system identifier members are linked to.
func (system *System) ID() LibraryID {
	return system.id
}

// Library returns the catalog.
func (system *System) Library() *Library {
	return system.library
}

// AddMember links the member to this library and appends it to the roster.
func (system *System) AddMember(member *Member) error {
	if member == nil {
		return fmt.Errorf("%w: nil member", ErrInvalidMemberName)
	}
	if _, err := system.GetMember(member.name); err == nil {
		return fmt.Errorf("%w: member %q", ErrAlreadyExists, member.name.value)
	}
	member.joinLibrary(system.id)
	system.members = append(system.members, member)
	return nil
}

// RemoveMember unlinks a member and drops it from the roster.
// Members still holding books cannot be removed.
func (system *System) RemoveMember(name MemberName) error {
	for index, member := range system.members {
		if member.name != name {
			continue
		}
		if member.BorrowedCount() > 0 {
			return fmt.Errorf("%w: %q still holds %d book(s)", ErrOutstandingLoans, name.value, member.BorrowedCount())
		}
		system.members = append(system.members[:index], system.members[index+1:]...)
		member.leaveLibrary()
		return nil
	}
	return fmt.Errorf("%w: member %q", ErrNotFound, name.value)
}

// GetMember performs an exact name lookup.
func (system *System) GetMember(name MemberName) (*Member, error) {
	for _, member := range system.members {
		if member.name == name {
			return member, nil
		}
	}
	return nil, fmt.Errorf("%w: member %q", ErrNotFound, name.value)
}

// GetBook performs an exact title lookup.
func (system *System) GetBook(title string) (*Book, error) {
	return system.library.FindByTitle(title)
}

// Members returns the roster in enrollment order.
func (system *System) Members() []*Member {
	return append([]*Member(nil), system.members...)
}

// Books returns the catalog in insertion order.
func (system *System) Books() []*Book {
	return system.library.Books()
}

// AddBook appends a book to the catalog.
func (system *System) AddBook(book *Book) error {
	return system.library.AddBook(book)
}

// RemoveBook drops a book from the catalog unless some member holds it.
func (system *System) RemoveBook(title string) error {
	book, err := system.library.FindByTitle(title)
	if err != nil {
		return err
	}
	key := book.Key()
	for _, member := range system.members {
		if _, held := member.loans[key]; held {
			return fmt.Errorf("%w: %q is borrowed by %q", ErrOutstandingLoans, title, member.name.value)
		}
	}
	system.library.removeBook(key)
	return nil
}

func (system *System) isMember(member *Member) bool {
	return !member.library.IsZero() && member.library == system.id
}
