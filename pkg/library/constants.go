package library

import "time"

const (
	operationCreateLibrary = "create_library"
	operationAddMember     = "add_member"
	operationRemoveMember  = "remove_member"
	operationDeposit       = "deposit"
	operationAddBook       = "add_book"
	operationRemoveBook    = "remove_book"
	operationAddEdition    = "add_edition"
	operationRemoveEdition = "remove_edition"
	operationBorrow        = "borrow"
	operationReturn        = "return"

	operationStatusOK    = "ok"
	operationStatusError = "error"

	// maxBorrowedBooks is the hard cap on books a member may hold at once.
	maxBorrowedBooks = 2

	fuzzyMatchThreshold = 95
	authorKeySeparator  = "\x1f"
	hoursPerDay         = 24
)

// LoanPeriod is how long a borrowed book may be kept before late penalties accrue.
const LoanPeriod = 30 * time.Second
