package book

import "github.com/kassemshdy/aspire-library/internal/httperr"

// ===============================
// Book Status
// ===============================

type Status string

const (
	StatusAvailable  Status = "AVAILABLE"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusArchived   Status = "ARCHIVED"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusAvailable, StatusCheckedOut, StatusArchived:
		return Status(s), true
	}
	return "", false
}

// ===============================
// Transitions
// ===============================

func CanCheckout(current Status) error {
	if current != StatusAvailable {
		return httperr.InvalidState("book_not_available", "Book is not available")
	}
	return nil
}

func CanReturn(current Status) error {
	if current != StatusCheckedOut {
		return httperr.InvalidState("book_not_checked_out", "Book is not currently checked out")
	}
	return nil
}

// CanArchive refuses books that are out on loan, otherwise the open loan
// would point at an archived book.
func CanArchive(current Status) error {
	switch current {
	case StatusCheckedOut:
		return httperr.InvalidState("book_checked_out", "Book is checked out and must be returned before it can be archived")
	case StatusArchived:
		return httperr.InvalidState("book_already_archived", "Book is already archived")
	}
	return nil
}

func CanUnarchive(current Status) error {
	if current != StatusArchived {
		return httperr.InvalidState("book_not_archived", "Book is not archived")
	}
	return nil
}

func CanDelete(current Status) error {
	if current == StatusCheckedOut {
		return httperr.InvalidState("book_checked_out", "Book is checked out and must be returned before it can be deleted")
	}
	return nil
}
