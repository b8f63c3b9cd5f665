package dto

import "time"

type LoanListDTO struct {
	ID            string     `json:"id"`
	BookID        string     `json:"book_id"`
	BookTitle     string     `json:"book_title"`
	BookAuthor    string     `json:"book_author"`
	UserID        string     `json:"user_id"`
	BorrowerName  string     `json:"borrower_name"`
	BorrowerEmail string     `json:"borrower_email"`
	CheckedOutAt  time.Time  `json:"checked_out_at"`
	DueAt         time.Time  `json:"due_at"`
	ReturnedAt    *time.Time `json:"returned_at"`
	Status        string     `json:"status"`
	Overdue       bool       `json:"overdue"`
}
