package dto

type DashboardStatsDTO struct {
	TotalBooks      int64         `json:"total_books"`
	AvailableBooks  int64         `json:"available_books"`
	CheckedOutBooks int64         `json:"checked_out_books"`
	ArchivedBooks   int64         `json:"archived_books"`
	TotalLoans      int64         `json:"total_loans"`
	OpenLoans       int64         `json:"open_loans"`
	OverdueLoans    int64         `json:"overdue_loans"`
	RecentLoans     []LoanListDTO `json:"recent_loans"`
}

type PopularBookDTO struct {
	BookID    string  `json:"book_id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Category  *string `json:"category"`
	LoanCount int64   `json:"loan_count"`
}
