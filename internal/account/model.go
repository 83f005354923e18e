package account

// Staff is a librarian or administrator profile linked to a login account
type Staff struct {
	ID        int64  `json:"id" db:"id"`
	AccountID int64  `json:"account_id" db:"account_id"`
	FullName  string `json:"full_name" db:"full_name"`
}

// Reader is a library member profile linked to a login account
type Reader struct {
	ID            int64   `json:"id" db:"id"`
	AccountID     int64   `json:"account_id" db:"account_id"`
	FullName      string  `json:"full_name" db:"full_name"`
	Phone         *string `json:"phone,omitempty" db:"phone"`
	LibraryCardID *int64  `json:"library_card_id,omitempty" db:"library_card_id"` // nil until a card is issued
}

// HasCard reports whether the reader holds a library card
func (r *Reader) HasCard() bool {
	return r != nil && r.LibraryCardID != nil
}
