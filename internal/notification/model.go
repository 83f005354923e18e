package notification

import "time"

// Notification is a message shown to a reader about their card
type Notification struct {
	ID                int64     `json:"id" db:"id"`
	RecipientID       int64     `json:"recipient_id" db:"recipient_id"` // login account of the reader
	Message           string    `json:"message" db:"message"`
	IsRead            bool      `json:"is_read" db:"is_read"`
	RelatedEntityType *string   `json:"related_entity_type,omitempty" db:"related_entity_type"`
	RelatedEntityID   *int64    `json:"related_entity_id,omitempty" db:"related_entity_id"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// Entity types a notification can point at
const (
	EntityFine    = "FINE"
	EntityBorrow  = "BORROW_REQUEST"
	EntityDeposit = "DEPOSIT_TRANSACTION"
)
