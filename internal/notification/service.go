package notification

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Store is the notification persistence the service depends on
type Store interface {
	Create(ctx context.Context, recipientID int64, message string, entityType *string, entityID *int64) (*Notification, error)
	GetByID(ctx context.Context, id int64) (*Notification, error)
	ListByRecipientID(ctx context.Context, recipientID int64, limit, offset int, unreadOnly bool) ([]*Notification, int, error)
	MarkAsRead(ctx context.Context, id int64) error
	MarkAllAsRead(ctx context.Context, recipientID int64) error
	GetUnreadCount(ctx context.Context, recipientID int64) (int, error)
}

// CardHolders maps a library card to the login account of its reader
type CardHolders interface {
	GetHolderAccountID(ctx context.Context, cardID int64) (int64, bool, error)
}

// Service handles notification business logic
type Service struct {
	repo    Store
	holders CardHolders
}

// NewService creates a new notification service
func NewService(repo Store, holders CardHolders) *Service {
	return &Service{repo: repo, holders: holders}
}

// NotifyCardHolder sends message to the reader owning cardID. Cards without a
// reader account are skipped silently.
func (s *Service) NotifyCardHolder(ctx context.Context, cardID int64, message, entityType string, entityID int64) error {
	recipientID, ok, err := s.holders.GetHolderAccountID(ctx, cardID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	_, err = s.repo.Create(ctx, recipientID, message, &entityType, &entityID)
	return err
}

// ListByRecipientID retrieves a page of notifications for an account
func (s *Service) ListByRecipientID(ctx context.Context, recipientID int64, page, limit int, unreadOnly bool) ([]*Notification, int, error) {
	offset := (page - 1) * limit
	return s.repo.ListByRecipientID(ctx, recipientID, limit, offset, unreadOnly)
}

// MarkAsRead marks a notification as read after checking ownership
func (s *Service) MarkAsRead(ctx context.Context, id, accountID int64) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotificationNotFound
	}
	if n.RecipientID != accountID {
		return ErrNotRecipient
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for an account
func (s *Service) MarkAllAsRead(ctx context.Context, accountID int64) error {
	return s.repo.MarkAllAsRead(ctx, accountID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, accountID int64) (int, error) {
	return s.repo.GetUnreadCount(ctx, accountID)
}
