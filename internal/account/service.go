package account

import (
	"context"
	"errors"
)

// ErrStaffNotFound is returned when the acting account has no staff profile
var ErrStaffNotFound = errors.New("staff profile not found")

// Store is the profile lookup the service depends on
type Store interface {
	GetStaffByAccountID(ctx context.Context, accountID int64) (*Staff, error)
	GetReaderByAccountID(ctx context.Context, accountID int64) (*Reader, error)
}

// Service maps authenticated accounts to staff and reader profiles
type Service struct {
	repo Store
}

// NewService creates a new account service
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// ResolveStaff returns the staff profile acting for accountID
func (s *Service) ResolveStaff(ctx context.Context, accountID int64) (*Staff, error) {
	staff, err := s.repo.GetStaffByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		return nil, ErrStaffNotFound
	}
	return staff, nil
}

// ResolveReader returns the reader profile of accountID. A missing profile is not an
// error: callers treat it like a reader without a card.
func (s *Service) ResolveReader(ctx context.Context, accountID int64) (*Reader, error) {
	return s.repo.GetReaderByAccountID(ctx, accountID)
}
