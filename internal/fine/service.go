package fine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fkhayef/library/internal/account"
	"github.com/fkhayef/library/internal/borrow"
	"github.com/fkhayef/library/internal/logger"
	"github.com/fkhayef/library/internal/notification"
)

// Common errors
var (
	ErrFineNotFound      = errors.New("fine not found")
	ErrFineAlreadyPaid   = errors.New("fine has already been paid")
	ErrPaidFineImmutable = errors.New("cannot delete a paid fine")
	ErrInvalidStatus     = errors.New("invalid fine status filter")
	ErrBorrowNotFound    = errors.New("borrow request not found")
)

// Store is the fine persistence the service depends on
type Store interface {
	InsertOverdue(ctx context.Context, f *Fine) (bool, error)
	GetByID(ctx context.Context, id int64) (*Fine, error)
	List(ctx context.Context, filter ListFilter) ([]*View, int, error)
	Totals(ctx context.Context) (*Totals, error)
	ListByCard(ctx context.Context, cardID int64) ([]*View, error)
	ListByBorrow(ctx context.Context, borrowRequestID int64) ([]*View, error)
	MarkPaid(ctx context.Context, id, staffID int64, paidAt time.Time) (*Fine, error)
	MarkAllPaid(ctx context.Context, borrowRequestID, staffID int64, paidAt time.Time) (int64, error)
	DeletePending(ctx context.Context, id int64) (bool, error)
}

// BorrowStore reads the borrow requests fines hang off
type BorrowStore interface {
	GetByID(ctx context.Context, id int64) (*borrow.Request, error)
	ListOverdueWithoutFines(ctx context.Context) ([]*borrow.OverdueCandidate, error)
}

// Accounts resolves the acting staff member and the calling reader
type Accounts interface {
	ResolveStaff(ctx context.Context, accountID int64) (*account.Staff, error)
	ResolveReader(ctx context.Context, accountID int64) (*account.Reader, error)
}

// RateProvider supplies the daily fine rate in percent of the book price
type RateProvider interface {
	FineRatePercent(ctx context.Context) int
}

// Notifier tells a card holder about changes to their fines
type Notifier interface {
	NotifyCardHolder(ctx context.Context, cardID int64, message, entityType string, entityID int64) error
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithNotifier enables reader notifications
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// Service handles fine business logic
type Service struct {
	repo     Store
	borrows  BorrowStore
	accounts Accounts
	rates    RateProvider
	notifier Notifier
	now      func() time.Time
	log      zerolog.Logger
}

// NewService creates a new fine service
func NewService(repo Store, borrows BorrowStore, accounts Accounts, rates RateProvider, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		borrows:  borrows,
		accounts: accounts,
		rates:    rates,
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Materialize creates the overdue fine for every overdue borrow that has none yet and
// returns how many were created. Borrows without detail lines, without a priced copy,
// or not actually late by the calendar are skipped. Safe to call repeatedly and concurrently.
func (s *Service) Materialize(ctx context.Context) (int, error) {
	rate := s.rates.FineRatePercent(ctx)
	today := s.now()

	candidates, err := s.borrows.ListOverdueWithoutFines(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, c := range candidates {
		if c.BookCopyID == nil || c.DueDate == nil {
			continue
		}
		if !c.Price.Valid || !c.Price.Decimal.IsPositive() {
			continue
		}
		days := DaysOverdue(today, *c.DueDate)
		if days <= 0 {
			continue
		}

		f := &Fine{
			BorrowRequestID: c.BorrowRequestID,
			LibraryCardID:   c.LibraryCardID,
			BookCopyID:      c.BookCopyID,
			Amount:          Amount(c.Price.Decimal, rate, days),
			Reason:          OverdueReason(days, rate),
		}
		ok, err := s.repo.InsertOverdue(ctx, f)
		if err != nil {
			return created, err
		}
		if !ok {
			continue
		}
		created++

		s.notify(ctx, f.LibraryCardID, f.ID,
			fmt.Sprintf("An overdue fine of %s was issued for borrow #%d (%d days late)", f.Amount.StringFixed(2), f.BorrowRequestID, days))
	}

	if created > 0 {
		s.logFor(ctx).Info().Int("created", created).Int("rate_percent", rate).Msg("Materialized overdue fines")
	}
	return created, nil
}

// ListResult is one page of the staff fine listing
type ListResult struct {
	Fines  []*View
	Total  int
	Totals *Totals
}

// ListFines materializes missing overdue fines, then returns a page of fines newest
// first together with the pending and paid totals of the whole ledger
func (s *Service) ListFines(ctx context.Context, status Status, page, limit int) (*ListResult, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	if _, err := s.Materialize(ctx); err != nil {
		s.logFor(ctx).Error().Err(err).Msg("Failed to materialize overdue fines")
	}

	fines, total, err := s.repo.List(ctx, ListFilter{Status: status, Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, err
	}

	return &ListResult{Fines: fines, Total: total, Totals: totals}, nil
}

// MyFines are the fines on the calling reader's card
type MyFines struct {
	Fines   []*View
	Pending decimal.Decimal
	Paid    decimal.Decimal
}

// ListMyFines returns every fine on the reader's card with pending and paid sums.
// A reader without a card simply has no fines.
func (s *Service) ListMyFines(ctx context.Context, readerAccountID int64) (*MyFines, error) {
	result := &MyFines{Fines: []*View{}, Pending: decimal.Zero, Paid: decimal.Zero}

	reader, err := s.accounts.ResolveReader(ctx, readerAccountID)
	if err != nil {
		return nil, err
	}
	if !reader.HasCard() {
		return result, nil
	}

	fines, err := s.repo.ListByCard(ctx, *reader.LibraryCardID)
	if err != nil {
		return nil, err
	}

	result.Fines = fines
	for _, f := range fines {
		switch f.Status {
		case StatusPending:
			result.Pending = result.Pending.Add(f.Amount)
		case StatusPaid:
			result.Paid = result.Paid.Add(f.Amount)
		}
	}
	return result, nil
}

// ListBorrowFines returns every fine of one borrow request
func (s *Service) ListBorrowFines(ctx context.Context, borrowRequestID int64) ([]*View, error) {
	req, err := s.borrows.GetByID(ctx, borrowRequestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrBorrowNotFound
	}
	return s.repo.ListByBorrow(ctx, borrowRequestID)
}

// PayFine records payment of a pending fine collected by the acting staff member
func (s *Service) PayFine(ctx context.Context, fineID, staffAccountID int64) (*Fine, error) {
	f, err := s.repo.GetByID(ctx, fineID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrFineNotFound
	}
	if f.Status == StatusPaid {
		return nil, ErrFineAlreadyPaid
	}

	staff, err := s.accounts.ResolveStaff(ctx, staffAccountID)
	if err != nil {
		return nil, err
	}

	paid, err := s.repo.MarkPaid(ctx, fineID, staff.ID, s.now())
	if err != nil {
		return nil, err
	}
	if paid == nil {
		// lost a race with another payment or a deletion
		return nil, s.stateOf(ctx, fineID, ErrFineAlreadyPaid)
	}

	s.logFor(ctx).Info().Int64("fine_id", paid.ID).Int64("staff_id", staff.ID).Str("amount", paid.Amount.String()).Msg("Fine paid")
	s.notify(ctx, paid.LibraryCardID, paid.ID, fmt.Sprintf("Your fine of %s has been paid", paid.Amount.StringFixed(2)))

	return paid, nil
}

// PayAllFines settles every pending fine of a borrow request and returns how many were paid
func (s *Service) PayAllFines(ctx context.Context, borrowRequestID, staffAccountID int64) (int64, error) {
	staff, err := s.accounts.ResolveStaff(ctx, staffAccountID)
	if err != nil {
		return 0, err
	}

	updated, err := s.repo.MarkAllPaid(ctx, borrowRequestID, staff.ID, s.now())
	if err != nil {
		return 0, err
	}
	if updated == 0 {
		return 0, nil
	}

	s.logFor(ctx).Info().Int64("borrow_request_id", borrowRequestID).Int64("paid", updated).Msg("Borrow fines paid")
	if req, err := s.borrows.GetByID(ctx, borrowRequestID); err == nil && req != nil {
		s.notifyEntity(ctx, req.LibraryCardID, notification.EntityBorrow, borrowRequestID,
			fmt.Sprintf("%d fine(s) on borrow #%d have been paid", updated, borrowRequestID))
	}

	return updated, nil
}

// DeleteFine permanently removes a pending fine. Paid fines are kept as history.
func (s *Service) DeleteFine(ctx context.Context, fineID int64) error {
	f, err := s.repo.GetByID(ctx, fineID)
	if err != nil {
		return err
	}
	if f == nil {
		return ErrFineNotFound
	}
	if f.Status == StatusPaid {
		return ErrPaidFineImmutable
	}

	deleted, err := s.repo.DeletePending(ctx, fineID)
	if err != nil {
		return err
	}
	if !deleted {
		return s.stateOf(ctx, fineID, ErrPaidFineImmutable)
	}

	s.logFor(ctx).Info().Int64("fine_id", fineID).Msg("Fine deleted")
	return nil
}

// stateOf explains why a guarded update touched no row
func (s *Service) stateOf(ctx context.Context, fineID int64, whenPaid error) error {
	f, err := s.repo.GetByID(ctx, fineID)
	if err != nil {
		return err
	}
	if f == nil {
		return ErrFineNotFound
	}
	return whenPaid
}

func (s *Service) notify(ctx context.Context, cardID, fineID int64, message string) {
	s.notifyEntity(ctx, cardID, notification.EntityFine, fineID, message)
}

func (s *Service) notifyEntity(ctx context.Context, cardID int64, entityType string, entityID int64, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyCardHolder(ctx, cardID, message, entityType, entityID); err != nil {
		s.logFor(ctx).Warn().Err(err).Int64("library_card_id", cardID).Msg("Failed to notify card holder")
	}
}

// logFor prefers the request scoped logger carried by ctx
func (s *Service) logFor(ctx context.Context) *zerolog.Logger {
	log := logger.FromContext(ctx, s.log)
	return &log
}
