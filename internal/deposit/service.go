package deposit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fkhayef/library/internal/account"
	"github.com/fkhayef/library/internal/card"
	"github.com/fkhayef/library/internal/logger"
	"github.com/fkhayef/library/internal/notification"
)

// Common errors
var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidType         = errors.New("invalid transaction type filter")
	ErrCardNotFound        = errors.New("library card not found")
	ErrInsufficientDeposit = errors.New("refund amount exceeds deposit balance")
	ErrActiveBorrows       = errors.New("cannot refund while books are borrowed")
	ErrPendingFines        = errors.New("pending fines must be paid before refund")
)

// DefaultRefundNote is stored on refunds recorded without notes
const DefaultRefundNote = "Deposit refund"

// Store is the ledger persistence the service depends on
type Store interface {
	Record(ctx context.Context, t *Transaction) error
	List(ctx context.Context, filter ListFilter) ([]*View, int, error)
	ListByCard(ctx context.Context, cardID int64) ([]*View, error)
	Discrepancies(ctx context.Context) ([]*Discrepancy, error)
}

// Cards reads library cards and their stored balance
type Cards interface {
	GetByID(ctx context.Context, id int64) (*card.Card, error)
}

// BorrowCounter counts loans still out on a card
type BorrowCounter interface {
	CountActiveByCard(ctx context.Context, cardID int64) (int, error)
}

// FineCounter counts unpaid fines on a card
type FineCounter interface {
	CountPendingByCard(ctx context.Context, cardID int64) (int, error)
}

// Accounts resolves the acting staff member and the calling reader
type Accounts interface {
	ResolveStaff(ctx context.Context, accountID int64) (*account.Staff, error)
	ResolveReader(ctx context.Context, accountID int64) (*account.Reader, error)
}

// Notifier tells a card holder about ledger movements
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

// Service handles deposit ledger business logic
type Service struct {
	repo     Store
	cards    Cards
	borrows  BorrowCounter
	fines    FineCounter
	accounts Accounts
	notifier Notifier
	now      func() time.Time
	log      zerolog.Logger
}

// NewService creates a new deposit service
func NewService(repo Store, cards Cards, borrows BorrowCounter, fines FineCounter, accounts Accounts, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		cards:    cards,
		borrows:  borrows,
		fines:    fines,
		accounts: accounts,
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListDeposits retrieves a page of ledger entries across cards, newest first
func (s *Service) ListDeposits(ctx context.Context, txType Type, cardID *int64, page, limit int) ([]*View, int, error) {
	if txType != "" && !txType.Valid() {
		return nil, 0, ErrInvalidType
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	return s.repo.List(ctx, ListFilter{
		Type:          txType,
		LibraryCardID: cardID,
		Limit:         limit,
		Offset:        (page - 1) * limit,
	})
}

// MyDeposits is the ledger of the calling reader's card
type MyDeposits struct {
	Transactions  []*View
	Balance       decimal.Decimal // deposits minus refunds
	StoredBalance decimal.Decimal // the card's running balance
}

// Consistent reports whether the ledger and the running balance agree
func (m *MyDeposits) Consistent() bool {
	return m.Balance.Equal(m.StoredBalance)
}

// ListMyDeposits returns the reader's ledger and balance. A reader without a card has
// an empty ledger and a zero balance.
func (s *Service) ListMyDeposits(ctx context.Context, readerAccountID int64) (*MyDeposits, error) {
	result := &MyDeposits{Transactions: []*View{}, Balance: decimal.Zero, StoredBalance: decimal.Zero}

	reader, err := s.accounts.ResolveReader(ctx, readerAccountID)
	if err != nil {
		return nil, err
	}
	if !reader.HasCard() {
		return result, nil
	}
	cardID := *reader.LibraryCardID

	txs, err := s.repo.ListByCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	result.Transactions = txs
	result.Balance = Balance(txs)

	c, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if c != nil {
		result.StoredBalance = c.DepositAmount
	}

	if !result.Consistent() {
		s.logFor(ctx).Warn().
			Int64("library_card_id", cardID).
			Str("ledger_balance", result.Balance.String()).
			Str("stored_balance", result.StoredBalance.String()).
			Msg("Deposit balance does not match ledger")
	}

	return result, nil
}

// CreateDeposit records money taken onto a card
func (s *Service) CreateDeposit(ctx context.Context, cardID int64, amount decimal.Decimal, notes *string, staffAccountID int64) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	c, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCardNotFound
	}

	staff, err := s.accounts.ResolveStaff(ctx, staffAccountID)
	if err != nil {
		return nil, err
	}

	t, err := s.record(ctx, TypeDeposit, c.ID, staff.ID, amount, notes)
	if err != nil {
		return nil, err
	}

	s.logFor(ctx).Info().Int64("library_card_id", c.ID).Str("amount", amount.String()).Str("reference", t.Reference.String()).Msg("Deposit recorded")
	s.notify(ctx, c.ID, t.ID, fmt.Sprintf("A deposit of %s was added to card %s", amount.StringFixed(2), c.CardNumber))

	return t, nil
}

// RefundDeposit pays money back from a card. The card must hold enough, have no books
// out and no unpaid fines.
func (s *Service) RefundDeposit(ctx context.Context, cardID int64, amount decimal.Decimal, notes *string, staffAccountID int64) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	c, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCardNotFound
	}

	if amount.GreaterThan(c.DepositAmount) {
		return nil, ErrInsufficientDeposit
	}

	active, err := s.borrows.CountActiveByCard(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, ErrActiveBorrows
	}

	pending, err := s.fines.CountPendingByCard(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, ErrPendingFines
	}

	staff, err := s.accounts.ResolveStaff(ctx, staffAccountID)
	if err != nil {
		return nil, err
	}

	if notes == nil || *notes == "" {
		note := DefaultRefundNote
		notes = &note
	}

	t, err := s.record(ctx, TypeRefund, c.ID, staff.ID, amount, notes)
	if err != nil {
		return nil, err
	}

	s.logFor(ctx).Info().Int64("library_card_id", c.ID).Str("amount", amount.String()).Str("reference", t.Reference.String()).Msg("Deposit refunded")
	s.notify(ctx, c.ID, t.ID, fmt.Sprintf("A refund of %s was paid from card %s", amount.StringFixed(2), c.CardNumber))

	return t, nil
}

// Reconcile returns every card whose stored balance disagrees with its ledger
func (s *Service) Reconcile(ctx context.Context) ([]*Discrepancy, error) {
	found, err := s.repo.Discrepancies(ctx)
	if err != nil {
		return nil, err
	}

	for _, d := range found {
		s.logFor(ctx).Warn().
			Int64("library_card_id", d.LibraryCardID).
			Str("stored_balance", d.StoredBalance.String()).
			Str("ledger_balance", d.LedgerBalance.String()).
			Msg("Deposit balance does not match ledger")
	}
	return found, nil
}

func (s *Service) record(ctx context.Context, txType Type, cardID, staffID int64, amount decimal.Decimal, notes *string) (*Transaction, error) {
	ref, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate receipt reference: %w", err)
	}

	t := &Transaction{
		Reference:       ref,
		LibraryCardID:   cardID,
		StaffID:         staffID,
		Amount:          amount.Round(2),
		Type:            txType,
		TransactionDate: s.now(),
		Notes:           notes,
	}
	if err := s.repo.Record(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) notify(ctx context.Context, cardID, txID int64, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyCardHolder(ctx, cardID, message, notification.EntityDeposit, txID); err != nil {
		s.logFor(ctx).Warn().Err(err).Int64("library_card_id", cardID).Msg("Failed to notify card holder")
	}
}

// logFor prefers the request scoped logger carried by ctx
func (s *Service) logFor(ctx context.Context) *zerolog.Logger {
	log := logger.FromContext(ctx, s.log)
	return &log
}
