package setting

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// FineRateKey names the setting holding the daily fine rate in percent of the book price
const FineRateKey = "fine_rate_percent"

// MaxFineRatePercent bounds the rate an administrator may configure
const MaxFineRatePercent = 100

// ErrInvalidRate is returned when a rate outside 0..MaxFineRatePercent is submitted
var ErrInvalidRate = errors.New("fine rate must be between 0 and 100")

// Store is the settings persistence the service depends on
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Service resolves runtime settings with compiled fallbacks
type Service struct {
	repo            Store
	defaultFineRate int
	log             zerolog.Logger
}

// NewService creates a settings service falling back to defaultFineRate
func NewService(repo Store, defaultFineRate int, log zerolog.Logger) *Service {
	return &Service{repo: repo, defaultFineRate: defaultFineRate, log: log}
}

// FineRatePercent returns the configured rate. A missing, unreadable or invalid
// setting yields the default; lookup failures are logged, never returned.
func (s *Service) FineRatePercent(ctx context.Context) int {
	rate, _ := s.resolveFineRate(ctx)
	return rate
}

// FineRate returns the effective rate and whether it came from the stored setting
func (s *Service) FineRate(ctx context.Context) (int, bool) {
	return s.resolveFineRate(ctx)
}

func (s *Service) resolveFineRate(ctx context.Context) (int, bool) {
	value, ok, err := s.repo.Get(ctx, FineRateKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("Falling back to default fine rate")
		return s.defaultFineRate, false
	}
	if !ok {
		return s.defaultFineRate, false
	}

	rate, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || rate < 0 {
		s.log.Warn().Str("value", value).Msg("Ignoring unparseable fine rate setting")
		return s.defaultFineRate, false
	}
	return rate, true
}

// SetFineRate stores a new fine rate
func (s *Service) SetFineRate(ctx context.Context, rate int) error {
	if rate < 0 || rate > MaxFineRatePercent {
		return ErrInvalidRate
	}
	return s.repo.Set(ctx, FineRateKey, strconv.Itoa(rate))
}
