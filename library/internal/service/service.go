package service

import (
	"github.com/Astemirdum/library-circulation/library/internal/clock"
	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/fee"
	"github.com/Astemirdum/library-circulation/library/internal/repository"
	"github.com/Astemirdum/library-circulation/pkg/validate"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultStatusWorkers = 4
	patronIDLen          = 6
)

type Service struct {
	log   *zap.Logger
	repo  repository.Repository
	clock clock.Clock
	fees  fee.Policy
	valid *validate.CustomValidator

	rejectDuplicateBorrow bool
	statusWorkers         int
}

type Option func(s *Service)

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

func WithFeePolicy(p fee.Policy) Option {
	return func(s *Service) {
		s.fees = p
	}
}

// WithDuplicateBorrowCheck toggles rejection of a second open borrow of the same book by one patron.
func WithDuplicateBorrowCheck(enabled bool) Option {
	return func(s *Service) {
		s.rejectDuplicateBorrow = enabled
	}
}

func WithStatusWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.statusWorkers = n
		}
	}
}

func NewService(repo repository.Repository, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:                   log.Named("service"),
		repo:                  repo,
		clock:                 clock.Real{},
		fees:                  fee.Tiered{},
		valid:                 validate.NewCustomValidator(),
		rejectDuplicateBorrow: true,
		statusWorkers:         defaultStatusWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidPatronID reports whether id is a library card number of exactly six ASCII digits.
func ValidPatronID(id string) bool {
	return validate.Digits(id, patronIDLen)
}

func (s *Service) storeErr(op, msg string, err error) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return err
	}
	s.log.Error(op, zap.Error(err))
	return errs.Wrap(errs.ReasonStoreError, msg, err)
}
