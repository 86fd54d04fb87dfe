package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kvetinski/fintech-account/internal/domain"
)

const tracerName = "github.com/kvetinski/fintech-account/internal/service/account"

// Repository is the account store. Lookups and the phone existence check
// only see active accounts.
type Repository interface {
	GetByID(ctx context.Context, id int64) (domain.Account, error)
	GetByIDForUpdate(ctx context.Context, id int64) (domain.Account, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	Insert(ctx context.Context, acc domain.Account) (domain.Account, error)
	Update(ctx context.Context, acc domain.Account) (domain.Account, error)
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo   Repository
	now    func() time.Time
	logger *slog.Logger
	tracer trace.Tracer
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		now:    func() time.Time { return time.Now().UTC() },
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create stores a new active account. The name is required and the phone
// number is optional.
func (s *Service) Create(ctx context.Context, name, phone string) (acc domain.Account, err error) {
	ctx, span := s.tracer.Start(ctx, "account.Create")
	defer func() { endSpan(span, err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Account{}, domain.ValidationFailed("name", "Name is required")
	}
	if err = domain.ValidateName(name); err != nil {
		return domain.Account{}, err
	}

	phone = strings.TrimSpace(phone)
	if err = s.checkPhone(ctx, phone); err != nil {
		return domain.Account{}, err
	}

	now := s.now()
	acc, err = s.repo.Insert(ctx, domain.Account{
		Name:        name,
		PhoneNumber: phone,
		CreatedAt:   now,
		ModifiedAt:  now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicatePhoneNumber) {
			return domain.Account{}, domain.DuplicatePhoneNumber(phone)
		}
		return domain.Account{}, err
	}

	span.SetAttributes(attribute.Int64("account.id", acc.ID))
	s.logger.InfoContext(ctx, "account created", "account_id", acc.ID)
	return acc, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (acc domain.Account, err error) {
	ctx, span := s.tracer.Start(ctx, "account.GetByID", trace.WithAttributes(attribute.Int64("account.id", id)))
	defer func() { endSpan(span, err) }()

	acc, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Account{}, notFound(err, id)
	}

	return acc, nil
}

// Update applies a partial update. A blank or unchanged field is left as is;
// the phone number is validated and checked for uniqueness only when it
// actually changes. New values are validated only once the account is found.
// The modification time is refreshed on every success.
func (s *Service) Update(ctx context.Context, id int64, name, phone string) (acc domain.Account, err error) {
	ctx, span := s.tracer.Start(ctx, "account.Update", trace.WithAttributes(attribute.Int64("account.id", id)))
	defer func() { endSpan(span, err) }()

	phone = strings.TrimSpace(phone)
	err = s.repo.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, id)
		}

		if strings.TrimSpace(name) != "" {
			if err := domain.ValidateName(name); err != nil {
				return err
			}
		}
		current.Rename(name)
		if current.PhoneChanged(phone) {
			if err := s.checkPhone(ctx, phone); err != nil {
				return err
			}
			current.PhoneNumber = phone
		}
		current.Touch(s.now())

		acc, err = s.repo.Update(ctx, current)
		if err != nil {
			if errors.Is(err, domain.ErrDuplicatePhoneNumber) {
				return domain.DuplicatePhoneNumber(phone)
			}
			return notFound(err, id)
		}

		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}

	s.logger.InfoContext(ctx, "account updated", "account_id", id)
	return acc, nil
}

// Delete soft-deletes the account. The row is kept and disappears from all
// lookups and uniqueness checks.
func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "account.Delete", trace.WithAttributes(attribute.Int64("account.id", id)))
	defer func() { endSpan(span, err) }()

	err = s.repo.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, id)
		}

		current.SoftDelete(s.now())
		if _, err := s.repo.Update(ctx, current); err != nil {
			return notFound(err, id)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "account deleted", "account_id", id)
	return nil
}

// checkPhone validates the format and uniqueness of a non-blank phone number.
func (s *Service) checkPhone(ctx context.Context, phone string) error {
	if phone == "" {
		return nil
	}

	if !domain.IsValidE164(phone) {
		return domain.InvalidPhoneFormat(phone)
	}

	exists, err := s.repo.ExistsByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if exists {
		return domain.DuplicatePhoneNumber(phone)
	}

	return nil
}

func notFound(err error, id int64) error {
	if errors.Is(err, domain.ErrAccountNotFound) {
		return domain.AccountNotFound(id)
	}

	return err
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
