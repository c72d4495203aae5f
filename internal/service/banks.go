package service

import (
	"context"
	"fmt"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
	"github.com/tucredito/tu-credito-api-go/internal/infra/observability"
	"github.com/tucredito/tu-credito-api-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var bankTracer = otel.Tracer("service/banks")

// BankService handles bank CRUD with case-insensitive name uniqueness.
type BankService struct {
	store   port.BankStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewBankService creates a new bank service.
func NewBankService(store port.BankStore, metrics *observability.Metrics, logger *zap.Logger) *BankService {
	return &BankService{store: store, metrics: metrics, logger: logger}
}

func (s *BankService) List(ctx context.Context, f domain.BankFilter) (domain.Page[domain.Bank], error) {
	ctx, span := bankTracer.Start(ctx, "BankService.List")
	defer span.End()

	f.Normalize()
	banks, count, err := s.store.ListBanks(ctx, f)
	if err != nil {
		return domain.Page[domain.Bank]{}, fmt.Errorf("list banks: %w", err)
	}
	return domain.NewPage(banks, count, f.Page, f.PageSize), nil
}

func (s *BankService) Get(ctx context.Context, id int64) (*domain.Bank, error) {
	ctx, span := bankTracer.Start(ctx, "BankService.Get")
	defer span.End()
	span.SetAttributes(attribute.Int64("bank.id", id))

	return s.store.GetBank(ctx, id)
}

// Create validates and persists a new bank.
func (s *BankService) Create(ctx context.Context, in *domain.BankInput) (*domain.Bank, error) {
	ctx, span := bankTracer.Start(ctx, "BankService.Create")
	defer span.End()

	fe := domain.FieldErrors{}
	s.validateFields(in, fe, false)
	if name := in.Name; name != nil && *name != "" {
		if err := s.checkNameFree(ctx, *name, 0, fe); err != nil {
			return nil, err
		}
	}
	if len(fe) > 0 {
		s.metrics.IncrValidationFailure("bank")
		return nil, &domain.ErrFieldValidation{Fields: fe}
	}

	bank := &domain.Bank{
		Name:     *in.Name,
		BankType: domain.BankType(*in.BankType),
		Address:  deref(in.Address, ""),
	}
	created, err := s.store.CreateBank(ctx, bank)
	if err != nil {
		return nil, err
	}

	s.logger.Info("bank created",
		zap.Int64("bank_id", created.ID),
		zap.String("name", created.Name),
	)
	return created, nil
}

// Update validates and persists changes to an existing bank. With
// partial=false (PUT) every required field must be supplied; with
// partial=true (PATCH) absent fields keep their stored value.
func (s *BankService) Update(ctx context.Context, id int64, in *domain.BankInput, partial bool) (*domain.Bank, error) {
	ctx, span := bankTracer.Start(ctx, "BankService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("bank.id", id))

	existing, err := s.store.GetBank(ctx, id)
	if err != nil {
		return nil, err
	}

	fe := domain.FieldErrors{}
	s.validateFields(in, fe, partial)

	name := deref(effective(in.Name, &existing.Name), "")
	if name != "" {
		if err := s.checkNameFree(ctx, name, id, fe); err != nil {
			return nil, err
		}
	}
	if len(fe) > 0 {
		s.metrics.IncrValidationFailure("bank")
		return nil, &domain.ErrFieldValidation{Fields: fe}
	}

	bank := &domain.Bank{
		ID:       id,
		Name:     name,
		BankType: domain.BankType(deref(effective(in.BankType, (*string)(&existing.BankType)), "")),
		Address:  deref(effective(in.Address, &existing.Address), ""),
	}
	updated, err := s.store.UpdateBank(ctx, bank)
	if err != nil {
		return nil, err
	}

	s.logger.Info("bank updated", zap.Int64("bank_id", id))
	return updated, nil
}

// Delete removes a bank. The store rejects the delete while credits
// reference it and clears client references otherwise.
func (s *BankService) Delete(ctx context.Context, id int64) error {
	ctx, span := bankTracer.Start(ctx, "BankService.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("bank.id", id))

	if err := s.store.DeleteBank(ctx, id); err != nil {
		return err
	}
	s.logger.Info("bank deleted", zap.Int64("bank_id", id))
	return nil
}

// validateFields collects the per-field checks. When partial is true,
// absent fields are skipped instead of treated as missing.
func (s *BankService) validateFields(in *domain.BankInput, fe domain.FieldErrors, partial bool) {
	if in.Name == nil {
		if !partial {
			fe.Add("name", msgRequired)
		}
	} else if *in.Name == "" {
		fe.Add("name", msgRequired)
	}

	if in.BankType == nil {
		if !partial {
			fe.Add("bank_type", msgRequired)
		}
	} else if !domain.BankType(*in.BankType).Valid() {
		fe.Add("bank_type", msgInvalidChoice(*in.BankType))
	}
}

// checkNameFree is the optimistic uniqueness check; the store's unique
// constraint remains the authoritative guard against concurrent writes.
func (s *BankService) checkNameFree(ctx context.Context, name string, excludeID int64, fe domain.FieldErrors) error {
	taken, err := s.store.BankNameTaken(ctx, name, excludeID)
	if err != nil {
		return fmt.Errorf("check bank name: %w", err)
	}
	if taken {
		fe.Add("name", msgBankNameTaken)
	}
	return nil
}
