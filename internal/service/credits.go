package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
	"github.com/tucredito/tu-credito-api-go/internal/infra/observability"
	"github.com/tucredito/tu-credito-api-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var creditTracer = otel.Tracer("service/credits")

const notifyTimeout = 10 * time.Second

// CreditService handles credit CRUD: the payment-ordering and bank
// consistency rules, and the best-effort email fired after a create.
type CreditService struct {
	store    port.CreditStore
	clients  port.ClientStore
	banks    port.BankStore
	notifier port.Notifier
	metrics  *observability.Metrics
	logger   *zap.Logger

	// notified is signalled after each notification attempt resolves;
	// nil outside tests.
	notified chan struct{}
}

// NewCreditService creates a new credit service.
func NewCreditService(store port.CreditStore, clients port.ClientStore, banks port.BankStore, notifier port.Notifier, metrics *observability.Metrics, logger *zap.Logger) *CreditService {
	return &CreditService{
		store:    store,
		clients:  clients,
		banks:    banks,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// WithNotifyListener registers a channel signalled after each
// notification attempt resolves. Tests use it to wait for the hook.
func (s *CreditService) WithNotifyListener(ch chan struct{}) *CreditService {
	s.notified = ch
	return s
}

func (s *CreditService) List(ctx context.Context, f domain.CreditFilter) (domain.Page[domain.Credit], error) {
	ctx, span := creditTracer.Start(ctx, "CreditService.List")
	defer span.End()

	f.Normalize()
	credits, count, err := s.store.ListCredits(ctx, f)
	if err != nil {
		return domain.Page[domain.Credit]{}, fmt.Errorf("list credits: %w", err)
	}
	return domain.NewPage(credits, count, f.Page, f.PageSize), nil
}

func (s *CreditService) Get(ctx context.Context, id int64) (*domain.Credit, error) {
	ctx, span := creditTracer.Start(ctx, "CreditService.Get")
	defer span.End()
	span.SetAttributes(attribute.Int64("credit.id", id))

	return s.store.GetCredit(ctx, id)
}

// Create validates and persists a new credit, then fires the
// notification hook. The hook runs strictly after the write commits and
// never when the write is rejected.
func (s *CreditService) Create(ctx context.Context, in *domain.CreditInput) (*domain.Credit, error) {
	ctx, span := creditTracer.Start(ctx, "CreditService.Create")
	defer span.End()

	fe := domain.FieldErrors{}
	s.validateFields(in, fe, false)

	client, err := s.resolveClient(ctx, in.ClientID, fe)
	if err != nil {
		return nil, err
	}
	if err := s.resolveBank(ctx, in.BankID, fe); err != nil {
		return nil, err
	}

	s.validatePayments(in.MinPayment, in.MaxPayment, fe)
	s.validateBankConsistency(client, in.BankID, fe)

	if len(fe) > 0 {
		s.metrics.IncrValidationFailure("credit")
		return nil, &domain.ErrFieldValidation{Fields: fe}
	}

	credit := &domain.Credit{
		ClientID:    *in.ClientID,
		Description: *in.Description,
		MinPayment:  *in.MinPayment,
		MaxPayment:  *in.MaxPayment,
		TermMonths:  *in.TermMonths,
		BankID:      *in.BankID,
		CreditType:  domain.CreditType(*in.CreditType),
	}
	created, err := s.store.CreateCredit(ctx, credit)
	if err != nil {
		return nil, err
	}

	s.logger.Info("credit created",
		zap.Int64("credit_id", created.ID),
		zap.Int64("client_id", created.ClientID),
		zap.Int64("bank_id", created.BankID),
	)

	s.notifyCreated(created, client)
	return created, nil
}

// Update validates and persists changes to an existing credit.
// created_at is immutable and never part of the input.
func (s *CreditService) Update(ctx context.Context, id int64, in *domain.CreditInput, partial bool) (*domain.Credit, error) {
	ctx, span := creditTracer.Start(ctx, "CreditService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("credit.id", id))

	existing, err := s.store.GetCredit(ctx, id)
	if err != nil {
		return nil, err
	}

	fe := domain.FieldErrors{}
	s.validateFields(in, fe, partial)

	clientID := effective(in.ClientID, &existing.ClientID)
	client, err := s.resolveClient(ctx, clientID, fe)
	if err != nil {
		return nil, err
	}
	bankID := effective(in.BankID, &existing.BankID)
	if in.BankID != nil {
		if err := s.resolveBank(ctx, in.BankID, fe); err != nil {
			return nil, err
		}
	}

	s.validatePayments(
		effective(in.MinPayment, &existing.MinPayment),
		effective(in.MaxPayment, &existing.MaxPayment),
		fe,
	)
	s.validateBankConsistency(client, bankID, fe)

	if len(fe) > 0 {
		s.metrics.IncrValidationFailure("credit")
		return nil, &domain.ErrFieldValidation{Fields: fe}
	}

	credit := &domain.Credit{
		ID:          id,
		ClientID:    *clientID,
		Description: deref(effective(in.Description, &existing.Description), ""),
		MinPayment:  deref(effective(in.MinPayment, &existing.MinPayment), domain.Money{}),
		MaxPayment:  deref(effective(in.MaxPayment, &existing.MaxPayment), domain.Money{}),
		TermMonths:  deref(effective(in.TermMonths, &existing.TermMonths), 0),
		BankID:      *bankID,
		CreditType:  domain.CreditType(deref(effective(in.CreditType, (*string)(&existing.CreditType)), "")),
	}
	updated, err := s.store.UpdateCredit(ctx, credit)
	if err != nil {
		return nil, err
	}

	s.logger.Info("credit updated", zap.Int64("credit_id", id))
	return updated, nil
}

func (s *CreditService) Delete(ctx context.Context, id int64) error {
	ctx, span := creditTracer.Start(ctx, "CreditService.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("credit.id", id))

	if err := s.store.DeleteCredit(ctx, id); err != nil {
		return err
	}
	s.logger.Info("credit deleted", zap.Int64("credit_id", id))
	return nil
}

func (s *CreditService) validateFields(in *domain.CreditInput, fe domain.FieldErrors, partial bool) {
	if in.ClientID == nil && !partial {
		fe.Add("client", msgRequired)
	}
	if in.BankID == nil && !partial {
		fe.Add("bank", msgRequired)
	}
	if in.Description == nil {
		if !partial {
			fe.Add("description", msgRequired)
		}
	} else if *in.Description == "" {
		fe.Add("description", msgRequired)
	}
	if in.MinPayment == nil && !partial {
		fe.Add("min_payment", msgRequired)
	}
	if in.MaxPayment == nil && !partial {
		fe.Add("max_payment", msgRequired)
	}

	if in.TermMonths == nil {
		if !partial {
			fe.Add("term_months", msgRequired)
		}
	} else if *in.TermMonths < 1 {
		fe.Add("term_months", msgTermMin)
	}

	if in.CreditType == nil {
		if !partial {
			fe.Add("credit_type", msgRequired)
		}
	} else if !domain.CreditType(*in.CreditType).Valid() {
		fe.Add("credit_type", msgInvalidChoice(*in.CreditType))
	}
}

// validatePayments rejects min > max on the effective pair.
func (s *CreditService) validatePayments(minP, maxP *domain.Money, fe domain.FieldErrors) {
	if minP == nil || maxP == nil {
		return
	}
	if minP.GreaterThan(maxP.Decimal) {
		fe.Add("min_payment", msgPaymentOrder)
	}
}

// validateBankConsistency rejects a credit whose bank differs from the
// bank the effective client is assigned to, when both are set.
func (s *CreditService) validateBankConsistency(client *domain.Client, bankID *int64, fe domain.FieldErrors) {
	if client == nil || bankID == nil || client.BankID == nil {
		return
	}
	if *client.BankID != *bankID {
		fe.Add("bank", msgBankMismatch)
	}
}

func (s *CreditService) resolveClient(ctx context.Context, clientID *int64, fe domain.FieldErrors) (*domain.Client, error) {
	if clientID == nil {
		return nil, nil
	}
	client, err := s.clients.GetClient(ctx, *clientID)
	var notFound *domain.ErrNotFound
	if errors.As(err, &notFound) {
		fe.Add("client", msgInvalidPK(*clientID))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve client %d: %w", *clientID, err)
	}
	return client, nil
}

func (s *CreditService) resolveBank(ctx context.Context, bankID *int64, fe domain.FieldErrors) error {
	if bankID == nil {
		return nil
	}
	_, err := s.banks.GetBank(ctx, *bankID)
	var notFound *domain.ErrNotFound
	if errors.As(err, &notFound) {
		fe.Add("bank", msgInvalidPK(*bankID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve bank %d: %w", *bankID, err)
	}
	return nil
}

// notifyCreated emails the owning client about the new credit.
// Fire-and-forget: delivery failures are logged and counted, never
// surfaced, never retried.
func (s *CreditService) notifyCreated(credit *domain.Credit, client *domain.Client) {
	if s.notifier == nil || client == nil || client.Email == "" {
		return
	}

	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"A new credit has been registered for you.\n"+
			"Description: %s\n"+
			"Bank: %s\n"+
			"Type: %s\n"+
			"Term (months): %d\n"+
			"Min payment: %s\n"+
			"Max payment: %s\n",
		client.FullName,
		credit.Description,
		credit.BankName,
		credit.CreditType,
		credit.TermMonths,
		credit.MinPayment.Text(),
		credit.MaxPayment.Text(),
	)

	go func() {
		defer func() {
			if s.notified != nil {
				s.notified <- struct{}{}
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.Send(ctx, client.Email, "New credit registered", body); err != nil {
			s.metrics.IncrNotification("failed")
			s.logger.Warn("credit notification failed",
				zap.Int64("credit_id", credit.ID),
				zap.String("to", client.Email),
				zap.Error(err),
			)
			return
		}
		s.metrics.IncrNotification("sent")
		s.logger.Debug("credit notification sent",
			zap.Int64("credit_id", credit.ID),
			zap.String("to", client.Email),
		)
	}()
}
