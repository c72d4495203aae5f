package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
	"github.com/tucredito/tu-credito-api-go/internal/infra/observability"
	"github.com/tucredito/tu-credito-api-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var clientTracer = otel.Tracer("service/clients")

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ClientService handles client CRUD, including the age/date-of-birth
// consistency rule.
type ClientService struct {
	store   port.ClientStore
	banks   port.BankStore
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewClientService creates a new client service. The bank store resolves
// the optional bank reference.
func NewClientService(store port.ClientStore, banks port.BankStore, metrics *observability.Metrics, logger *zap.Logger) *ClientService {
	return &ClientService{store: store, banks: banks, metrics: metrics, logger: logger, now: time.Now}
}

// WithClock overrides the reference time for the age check. Tests use it
// to pin "today".
func (s *ClientService) WithClock(now func() time.Time) *ClientService {
	s.now = now
	return s
}

func (s *ClientService) List(ctx context.Context, f domain.ClientFilter) (domain.Page[domain.Client], error) {
	ctx, span := clientTracer.Start(ctx, "ClientService.List")
	defer span.End()

	f.Normalize()
	clients, count, err := s.store.ListClients(ctx, f)
	if err != nil {
		return domain.Page[domain.Client]{}, fmt.Errorf("list clients: %w", err)
	}
	return domain.NewPage(clients, count, f.Page, f.PageSize), nil
}

func (s *ClientService) Get(ctx context.Context, id int64) (*domain.Client, error) {
	ctx, span := clientTracer.Start(ctx, "ClientService.Get")
	defer span.End()
	span.SetAttributes(attribute.Int64("client.id", id))

	return s.store.GetClient(ctx, id)
}

// Create validates and persists a new client.
func (s *ClientService) Create(ctx context.Context, in *domain.ClientInput) (*domain.Client, error) {
	ctx, span := clientTracer.Start(ctx, "ClientService.Create")
	defer span.End()

	fe := domain.FieldErrors{}
	s.validateFields(in, fe, false)
	if err := s.resolveBank(ctx, in.BankID, fe); err != nil {
		return nil, err
	}
	s.validateAge(in, nil, fe)
	if len(fe) > 0 {
		s.metrics.IncrValidationFailure("client")
		return nil, &domain.ErrFieldValidation{Fields: fe}
	}

	client := &domain.Client{
		FullName:    *in.FullName,
		DateOfBirth: *in.DateOfBirth,
		Age:         in.Age,
		Nationality: deref(in.Nationality, ""),
		Address:     deref(in.Address, ""),
		Email:       *in.Email,
		Phone:       deref(in.Phone, ""),
		PersonType:  domain.PersonType(deref(in.PersonType, string(domain.PersonTypeNatural))),
		BankID:      in.BankID,
	}
	created, err := s.store.CreateClient(ctx, client)
	if err != nil {
		return nil, err
	}

	s.logger.Info("client created",
		zap.Int64("client_id", created.ID),
		zap.String("full_name", created.FullName),
	)
	return created, nil
}

// Update validates and persists changes to an existing client.
func (s *ClientService) Update(ctx context.Context, id int64, in *domain.ClientInput, partial bool) (*domain.Client, error) {
	ctx, span := clientTracer.Start(ctx, "ClientService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("client.id", id))

	existing, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	fe := domain.FieldErrors{}
	s.validateFields(in, fe, partial)
	if in.BankID != nil {
		if err := s.resolveBank(ctx, in.BankID, fe); err != nil {
			return nil, err
		}
	}
	s.validateAge(in, existing, fe)
	if len(fe) > 0 {
		s.metrics.IncrValidationFailure("client")
		return nil, &domain.ErrFieldValidation{Fields: fe}
	}

	client := &domain.Client{
		ID:          id,
		FullName:    deref(effective(in.FullName, &existing.FullName), ""),
		DateOfBirth: deref(effective(in.DateOfBirth, &existing.DateOfBirth), domain.Date{}),
		Age:         effective(in.Age, existing.Age),
		Nationality: deref(effective(in.Nationality, &existing.Nationality), ""),
		Address:     deref(effective(in.Address, &existing.Address), ""),
		Email:       deref(effective(in.Email, &existing.Email), ""),
		Phone:       deref(effective(in.Phone, &existing.Phone), ""),
		PersonType:  domain.PersonType(deref(effective(in.PersonType, (*string)(&existing.PersonType)), "")),
		BankID:      effective(in.BankID, existing.BankID),
	}
	updated, err := s.store.UpdateClient(ctx, client)
	if err != nil {
		return nil, err
	}

	s.logger.Info("client updated", zap.Int64("client_id", id))
	return updated, nil
}

// Delete removes a client; the store cascades to its credits.
func (s *ClientService) Delete(ctx context.Context, id int64) error {
	ctx, span := clientTracer.Start(ctx, "ClientService.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("client.id", id))

	if err := s.store.DeleteClient(ctx, id); err != nil {
		return err
	}
	s.logger.Info("client deleted", zap.Int64("client_id", id))
	return nil
}

func (s *ClientService) validateFields(in *domain.ClientInput, fe domain.FieldErrors, partial bool) {
	if in.FullName == nil {
		if !partial {
			fe.Add("full_name", msgRequired)
		}
	} else if *in.FullName == "" {
		fe.Add("full_name", msgRequired)
	}

	if in.DateOfBirth == nil {
		if !partial {
			fe.Add("date_of_birth", msgRequired)
		}
	} else if in.DateOfBirth.IsZero() {
		fe.Add("date_of_birth", msgRequired)
	}

	if in.Email == nil {
		if !partial {
			fe.Add("email", msgRequired)
		}
	} else if !emailPattern.MatchString(*in.Email) {
		fe.Add("email", msgInvalidEmail)
	}

	if in.Age != nil && (*in.Age < 1 || *in.Age > 99) {
		fe.Add("age", msgAgeRange)
	}

	if in.PersonType != nil && !domain.PersonType(*in.PersonType).Valid() {
		fe.Add("person_type", msgInvalidChoice(*in.PersonType))
	}
}

// validateAge enforces the cross-field rule: when both a date of birth
// and an age are in effect, the age must equal the one computed from the
// date of birth as of today.
func (s *ClientService) validateAge(in *domain.ClientInput, existing *domain.Client, fe domain.FieldErrors) {
	var dob *domain.Date
	var age *int
	if existing != nil {
		dob = effective(in.DateOfBirth, &existing.DateOfBirth)
		age = effective(in.Age, existing.Age)
	} else {
		dob = in.DateOfBirth
		age = in.Age
	}
	if dob == nil || dob.IsZero() || age == nil {
		return
	}
	if *age < 1 || *age > 99 {
		return // range failure already recorded
	}
	expected := domain.CalculateAge(*dob, s.now())
	if expected != *age {
		fe.Add("age", msgAgeMismatch(expected))
	}
}

// resolveBank verifies the optional bank reference exists.
func (s *ClientService) resolveBank(ctx context.Context, bankID *int64, fe domain.FieldErrors) error {
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
