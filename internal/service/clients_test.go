package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
	"github.com/tucredito/tu-credito-api-go/internal/infra/memory"
	"github.com/tucredito/tu-credito-api-go/internal/infra/observability"
	"github.com/tucredito/tu-credito-api-go/internal/service"
)

// fixedNow pins the reference date for the age check.
var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newClientService(t *testing.T) (*service.ClientService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := service.NewClientService(store, store, observability.NewMetrics(), zap.NewNop()).
		WithClock(func() time.Time { return fixedNow })
	return svc, store
}

func datePtr(y int, m time.Month, d int) *domain.Date {
	dt := domain.NewDate(y, m, d)
	return &dt
}

func TestClientCreate(t *testing.T) {
	svc, _ := newClientService(t)

	client, err := svc.Create(context.Background(), &domain.ClientInput{
		FullName:    strPtr("Maria Lopez"),
		DateOfBirth: datePtr(1990, time.March, 10),
		Age:         intPtr(35),
		Email:       strPtr("maria@example.com"),
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if client.PersonType != domain.PersonTypeNatural {
		t.Errorf("expected default person_type NATURAL, got %s", client.PersonType)
	}
	if client.BankID != nil {
		t.Error("expected no bank reference")
	}
}

func TestClientCreate_RequiredFields(t *testing.T) {
	svc, _ := newClientService(t)

	_, err := svc.Create(context.Background(), &domain.ClientInput{})
	var fieldErr *domain.ErrFieldValidation
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected field validation error, got %v", err)
	}
	for _, field := range []string{"full_name", "date_of_birth", "email"} {
		if len(fieldErr.Fields[field]) == 0 {
			t.Errorf("expected an error on %s", field)
		}
	}
}

func TestClientCreate_InvalidEmail(t *testing.T) {
	svc, _ := newClientService(t)

	_, err := svc.Create(context.Background(), &domain.ClientInput{
		FullName:    strPtr("Juan Perez"),
		DateOfBirth: datePtr(1990, time.March, 10),
		Email:       strPtr("not-an-email"),
	})
	var fieldErr *domain.ErrFieldValidation
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected field validation error, got %v", err)
	}
	if got := fieldErr.Fields["email"]; len(got) == 0 || got[0] != "Enter a valid email address." {
		t.Errorf("unexpected email errors: %v", got)
	}
}

func TestClientCreate_AgeMismatch(t *testing.T) {
	svc, _ := newClientService(t)

	// Born 1990-03-10; as of 2025-06-15 the age is 35.
	_, err := svc.Create(context.Background(), &domain.ClientInput{
		FullName:    strPtr("Juan Perez"),
		DateOfBirth: datePtr(1990, time.March, 10),
		Age:         intPtr(30),
		Email:       strPtr("juan@example.com"),
	})
	var fieldErr *domain.ErrFieldValidation
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected field validation error, got %v", err)
	}
	if got := fieldErr.Fields["age"]; len(got) == 0 || got[0] != "Age does not match date of birth (expected 35)." {
		t.Errorf("unexpected age errors: %v", got)
	}
}

func TestClientCreate_AgeBeforeBirthdayThisYear(t *testing.T) {
	svc, _ := newClientService(t)

	// Birthday 1990-09-01 has not yet occurred on 2025-06-15, so 34.
	client, err := svc.Create(context.Background(), &domain.ClientInput{
		FullName:    strPtr("Ana Flores"),
		DateOfBirth: datePtr(1990, time.September, 1),
		Age:         intPtr(34),
		Email:       strPtr("ana@example.com"),
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if client.Age == nil || *client.Age != 34 {
		t.Errorf("expected age 34, got %v", client.Age)
	}
}

func TestClientCreate_AgeOutOfRange(t *testing.T) {
	svc, _ := newClientService(t)

	_, err := svc.Create(context.Background(), &domain.ClientInput{
		FullName:    strPtr("Old Timer"),
		DateOfBirth: datePtr(1900, time.January, 1),
		Age:         intPtr(125),
		Email:       strPtr("old@example.com"),
	})
	var fieldErr *domain.ErrFieldValidation
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected field validation error, got %v", err)
	}
	got := fieldErr.Fields["age"]
	if len(got) != 1 || got[0] != "Ensure this value is between 1 and 99." {
		t.Errorf("expected only the range error, got %v", got)
	}
}

func TestClientCreate_UnknownBank(t *testing.T) {
	svc, _ := newClientService(t)

	_, err := svc.Create(context.Background(), &domain.ClientInput{
		FullName:    strPtr("Juan Perez"),
		DateOfBirth: datePtr(1990, time.March, 10),
		Email:       strPtr("juan@example.com"),
		BankID:      int64Ptr(99),
	})
	var fieldErr *domain.ErrFieldValidation
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected field validation error, got %v", err)
	}
	if got := fieldErr.Fields["bank"]; len(got) == 0 || got[0] != `Invalid pk "99" - object does not exist.` {
		t.Errorf("unexpected bank errors: %v", got)
	}
}

func TestClientUpdate_PatchAgeAgainstStoredDOB(t *testing.T) {
	svc, _ := newClientService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.ClientInput{
		FullName:    strPtr("Maria Lopez"),
		DateOfBirth: datePtr(1990, time.March, 10),
		Email:       strPtr("maria@example.com"),
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	// PATCH with only an age: the stored date of birth is the reference.
	_, err = svc.Update(ctx, created.ID, &domain.ClientInput{Age: intPtr(20)}, true)
	var fieldErr *domain.ErrFieldValidation
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected field validation error, got %v", err)
	}
	if len(fieldErr.Fields["age"]) == 0 {
		t.Error("expected an age mismatch against the stored date of birth")
	}

	if _, err := svc.Update(ctx, created.ID, &domain.ClientInput{Age: intPtr(35)}, true); err != nil {
		t.Fatalf("expected matching age to pass, got %v", err)
	}
}

func TestClientList_FillsBankName(t *testing.T) {
	svc, store := newClientService(t)
	ctx := context.Background()

	bank, err := store.CreateBank(ctx, &domain.Bank{Name: "BBVA", BankType: domain.BankTypePrivate})
	if err != nil {
		t.Fatalf("create bank: %v", err)
	}
	if _, err := svc.Create(ctx, &domain.ClientInput{
		FullName:    strPtr("Maria Lopez"),
		DateOfBirth: datePtr(1990, time.March, 10),
		Email:       strPtr("maria@example.com"),
		BankID:      &bank.ID,
	}); err != nil {
		t.Fatalf("create client: %v", err)
	}

	page, err := svc.List(ctx, domain.ClientFilter{})
	if err != nil {
		t.Fatalf("list clients: %v", err)
	}
	if page.Count != 1 {
		t.Fatalf("expected count 1, got %d", page.Count)
	}
	got := page.Results[0]
	if got.BankName == nil || *got.BankName != "BBVA" {
		t.Errorf("expected bank_name BBVA, got %v", got.BankName)
	}
}
