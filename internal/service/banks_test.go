package service_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
	"github.com/tucredito/tu-credito-api-go/internal/infra/memory"
	"github.com/tucredito/tu-credito-api-go/internal/infra/observability"
	"github.com/tucredito/tu-credito-api-go/internal/service"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func int64Ptr(i int64) *int64 { return &i }

func moneyPtr(s string) *domain.Money {
	m, err := domain.MoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return &m
}

func newBankService(t *testing.T) (*service.BankService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := service.NewBankService(store, observability.NewMetrics(), zap.NewNop())
	return svc, store
}

func TestBankCreate(t *testing.T) {
	svc, _ := newBankService(t)

	bank, err := svc.Create(context.Background(), &domain.BankInput{
		Name:     strPtr("BBVA"),
		BankType: strPtr("PRIVATE"),
		Address:  strPtr("Av. Reforma 510"),
	})
	if err != nil {
		t.Fatalf("create bank: %v", err)
	}
	if bank.ID == 0 {
		t.Error("expected a non-zero id")
	}
	if bank.BankType != domain.BankTypePrivate {
		t.Errorf("expected bank_type PRIVATE, got %s", bank.BankType)
	}
}

func TestBankCreate_FieldValidation(t *testing.T) {
	svc, _ := newBankService(t)

	_, err := svc.Create(context.Background(), &domain.BankInput{
		BankType: strPtr("COOPERATIVE"),
	})

	var fieldErr *domain.ErrFieldValidation
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected field validation error, got %v", err)
	}
	if len(fieldErr.Fields["name"]) == 0 {
		t.Error("expected an error on name")
	}
	if len(fieldErr.Fields["bank_type"]) == 0 {
		t.Error("expected an error on bank_type")
	}
}

func TestBankCreate_NameUniqueCaseInsensitive(t *testing.T) {
	svc, _ := newBankService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, &domain.BankInput{
		Name: strPtr("Banorte"), BankType: strPtr("PRIVATE"),
	}); err != nil {
		t.Fatalf("create first bank: %v", err)
	}

	_, err := svc.Create(ctx, &domain.BankInput{
		Name: strPtr("BANORTE"), BankType: strPtr("GOVERNMENT"),
	})
	var fieldErr *domain.ErrFieldValidation
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected field validation error, got %v", err)
	}
	if got := fieldErr.Fields["name"]; len(got) == 0 || got[0] != "bank with this name already exists." {
		t.Errorf("unexpected name errors: %v", got)
	}
}

func TestBankUpdate_PartialKeepsFields(t *testing.T) {
	svc, _ := newBankService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.BankInput{
		Name: strPtr("Santander"), BankType: strPtr("PRIVATE"), Address: strPtr("Centro 1"),
	})
	if err != nil {
		t.Fatalf("create bank: %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, &domain.BankInput{
		Address: strPtr("Centro 2"),
	}, true)
	if err != nil {
		t.Fatalf("patch bank: %v", err)
	}
	if updated.Name != "Santander" {
		t.Errorf("expected name kept, got %q", updated.Name)
	}
	if updated.Address != "Centro 2" {
		t.Errorf("expected address updated, got %q", updated.Address)
	}
}

func TestBankUpdate_FullRequiresFields(t *testing.T) {
	svc, _ := newBankService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.BankInput{
		Name: strPtr("HSBC"), BankType: strPtr("PRIVATE"),
	})
	if err != nil {
		t.Fatalf("create bank: %v", err)
	}

	_, err = svc.Update(ctx, created.ID, &domain.BankInput{Name: strPtr("HSBC Mexico")}, false)
	var fieldErr *domain.ErrFieldValidation
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected field validation error, got %v", err)
	}
	if len(fieldErr.Fields["bank_type"]) == 0 {
		t.Error("expected an error on bank_type")
	}
}

func TestBankUpdate_RenameToOwnNameAllowed(t *testing.T) {
	svc, _ := newBankService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.BankInput{
		Name: strPtr("Scotiabank"), BankType: strPtr("PRIVATE"),
	})
	if err != nil {
		t.Fatalf("create bank: %v", err)
	}

	if _, err := svc.Update(ctx, created.ID, &domain.BankInput{
		Name: strPtr("scotiabank"), BankType: strPtr("PRIVATE"),
	}, false); err != nil {
		t.Fatalf("expected rename to own name to pass, got %v", err)
	}
}

func TestBankGet_NotFound(t *testing.T) {
	svc, _ := newBankService(t)

	_, err := svc.Get(context.Background(), 404)
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
