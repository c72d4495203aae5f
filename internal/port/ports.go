// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
)

// BankStore persists banks. DeleteBank must fail with *domain.ErrProtected
// while credits reference the bank, and clear the bank reference of any
// clients that do (set-null). CreateBank/UpdateBank must fail with
// *domain.ErrConflict when the name collides case-insensitively, the
// authoritative guard behind the validation layer's optimistic check.
type BankStore interface {
	ListBanks(ctx context.Context, f domain.BankFilter) ([]domain.Bank, int, error)
	GetBank(ctx context.Context, id int64) (*domain.Bank, error)
	CreateBank(ctx context.Context, b *domain.Bank) (*domain.Bank, error)
	UpdateBank(ctx context.Context, b *domain.Bank) (*domain.Bank, error)
	DeleteBank(ctx context.Context, id int64) error
	BankNameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
}

// ClientStore persists clients. DeleteClient cascades to the client's
// credits.
type ClientStore interface {
	ListClients(ctx context.Context, f domain.ClientFilter) ([]domain.Client, int, error)
	GetClient(ctx context.Context, id int64) (*domain.Client, error)
	CreateClient(ctx context.Context, c *domain.Client) (*domain.Client, error)
	UpdateClient(ctx context.Context, c *domain.Client) (*domain.Client, error)
	DeleteClient(ctx context.Context, id int64) error
}

// CreditStore persists credits. CreatedAt is written once on create and
// never updated.
type CreditStore interface {
	ListCredits(ctx context.Context, f domain.CreditFilter) ([]domain.Credit, int, error)
	GetCredit(ctx context.Context, id int64) (*domain.Credit, error)
	CreateCredit(ctx context.Context, c *domain.Credit) (*domain.Credit, error)
	UpdateCredit(ctx context.Context, c *domain.Credit) (*domain.Credit, error)
	DeleteCredit(ctx context.Context, id int64) error
}

// UserStore resolves API users for token issuance.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Store aggregates all persistence ports; both backends implement it.
type Store interface {
	BankStore
	ClientStore
	CreditStore
	UserStore
}

// Notifier delivers a single message to a recipient. Failures are the
// caller's to swallow; nothing here may fail the triggering request.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}
