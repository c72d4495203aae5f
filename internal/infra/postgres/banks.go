package postgres

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
)

const bankColumns = "id, name, bank_type, address"

var bankOrderColumns = map[string]string{
	"id":   "id",
	"name": "name",
}

func (s *Store) ListBanks(ctx context.Context, f domain.BankFilter) ([]domain.Bank, int, error) {
	f.Normalize()
	var w whereBuilder
	if f.Name != "" {
		w.add("name ILIKE $?", likePattern(f.Name))
	}
	if f.Address != "" {
		w.add("address ILIKE $?", likePattern(f.Address))
	}
	if len(f.BankTypes) > 0 {
		w.add("bank_type = ANY($?)", f.BankTypes)
	}
	if f.Search != "" {
		w.add("name ILIKE $?", likePattern(f.Search))
	}
	where := w.clause()

	key, desc := f.OrderKey(domain.BankOrderings, "id", false)
	orderBy := orderClause(bankOrderColumns[key], desc, "id")

	lo := (f.Page - 1) * f.PageSize
	query := fmt.Sprintf("SELECT %s FROM banks%s%s LIMIT %d OFFSET %d",
		bankColumns, where, orderBy, f.PageSize, lo)
	countQuery := "SELECT COUNT(*) FROM banks" + where

	var (
		banks []domain.Bank
		count int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.pool.Query(gctx, query, w.args...)
		if err != nil {
			return fmt.Errorf("list banks: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var b domain.Bank
			if err := rows.Scan(&b.ID, &b.Name, &b.BankType, &b.Address); err != nil {
				return fmt.Errorf("scan bank: %w", err)
			}
			banks = append(banks, b)
		}
		return rows.Err()
	})
	g.Go(func() error {
		if err := s.pool.QueryRow(gctx, countQuery, w.args...).Scan(&count); err != nil {
			return fmt.Errorf("count banks: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if banks == nil {
		banks = []domain.Bank{}
	}
	return banks, count, nil
}

func (s *Store) GetBank(ctx context.Context, id int64) (*domain.Bank, error) {
	var b domain.Bank
	err := s.pool.QueryRow(ctx,
		"SELECT "+bankColumns+" FROM banks WHERE id = $1", id,
	).Scan(&b.ID, &b.Name, &b.BankType, &b.Address)
	if isNoRows(err) {
		return nil, &domain.ErrNotFound{Resource: "bank", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get bank: %w", err)
	}
	return &b, nil
}

func (s *Store) CreateBank(ctx context.Context, b *domain.Bank) (*domain.Bank, error) {
	created := *b
	err := s.pool.QueryRow(ctx,
		`INSERT INTO banks (name, bank_type, address)
		 VALUES ($1, $2, $3) RETURNING id`,
		b.Name, b.BankType, b.Address,
	).Scan(&created.ID)
	if pgErrCode(err) == pgUniqueViolation {
		return nil, &domain.ErrConflict{Message: "bank with this name already exists."}
	}
	if err != nil {
		return nil, fmt.Errorf("create bank: %w", err)
	}
	return &created, nil
}

func (s *Store) UpdateBank(ctx context.Context, b *domain.Bank) (*domain.Bank, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE banks SET name = $1, bank_type = $2, address = $3 WHERE id = $4`,
		b.Name, b.BankType, b.Address, b.ID,
	)
	if pgErrCode(err) == pgUniqueViolation {
		return nil, &domain.ErrConflict{Message: "bank with this name already exists."}
	}
	if err != nil {
		return nil, fmt.Errorf("update bank: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, &domain.ErrNotFound{Resource: "bank", ID: b.ID}
	}
	updated := *b
	return &updated, nil
}

func (s *Store) DeleteBank(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM banks WHERE id = $1", id)
	if pgErrCode(err) == pgForeignKeyViolation {
		return &domain.ErrProtected{Resource: "bank", ID: id, Dependent: "credits"}
	}
	if err != nil {
		return fmt.Errorf("delete bank: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.ErrNotFound{Resource: "bank", ID: id}
	}
	return nil
}

func (s *Store) BankNameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	var taken bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM banks WHERE LOWER(name) = LOWER($1) AND id <> $2
		)`, name, excludeID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check bank name: %w", err)
	}
	return taken, nil
}

// orderClause renders an ORDER BY over an allow-listed column, falling
// back to fallback when column is empty, with id as tiebreaker.
func orderClause(column string, desc bool, fallback string) string {
	if column == "" {
		column = fallback
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	if column == "id" {
		return fmt.Sprintf(" ORDER BY id %s", dir)
	}
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", column, dir)
}
