package postgres

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
)

const creditColumns = `cr.id, cr.client_id, cl.full_name, cr.description,
	cr.min_payment::text, cr.max_payment::text, cr.term_months, cr.created_at,
	cr.bank_id, b.name, cr.credit_type`

const creditFrom = ` FROM credits cr
	JOIN clients cl ON cl.id = cr.client_id
	JOIN banks b ON b.id = cr.bank_id`

var creditOrderColumns = map[string]string{
	"id":          "cr.id",
	"created_at":  "cr.created_at",
	"min_payment": "cr.min_payment",
	"max_payment": "cr.max_payment",
	"term_months": "cr.term_months",
}

func scanCredit(row interface{ Scan(...any) error }) (domain.Credit, error) {
	var (
		c          domain.Credit
		minP, maxP string
	)
	err := row.Scan(&c.ID, &c.ClientID, &c.ClientFullName, &c.Description,
		&minP, &maxP, &c.TermMonths, &c.CreatedAt,
		&c.BankID, &c.BankName, &c.CreditType)
	if err != nil {
		return domain.Credit{}, err
	}
	if c.MinPayment, err = domain.MoneyFromString(minP); err != nil {
		return domain.Credit{}, fmt.Errorf("parse min_payment: %w", err)
	}
	if c.MaxPayment, err = domain.MoneyFromString(maxP); err != nil {
		return domain.Credit{}, fmt.Errorf("parse max_payment: %w", err)
	}
	return c, nil
}

func (s *Store) ListCredits(ctx context.Context, f domain.CreditFilter) ([]domain.Credit, int, error) {
	f.Normalize()
	var w whereBuilder
	if f.Description != "" {
		w.add("cr.description ILIKE $?", likePattern(f.Description))
	}
	if f.BankName != "" {
		w.add("b.name ILIKE $?", likePattern(f.BankName))
	}
	if f.ClientFullName != "" {
		w.add("cl.full_name ILIKE $?", likePattern(f.ClientFullName))
	}
	if len(f.CreditTypes) > 0 {
		w.add("cr.credit_type = ANY($?)", f.CreditTypes)
	}
	if len(f.BankIDs) > 0 {
		w.add("cr.bank_id = ANY($?)", f.BankIDs)
	}
	if f.MinPayment != "" {
		w.add("cr.min_payment::text LIKE $?", likePattern(f.MinPayment))
	}
	if f.MaxPayment != "" {
		w.add("cr.max_payment::text LIKE $?", likePattern(f.MaxPayment))
	}
	if f.TermMonths != "" {
		w.add("cr.term_months::text LIKE $?", likePattern(f.TermMonths))
	}
	if f.Search != "" {
		w.add("(cr.description ILIKE $? OR cl.full_name ILIKE $?)",
			likePattern(f.Search), likePattern(f.Search))
	}
	where := w.clause()

	key, desc := f.OrderKey(domain.CreditOrderings, "created_at", true)
	orderBy := orderClause(creditOrderColumns[key], desc, "cr.id")

	lo := (f.Page - 1) * f.PageSize
	query := fmt.Sprintf("SELECT %s%s%s%s LIMIT %d OFFSET %d",
		creditColumns, creditFrom, where, orderBy, f.PageSize, lo)
	countQuery := "SELECT COUNT(*)" + creditFrom + where

	var (
		credits []domain.Credit
		count   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.pool.Query(gctx, query, w.args...)
		if err != nil {
			return fmt.Errorf("list credits: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanCredit(rows)
			if err != nil {
				return fmt.Errorf("scan credit: %w", err)
			}
			credits = append(credits, c)
		}
		return rows.Err()
	})
	g.Go(func() error {
		if err := s.pool.QueryRow(gctx, countQuery, w.args...).Scan(&count); err != nil {
			return fmt.Errorf("count credits: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if credits == nil {
		credits = []domain.Credit{}
	}
	return credits, count, nil
}

func (s *Store) GetCredit(ctx context.Context, id int64) (*domain.Credit, error) {
	c, err := scanCredit(s.pool.QueryRow(ctx,
		"SELECT "+creditColumns+creditFrom+" WHERE cr.id = $1", id))
	if isNoRows(err) {
		return nil, &domain.ErrNotFound{Resource: "credit", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get credit: %w", err)
	}
	return &c, nil
}

func (s *Store) CreateCredit(ctx context.Context, c *domain.Credit) (*domain.Credit, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO credits (client_id, description, min_payment, max_payment,
			term_months, bank_id, credit_type)
		 VALUES ($1, $2, $3::numeric, $4::numeric, $5, $6, $7) RETURNING id`,
		c.ClientID, c.Description, c.MinPayment.Text(), c.MaxPayment.Text(),
		c.TermMonths, c.BankID, c.CreditType,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create credit: %w", err)
	}
	return s.GetCredit(ctx, id)
}

// UpdateCredit never touches created_at.
func (s *Store) UpdateCredit(ctx context.Context, c *domain.Credit) (*domain.Credit, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE credits SET client_id = $1, description = $2,
			min_payment = $3::numeric, max_payment = $4::numeric,
			term_months = $5, bank_id = $6, credit_type = $7
		 WHERE id = $8`,
		c.ClientID, c.Description, c.MinPayment.Text(), c.MaxPayment.Text(),
		c.TermMonths, c.BankID, c.CreditType, c.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update credit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, &domain.ErrNotFound{Resource: "credit", ID: c.ID}
	}
	return s.GetCredit(ctx, c.ID)
}

func (s *Store) DeleteCredit(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM credits WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete credit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.ErrNotFound{Resource: "credit", ID: id}
	}
	return nil
}
