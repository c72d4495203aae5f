package postgres

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
)

const clientColumns = `c.id, c.full_name, c.date_of_birth, c.age, c.nationality,
	c.address, c.email, c.phone, c.person_type, c.bank_id, b.name`

const clientFrom = " FROM clients c LEFT JOIN banks b ON b.id = c.bank_id"

var clientOrderColumns = map[string]string{
	"id":        "c.id",
	"full_name": "c.full_name",
}

func scanClient(row interface{ Scan(...any) error }) (domain.Client, error) {
	var (
		c   domain.Client
		dob time.Time
	)
	err := row.Scan(&c.ID, &c.FullName, &dob, &c.Age, &c.Nationality,
		&c.Address, &c.Email, &c.Phone, &c.PersonType, &c.BankID, &c.BankName)
	if err != nil {
		return domain.Client{}, err
	}
	c.DateOfBirth = domain.Date{Time: dob}
	return c, nil
}

func (s *Store) ListClients(ctx context.Context, f domain.ClientFilter) ([]domain.Client, int, error) {
	f.Normalize()
	var w whereBuilder
	if f.FullName != "" {
		w.add("c.full_name ILIKE $?", likePattern(f.FullName))
	}
	if f.Email != "" {
		w.add("c.email ILIKE $?", likePattern(f.Email))
	}
	if f.BankName != "" {
		w.add("b.name ILIKE $?", likePattern(f.BankName))
	}
	if len(f.PersonTypes) > 0 {
		w.add("c.person_type = ANY($?)", f.PersonTypes)
	}
	if len(f.BankIDs) > 0 {
		w.add("c.bank_id = ANY($?)", f.BankIDs)
	}
	if f.Search != "" {
		w.add("(c.full_name ILIKE $? OR c.email ILIKE $?)",
			likePattern(f.Search), likePattern(f.Search))
	}
	where := w.clause()

	key, desc := f.OrderKey(domain.ClientOrderings, "id", false)
	orderBy := orderClause(clientOrderColumns[key], desc, "c.id")

	lo := (f.Page - 1) * f.PageSize
	query := fmt.Sprintf("SELECT %s%s%s%s LIMIT %d OFFSET %d",
		clientColumns, clientFrom, where, orderBy, f.PageSize, lo)
	countQuery := "SELECT COUNT(*)" + clientFrom + where

	var (
		clients []domain.Client
		count   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.pool.Query(gctx, query, w.args...)
		if err != nil {
			return fmt.Errorf("list clients: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanClient(rows)
			if err != nil {
				return fmt.Errorf("scan client: %w", err)
			}
			clients = append(clients, c)
		}
		return rows.Err()
	})
	g.Go(func() error {
		if err := s.pool.QueryRow(gctx, countQuery, w.args...).Scan(&count); err != nil {
			return fmt.Errorf("count clients: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if clients == nil {
		clients = []domain.Client{}
	}
	return clients, count, nil
}

func (s *Store) GetClient(ctx context.Context, id int64) (*domain.Client, error) {
	c, err := scanClient(s.pool.QueryRow(ctx,
		"SELECT "+clientColumns+clientFrom+" WHERE c.id = $1", id))
	if isNoRows(err) {
		return nil, &domain.ErrNotFound{Resource: "client", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}

func (s *Store) CreateClient(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO clients (full_name, date_of_birth, age, nationality,
			address, email, phone, person_type, bank_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		c.FullName, c.DateOfBirth.Time, c.Age, c.Nationality,
		c.Address, c.Email, c.Phone, c.PersonType, c.BankID,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return s.GetClient(ctx, id)
}

func (s *Store) UpdateClient(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE clients SET full_name = $1, date_of_birth = $2, age = $3,
			nationality = $4, address = $5, email = $6, phone = $7,
			person_type = $8, bank_id = $9
		 WHERE id = $10`,
		c.FullName, c.DateOfBirth.Time, c.Age, c.Nationality,
		c.Address, c.Email, c.Phone, c.PersonType, c.BankID, c.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, &domain.ErrNotFound{Resource: "client", ID: c.ID}
	}
	return s.GetClient(ctx, c.ID)
}

func (s *Store) DeleteClient(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.ErrNotFound{Resource: "client", ID: id}
	}
	return nil
}
