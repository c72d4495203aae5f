package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
)

func (s *Store) ListCredits(ctx context.Context, f domain.CreditFilter) ([]domain.Credit, int, error) {
	f.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Credit, 0, len(s.credits))
	for _, c := range s.credits {
		if s.creditMatchesLocked(c, f) {
			matched = append(matched, s.creditOutLocked(c))
		}
	}
	sortCredits(matched, f.ListParams)

	count := len(matched)
	lo, hi := domain.PageWindow(count, f.Page, f.PageSize)
	return matched[lo:hi], count, nil
}

func (s *Store) GetCredit(ctx context.Context, id int64) (*domain.Credit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.credits[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "credit", ID: id}
	}
	out := s.creditOutLocked(c)
	return &out, nil
}

func (s *Store) CreateCredit(ctx context.Context, c *domain.Credit) (*domain.Credit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creditSeq++
	stored := *c
	stored.ID = s.creditSeq
	stored.CreatedAt = s.now().UTC()
	s.credits[stored.ID] = stored

	out := s.creditOutLocked(stored)
	return &out, nil
}

func (s *Store) UpdateCredit(ctx context.Context, c *domain.Credit) (*domain.Credit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.credits[c.ID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "credit", ID: c.ID}
	}

	stored := *c
	stored.CreatedAt = prev.CreatedAt
	s.credits[stored.ID] = stored

	out := s.creditOutLocked(stored)
	return &out, nil
}

func (s *Store) DeleteCredit(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.credits[id]; !ok {
		return &domain.ErrNotFound{Resource: "credit", ID: id}
	}
	delete(s.credits, id)
	return nil
}

func (s *Store) creditMatchesLocked(c domain.Credit, f domain.CreditFilter) bool {
	if !containsFold(c.Description, f.Description) {
		return false
	}
	if f.BankName != "" {
		b, ok := s.banks[c.BankID]
		if !ok || !containsFold(b.Name, f.BankName) {
			return false
		}
	}
	if f.ClientFullName != "" {
		cl, ok := s.clients[c.ClientID]
		if !ok || !containsFold(cl.FullName, f.ClientFullName) {
			return false
		}
	}
	if len(f.CreditTypes) > 0 && !inStrings(string(c.CreditType), f.CreditTypes) {
		return false
	}
	if len(f.BankIDs) > 0 && !inInt64s(c.BankID, f.BankIDs) {
		return false
	}
	if f.MinPayment != "" && !strings.Contains(c.MinPayment.Text(), f.MinPayment) {
		return false
	}
	if f.MaxPayment != "" && !strings.Contains(c.MaxPayment.Text(), f.MaxPayment) {
		return false
	}
	if f.TermMonths != "" && !strings.Contains(strconv.Itoa(c.TermMonths), f.TermMonths) {
		return false
	}
	if f.Search != "" && !containsFold(c.Description, f.Search) {
		cl, ok := s.clients[c.ClientID]
		if !ok || !containsFold(cl.FullName, f.Search) {
			return false
		}
	}
	return true
}

// creditOutLocked returns a copy with the related names filled in.
func (s *Store) creditOutLocked(c domain.Credit) domain.Credit {
	out := c
	if b, ok := s.banks[c.BankID]; ok {
		out.BankName = b.Name
	}
	if cl, ok := s.clients[c.ClientID]; ok {
		out.ClientFullName = cl.FullName
	}
	return out
}

func sortCredits(credits []domain.Credit, p domain.ListParams) {
	key, desc := p.OrderKey(domain.CreditOrderings, "created_at", true)
	sort.SliceStable(credits, func(i, j int) bool {
		a, b := credits[i], credits[j]
		if desc {
			a, b = b, a
		}
		switch key {
		case "created_at":
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		case "min_payment":
			if !a.MinPayment.Equal(b.MinPayment.Decimal) {
				return a.MinPayment.LessThan(b.MinPayment.Decimal)
			}
			return a.ID < b.ID
		case "max_payment":
			if !a.MaxPayment.Equal(b.MaxPayment.Decimal) {
				return a.MaxPayment.LessThan(b.MaxPayment.Decimal)
			}
			return a.ID < b.ID
		case "term_months":
			if a.TermMonths != b.TermMonths {
				return a.TermMonths < b.TermMonths
			}
			return a.ID < b.ID
		default:
			return a.ID < b.ID
		}
	})
}
