package memory

import (
	"context"
	"sort"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
)

func (s *Store) ListClients(ctx context.Context, f domain.ClientFilter) ([]domain.Client, int, error) {
	f.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Client, 0, len(s.clients))
	for _, c := range s.clients {
		if s.clientMatchesLocked(c, f) {
			matched = append(matched, s.clientOutLocked(c))
		}
	}
	sortClients(matched, f.ListParams)

	count := len(matched)
	lo, hi := domain.PageWindow(count, f.Page, f.PageSize)
	return matched[lo:hi], count, nil
}

func (s *Store) GetClient(ctx context.Context, id int64) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "client", ID: id}
	}
	out := s.clientOutLocked(c)
	return &out, nil
}

func (s *Store) CreateClient(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clientSeq++
	stored := cloneClient(*c)
	stored.ID = s.clientSeq
	s.clients[stored.ID] = stored

	out := s.clientOutLocked(stored)
	return &out, nil
}

func (s *Store) UpdateClient(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[c.ID]; !ok {
		return nil, &domain.ErrNotFound{Resource: "client", ID: c.ID}
	}

	stored := cloneClient(*c)
	s.clients[stored.ID] = stored

	out := s.clientOutLocked(stored)
	return &out, nil
}

// DeleteClient removes the client and cascades to its credits.
func (s *Store) DeleteClient(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[id]; !ok {
		return &domain.ErrNotFound{Resource: "client", ID: id}
	}
	for cid, cr := range s.credits {
		if cr.ClientID == id {
			delete(s.credits, cid)
		}
	}
	delete(s.clients, id)
	return nil
}

func (s *Store) clientMatchesLocked(c domain.Client, f domain.ClientFilter) bool {
	if !containsFold(c.FullName, f.FullName) {
		return false
	}
	if !containsFold(c.Email, f.Email) {
		return false
	}
	if f.BankName != "" {
		if c.BankID == nil {
			return false
		}
		b, ok := s.banks[*c.BankID]
		if !ok || !containsFold(b.Name, f.BankName) {
			return false
		}
	}
	if len(f.PersonTypes) > 0 && !inStrings(string(c.PersonType), f.PersonTypes) {
		return false
	}
	if len(f.BankIDs) > 0 {
		if c.BankID == nil || !inInt64s(*c.BankID, f.BankIDs) {
			return false
		}
	}
	if f.Search != "" &&
		!containsFold(c.FullName, f.Search) && !containsFold(c.Email, f.Search) {
		return false
	}
	return true
}

// clientOutLocked returns a detached copy with the bank name filled in.
func (s *Store) clientOutLocked(c domain.Client) domain.Client {
	out := cloneClient(c)
	if out.BankID != nil {
		if b, ok := s.banks[*out.BankID]; ok {
			name := b.Name
			out.BankName = &name
		}
	}
	return out
}

// cloneClient deep-copies the pointer fields so callers never alias
// stored state.
func cloneClient(c domain.Client) domain.Client {
	out := c
	if c.Age != nil {
		v := *c.Age
		out.Age = &v
	}
	if c.BankID != nil {
		v := *c.BankID
		out.BankID = &v
	}
	out.BankName = nil
	return out
}

func sortClients(clients []domain.Client, p domain.ListParams) {
	key, desc := p.OrderKey(domain.ClientOrderings, "id", false)
	sort.SliceStable(clients, func(i, j int) bool {
		a, b := clients[i], clients[j]
		if desc {
			a, b = b, a
		}
		switch key {
		case "full_name":
			if a.FullName != b.FullName {
				return a.FullName < b.FullName
			}
			return a.ID < b.ID
		default:
			return a.ID < b.ID
		}
	})
}
