package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
)

func (s *Store) ListBanks(ctx context.Context, f domain.BankFilter) ([]domain.Bank, int, error) {
	f.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Bank, 0, len(s.banks))
	for _, b := range s.banks {
		if bankMatches(b, f) {
			matched = append(matched, b)
		}
	}
	sortBanks(matched, f.ListParams)

	count := len(matched)
	lo, hi := domain.PageWindow(count, f.Page, f.PageSize)
	return matched[lo:hi], count, nil
}

func (s *Store) GetBank(ctx context.Context, id int64) (*domain.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.banks[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "bank", ID: id}
	}
	return &b, nil
}

func (s *Store) CreateBank(ctx context.Context, b *domain.Bank) (*domain.Bank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bankNameTakenLocked(b.Name, 0) {
		return nil, &domain.ErrConflict{Message: "bank with this name already exists."}
	}

	s.bankSeq++
	stored := *b
	stored.ID = s.bankSeq
	s.banks[stored.ID] = stored
	return &stored, nil
}

func (s *Store) UpdateBank(ctx context.Context, b *domain.Bank) (*domain.Bank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.banks[b.ID]; !ok {
		return nil, &domain.ErrNotFound{Resource: "bank", ID: b.ID}
	}
	if s.bankNameTakenLocked(b.Name, b.ID) {
		return nil, &domain.ErrConflict{Message: "bank with this name already exists."}
	}

	stored := *b
	s.banks[stored.ID] = stored
	return &stored, nil
}

// DeleteBank refuses while credits reference the bank (protect) and
// clears the reference of any clients that do (set-null).
func (s *Store) DeleteBank(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.banks[id]; !ok {
		return &domain.ErrNotFound{Resource: "bank", ID: id}
	}
	for _, c := range s.credits {
		if c.BankID == id {
			return &domain.ErrProtected{Resource: "bank", ID: id, Dependent: "credits"}
		}
	}
	for cid, c := range s.clients {
		if c.BankID != nil && *c.BankID == id {
			c.BankID = nil
			s.clients[cid] = c
		}
	}
	delete(s.banks, id)
	return nil
}

func (s *Store) BankNameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bankNameTakenLocked(name, excludeID), nil
}

func (s *Store) bankNameTakenLocked(name string, excludeID int64) bool {
	for _, b := range s.banks {
		if b.ID != excludeID && strings.EqualFold(b.Name, name) {
			return true
		}
	}
	return false
}

func bankMatches(b domain.Bank, f domain.BankFilter) bool {
	if !containsFold(b.Name, f.Name) {
		return false
	}
	if !containsFold(b.Address, f.Address) {
		return false
	}
	if len(f.BankTypes) > 0 && !inStrings(string(b.BankType), f.BankTypes) {
		return false
	}
	if f.Search != "" && !containsFold(b.Name, f.Search) {
		return false
	}
	return true
}

func sortBanks(banks []domain.Bank, p domain.ListParams) {
	key, desc := p.OrderKey(domain.BankOrderings, "id", false)
	sort.SliceStable(banks, func(i, j int) bool {
		a, b := banks[i], banks[j]
		if desc {
			a, b = b, a
		}
		switch key {
		case "name":
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return a.ID < b.ID
		default:
			return a.ID < b.ID
		}
	})
}
