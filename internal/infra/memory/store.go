// Package memory provides an in-memory Store: the default backend when
// no database is configured, and the fixture the tests run against.
// The referential actions the relational backend gets from foreign keys
// (protect, set-null, cascade) are implemented explicitly here.
package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
)

// Store is a thread-safe in-memory implementation of port.Store.
type Store struct {
	mu sync.RWMutex

	banks   map[int64]domain.Bank
	clients map[int64]domain.Client
	credits map[int64]domain.Credit
	users   map[int64]domain.User

	bankSeq   int64
	clientSeq int64
	creditSeq int64
	userSeq   int64

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		banks:   make(map[int64]domain.Bank),
		clients: make(map[int64]domain.Client),
		credits: make(map[int64]domain.Credit),
		users:   make(map[int64]domain.User),
		now:     time.Now,
	}
}

// WithClock overrides the timestamp source for created_at.
// Tests use it to pin creation order.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// containsFold reports whether haystack contains needle,
// case-insensitively. An empty needle always matches.
func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func inStrings(v string, set []string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func inInt64s(v int64, set []int64) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
