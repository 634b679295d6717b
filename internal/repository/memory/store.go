// Package memory is a process-local implementation of repository.Store.
// Transactions are serialized behind one mutex and rolled back by restoring
// a snapshot, so it gives the same atomicity the SQL store does for a single
// process.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"webstore/internal/models"
	"webstore/internal/repository"
)

type state struct {
	seq        map[string]uint
	products   map[uint]models.Product
	categories map[uint]models.Category
	brands     map[uint]models.Brand
	sizes      map[uint]models.Size
	colors     map[uint]models.Color
	clients    map[uint]models.Client
	orders     map[uint]models.Order
	items      map[uint]models.OrderItem
	users      map[uint]models.User
}

func newState() *state {
	return &state{
		seq:        map[string]uint{},
		products:   map[uint]models.Product{},
		categories: map[uint]models.Category{},
		brands:     map[uint]models.Brand{},
		sizes:      map[uint]models.Size{},
		colors:     map[uint]models.Color{},
		clients:    map[uint]models.Client{},
		orders:     map[uint]models.Order{},
		items:      map[uint]models.OrderItem{},
		users:      map[uint]models.User{},
	}
}

func (s *state) clone() *state {
	return &state{
		seq:        cloneMap(s.seq),
		products:   cloneMap(s.products),
		categories: cloneMap(s.categories),
		brands:     cloneMap(s.brands),
		sizes:      cloneMap(s.sizes),
		colors:     cloneMap(s.colors),
		clients:    cloneMap(s.clients),
		orders:     cloneMap(s.orders),
		items:      cloneMap(s.items),
		users:      cloneMap(s.users),
	}
}

func (s *state) next(table string) uint {
	s.seq[table]++
	return s.seq[table]
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[uint]V) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

var _ repository.Store = (*Store)(nil)

type Store struct {
	mu   *sync.Mutex
	data *state
	inTx bool
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		mu:   &sync.Mutex{},
		data: newState(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// lock acquires the store mutex unless the caller already holds it through
// a transaction. The returned func releases it.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Products() repository.ProductRepository { return &productRepository{s} }
func (s *Store) Catalog() repository.CatalogRepository  { return &catalogRepository{s} }
func (s *Store) Clients() repository.ClientRepository   { return &clientRepository{s} }
func (s *Store) Orders() repository.OrderRepository     { return &orderRepository{s} }
func (s *Store) Stock() repository.StockRepository      { return &stockRepository{s} }
func (s *Store) Reports() repository.ReportRepository   { return &reportRepository{s} }
func (s *Store) Users() repository.UserRepository       { return &userRepository{s} }

func (s *Store) WithinTransaction(ctx context.Context, fn func(tx repository.Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if r := recover(); r != nil {
			*s.data = *snapshot
			panic(r)
		}
		if err != nil {
			*s.data = *snapshot
		}
	}()

	return fn(&Store{mu: s.mu, data: s.data, inTx: true, now: s.now})
}

func statusIn(status models.OrderStatus, statuses []models.OrderStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
