package repository

import (
	"context"
	"errors"
	"time"

	"webstore/internal/database"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrInUse     = errors.New("record is still referenced")
)

// Store groups the repositories that share one database handle.
type Store interface {
	Products() ProductRepository
	Catalog() CatalogRepository
	Clients() ClientRepository
	Orders() OrderRepository
	Stock() StockRepository
	Reports() ReportRepository
	Users() UserRepository
	// WithinTransaction runs fn inside a single transaction and commits when fn
	// returns nil. fn may run more than once if the transaction is retried
	// after a serialization conflict, so it must only touch the store.
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db         *gorm.DB
	maxRetries int
	inTx       bool
}

func NewStore(db *gorm.DB, maxRetries int) Store {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &gormStore{db: db, maxRetries: maxRetries}
}

func (s *gormStore) Products() ProductRepository { return NewProductRepository(s.db) }
func (s *gormStore) Catalog() CatalogRepository  { return NewCatalogRepository(s.db) }
func (s *gormStore) Clients() ClientRepository   { return NewClientRepository(s.db) }
func (s *gormStore) Orders() OrderRepository     { return NewOrderRepository(s.db) }
func (s *gormStore) Stock() StockRepository      { return NewStockRepository(s.db) }
func (s *gormStore) Reports() ReportRepository   { return NewReportRepository(s.db) }
func (s *gormStore) Users() UserRepository       { return NewUserRepository(s.db) }

func (s *gormStore) WithinTransaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 20 * time.Millisecond
	policy.MaxInterval = 500 * time.Millisecond
	policy.MaxElapsedTime = 5 * time.Second

	operation := func() error {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&gormStore{db: tx, maxRetries: s.maxRetries, inTx: true})
		})
		if err != nil && !database.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.maxRetries)), ctx))
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	if database.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func inUse(err error) error {
	if database.IsForeignKeyViolation(err) {
		return ErrInUse
	}
	return err
}
