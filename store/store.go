// Package store owns the canonical order records. Every other component
// reads snapshots or requests mutations through it; nothing else holds a
// second mutable copy.
package store

import (
	"sync"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"restaurant-orders-api/models"
)

// Store is the keyed collection of orders. Get and ListByUser report
// absence as (nil/empty, false/empty) rather than an error; Update applies
// the mutator atomically with respect to other writers on the same id.
type Store interface {
	Put(order *models.Order) error
	Get(id string) (*models.Order, bool, error)
	ListByUser(userID string) ([]models.Order, error)
	List(status models.OrderStatus) ([]models.Order, error)
	Update(id string, mutate func(*models.Order) error) (*models.Order, bool, error)
}

// GormStore persists orders through gorm. Cross-id operations run fully in
// parallel; mutations on one id are serialized by a per-id lock so a cancel
// can never interleave with a completion.
type GormStore struct {
	db *gorm.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, locks: make(map[string]*sync.Mutex)}
}

func (s *GormStore) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Put inserts a newly created order.
func (s *GormStore) Put(order *models.Order) error {
	if err := s.db.Create(order).Error; err != nil {
		return errors.Wrap(err, "store: create order")
	}
	return nil
}

// Get returns the order and true, or nil and false when the id is unknown.
func (s *GormStore) Get(id string) (*models.Order, bool, error) {
	var order models.Order
	err := s.db.Preload("StatusHistory").First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "store: load order")
	}
	return &order, true, nil
}

// ListByUser returns the user's orders newest first. A user with no orders
// gets an empty slice, never an error.
func (s *GormStore) ListByUser(userID string) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.Preload("StatusHistory").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "store: list orders")
	}
	return orders, nil
}

// List returns all orders newest first, filtered by status when one is
// given.
func (s *GormStore) List(status models.OrderStatus) ([]models.Order, error) {
	orders := []models.Order{}
	q := s.db.Preload("StatusHistory").Order("created_at desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, errors.Wrap(err, "store: list orders")
	}
	return orders, nil
}

// Update loads the order under its per-id lock, applies the mutator and
// saves the result. A mutator error aborts the write and is returned as-is
// so callers can match sentinel errors. Unknown ids return found=false.
func (s *GormStore) Update(id string, mutate func(*models.Order) error) (*models.Order, bool, error) {
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()

	var order models.Order
	err := s.db.Preload("StatusHistory").First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "store: load order")
	}

	if err := mutate(&order); err != nil {
		return &order, true, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// New history rows appended by the mutator have no id yet.
		for i := range order.StatusHistory {
			if order.StatusHistory[i].ID == 0 {
				if err := tx.Create(&order.StatusHistory[i]).Error; err != nil {
					return err
				}
			}
		}
		return tx.Omit("StatusHistory").Save(&order).Error
	})
	if err != nil {
		return nil, true, errors.Wrap(err, "store: save order")
	}
	return &order, true, nil
}
