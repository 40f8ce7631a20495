// Package service orchestrates order creation, lookup, cancellation and
// status advancement against the store, enforcing the state machine and the
// cancellation policy. It is the only code path that mutates order status.
package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"restaurant-orders-api/models"
	"restaurant-orders-api/statemachine"
	"restaurant-orders-api/store"
)

var (
	ErrEmptyCart      = errors.New("cannot place an order with an empty cart")
	ErrTotalMismatch  = errors.New("submitted total does not match the item sum")
	ErrMissingAddress = errors.New("delivery orders require an address")
)

// totalTolerance absorbs client-side float rounding when re-validating the
// submitted total. Anything beyond half a cent is a stale cart.
const totalTolerance = 0.005

// CreateOrderInput is the finalized checkout snapshot: cart lines and total
// come from the cart, delivery defaults from the identity provider.
type CreateOrderInput struct {
	UserID        string
	Items         []models.OrderLineItem
	Total         float64
	DeliveryType  models.DeliveryType
	DeliveryInfo  models.DeliveryInfo
	PaymentMethod models.PaymentMethod
}

// StatusExtra carries the optional fields an operations transition may set.
type StatusExtra struct {
	EstimatedDelivery *time.Time
	CurrentLocation   string
}

type Orders struct {
	store   store.Store
	machine statemachine.Machine
	log     *logrus.Entry
}

func NewOrders(st store.Store, machine statemachine.Machine, log *logrus.Logger) *Orders {
	return &Orders{
		store:   st,
		machine: machine,
		log:     log.WithField("component", "orders"),
	}
}

// CreateOrder validates the checkout snapshot, persists a pending order and
// returns its id. Nothing is persisted when validation fails.
func (s *Orders) CreateOrder(in CreateOrderInput) (string, error) {
	if len(in.Items) == 0 {
		return "", ErrEmptyCart
	}
	if in.DeliveryType == models.DeliveryTypeDelivery && strings.TrimSpace(in.DeliveryInfo.Address) == "" {
		return "", ErrMissingAddress
	}

	var sum float64
	for _, item := range in.Items {
		sum += item.LineTotal()
	}
	if diff := sum - in.Total; diff > totalTolerance || diff < -totalTolerance {
		return "", fmt.Errorf("%w: submitted %.2f, items sum to %.2f", ErrTotalMismatch, in.Total, sum)
	}

	userID := in.UserID
	if userID == "" {
		userID = models.GuestUserID
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:            models.NewOrderID(),
		UserID:        userID,
		Items:         in.Items,
		Total:         in.Total,
		DeliveryType:  in.DeliveryType,
		DeliveryInfo:  in.DeliveryInfo,
		PaymentMethod: in.PaymentMethod,
		Status:        models.StatusPending,
		StatusHistory: []models.OrderStatusHistory{{
			ToStatus: models.StatusPending,
			Actor:    "customer",
			Note:     "order placed",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	order.StatusHistory[0].OrderID = order.ID

	if err := s.store.Put(order); err != nil {
		return "", err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":      order.ID,
		"user_id":       userID,
		"delivery_type": in.DeliveryType,
		"total":         in.Total,
	}).Info("order created")
	return order.ID, nil
}

// GetOrder is a read-through to the store.
func (s *Orders) GetOrder(id string) (*models.Order, bool, error) {
	return s.store.Get(id)
}

// ListOrdersForUser returns the user's orders newest first.
func (s *Orders) ListOrdersForUser(userID string) ([]models.Order, error) {
	return s.store.ListByUser(userID)
}

// ListOrders returns all orders newest first, optionally filtered by
// status. This is the operations-side view (kitchen dashboard).
func (s *Orders) ListOrders(status models.OrderStatus) ([]models.Order, error) {
	return s.store.List(status)
}

// Cancellable reports whether the cancellation policy still permits a
// customer cancel from the given status. Exposed so views render the cancel
// action from the same predicate the service enforces.
func (s *Orders) Cancellable(status models.OrderStatus) bool {
	return statemachine.CanCancel(status)
}

// CancelOrder is the only state change a customer triggers directly. It
// returns true when the order was cancelled and false when the id is unknown
// or the cancellation policy refuses; a refused cancellation is not an error.
func (s *Orders) CancelOrder(id string) (bool, error) {
	order, found, err := s.store.Update(id, func(o *models.Order) error {
		if !statemachine.CanCancel(o.Status) {
			return statemachine.ErrInvalidTransition
		}
		if err := s.machine.CanTransition(o.Status, models.StatusCancelled, o.DeliveryType); err != nil {
			return err
		}
		s.applyTransition(o, models.StatusCancelled, "customer", "order cancelled by customer")
		return nil
	})
	if errors.Is(err, statemachine.ErrInvalidTransition) {
		s.log.WithField("order_id", id).Info("cancellation refused")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	s.log.WithField("order_id", order.ID).Info("order cancelled")
	return true, nil
}

// AdvanceStatus applies an operations-originated transition (kitchen or
// dispatch). It returns true when the transition was applied and false when
// the id is unknown or the state machine refuses the move.
func (s *Orders) AdvanceStatus(id string, next models.OrderStatus, extra *StatusExtra) (bool, error) {
	order, found, err := s.store.Update(id, func(o *models.Order) error {
		if err := s.machine.CanTransition(o.Status, next, o.DeliveryType); err != nil {
			return err
		}
		s.applyTransition(o, next, actorFor(next), "")
		if extra != nil {
			if extra.EstimatedDelivery != nil {
				o.EstimatedDelivery = extra.EstimatedDelivery
			}
			if extra.CurrentLocation != "" && o.Status == models.StatusDelivering {
				o.CurrentLocation = extra.CurrentLocation
			}
		}
		return nil
	})
	if errors.Is(err, statemachine.ErrInvalidTransition) {
		s.log.WithFields(logrus.Fields{"order_id": id, "next": next}).Warn("transition refused")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	s.log.WithFields(logrus.Fields{"order_id": order.ID, "status": next}).Info("order status advanced")
	return true, nil
}

func (s *Orders) applyTransition(o *models.Order, next models.OrderStatus, actor, note string) {
	o.StatusHistory = append(o.StatusHistory, models.OrderStatusHistory{
		OrderID:    o.ID,
		FromStatus: o.Status,
		ToStatus:   next,
		Actor:      actor,
		Note:       note,
	})
	o.Status = next
	o.UpdatedAt = time.Now().UTC()
}

func actorFor(next models.OrderStatus) string {
	if next == models.StatusDelivering {
		return "dispatch"
	}
	return "kitchen"
}
