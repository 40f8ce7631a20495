package statemachine

import (
	"errors"
	"fmt"

	"restaurant-orders-api/models"
)

// ErrInvalidTransition is returned for any transition not in the table.
// The order is left untouched when it is returned.
var ErrInvalidTransition = errors.New("invalid status transition")

// Transition defines a valid state change. Only restricts the transition to
// one delivery type; empty means either.
type Transition struct {
	From models.OrderStatus
	To   models.OrderStatus
	Only models.DeliveryType
}

// validTransitions is the authoritative state machine definition.
// pending → preparing → delivering → completed is the happy path; pickup
// orders skip delivering and go straight from preparing to completed.
var validTransitions = []Transition{
	{From: models.StatusPending, To: models.StatusPreparing},
	{From: models.StatusPending, To: models.StatusCancelled},
	{From: models.StatusPreparing, To: models.StatusDelivering, Only: models.DeliveryTypeDelivery},
	{From: models.StatusPreparing, To: models.StatusCompleted, Only: models.DeliveryTypePickup},
	{From: models.StatusPreparing, To: models.StatusCancelled},
	{From: models.StatusDelivering, To: models.StatusCompleted},
}

// Machine validates transitions against the table. The zero value is the
// standard policy; Default is what callers should normally use.
type Machine struct {
	// PickupMayDeliver lets pickup orders pass through delivering, for
	// restaurants where a runner carries food to a counter.
	PickupMayDeliver bool
}

// Default is the standard machine: pickup orders skip delivering.
var Default = Machine{}

// CanTransition checks whether an order of the given delivery type may move
// from one status to another. It returns nil when the move is allowed and an
// error wrapping ErrInvalidTransition otherwise.
func (m Machine) CanTransition(from, to models.OrderStatus, deliveryType models.DeliveryType) error {
	for _, t := range validTransitions {
		if t.From != from || t.To != to {
			continue
		}
		if t.Only == "" || t.Only == deliveryType {
			return nil
		}
		if m.PickupMayDeliver && to == models.StatusDelivering && deliveryType == models.DeliveryTypePickup {
			return nil
		}
	}
	return fmt.Errorf("%w: %s → %s is not allowed for a %s order; valid next states are: %s",
		ErrInvalidTransition, from, to, deliveryType, describeValidFrom(m, from, deliveryType))
}

// CanCancel reports whether the customer may still cancel from the given
// status. Once an order enters delivering, dispatch has committed and
// cancellation is permanently refused.
func CanCancel(status models.OrderStatus) bool {
	return status == models.StatusPending || status == models.StatusPreparing
}

// ValidTransitionsFrom returns all statuses reachable in one step for an
// order of the given delivery type.
func (m Machine) ValidTransitionsFrom(status models.OrderStatus, deliveryType models.DeliveryType) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From != status || seen[t.To] {
			continue
		}
		if m.CanTransition(status, t.To, deliveryType) == nil {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

func describeValidFrom(m Machine, status models.OrderStatus, deliveryType models.DeliveryType) string {
	nexts := m.ValidTransitionsFrom(status, deliveryType)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// AllTransitions returns the full table for documentation endpoints.
func AllTransitions() []Transition {
	return validTransitions
}
