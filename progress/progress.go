// Package progress derives everything a tracking view shows from an order's
// status, so no presentation surface re-implements the branching. All
// functions are pure and safe to evaluate anywhere.
package progress

import "restaurant-orders-api/models"

// Milestones flags which tracking milestones the order has reached.
// Delivering only applies to delivery orders; pickup views skip it.
type Milestones struct {
	Received   bool `json:"received"`
	Preparing  bool `json:"preparing"`
	Delivering bool `json:"delivering"`
	Done       bool `json:"done"`
}

// Projection bundles the derived display fields for one status.
type Projection struct {
	Percent     int        `json:"percent"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	Milestones  Milestones `json:"milestones"`
}

// Percent maps a status to the progress bar value.
func Percent(status models.OrderStatus) int {
	switch status {
	case models.StatusPending:
		return 25
	case models.StatusPreparing:
		return 50
	case models.StatusDelivering:
		return 75
	case models.StatusCompleted:
		return 100
	default:
		return 0
	}
}

// Label is the short phase name shown next to the status icon.
func Label(status models.OrderStatus) string {
	switch status {
	case models.StatusPending:
		return "Received"
	case models.StatusPreparing:
		return "Preparing"
	case models.StatusDelivering:
		return "Out for delivery"
	case models.StatusCompleted:
		return "Completed"
	case models.StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Description is the sentence shown in the "current status" panel. The
// completed wording differs between delivery and pickup.
func Description(status models.OrderStatus, deliveryType models.DeliveryType) string {
	switch status {
	case models.StatusPending:
		return "Your order has been received and is being processed. Preparation will start shortly."
	case models.StatusPreparing:
		return "Your order is being prepared in the kitchen."
	case models.StatusDelivering:
		return "Your order is on its way! The courier is heading to your address."
	case models.StatusCompleted:
		if deliveryType == models.DeliveryTypeDelivery {
			return "Your order has been delivered. Enjoy your meal!"
		}
		return "Your order is ready for pickup. Enjoy your meal!"
	case models.StatusCancelled:
		return "This order has been cancelled."
	default:
		return ""
	}
}

// rank orders the linear happy path; cancelled sits at the submission mark.
var rank = map[models.OrderStatus]int{
	models.StatusPending:    1,
	models.StatusPreparing:  2,
	models.StatusDelivering: 3,
	models.StatusCompleted:  4,
}

// Reached computes milestone reachability: each milestone is reached once
// the status is at or past it. A cancelled order keeps only the initial
// submission milestone. Pickup orders treat completed as the step after
// preparing, so Delivering stays false for them.
func Reached(status models.OrderStatus, deliveryType models.DeliveryType) Milestones {
	if status == models.StatusCancelled {
		return Milestones{Received: true}
	}
	r := rank[status]
	return Milestones{
		Received:   r >= 1,
		Preparing:  r >= 2,
		Delivering: deliveryType == models.DeliveryTypeDelivery && r >= 3,
		Done:       r >= 4,
	}
}

// Project evaluates the full projection for one status.
func Project(status models.OrderStatus, deliveryType models.DeliveryType) Projection {
	return Projection{
		Percent:     Percent(status),
		Label:       Label(status),
		Description: Description(status, deliveryType),
		Milestones:  Reached(status, deliveryType),
	}
}
