// Package tracker keeps a displayed order fresh by re-fetching it on a fixed
// interval and publishing each snapshot to a subscriber. It replaces a push
// channel: the backend advances status on its own, the tracker just polls.
package tracker

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"restaurant-orders-api/models"
)

// DefaultInterval matches the original tracking view's 30 second refresh.
const DefaultInterval = 30 * time.Second

// Getter is the read side of the order service.
type Getter interface {
	GetOrder(id string) (*models.Order, bool, error)
}

type Tracker struct {
	orders   Getter
	interval time.Duration
	log      *logrus.Entry
}

func New(orders Getter, interval time.Duration, log *logrus.Logger) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Tracker{
		orders:   orders,
		interval: interval,
		log:      log.WithField("component", "tracker"),
	}
}

// Subscription is a handle on one polling loop. Stop is idempotent and may
// be called at any time; Done closes once the loop has fully exited.
type Subscription struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func (s *Subscription) Stop() {
	s.once.Do(func() { close(s.stop) })
}

func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Follow starts polling the given order. The caller is expected to have done
// the first fetch itself; the loop only covers subsequent refreshes. Each
// successful fetch is published to the subscriber; a missing order skips
// that tick's publish and the loop keeps going. The loop stops on Stop() or
// once the order reaches a terminal status. No lock is held between ticks —
// the loop only calls the read API.
func (t *Tracker) Follow(id string, publish func(models.Order)) *Subscription {
	sub := &Subscription{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go t.loop(id, publish, sub)
	return sub
}

func (t *Tracker) loop(id string, publish func(models.Order), sub *Subscription) {
	defer close(sub.done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-sub.stop:
			return
		case <-ticker.C:
			order, found, err := t.orders.GetOrder(id)
			if err != nil {
				t.log.WithField("order_id", id).WithError(err).Warn("poll tick failed; will retry")
				continue
			}
			if !found {
				t.log.WithField("order_id", id).Debug("order not found on poll tick")
				continue
			}
			publish(*order)
			if order.Status.Terminal() {
				t.log.WithFields(logrus.Fields{"order_id": id, "status": order.Status}).
					Debug("order reached terminal status; stopping poll")
				return
			}
		}
	}
}
