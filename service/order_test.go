package service_test

import (
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-orders-api/models"
	"restaurant-orders-api/service"
	"restaurant-orders-api/statemachine"
	"restaurant-orders-api/store"
)

// fakeStore is a map-backed Store for exercising the service without a
// database. Mutations commit only when the mutator succeeds.
type fakeStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

var _ store.Store = &fakeStore{}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: make(map[string]*models.Order)}
}

func clone(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderLineItem(nil), o.Items...)
	cp.StatusHistory = append([]models.OrderStatusHistory(nil), o.StatusHistory...)
	return &cp
}

func (f *fakeStore) Put(order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[order.ID] = clone(order)
	return nil
}

func (f *fakeStore) Get(id string) (*models.Order, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, false, nil
	}
	return clone(o), true, nil
}

func (f *fakeStore) ListByUser(userID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []models.Order{}
	for _, o := range f.orders {
		if o.UserID == userID {
			result = append(result, *clone(o))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (f *fakeStore) List(status models.OrderStatus) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []models.Order{}
	for _, o := range f.orders {
		if status == "" || o.Status == status {
			result = append(result, *clone(o))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (f *fakeStore) Update(id string, mutate func(*models.Order) error) (*models.Order, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, false, nil
	}
	cp := clone(o)
	if err := mutate(cp); err != nil {
		return cp, true, err
	}
	f.orders[id] = cp
	return clone(cp), true, nil
}

func setup(t *testing.T) (*service.Orders, *fakeStore) {
	t.Helper()
	repo := newFakeStore()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return service.NewOrders(repo, statemachine.Default, log), repo
}

func burgerCart() []models.OrderLineItem {
	return []models.OrderLineItem{{Name: "Burger", UnitPrice: 10.00, Quantity: 2}}
}

func pickupInput() service.CreateOrderInput {
	return service.CreateOrderInput{
		UserID:       "user-1",
		Items:        burgerCart(),
		Total:        20.00,
		DeliveryType: models.DeliveryTypePickup,
		DeliveryInfo: models.DeliveryInfo{
			Name:  "Ana",
			Phone: "11 99999-0000",
			Time:  models.DeliveryTimeASAP,
		},
		PaymentMethod: models.PaymentCash,
	}
}

func deliveryInput() service.CreateOrderInput {
	in := pickupInput()
	in.DeliveryType = models.DeliveryTypeDelivery
	in.DeliveryInfo.Address = "Rua das Flores, 123"
	return in
}

func TestCreateOrder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		orders, repo := setup(t)

		id, err := orders.CreateOrder(pickupInput())
		require.NoError(t, err)
		assert.Regexp(t, `^order_`, id)

		saved, ok := repo.orders[id]
		require.True(t, ok)
		assert.Equal(t, models.StatusPending, saved.Status)
		assert.Equal(t, 20.00, saved.Total)
		assert.Equal(t, saved.Total, saved.ItemsTotal())
		assert.False(t, saved.CreatedAt.IsZero())
		require.Len(t, saved.StatusHistory, 1)
		assert.Equal(t, models.StatusPending, saved.StatusHistory[0].ToStatus)
	})

	t.Run("empty cart", func(t *testing.T) {
		orders, repo := setup(t)
		in := pickupInput()
		in.Items = nil

		_, err := orders.CreateOrder(in)
		assert.ErrorIs(t, err, service.ErrEmptyCart)
		assert.Empty(t, repo.orders, "nothing may be persisted on validation failure")
	})

	t.Run("total mismatch", func(t *testing.T) {
		orders, repo := setup(t)
		in := pickupInput()
		in.Total = 15.00 // items sum to 20.00

		_, err := orders.CreateOrder(in)
		assert.ErrorIs(t, err, service.ErrTotalMismatch)
		assert.Empty(t, repo.orders)
	})

	t.Run("missing address on delivery", func(t *testing.T) {
		orders, repo := setup(t)
		in := deliveryInput()
		in.DeliveryInfo.Address = "  "

		_, err := orders.CreateOrder(in)
		assert.ErrorIs(t, err, service.ErrMissingAddress)
		assert.Empty(t, repo.orders)
	})

	t.Run("pickup needs no address", func(t *testing.T) {
		orders, _ := setup(t)
		_, err := orders.CreateOrder(pickupInput())
		assert.NoError(t, err)
	})

	t.Run("anonymous caller becomes guest", func(t *testing.T) {
		orders, repo := setup(t)
		in := pickupInput()
		in.UserID = ""

		id, err := orders.CreateOrder(in)
		require.NoError(t, err)
		assert.Equal(t, models.GuestUserID, repo.orders[id].UserID)
	})
}

func TestCancelOrder(t *testing.T) {
	t.Run("pending order cancels and a second attempt is refused", func(t *testing.T) {
		orders, repo := setup(t)
		id, err := orders.CreateOrder(deliveryInput())
		require.NoError(t, err)

		ok, err := orders.CancelOrder(id)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, models.StatusCancelled, repo.orders[id].Status)
		require.Len(t, repo.orders[id].StatusHistory, 2)
		assert.Equal(t, "customer", repo.orders[id].StatusHistory[1].Actor)

		ok, err = orders.CancelOrder(id)
		require.NoError(t, err)
		assert.False(t, ok, "second cancel is a no-op refusal, not an error")
		assert.Equal(t, models.StatusCancelled, repo.orders[id].Status)
	})

	t.Run("preparing order cancels", func(t *testing.T) {
		orders, repo := setup(t)
		id, _ := orders.CreateOrder(deliveryInput())
		repo.orders[id].Status = models.StatusPreparing

		ok, err := orders.CancelOrder(id)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("delivering order refuses cancellation", func(t *testing.T) {
		orders, repo := setup(t)
		id, _ := orders.CreateOrder(deliveryInput())
		repo.orders[id].Status = models.StatusDelivering

		ok, err := orders.CancelOrder(id)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, models.StatusDelivering, repo.orders[id].Status, "refused cancel must not mutate")
	})

	t.Run("unknown id", func(t *testing.T) {
		orders, _ := setup(t)
		ok, err := orders.CancelOrder("order_missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestAdvanceStatusPickupFlow(t *testing.T) {
	orders, repo := setup(t)
	id, err := orders.CreateOrder(pickupInput())
	require.NoError(t, err)

	ok, err := orders.AdvanceStatus(id, models.StatusPreparing, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = orders.AdvanceStatus(id, models.StatusDelivering, nil)
	require.NoError(t, err)
	assert.False(t, ok, "pickup orders skip delivering")
	assert.Equal(t, models.StatusPreparing, repo.orders[id].Status, "failed transition leaves status unchanged")

	ok, err = orders.AdvanceStatus(id, models.StatusCompleted, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.StatusCompleted, repo.orders[id].Status)
}

func TestAdvanceStatusDeliveryFlow(t *testing.T) {
	orders, repo := setup(t)
	id, err := orders.CreateOrder(deliveryInput())
	require.NoError(t, err)

	ok, err := orders.AdvanceStatus(id, models.StatusPreparing, nil)
	require.NoError(t, err)
	require.True(t, ok)

	eta := time.Now().UTC().Add(40 * time.Minute)
	ok, err = orders.AdvanceStatus(id, models.StatusDelivering, &service.StatusExtra{
		EstimatedDelivery: &eta,
		CurrentLocation:   "Av. Paulista, heading north",
	})
	require.NoError(t, err)
	require.True(t, ok)

	saved := repo.orders[id]
	require.NotNil(t, saved.EstimatedDelivery)
	assert.Equal(t, eta, *saved.EstimatedDelivery)
	assert.Equal(t, "Av. Paulista, heading north", saved.CurrentLocation)

	ok, err = orders.AdvanceStatus(id, models.StatusCompleted, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = orders.AdvanceStatus(id, models.StatusPreparing, nil)
	require.NoError(t, err)
	assert.False(t, ok, "completed is terminal")
}

func TestCancelledOrderCannotAdvance(t *testing.T) {
	orders, repo := setup(t)
	id, _ := orders.CreateOrder(deliveryInput())

	ok, err := orders.CancelOrder(id)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = orders.AdvanceStatus(id, models.StatusPreparing, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, models.StatusCancelled, repo.orders[id].Status)
}

func TestListOrdersForUserNewestFirst(t *testing.T) {
	orders, repo := setup(t)

	first, err := orders.CreateOrder(pickupInput())
	require.NoError(t, err)
	second, err := orders.CreateOrder(pickupInput())
	require.NoError(t, err)
	repo.orders[first].CreatedAt = time.Now().UTC().Add(-time.Hour)

	list, err := orders.ListOrdersForUser("user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, first, list[1].ID)
}

func TestListOrdersForUnknownUserIsEmpty(t *testing.T) {
	orders, _ := setup(t)
	list, err := orders.ListOrdersForUser("nobody")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCancellable(t *testing.T) {
	orders, _ := setup(t)
	assert.True(t, orders.Cancellable(models.StatusPending))
	assert.True(t, orders.Cancellable(models.StatusPreparing))
	assert.False(t, orders.Cancellable(models.StatusDelivering))
	assert.False(t, orders.Cancellable(models.StatusCompleted))
	assert.False(t, orders.Cancellable(models.StatusCancelled))
}
