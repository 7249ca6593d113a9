package service

import (
	"context"
	"math"
	"sync"
	"testing"

	"go-marketplace-ws/internal/model"
	"go-marketplace-ws/internal/repository"
	"go-marketplace-ws/internal/ws"
	"go-marketplace-ws/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockLedgerScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.fx.Product(f.store, "15.00", 5, true)
	customer := f.customer.Actor()

	a, err := f.orders.CreateOrder(ctx, customer, orderFor(f.store, p, 3))
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, a.Status)
	assert.Equal(t, 2, f.fx.Stock(p.ID))

	_, err = f.orders.CreateOrder(ctx, customer, orderFor(f.store, p, 3))
	requireKind(t, err, apperror.KindInsufficientStock)
	assert.Equal(t, 2, f.fx.Stock(p.ID))
	assert.Equal(t, int64(1), f.fx.Count(&model.Order{}))

	cancelled, err := f.orders.CancelOrder(ctx, customer, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Status)
	assert.Equal(t, 5, f.fx.Stock(p.ID))

	_, err = f.orders.CancelOrder(ctx, customer, a.ID)
	requireKind(t, err, apperror.KindInvalidTransition)
	assert.Equal(t, 5, f.fx.Stock(p.ID))
}

func TestCreateOrderSnapshotsPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.fx.Product(f.store, "15.00", 10, true)

	order, err := f.orders.CreateOrder(ctx, f.customer.Actor(), orderFor(f.store, p, 3))
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(45)), order.TotalAmount.String())
	assert.Regexp(t, `^SIP\d{10}$`, order.OrderNumber)
	require.Len(t, order.Items, 1)
	assert.NotNil(t, order.Store)

	require.NoError(t, f.db.Model(&model.Product{}).Where("id = ?", p.ID).Update("price", decimal.NewFromInt(99)).Error)

	got, err := f.orders.GetOrderByID(ctx, f.customer.Actor(), order.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(45)))
	assert.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("15.00")))
}

func TestCreateOrderNotifiesStore(t *testing.T) {
	f := newFixture(t)
	p := f.fx.Product(f.store, "2.00", 10, true)

	order, err := f.orders.CreateOrder(context.Background(), f.customer.Actor(), orderFor(f.store, p, 1))
	require.NoError(t, err)

	sent := f.rec.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, ws.StoreChannel(f.store.ID), sent[0].channel)
	assert.Equal(t, ws.EventNewOrder, sent[0].event.Type)
	payload := sent[0].event.Payload.(OrderEvent)
	assert.Equal(t, order.OrderNumber, payload.OrderNumber)
	assert.NotNil(t, payload.Order)
}

func TestCreateOrderIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	good := f.fx.Product(f.store, "5.00", 10, true)
	inactive := f.fx.Product(f.store, "5.00", 10, false)
	foreign := f.fx.Product(f.fx.Store(f.owner, true), "5.00", 10, true)

	for name, bad := range map[string]*model.Product{"inactive": inactive, "other store": foreign} {
		t.Run(name, func(t *testing.T) {
			_, err := f.orders.CreateOrder(ctx, f.customer.Actor(), orderFor(f.store, good, 2, bad, 1))
			requireKind(t, err, apperror.KindProductUnavailable)
		})
	}

	_, err := f.orders.CreateOrder(ctx, f.customer.Actor(), &CreateOrderRequest{
		StoreID:         f.store.ID,
		DeliveryAddress: "x",
		Items:           []OrderItemRequest{{ProductID: good.ID, Quantity: 2}, {ProductID: uuid.New(), Quantity: 1}},
	})
	requireKind(t, err, apperror.KindProductUnavailable)

	assert.Equal(t, 10, f.fx.Stock(good.ID))
	assert.Equal(t, int64(0), f.fx.Count(&model.Order{}))
	assert.Equal(t, int64(0), f.fx.Count(&model.OrderItem{}))
	assert.Empty(t, f.rec.sent())
}

func TestCreateOrderSumsDuplicateLines(t *testing.T) {
	f := newFixture(t)
	p := f.fx.Product(f.store, "1.00", 5, true)

	_, err := f.orders.CreateOrder(context.Background(), f.customer.Actor(), orderFor(f.store, p, 3, p, 3))
	requireKind(t, err, apperror.KindInsufficientStock)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 5, appErr.Metadata["available"])
	assert.Equal(t, 6, appErr.Metadata["requested"])
	assert.Equal(t, 5, f.fx.Stock(p.ID))

	order, err := f.orders.CreateOrder(context.Background(), f.customer.Actor(), orderFor(f.store, p, 2, p, 3))
	require.NoError(t, err)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, 0, f.fx.Stock(p.ID))
}

func TestCreateOrderRejectsOversizedQuantities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.fx.Product(f.store, "1.00", 5, true)

	_, err := f.orders.CreateOrder(ctx, f.customer.Actor(), orderFor(f.store, p, math.MaxInt, p, math.MaxInt))
	requireKind(t, err, apperror.KindValidation)

	// Each line is within bounds, the sum is not.
	_, err = f.orders.CreateOrder(ctx, f.customer.Actor(), orderFor(f.store, p, 6000, p, 6000))
	requireKind(t, err, apperror.KindValidation)

	assert.Equal(t, 5, f.fx.Stock(p.ID))
	assert.Equal(t, int64(0), f.fx.Count(&model.Order{}))
	assert.Empty(t, f.rec.sent())
}

func TestCreateOrderPreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.fx.Product(f.store, "1.00", 5, true)
	closed := f.fx.Store(f.owner, false)
	closedProduct := f.fx.Product(closed, "1.00", 5, true)

	_, err := f.orders.CreateOrder(ctx, f.customer.Actor(), orderFor(closed, closedProduct, 1))
	requireKind(t, err, apperror.KindStoreClosed)

	_, err = f.orders.CreateOrder(ctx, f.customer.Actor(), &CreateOrderRequest{
		StoreID: uuid.New(), DeliveryAddress: "x", Items: []OrderItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	requireKind(t, err, apperror.KindNotFound)

	_, err = f.orders.CreateOrder(ctx, f.customer.Actor(), &CreateOrderRequest{StoreID: f.store.ID, DeliveryAddress: "x"})
	requireKind(t, err, apperror.KindValidation)

	_, err = f.orders.CreateOrder(ctx, f.customer.Actor(), orderFor(f.store, p, 0))
	requireKind(t, err, apperror.KindValidation)

	_, err = f.orders.CreateOrder(ctx, f.customer.Actor(), &CreateOrderRequest{
		StoreID: f.store.ID, Items: []OrderItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	requireKind(t, err, apperror.KindValidation)

	assert.Equal(t, 5, f.fx.Stock(p.ID))
}

// The sqlite handle has one connection, so buyers serialize here; the
// conditional decrement itself is covered in the repository tests.
func TestConcurrentOrdersNeverOversell(t *testing.T) {
	f := newFixture(t)
	p := f.fx.Product(f.store, "3.00", 5, true)

	const buyers = 12
	var wg sync.WaitGroup
	errs := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orders.CreateOrder(context.Background(), f.customer.Actor(), orderFor(f.store, p, 1))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, apperror.KindInsufficientStock, apperror.KindOf(err), err.Error())
	}
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, f.fx.Stock(p.ID))
	assert.Equal(t, int64(5), f.fx.Count(&model.Order{}))
}

func TestConcurrentCancelRestoresOnce(t *testing.T) {
	f := newFixture(t)
	p := f.fx.Product(f.store, "3.00", 5, true)
	order, err := f.orders.CreateOrder(context.Background(), f.customer.Actor(), orderFor(f.store, p, 4))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for _, actor := range []model.Actor{f.customer.Actor(), f.owner.Actor(), f.admin.Actor(), f.customer.Actor()} {
		wg.Add(1)
		go func(a model.Actor) {
			defer wg.Done()
			_, err := f.orders.CancelOrder(context.Background(), a, order.ID)
			errs <- err
		}(actor)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 5, f.fx.Stock(p.ID))
}

func TestGetOrderByIDAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.fx.Product(f.store, "1.00", 5, true)
	order, err := f.orders.CreateOrder(ctx, f.customer.Actor(), orderFor(f.store, p, 1))
	require.NoError(t, err)

	for _, actor := range []model.Actor{f.customer.Actor(), f.owner.Actor(), f.admin.Actor()} {
		got, err := f.orders.GetOrderByID(ctx, actor, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.ID, got.ID)
		assert.NotNil(t, got.User)
	}

	_, err = f.orders.GetOrderByID(ctx, f.fx.User(model.RoleCustomer).Actor(), order.ID)
	requireKind(t, err, apperror.KindForbidden)

	_, err = f.orders.GetOrderByID(ctx, f.fx.User(model.RoleTradesman).Actor(), order.ID)
	requireKind(t, err, apperror.KindForbidden)

	_, err = f.orders.GetOrderByID(ctx, f.admin.Actor(), uuid.New())
	requireKind(t, err, apperror.KindNotFound)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.fx.Product(f.store, "1.00", 5, true)
	order, err := f.orders.CreateOrder(ctx, f.customer.Actor(), orderFor(f.store, p, 1))
	require.NoError(t, err)
	f.rec.reset()

	_, err = f.orders.UpdateOrderStatus(ctx, f.customer.Actor(), order.ID, model.OrderPreparing)
	requireKind(t, err, apperror.KindForbidden)

	_, err = f.orders.UpdateOrderStatus(ctx, f.owner.Actor(), order.ID, "shipped")
	requireKind(t, err, apperror.KindValidation)

	_, err = f.orders.UpdateOrderStatus(ctx, f.owner.Actor(), uuid.New(), model.OrderReady)
	requireKind(t, err, apperror.KindNotFound)

	updated, err := f.orders.UpdateOrderStatus(ctx, f.owner.Actor(), order.ID, model.OrderPreparing)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPreparing, updated.Status)

	sent := f.rec.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, ws.UserChannel(f.customer.ID), sent[0].channel)
	assert.Equal(t, ws.EventOrderStatusUpdate, sent[0].event.Type)

	// Skipping ahead is allowed; only terminal states are locked.
	updated, err = f.orders.UpdateOrderStatus(ctx, f.admin.Actor(), order.ID, model.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, model.OrderDelivered, updated.Status)

	for _, target := range model.OrderStatuses {
		_, err = f.orders.UpdateOrderStatus(ctx, f.admin.Actor(), order.ID, target)
		requireKind(t, err, apperror.KindInvalidTransition)
	}
	_, err = f.orders.CancelOrder(ctx, f.customer.Actor(), order.ID)
	requireKind(t, err, apperror.KindInvalidTransition)
	assert.Equal(t, 4, f.fx.Stock(p.ID))
}

func TestUpdateOrderStatusToCancelledRestoresStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.fx.Product(f.store, "1.00", 5, true)
	order, err := f.orders.CreateOrder(ctx, f.customer.Actor(), orderFor(f.store, p, 2))
	require.NoError(t, err)
	f.rec.reset()

	updated, err := f.orders.UpdateOrderStatus(ctx, f.owner.Actor(), order.ID, model.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, updated.Status)
	assert.Equal(t, 5, f.fx.Stock(p.ID))

	channels := map[string]string{}
	for _, e := range f.rec.sent() {
		channels[e.channel] = e.event.Type
	}
	assert.Equal(t, map[string]string{
		ws.UserChannel(f.customer.ID): ws.EventOrderCancelled,
		ws.StoreChannel(f.store.ID):   ws.EventOrderCancelled,
	}, channels)

	_, err = f.orders.UpdateOrderStatus(ctx, f.owner.Actor(), order.ID, model.OrderPending)
	requireKind(t, err, apperror.KindInvalidTransition)
	assert.Equal(t, 5, f.fx.Stock(p.ID))

	// Ready is past the cancellable window.
	ready, err := f.orders.CreateOrder(ctx, f.customer.Actor(), orderFor(f.store, p, 3))
	require.NoError(t, err)
	_, err = f.orders.UpdateOrderStatus(ctx, f.owner.Actor(), ready.ID, model.OrderReady)
	require.NoError(t, err)
	_, err = f.orders.UpdateOrderStatus(ctx, f.owner.Actor(), ready.ID, model.OrderCancelled)
	requireKind(t, err, apperror.KindInvalidTransition)
	assert.Equal(t, 2, f.fx.Stock(p.ID))

	got, err := f.orders.GetOrderByID(ctx, f.owner.Actor(), ready.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderReady, got.Status)
}

func TestCancelOrderRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.fx.Product(f.store, "1.00", 5, true)
	order, err := f.orders.CreateOrder(ctx, f.customer.Actor(), orderFor(f.store, p, 1))
	require.NoError(t, err)

	_, err = f.orders.CancelOrder(ctx, f.fx.User(model.RoleCustomer).Actor(), order.ID)
	requireKind(t, err, apperror.KindForbidden)

	_, err = f.orders.CancelOrder(ctx, f.customer.Actor(), uuid.New())
	requireKind(t, err, apperror.KindNotFound)

	_, err = f.orders.UpdateOrderStatus(ctx, f.owner.Actor(), order.ID, model.OrderReady)
	require.NoError(t, err)
	_, err = f.orders.CancelOrder(ctx, f.customer.Actor(), order.ID)
	requireKind(t, err, apperror.KindInvalidTransition)
	assert.Equal(t, 4, f.fx.Stock(p.ID))

	preparing, err := f.orders.CreateOrder(ctx, f.customer.Actor(), orderFor(f.store, p, 2))
	require.NoError(t, err)
	_, err = f.orders.UpdateOrderStatus(ctx, f.owner.Actor(), preparing.ID, model.OrderPreparing)
	require.NoError(t, err)
	_, err = f.orders.CancelOrder(ctx, f.owner.Actor(), preparing.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, f.fx.Stock(p.ID))
}

func TestListOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.fx.Product(f.store, "1.00", 50, true)
	other := f.fx.User(model.RoleCustomer)

	for i := 0; i < 3; i++ {
		_, err := f.orders.CreateOrder(ctx, f.customer.Actor(), orderFor(f.store, p, 1))
		require.NoError(t, err)
	}
	_, err := f.orders.CreateOrder(ctx, other.Actor(), orderFor(f.store, p, 1))
	require.NoError(t, err)

	mine, total, err := f.orders.ListUserOrders(ctx, f.customer.Actor(), repository.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, mine, 3)

	all, total, err := f.orders.ListStoreOrders(ctx, f.owner.Actor(), f.store.ID, repository.ListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, all, 2)

	_, _, err = f.orders.ListStoreOrders(ctx, f.customer.Actor(), f.store.ID, repository.ListFilter{})
	requireKind(t, err, apperror.KindForbidden)

	_, _, err = f.orders.ListStoreOrders(ctx, f.admin.Actor(), uuid.New(), repository.ListFilter{})
	requireKind(t, err, apperror.KindNotFound)
}
