package service

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-marketplace-ws/internal/model"
	"go-marketplace-ws/internal/repository"
	"go-marketplace-ws/internal/testutil"
	"go-marketplace-ws/internal/ws"
	"go-marketplace-ws/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentEvent struct {
	channel string
	event   ws.Event
}

// recorder stands in for the websocket hub.
type recorder struct {
	mu     sync.Mutex
	events []sentEvent
}

func (r *recorder) Emit(channel string, event ws.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sentEvent{channel: channel, event: event})
}

func (r *recorder) sent() []sentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentEvent(nil), r.events...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type fixture struct {
	db       *gorm.DB
	fx       *testutil.Fixtures
	rec      *recorder
	orders   OrderService
	owner    *model.User
	customer *model.User
	admin    *model.User
	store    *model.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)
	rec := &recorder{}

	svc := NewOrderService(repository.NewCatalogRepo(), repository.NewOrderRepo(), db, rec).(*orderService)
	var seq atomic.Int64
	svc.newNumber = func(now time.Time) string {
		return fmt.Sprintf("SIP%s%04d", now.Format("060102"), seq.Add(1))
	}

	owner := fx.User(model.RoleTradesman)
	return &fixture{
		db:       db,
		fx:       fx,
		rec:      rec,
		orders:   svc,
		owner:    owner,
		customer: fx.User(model.RoleCustomer),
		admin:    fx.User(model.RoleAdmin),
		store:    fx.Store(owner, true),
	}
}

func orderFor(store *model.Store, lines ...any) *CreateOrderRequest {
	req := &CreateOrderRequest{StoreID: store.ID, DeliveryAddress: "Jl. Melati 7"}
	for i := 0; i+1 < len(lines); i += 2 {
		p := lines[i].(*model.Product)
		req.Items = append(req.Items, OrderItemRequest{ProductID: p.ID, Quantity: lines[i+1].(int)})
	}
	return req
}

func requireKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperror.KindOf(err), err.Error())
}
