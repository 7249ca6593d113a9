package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go-marketplace-ws/internal/model"
	"go-marketplace-ws/internal/repository"
	"go-marketplace-ws/internal/ws"
	"go-marketplace-ws/pkg/apperror"
	"go-marketplace-ws/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"gte=1,lte=10000"`
}

type CreateOrderRequest struct {
	StoreID         uuid.UUID          `json:"store_id" validate:"uuid_required"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress string             `json:"delivery_address" validate:"required"`
	Notes           *string            `json:"notes"`
}

// OrderEvent is the payload of every order lifecycle notification.
type OrderEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	StoreID     uuid.UUID         `json:"store_id"`
	Status      model.OrderStatus `json:"status"`
	Message     string            `json:"message"`
	Order       *model.Order      `json:"order,omitempty"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, actor model.Actor, req *CreateOrderRequest) (*model.Order, error)
	GetOrderByID(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, actor model.Actor, id uuid.UUID, status model.OrderStatus) (*model.Order, error)
	CancelOrder(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error)
	ListUserOrders(ctx context.Context, actor model.Actor, filter repository.ListFilter) ([]model.Order, int64, error)
	ListStoreOrders(ctx context.Context, actor model.Actor, storeID uuid.UUID, filter repository.ListFilter) ([]model.Order, int64, error)
}

type orderService struct {
	catalogRepo repository.CatalogRepository
	orderRepo   repository.OrderRepository
	db          *gorm.DB
	notifier    ws.Emitter

	now       func() time.Time
	newNumber func(time.Time) string
}

func NewOrderService(cRepo repository.CatalogRepository, oRepo repository.OrderRepository, db *gorm.DB, notifier ws.Emitter) OrderService {
	return &orderService{
		catalogRepo: cRepo,
		orderRepo:   oRepo,
		db:          db,
		notifier:    notifier,
		now:         func() time.Time { return time.Now().UTC() },
		newNumber:   newOrderNumber,
	}
}

// newOrderNumber returns SIP<YYMMDD><4 random digits>. Collisions are not retried;
// the unique index rejects them and the whole creation rolls back.
func newOrderNumber(t time.Time) string {
	return fmt.Sprintf("SIP%s%04d", t.Format("060102"), rand.Intn(10000))
}

func (s *orderService) CreateOrder(ctx context.Context, actor model.Actor, req *CreateOrderRequest) (*model.Order, error) {
	// 1. Validate input
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	var created *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 2. Store must exist and be open
		store, err := s.catalogRepo.FindStore(tx, req.StoreID)
		if err != nil {
			return err
		}
		if !store.IsOpen {
			return apperror.WithMetadata(apperror.KindStoreClosed,
				fmt.Sprintf("store %q is not accepting orders", store.Name),
				map[string]any{"store_id": store.ID.String()})
		}

		// 3. Resolve every product before checking any stock
		requested := make(map[uuid.UUID]int, len(req.Items))
		products := make(map[uuid.UUID]*model.Product, len(req.Items))
		var productOrder []uuid.UUID
		for _, item := range req.Items {
			if _, seen := products[item.ProductID]; !seen {
				product, err := s.catalogRepo.FindOrderableProduct(tx, item.ProductID, store.ID)
				if err != nil {
					return err
				}
				products[item.ProductID] = product
				productOrder = append(productOrder, item.ProductID)
			}
			requested[item.ProductID] += item.Quantity
			if requested[item.ProductID] > maxProductQuantity {
				return apperror.WithMetadata(apperror.KindValidation,
					fmt.Sprintf("quantity for product %s exceeds %d", item.ProductID, maxProductQuantity),
					map[string]any{"product_id": item.ProductID.String(), "max": maxProductQuantity})
			}
		}

		// 4. Stock check on summed quantities
		for _, id := range productOrder {
			p := products[id]
			if p.Stock < requested[id] {
				return apperror.InsufficientStock(p.ID, p.Name, p.Stock, requested[id])
			}
		}

		// 5. Snapshot prices and compute the total
		createdBy := actor.ID.String()
		items := make([]model.OrderItem, 0, len(req.Items))
		total := decimal.Zero
		for _, item := range req.Items {
			line := model.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     products[item.ProductID].Price,
			}
			total = total.Add(line.LineTotal())
			items = append(items, line)
		}

		order := &model.Order{
			OrderNumber:     s.newNumber(s.now()),
			UserID:          actor.ID,
			StoreID:         store.ID,
			TotalAmount:     total,
			DeliveryAddress: req.DeliveryAddress,
			Notes:           req.Notes,
			Status:          model.OrderPending,
			Items:           items,
		}
		order.CreatedBy = createdBy
		order.UpdatedBy = createdBy

		// 6. Persist header + items, then take the stock
		if err := s.orderRepo.Create(tx, order); err != nil {
			return err
		}
		for _, id := range productOrder {
			if err := s.catalogRepo.DecrementStock(tx, id, requested[id]); err != nil {
				return err
			}
		}

		created, err = s.orderRepo.FindByID(tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":     created.ID,
		"order_number": created.OrderNumber,
		"store_id":     created.StoreID,
		"total":        created.TotalAmount.StringFixed(2),
	}).Info("order created")

	// 7. Tell the store
	s.notifier.Emit(ws.StoreChannel(created.StoreID), ws.Event{
		Type: ws.EventNewOrder,
		Payload: OrderEvent{
			OrderID:     created.ID,
			OrderNumber: created.OrderNumber,
			StoreID:     created.StoreID,
			Status:      created.Status,
			Message:     "new order received",
			Order:       created,
		},
	})

	return created, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if !actor.CanView(order) {
		return nil, apperror.Forbidden("you do not have access to this order")
	}
	return order, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, actor model.Actor, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if !status.IsCanonical() {
		return nil, apperror.WithMetadata(apperror.KindValidation,
			fmt.Sprintf("unknown order status %q", status),
			map[string]any{"status": string(status), "allowed": model.OrderStatuses})
	}

	var updated *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindForUpdate(tx, id)
		if err != nil {
			return err
		}
		if !actor.CanManage(order.Store) {
			return apperror.Forbidden("only the store owner or an admin can update order status")
		}
		if order.Status.IsTerminal() {
			return apperror.InvalidTransition(string(order.Status), string(status))
		}

		if status == model.OrderCancelled {
			// Same path as CancelOrder so stock is always restored
			if err := s.cancelLocked(tx, actor, order); err != nil {
				return err
			}
		} else {
			ok, err := s.orderRepo.TransitionStatus(tx, order.ID, model.OpenStatuses, status, actor.ID.String())
			if err != nil {
				return err
			}
			if !ok {
				return apperror.InvalidTransition(string(order.Status), string(status))
			}
		}

		updated, err = s.orderRepo.FindByID(tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":     updated.ID,
		"order_number": updated.OrderNumber,
		"status":       updated.Status,
		"actor":        actor.ID,
	}).Info("order status updated")

	if updated.Status == model.OrderCancelled {
		s.notifyCancelled(updated)
	} else {
		s.notifier.Emit(ws.UserChannel(updated.UserID), ws.Event{
			Type: ws.EventOrderStatusUpdate,
			Payload: OrderEvent{
				OrderID:     updated.ID,
				OrderNumber: updated.OrderNumber,
				StoreID:     updated.StoreID,
				Status:      updated.Status,
				Message:     fmt.Sprintf("order status updated: %s", updated.Status),
			},
		})
	}

	return updated, nil
}

func (s *orderService) CancelOrder(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Order, error) {
	var cancelled *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindForUpdate(tx, id)
		if err != nil {
			return err
		}
		if !actor.CanManage(order.Store) && order.UserID != actor.ID {
			return apperror.Forbidden("only the customer, the store owner or an admin can cancel this order")
		}
		if err := s.cancelLocked(tx, actor, order); err != nil {
			return err
		}

		cancelled, err = s.orderRepo.FindByID(tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":     cancelled.ID,
		"order_number": cancelled.OrderNumber,
		"actor":        actor.ID,
	}).Info("order cancelled")

	s.notifyCancelled(cancelled)
	return cancelled, nil
}

// cancelLocked flips the order to cancelled and hands every item back to stock.
// The guarded flip is the only gate against restoring the same items twice.
func (s *orderService) cancelLocked(tx *gorm.DB, actor model.Actor, order *model.Order) error {
	if !order.Status.IsCancellable() {
		return apperror.InvalidTransition(string(order.Status), string(model.OrderCancelled))
	}

	ok, err := s.orderRepo.TransitionStatus(tx, order.ID, model.CancellableStatuses, model.OrderCancelled, actor.ID.String())
	if err != nil {
		return err
	}
	if !ok {
		return apperror.InvalidTransition(string(order.Status), string(model.OrderCancelled))
	}

	for _, item := range order.Items {
		if err := s.catalogRepo.IncrementStock(tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *orderService) notifyCancelled(order *model.Order) {
	event := ws.Event{
		Type: ws.EventOrderCancelled,
		Payload: OrderEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			StoreID:     order.StoreID,
			Status:      order.Status,
			Message:     "order cancelled",
		},
	}
	s.notifier.Emit(ws.UserChannel(order.UserID), event)
	s.notifier.Emit(ws.StoreChannel(order.StoreID), event)
}

func (s *orderService) ListUserOrders(ctx context.Context, actor model.Actor, filter repository.ListFilter) ([]model.Order, int64, error) {
	return s.orderRepo.FindByUser(s.db.WithContext(ctx), actor.ID, filter.Normalize(defaultPageSize))
}

func (s *orderService) ListStoreOrders(ctx context.Context, actor model.Actor, storeID uuid.UUID, filter repository.ListFilter) ([]model.Order, int64, error) {
	db := s.db.WithContext(ctx)
	store, err := s.catalogRepo.FindStore(db, storeID)
	if err != nil {
		return nil, 0, err
	}
	if !actor.CanManage(store) {
		return nil, 0, apperror.Forbidden("only the store owner or an admin can list store orders")
	}
	return s.orderRepo.FindByStore(db, storeID, filter.Normalize(defaultPageSize))
}
