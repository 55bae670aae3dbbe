package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sl "campus_delivery/internal/lib/logger/sl"
	"campus_delivery/internal/models"

	"gorm.io/gorm"
)

// Actor is the authenticated caller.
type Actor struct {
	UserID int64
	Role   string
}

func (a Actor) isWorker() bool {
	return a.Role == models.RoleWorker
}

type NewOrder struct {
	RestaurantID     string
	DeliveryLocation string
	Items            []NewOrderItem
}

type NewOrderItem struct {
	MenuItemID string
	Quantity   int
}

const ListAvailable = "available"

// transitions maps from -> to -> the party allowed to make the move.
var transitions = map[models.OrderStatus]map[models.OrderStatus]string{
	models.StatusPending: {
		models.StatusCancelled: models.RoleCustomer,
	},
	models.StatusAccepted: {
		models.StatusPickedUp:  models.RoleWorker,
		models.StatusCancelled: models.RoleWorker,
	},
	models.StatusPickedUp: {
		models.StatusOnTheWay: models.RoleWorker,
	},
	models.StatusOnTheWay: {
		models.StatusDelivered: models.RoleWorker,
	},
}

var activeStatuses = []models.OrderStatus{
	models.StatusAccepted,
	models.StatusPickedUp,
	models.StatusOnTheWay,
}

func knownStatus(s models.OrderStatus) bool {
	switch s {
	case models.StatusPending, models.StatusAccepted, models.StatusPickedUp,
		models.StatusOnTheWay, models.StatusDelivered, models.StatusCancelled:
		return true
	}

	return false
}

func withOrderDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Restaurant").Preload("Items.MenuItem")
}

func (c *Catalog) CreateOrder(ctx context.Context, actor Actor, in NewOrder) (models.Order, error) {
	const op = "catalog.CreateOrder"

	log := c.log.With(slog.String("op", op), slog.Int64("uid", actor.UserID))

	if len(in.Items) == 0 {
		return models.Order{}, newError(ErrInvalid, MsgEmptyOrder)
	}

	ids := make([]string, 0, len(in.Items))
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return models.Order{}, newError(ErrInvalid, MsgBadQuantity)
		}
		ids = append(ids, item.MenuItemID)
	}

	if _, err := c.Restaurant(ctx, in.RestaurantID); err != nil {
		return models.Order{}, err
	}

	var menu []models.MenuItem

	err := c.db.WithContext(ctx).
		Where("restaurant_id = ? AND id IN ?", in.RestaurantID, ids).
		Find(&menu).Error
	if err != nil {
		log.Error("failed to load menu items", sl.Err(err))
		return models.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	prices := make(map[string]float64, len(menu))
	for _, m := range menu {
		prices[m.ID] = m.Price
	}

	order := models.Order{
		UserID:           actor.UserID,
		RestaurantID:     in.RestaurantID,
		Status:           models.StatusPending,
		DeliveryLocation: in.DeliveryLocation,
	}

	for _, item := range in.Items {
		price, ok := prices[item.MenuItemID]
		if !ok {
			return models.Order{}, newError(ErrInvalid, MsgMenuItemNotFound)
		}

		order.Items = append(order.Items, models.OrderItem{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Price:      price,
		})
		order.Total += price * float64(item.Quantity)
	}

	if err := c.db.WithContext(ctx).Create(&order).Error; err != nil {
		log.Error("failed to create order", sl.Err(err))
		return models.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("order created", slog.String("order_id", order.ID))

	return c.loadOrder(ctx, c.db, order.ID)
}

// Orders lists a customer's own orders, or for a worker either their
// assigned orders or, with kind == ListAvailable, the unassigned pending ones.
func (c *Catalog) Orders(ctx context.Context, actor Actor, kind string) ([]models.Order, error) {
	const op = "catalog.Orders"

	q := withOrderDetails(c.db.WithContext(ctx))

	switch {
	case actor.isWorker() && kind == ListAvailable:
		q = q.Where("status = ? AND delivery_person_id IS NULL", models.StatusPending)
	case actor.isWorker():
		q = q.Where("delivery_person_id = ?", actor.UserID)
	default:
		q = q.Where("user_id = ?", actor.UserID)
	}

	var orders []models.Order

	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return orders, nil
}

func (c *Catalog) Order(ctx context.Context, actor Actor, id string) (models.Order, error) {
	order, err := c.loadOrder(ctx, c.db, id)
	if err != nil {
		return models.Order{}, err
	}

	if !canRead(actor, order) {
		return models.Order{}, newError(ErrForbidden, MsgForbidden)
	}

	return order, nil
}

func canRead(actor Actor, order models.Order) bool {
	switch {
	case order.UserID == actor.UserID:
		return true
	case isAssigned(actor, order):
		return true
	case actor.isWorker() && order.Status == models.StatusPending && order.DeliveryPersonID == nil:
		return true
	}

	return false
}

func isAssigned(actor Actor, order models.Order) bool {
	return order.DeliveryPersonID != nil && *order.DeliveryPersonID == actor.UserID
}

// UpdateStatus moves an order along the transition table. The customer who
// placed the order may cancel it while pending; the assigned worker drives
// it from accepted to delivered. Delivery records the worker's earning.
func (c *Catalog) UpdateStatus(
	ctx context.Context,
	actor Actor,
	id string,
	status models.OrderStatus,
) (models.Order, error) {
	const op = "catalog.UpdateStatus"

	log := c.log.With(slog.String("op", op), slog.String("order_id", id))

	if !knownStatus(status) {
		return models.Order{}, newError(ErrInvalid, MsgUnknownStatus)
	}

	order, err := c.loadOrder(ctx, c.db, id)
	if err != nil {
		return models.Order{}, err
	}

	owner := order.UserID == actor.UserID
	assigned := isAssigned(actor, order)

	if !owner && !assigned {
		return models.Order{}, newError(ErrForbidden, MsgForbidden)
	}

	party, ok := transitions[order.Status][status]
	if !ok ||
		(party == models.RoleCustomer && !owner) ||
		(party == models.RoleWorker && !assigned) {
		return models.Order{}, newError(ErrConflict, MsgInvalidTransition)
	}

	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, order.Status).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return newError(ErrConflict, MsgInvalidTransition)
		}

		if status != models.StatusDelivered {
			return nil
		}

		return tx.Create(&models.Earning{
			DeliveryPersonID: *order.DeliveryPersonID,
			OrderID:          order.ID,
			Amount:           c.deliveryFee,
			Status:           models.EarningCompleted,
		}).Error
	})
	if err != nil {
		var catErr *Error
		if errors.As(err, &catErr) {
			return models.Order{}, catErr
		}

		log.Error("failed to update status", sl.Err(err))
		return models.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("order status updated",
		slog.String("from", string(order.Status)),
		slog.String("to", string(status)),
	)

	return c.loadOrder(ctx, c.db, id)
}

func (c *Catalog) ActiveDeliveries(ctx context.Context, actor Actor) ([]models.Order, error) {
	const op = "catalog.ActiveDeliveries"

	if !actor.isWorker() {
		return nil, newError(ErrForbidden, MsgWorkersOnly)
	}

	var orders []models.Order

	err := withOrderDetails(c.db.WithContext(ctx)).
		Where("delivery_person_id = ? AND status IN ?", actor.UserID, activeStatuses).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return orders, nil
}

// AcceptDelivery assigns a pending, unassigned order to the calling worker.
// The guarded update lets exactly one of several racing workers win.
func (c *Catalog) AcceptDelivery(ctx context.Context, actor Actor, id string) (models.Order, error) {
	const op = "catalog.AcceptDelivery"

	log := c.log.With(slog.String("op", op), slog.String("order_id", id))

	if !actor.isWorker() {
		return models.Order{}, newError(ErrForbidden, MsgWorkersOnly)
	}

	if _, err := c.loadOrder(ctx, c.db, id); err != nil {
		return models.Order{}, err
	}

	res := c.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ? AND delivery_person_id IS NULL", id, models.StatusPending).
		Updates(map[string]any{
			"status":             models.StatusAccepted,
			"delivery_person_id": actor.UserID,
		})
	if res.Error != nil {
		log.Error("failed to accept order", sl.Err(res.Error))
		return models.Order{}, fmt.Errorf("%s: %w", op, res.Error)
	}

	if res.RowsAffected == 0 {
		return models.Order{}, newError(ErrConflict, MsgOrderTaken)
	}

	log.Info("order accepted", slog.Int64("worker_id", actor.UserID))

	return c.loadOrder(ctx, c.db, id)
}

func (c *Catalog) Earnings(ctx context.Context, actor Actor) ([]models.Earning, error) {
	const op = "catalog.Earnings"

	if !actor.isWorker() {
		return nil, newError(ErrForbidden, MsgWorkersOnly)
	}

	var earnings []models.Earning

	err := c.db.WithContext(ctx).
		Preload("Order.Restaurant").
		Where("delivery_person_id = ?", actor.UserID).
		Order("created_at DESC").
		Find(&earnings).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return earnings, nil
}

func (c *Catalog) loadOrder(ctx context.Context, db *gorm.DB, id string) (models.Order, error) {
	const op = "catalog.loadOrder"

	var order models.Order

	err := withOrderDetails(db.WithContext(ctx)).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, newError(ErrNotFound, MsgOrderNotFound)
		}

		return models.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	return order, nil
}
