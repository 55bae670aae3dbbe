// Package catalog serves restaurants, orders and worker deliveries over GORM.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"campus_delivery/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
	ErrInvalid   = errors.New("invalid request")
)

const (
	MsgRestaurantNotFound = "Restaurant not found"
	MsgOrderNotFound      = "Order not found"
	MsgMenuItemNotFound   = "Menu item not found"
	MsgForbidden          = "Forbidden"
	MsgWorkersOnly        = "Only workers can do this"
	MsgInvalidTransition  = "Invalid status transition"
	MsgOrderTaken         = "Order is no longer available"
	MsgEmptyOrder         = "Order must contain at least one item"
	MsgBadQuantity        = "Quantity must be at least 1"
	MsgUnknownStatus      = "Unknown order status"
)

// Error carries a client-safe message for one of the kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

type Catalog struct {
	log         *slog.Logger
	db          *gorm.DB
	deliveryFee float64
}

// Open builds a GORM handle. For postgres, conn must be the shared pool
// exposed through database/sql; for sqlite, dsn is a file path or ":memory:".
func Open(driver string, conn *sql.DB, dsn string) (*gorm.DB, error) {
	const op = "catalog.Open"

	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	var dialector gorm.Dialector

	switch driver {
	case DriverPostgres:
		dialector = postgres.New(postgres.Config{Conn: conn})
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%s: unknown driver %q", op, driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return db, nil
}

// AutoMigrate creates the catalog tables. PostgreSQL deployments use the
// goose migrations instead; this is for SQLite.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Restaurant{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Earning{},
	)
}

func New(log *slog.Logger, db *gorm.DB, deliveryFee float64) *Catalog {
	return &Catalog{
		log:         log,
		db:          db,
		deliveryFee: deliveryFee,
	}
}

func (c *Catalog) Restaurants(ctx context.Context) ([]models.Restaurant, error) {
	const op = "catalog.Restaurants"

	var restaurants []models.Restaurant

	err := c.db.WithContext(ctx).
		Preload("Menu").
		Order("name").
		Find(&restaurants).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return restaurants, nil
}

func (c *Catalog) Restaurant(ctx context.Context, id string) (models.Restaurant, error) {
	const op = "catalog.Restaurant"

	var restaurant models.Restaurant

	err := c.db.WithContext(ctx).
		Preload("Menu").
		Where("id = ?", id).
		First(&restaurant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Restaurant{}, newError(ErrNotFound, MsgRestaurantNotFound)
		}

		return models.Restaurant{}, fmt.Errorf("%s: %w", op, err)
	}

	return restaurant, nil
}

// CreateRestaurant stores a restaurant together with its menu.
func (c *Catalog) CreateRestaurant(ctx context.Context, restaurant *models.Restaurant) error {
	const op = "catalog.CreateRestaurant"

	if err := c.db.WithContext(ctx).Create(restaurant).Error; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
