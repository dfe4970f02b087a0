package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fitshop_backend/internal/models"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrActiveOrderNotFound = errors.New("active order not found")
	ErrActiveOrderExists   = errors.New("active order already exists")
	ErrOrderItemNotFound   = errors.New("order item not found")
	ErrOrderNotActive      = errors.New("order is not active")
)

type OrderRepository interface {
	// Orders
	FindActiveByUser(db *gorm.DB, userID string) (*models.Order, error)
	FindByID(db *gorm.DB, id string) (*models.Order, error)
	FindHistory(db *gorm.DB, userID string) ([]models.Order, error)
	CreateActive(db *gorm.DB, userID string) (*models.Order, error)
	SaveTotals(db *gorm.DB, order *models.Order) error
	MarkPayed(db *gorm.DB, orderID string, payedAt time.Time) error

	// Lines
	CreateItem(db *gorm.DB, item *models.OrderItem) error
	UpdateItemCount(db *gorm.DB, itemID string, count int) error
	DeleteItem(db *gorm.DB, itemID string) error

	// Delivery
	UpsertDelivery(db *gorm.DB, delivery *models.Delivery) error
}

type OrderRepositoryImpl struct{}

func NewOrderRepository() OrderRepository {
	return &OrderRepositoryImpl{}
}

func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		Preload("Discount").
		Preload("Delivery")
}

// FindActiveByUser returns the user's NEW order.
func (r *OrderRepositoryImpl) FindActiveByUser(db *gorm.DB, userID string) (*models.Order, error) {
	var order models.Order
	err := preloadOrder(db).
		Where("user_id = ? AND status = ?", userID, models.OrderStatusNew).
		First(&order).Error
	if err != nil {
		return nil, notFound(err, ErrActiveOrderNotFound)
	}
	return &order, nil
}

func (r *OrderRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	if err := preloadOrder(db).First(&order, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return &order, nil
}

// FindHistory lists the user's orders that have left the cart state, newest first.
func (r *OrderRepositoryImpl) FindHistory(db *gorm.DB, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := preloadOrder(db).
		Where("user_id = ? AND status <> ?", userID, models.OrderStatusNew).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// CreateActive inserts an empty NEW order. A concurrent insert for the same
// user trips ux_orders_user_active and yields ErrActiveOrderExists.
func (r *OrderRepositoryImpl) CreateActive(db *gorm.DB, userID string) (*models.Order, error) {
	order := &models.Order{
		UserID: userID,
		Status: models.OrderStatusNew,
	}
	if err := db.Omit(clause.Associations).Create(order).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrActiveOrderExists
		}
		return nil, err
	}
	return order, nil
}

func (r *OrderRepositoryImpl) SaveTotals(db *gorm.DB, order *models.Order) error {
	return db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"total":       order.Total,
			"total_pay":   order.TotalPay,
			"discount_id": order.DiscountID,
			"updated_at":  time.Now(),
		}).Error
}

// MarkPayed moves a NEW order to PAYED. It returns ErrOrderNotActive when the
// order already left NEW, which callers treat as an idempotent repeat.
func (r *OrderRepositoryImpl) MarkPayed(db *gorm.DB, orderID string, payedAt time.Time) error {
	result := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusNew).
		Updates(map[string]interface{}{
			"status":     models.OrderStatusPayed,
			"payed_at":   payedAt,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotActive
	}
	return nil
}

func (r *OrderRepositoryImpl) CreateItem(db *gorm.DB, item *models.OrderItem) error {
	return db.Omit(clause.Associations).Create(item).Error
}

func (r *OrderRepositoryImpl) UpdateItemCount(db *gorm.DB, itemID string, count int) error {
	result := db.Model(&models.OrderItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{"count": count, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderItemNotFound
	}
	return nil
}

func (r *OrderRepositoryImpl) DeleteItem(db *gorm.DB, itemID string) error {
	result := db.Delete(&models.OrderItem{}, "id = ?", itemID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderItemNotFound
	}
	return nil
}

// UpsertDelivery keeps one delivery row per order.
func (r *OrderRepositoryImpl) UpsertDelivery(db *gorm.DB, delivery *models.Delivery) error {
	var existing models.Delivery
	err := db.Where("order_id = ?", delivery.OrderID).First(&existing).Error
	switch {
	case err == nil:
		delivery.ID = existing.ID
		delivery.CreatedAt = existing.CreatedAt
		return db.Model(&existing).Updates(map[string]interface{}{
			"country_city": delivery.CountryCity,
			"address":      delivery.Address,
			"postal_index": delivery.Index,
			"full_name":    delivery.FullName,
			"phone":        delivery.Phone,
			"updated_at":   time.Now(),
		}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.Create(delivery).Error
	default:
		return err
	}
}
