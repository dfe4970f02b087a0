package repositories

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fitshop_backend/internal/models"
)

var ErrPaymentNotFound = errors.New("payment transaction not found")

type PaymentRepository interface {
	Create(db *gorm.DB, payment *models.PaymentTransaction) error
	FindByInvID(db *gorm.DB, invID uint) (*models.PaymentTransaction, error)
	// FindPendingByOrder lists the open invoices of an order, newest first.
	FindPendingByOrder(db *gorm.DB, orderID string) ([]models.PaymentTransaction, error)
	// MarkPaid flips a pending transaction to paid and reports whether this call did it.
	MarkPaid(db *gorm.DB, invID uint, payload datatypes.JSON, paidAt time.Time) (bool, error)
	// MarkFailed closes pending transactions; paid ones are left untouched.
	MarkFailed(db *gorm.DB, invIDs []uint) error
}

type PaymentRepositoryImpl struct{}

func NewPaymentRepository() PaymentRepository {
	return &PaymentRepositoryImpl{}
}

func (r *PaymentRepositoryImpl) Create(db *gorm.DB, payment *models.PaymentTransaction) error {
	return db.Create(payment).Error
}

func (r *PaymentRepositoryImpl) FindByInvID(db *gorm.DB, invID uint) (*models.PaymentTransaction, error) {
	var payment models.PaymentTransaction
	if err := db.First(&payment, "inv_id = ?", invID).Error; err != nil {
		return nil, notFound(err, ErrPaymentNotFound)
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) FindPendingByOrder(db *gorm.DB, orderID string) ([]models.PaymentTransaction, error) {
	var payments []models.PaymentTransaction
	err := db.Where("order_id = ? AND status = ?", orderID, models.PaymentStatusPending).
		Order("inv_id DESC").
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepositoryImpl) MarkPaid(db *gorm.DB, invID uint, payload datatypes.JSON, paidAt time.Time) (bool, error) {
	result := db.Model(&models.PaymentTransaction{}).
		Where("inv_id = ? AND status = ?", invID, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":     models.PaymentStatusPaid,
			"payload":    payload,
			"paid_at":    paidAt,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PaymentRepositoryImpl) MarkFailed(db *gorm.DB, invIDs []uint) error {
	if len(invIDs) == 0 {
		return nil
	}
	return db.Model(&models.PaymentTransaction{}).
		Where("inv_id IN ? AND status = ?", invIDs, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":     models.PaymentStatusFailed,
			"updated_at": time.Now(),
		}).Error
}
