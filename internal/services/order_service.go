package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fitshop_backend/internal/locker"
	"fitshop_backend/internal/logger"
	"fitshop_backend/internal/models"
	"fitshop_backend/internal/repositories"
	"fitshop_backend/internal/services/dto"
	"fitshop_backend/internal/services/payment"
	"fitshop_backend/pkg/apperrors"
)

// OrderService owns the cart: the single NEW order of a user and its lines.
// Every mutation for one user runs under that user's lock and in one transaction.
type OrderService interface {
	// Cart
	GetActiveOrder(ctx context.Context, db *gorm.DB, userID string) (*models.Order, error)
	AddItem(ctx context.Context, db *gorm.DB, userID, slug string, count int) (*models.Order, error)
	DeleteItem(ctx context.Context, db *gorm.DB, userID, slug string) (*models.Order, error)
	IncreaseItemCount(ctx context.Context, db *gorm.DB, userID, slug string) (*models.Order, error)
	ReduceItemCount(ctx context.Context, db *gorm.DB, userID, slug string) (*models.Order, error)
	CountItemsInCart(ctx context.Context, db *gorm.DB, userID string) (int, error)

	// Discount & delivery
	ApplyDiscount(ctx context.Context, db *gorm.DB, userID, code string) (*models.Order, error)
	SaveDelivery(ctx context.Context, db *gorm.DB, userID string, req *dto.DeliveryRequest) (*models.Delivery, error)

	// Payment
	Checkout(ctx context.Context, db *gorm.DB, userID string) (*dto.CheckoutResponse, error)
	ConfirmPayment(ctx context.Context, db *gorm.DB, req *dto.RobokassaResultRequest, payload datatypes.JSON) (string, error)
	History(ctx context.Context, db *gorm.DB, userID string) ([]models.Order, error)
}

type orderService struct {
	orderRepo     repositories.OrderRepository
	productRepo   repositories.ProductRepository
	discountRepo  repositories.DiscountRepository
	paymentRepo   repositories.PaymentRepository
	userRepo      repositories.UserRepository
	locker        locker.Locker
	robokassa     *payment.RobokassaService
	createRetries int
}

func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	discountRepo repositories.DiscountRepository,
	paymentRepo repositories.PaymentRepository,
	userRepo repositories.UserRepository,
	lk locker.Locker,
	robokassa *payment.RobokassaService,
	createRetries int,
) OrderService {
	if createRetries <= 0 {
		createRetries = 3
	}
	return &orderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		discountRepo:  discountRepo,
		paymentRepo:   paymentRepo,
		userRepo:      userRepo,
		locker:        lk,
		robokassa:     robokassa,
		createRetries: createRetries,
	}
}

// ============================================================================
// Cart
// ============================================================================

func (s *orderService) GetActiveOrder(ctx context.Context, db *gorm.DB, userID string) (*models.Order, error) {
	order, err := s.orderRepo.FindActiveByUser(db.WithContext(ctx), userID)
	if err != nil {
		return nil, handleOrderError(err)
	}
	return order, nil
}

func (s *orderService) AddItem(ctx context.Context, db *gorm.DB, userID, slug string, count int) (*models.Order, error) {
	if count <= 0 {
		count = 1
	}

	return s.mutate(ctx, db, userID, true, func(tx *gorm.DB, order *models.Order) error {
		product, err := s.productRepo.FindBySlug(tx, slug)
		if err != nil {
			return handleProductError(err)
		}

		if item := order.FindItem(product.ID); item != nil {
			return s.orderRepo.UpdateItemCount(tx, item.ID, item.Count+count)
		}

		return s.orderRepo.CreateItem(tx, &models.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Count:     count,
			UnitPrice: product.Price,
		})
	})
}

func (s *orderService) DeleteItem(ctx context.Context, db *gorm.DB, userID, slug string) (*models.Order, error) {
	return s.mutate(ctx, db, userID, false, func(tx *gorm.DB, order *models.Order) error {
		item, err := s.findLine(tx, order, slug)
		if err != nil {
			return err
		}
		if item == nil {
			return apperrors.ErrItemNotInOrder
		}
		return s.orderRepo.DeleteItem(tx, item.ID)
	})
}

func (s *orderService) IncreaseItemCount(ctx context.Context, db *gorm.DB, userID, slug string) (*models.Order, error) {
	return s.mutate(ctx, db, userID, false, func(tx *gorm.DB, order *models.Order) error {
		item, err := s.findLine(tx, order, slug)
		if err != nil {
			return err
		}
		if item == nil {
			return apperrors.ErrItemNotInOrder
		}
		return s.orderRepo.UpdateItemCount(tx, item.ID, item.Count+1)
	})
}

// ReduceItemCount removes the line when its count would reach zero. An absent
// line leaves the cart as it is.
func (s *orderService) ReduceItemCount(ctx context.Context, db *gorm.DB, userID, slug string) (*models.Order, error) {
	return s.mutate(ctx, db, userID, false, func(tx *gorm.DB, order *models.Order) error {
		item, err := s.findLine(tx, order, slug)
		if err != nil {
			return err
		}
		if item == nil {
			return nil
		}
		if item.Count <= 1 {
			return s.orderRepo.DeleteItem(tx, item.ID)
		}
		return s.orderRepo.UpdateItemCount(tx, item.ID, item.Count-1)
	})
}

func (s *orderService) CountItemsInCart(ctx context.Context, db *gorm.DB, userID string) (int, error) {
	order, err := s.orderRepo.FindActiveByUser(db.WithContext(ctx), userID)
	if errors.Is(err, repositories.ErrActiveOrderNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return order.CountItems(), nil
}

// ============================================================================
// Discount & delivery
// ============================================================================

func (s *orderService) ApplyDiscount(ctx context.Context, db *gorm.DB, userID, code string) (*models.Order, error) {
	return s.mutate(ctx, db, userID, false, func(tx *gorm.DB, order *models.Order) error {
		discount, err := s.discountRepo.FindByCode(tx, code)
		if err != nil {
			if errors.Is(err, repositories.ErrDiscountNotFound) {
				return apperrors.ErrNotFound(err)
			}
			return apperrors.InternalError(err)
		}

		order.DiscountID = &discount.ID
		order.Discount = discount
		order.Recalculate()
		return s.orderRepo.SaveTotals(tx, order)
	})
}

func (s *orderService) SaveDelivery(ctx context.Context, db *gorm.DB, userID string, req *dto.DeliveryRequest) (*models.Delivery, error) {
	var delivery *models.Delivery
	_, err := s.mutate(ctx, db, userID, false, func(tx *gorm.DB, order *models.Order) error {
		delivery = &models.Delivery{
			OrderID:     order.ID,
			CountryCity: req.CountryCity,
			Address:     req.Address,
			Index:       req.Index,
			FullName:    req.FullName,
			Phone:       req.Phone,
		}
		if err := s.orderRepo.UpsertDelivery(tx, delivery); err != nil {
			return apperrors.InternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return delivery, nil
}

// ============================================================================
// Payment
// ============================================================================

// Checkout returns the signed payment link for the active order. The order
// stays NEW until the payment callback arrives; an open invoice with the
// current amount is reused instead of opening another one.
func (s *orderService) Checkout(ctx context.Context, db *gorm.DB, userID string) (*dto.CheckoutResponse, error) {
	var resp *dto.CheckoutResponse
	reused := false
	_, err := s.mutate(ctx, db, userID, false, func(tx *gorm.DB, order *models.Order) error {
		if len(order.Items) == 0 {
			return apperrors.ErrEmptyCart
		}

		user, err := s.userRepo.FindByID(tx, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return apperrors.ErrNotFound(err)
			}
			return apperrors.InternalError(err)
		}

		order.Recalculate()
		tr, err := s.reconcileInvoices(tx, order)
		if err != nil {
			return err
		}
		if tr != nil {
			reused = true
		} else {
			tr = &models.PaymentTransaction{
				OrderID: order.ID,
				UserID:  userID,
				Amount:  order.TotalPay,
				Status:  models.PaymentStatusPending,
			}
			if err := s.paymentRepo.Create(tx, tr); err != nil {
				return apperrors.InternalError(err)
			}
		}

		resp = &dto.CheckoutResponse{
			OrderID:    order.ID,
			InvID:      tr.InvID,
			Amount:     tr.Amount,
			PaymentURL: s.robokassa.GeneratePaymentURL(tr.InvID, tr.Amount, "Order "+order.ID, user.Email),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "checkout started",
		"order_id", resp.OrderID,
		"inv_id", resp.InvID,
		"amount", resp.Amount.String(),
		"reused", reused,
	)
	return resp, nil
}

// ConfirmPayment handles the payment provider callback. The invoice and the
// order are re-read under the owner's cart lock, and OutSum must match the
// order's current TotalPay. Repeated callbacks for a paid invoice succeed
// without changing anything.
func (s *orderService) ConfirmPayment(ctx context.Context, db *gorm.DB, req *dto.RobokassaResultRequest, payload datatypes.JSON) (string, error) {
	if !s.robokassa.VerifyResultSignature(req.OutSum, req.InvID, req.SignatureValue) {
		logger.CtxWarn(ctx, "payment callback with bad signature", "inv_id", req.InvID)
		return "", apperrors.ErrInvalidPaymentSignature
	}

	invID, err := strconv.ParseUint(req.InvID, 10, 64)
	if err != nil {
		return "", apperrors.NewBadRequestError("Invalid InvId")
	}
	amount, err := decimal.NewFromString(req.OutSum)
	if err != nil {
		return "", apperrors.NewBadRequestError("Invalid OutSum")
	}

	db = db.WithContext(ctx)
	tr, err := s.findInvoice(db, uint(invID))
	if err != nil {
		return "", err
	}

	unlock, err := s.lock(ctx, tr.UserID)
	if err != nil {
		return "", err
	}
	defer unlock()

	now := time.Now()
	err = withTx(ctx, db, func(tx *gorm.DB) error {
		tr, err := s.findInvoice(tx, uint(invID))
		if err != nil {
			return err
		}

		switch tr.Status {
		case models.PaymentStatusPaid:
			logger.CtxInfo(ctx, "payment already confirmed", "inv_id", tr.InvID)
			return nil
		case models.PaymentStatusFailed:
			logger.CtxWarn(ctx, "callback for a closed invoice", "inv_id", tr.InvID, "order_id", tr.OrderID)
			return apperrors.ErrPaymentSuperseded
		}

		order, err := s.orderRepo.FindByID(tx, tr.OrderID)
		if err != nil {
			return handleOrderError(err)
		}
		if !order.Status.IsActive() {
			logger.CtxWarn(ctx, "pending invoice for an order that left NEW", "inv_id", tr.InvID, "order_id", order.ID, "status", order.Status)
			return apperrors.ErrPaymentSuperseded
		}

		order.Recalculate()
		if !amount.Equal(order.TotalPay) || !amount.Equal(tr.Amount) {
			logger.CtxWarn(ctx, "payment amount mismatch",
				"inv_id", tr.InvID,
				"order_id", order.ID,
				"invoice", tr.Amount.String(),
				"order_total", payment.FormatAmount(order.TotalPay),
				"got", req.OutSum,
			)
			return apperrors.ErrInvalidPaymentAmount
		}

		if _, err := s.paymentRepo.MarkPaid(tx, tr.InvID, payload, now); err != nil {
			return apperrors.InternalError(err)
		}
		if err := s.orderRepo.MarkPayed(tx, order.ID, now); err != nil {
			return apperrors.InternalError(err)
		}

		// other open invoices of this order can no longer be paid
		others, err := s.paymentRepo.FindPendingByOrder(tx, order.ID)
		if err != nil {
			return apperrors.InternalError(err)
		}
		if err := s.paymentRepo.MarkFailed(tx, invoiceIDs(others)); err != nil {
			return apperrors.InternalError(err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	logger.CtxInfo(ctx, "payment confirmed", "order_id", tr.OrderID, "inv_id", tr.InvID)
	return fmt.Sprintf("OK%d", tr.InvID), nil
}

func (s *orderService) findInvoice(db *gorm.DB, invID uint) (*models.PaymentTransaction, error) {
	tr, err := s.paymentRepo.FindByInvID(db, invID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return tr, nil
}

// reconcileInvoices closes the open invoices of order whose amount differs
// from its TotalPay and returns the newest one that still matches, or nil.
func (s *orderService) reconcileInvoices(tx *gorm.DB, order *models.Order) (*models.PaymentTransaction, error) {
	pending, err := s.paymentRepo.FindPendingByOrder(tx, order.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	var keep *models.PaymentTransaction
	var stale []models.PaymentTransaction
	for i := range pending {
		if keep == nil && pending[i].Amount.Equal(order.TotalPay) {
			keep = &pending[i]
			continue
		}
		stale = append(stale, pending[i])
	}
	if len(stale) == 0 {
		return keep, nil
	}

	if err := s.paymentRepo.MarkFailed(tx, invoiceIDs(stale)); err != nil {
		return nil, apperrors.InternalError(err)
	}
	logger.CtxInfo(tx.Statement.Context, "stale invoices closed", "order_id", order.ID, "count", len(stale))
	return keep, nil
}

func invoiceIDs(payments []models.PaymentTransaction) []uint {
	ids := make([]uint, 0, len(payments))
	for i := range payments {
		ids = append(ids, payments[i].InvID)
	}
	return ids
}

func (s *orderService) History(ctx context.Context, db *gorm.DB, userID string) ([]models.Order, error) {
	orders, err := s.orderRepo.FindHistory(db.WithContext(ctx), userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return orders, nil
}

// ============================================================================
// Helpers
// ============================================================================

func cartLockKey(userID string) string { return "cart:" + userID }

func (s *orderService) lock(ctx context.Context, userID string) (locker.Unlock, error) {
	unlock, err := s.locker.Lock(ctx, cartLockKey(userID))
	if err != nil {
		if errors.Is(err, locker.ErrNotAcquired) {
			return nil, apperrors.CartBusy(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return unlock, nil
}

// mutate runs fn against the user's active order, creating it when create is
// set, then reloads the order, stores fresh totals and closes invoices the
// new total no longer matches.
func (s *orderService) mutate(ctx context.Context, db *gorm.DB, userID string, create bool, fn func(tx *gorm.DB, order *models.Order) error) (*models.Order, error) {
	unlock, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result *models.Order
	err = withTx(ctx, db, func(tx *gorm.DB) error {
		var order *models.Order
		var err error
		if create {
			order, err = s.getOrCreateActive(tx, userID)
		} else {
			order, err = s.orderRepo.FindActiveByUser(tx, userID)
			if err != nil {
				err = handleOrderError(err)
			}
		}
		if err != nil {
			return err
		}

		if err := fn(tx, order); err != nil {
			return err
		}

		order, err = s.orderRepo.FindByID(tx, order.ID)
		if err != nil {
			return apperrors.InternalError(err)
		}
		order.Recalculate()
		if err := s.orderRepo.SaveTotals(tx, order); err != nil {
			return apperrors.InternalError(err)
		}
		if _, err := s.reconcileInvoices(tx, order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// getOrCreateActive looks the NEW order up and inserts one when missing. The
// insert runs in a savepoint so a lost race against ux_orders_user_active does
// not poison the surrounding transaction; the lookup is then retried.
func (s *orderService) getOrCreateActive(tx *gorm.DB, userID string) (*models.Order, error) {
	for attempt := 0; ; attempt++ {
		order, err := s.orderRepo.FindActiveByUser(tx, userID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, repositories.ErrActiveOrderNotFound) {
			return nil, apperrors.InternalError(err)
		}

		var created *models.Order
		err = tx.Transaction(func(sp *gorm.DB) error {
			var err error
			created, err = s.orderRepo.CreateActive(sp, userID)
			return err
		})
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, repositories.ErrActiveOrderExists) || attempt >= s.createRetries {
			return nil, apperrors.InternalError(err)
		}
		logger.CtxDebug(tx.Statement.Context, "active order created concurrently, retrying", "user_id", userID, "attempt", attempt+1)
	}
}

// findLine resolves slug to a product and returns its line in order, or nil.
func (s *orderService) findLine(tx *gorm.DB, order *models.Order, slug string) (*models.OrderItem, error) {
	product, err := s.productRepo.FindBySlug(tx, slug)
	if err != nil {
		return nil, handleProductError(err)
	}
	return order.FindItem(product.ID), nil
}

func handleOrderError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrActiveOrderNotFound):
		return apperrors.ErrNoActiveOrder
	case errors.Is(err, repositories.ErrOrderNotFound):
		return apperrors.ErrNotFound(err)
	default:
		return apperrors.InternalError(err)
	}
}

func handleProductError(err error) error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return apperrors.InternalError(err)
}
