package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fitshop_backend/internal/locker"
	"fitshop_backend/internal/models"
	"fitshop_backend/internal/repositories"
	"fitshop_backend/internal/services/dto"
	"fitshop_backend/internal/services/payment"
	"fitshop_backend/internal/testutil"
	"fitshop_backend/pkg/apperrors"
)

func newTestOrderService() (OrderService, *payment.RobokassaService) {
	robokassa := payment.NewRobokassaService(payment.RobokassaConfig{
		MerchantLogin: "fitshop",
		Password1:     "pass1",
		Password2:     "pass2",
		BaseURL:       "https://pay.test/Index.aspx",
		Currency:      "RUB",
	})
	svc := NewOrderService(
		repositories.NewOrderRepository(),
		repositories.NewProductRepository(),
		repositories.NewDiscountRepository(),
		repositories.NewPaymentRepository(),
		repositories.NewUserRepository(),
		locker.NewMemoryLocker(),
		robokassa,
		3,
	)
	return svc, robokassa
}

func countOrders(t *testing.T, db *gorm.DB, userID string, status models.OrderStatus) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Order{}).Where("user_id = ? AND status = ?", userID, status).Count(&n).Error)
	return n
}

func TestOrderService_AddItemMergesLines(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, _ := newTestOrderService()
	user := testutil.CreateCustomer(t, db)
	testutil.CreateProduct(t, db, "whey", "100.00")

	_, err := svc.AddItem(ctx, db, user.ID, "whey", 2)
	require.NoError(t, err)
	order, err := svc.AddItem(ctx, db, user.ID, "whey", 3)
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, 5, order.Items[0].Count)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("500")), "total %s", order.Total)
	assert.True(t, order.TotalPay.Equal(order.Total))
	assert.EqualValues(t, 1, countOrders(t, db, user.ID, models.OrderStatusNew))
}

func TestOrderService_AddItemKeepsPriceSnapshot(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, _ := newTestOrderService()
	user := testutil.CreateCustomer(t, db)
	product := testutil.CreateProduct(t, db, "bar", "10.00")

	_, err := svc.AddItem(ctx, db, user.ID, "bar", 1)
	require.NoError(t, err)

	require.NoError(t, db.Model(product).Update("price", decimal.RequireFromString("99.00")).Error)

	order, err := svc.IncreaseItemCount(ctx, db, user.ID, "bar")
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("10")))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("20")))
}

func TestOrderService_UnknownProduct(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc, _ := newTestOrderService()
	user := testutil.CreateCustomer(t, db)

	_, err := svc.AddItem(context.Background(), db, user.ID, "missing", 1)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.HTTPCode)
	assert.EqualValues(t, 0, countOrders(t, db, user.ID, models.OrderStatusNew), "failed add must not leave an order behind")
}

func TestOrderService_NoActiveOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, _ := newTestOrderService()
	user := testutil.CreateCustomer(t, db)
	testutil.CreateProduct(t, db, "whey", "100.00")

	_, err := svc.GetActiveOrder(ctx, db, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNoActiveOrder)

	_, err = svc.DeleteItem(ctx, db, user.ID, "whey")
	assert.ErrorIs(t, err, apperrors.ErrNoActiveOrder)

	_, err = svc.IncreaseItemCount(ctx, db, user.ID, "whey")
	assert.ErrorIs(t, err, apperrors.ErrNoActiveOrder)

	_, err = svc.ReduceItemCount(ctx, db, user.ID, "whey")
	assert.ErrorIs(t, err, apperrors.ErrNoActiveOrder)

	count, err := svc.CountItemsInCart(ctx, db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestOrderService_MissingLine(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, _ := newTestOrderService()
	user := testutil.CreateCustomer(t, db)
	testutil.CreateProduct(t, db, "whey", "100.00")
	testutil.CreateProduct(t, db, "bar", "5.50")

	_, err := svc.AddItem(ctx, db, user.ID, "whey", 1)
	require.NoError(t, err)

	_, err = svc.DeleteItem(ctx, db, user.ID, "bar")
	assert.ErrorIs(t, err, apperrors.ErrItemNotInOrder)

	_, err = svc.IncreaseItemCount(ctx, db, user.ID, "bar")
	assert.ErrorIs(t, err, apperrors.ErrItemNotInOrder)

	order, err := svc.ReduceItemCount(ctx, db, user.ID, "bar")
	require.NoError(t, err, "reducing an absent line is a no-op")
	require.Len(t, order.Items, 1)
	assert.Equal(t, 1, order.Items[0].Count)
}

func TestOrderService_ReduceToZeroRemovesLine(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, _ := newTestOrderService()
	user := testutil.CreateCustomer(t, db)
	testutil.CreateProduct(t, db, "whey", "100.00")
	testutil.CreateProduct(t, db, "bar", "5.50")

	_, err := svc.AddItem(ctx, db, user.ID, "whey", 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, db, user.ID, "bar", 1)
	require.NoError(t, err)

	order, err := svc.ReduceItemCount(ctx, db, user.ID, "whey")
	require.NoError(t, err)
	assert.Equal(t, 2, order.CountItems())

	order, err = svc.ReduceItemCount(ctx, db, user.ID, "whey")
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "bar", order.Items[0].Product.Slug)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("5.5")), "total %s", order.Total)

	order, err = svc.DeleteItem(ctx, db, user.ID, "bar")
	require.NoError(t, err)
	assert.Empty(t, order.Items)
	assert.True(t, order.Total.IsZero())

	count, err := svc.CountItemsInCart(ctx, db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestOrderService_CountItemsInCart(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, _ := newTestOrderService()
	user := testutil.CreateCustomer(t, db)
	testutil.CreateProduct(t, db, "whey", "100.00")
	testutil.CreateProduct(t, db, "bar", "5.50")

	_, err := svc.AddItem(ctx, db, user.ID, "whey", 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, db, user.ID, "bar", 4)
	require.NoError(t, err)

	count, err := svc.CountItemsInCart(ctx, db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestOrderService_ConcurrentAddsShareOneOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, _ := newTestOrderService()
	user := testutil.CreateCustomer(t, db)
	testutil.CreateProduct(t, db, "whey", "1.00")

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.AddItem(ctx, db, user.ID, "whey", 1)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, countOrders(t, db, user.ID, models.OrderStatusNew))

	order, err := svc.GetActiveOrder(ctx, db, user.ID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, workers, order.Items[0].Count)
}

func TestOrderService_ActiveOrderIndexRejectsSecondNew(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateCustomer(t, db)
	repo := repositories.NewOrderRepository()

	_, err := repo.CreateActive(db, user.ID)
	require.NoError(t, err)

	_, err = repo.CreateActive(db, user.ID)
	assert.ErrorIs(t, err, repositories.ErrActiveOrderExists)
}

func TestOrderService_ApplyDiscount(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, _ := newTestOrderService()
	user := testutil.CreateCustomer(t, db)
	testutil.CreateProduct(t, db, "whey", "33.33")
	testutil.CreateDiscount(t, db, "SPRING15", 15)

	_, err := svc.AddItem(ctx, db, user.ID, "whey", 3)
	require.NoError(t, err)

	order, err := svc.ApplyDiscount(ctx, db, user.ID, "SPRING15")
	require.NoError(t, err)
	require.NotNil(t, order.Discount)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("99.99")), "total %s", order.Total)
	// 99.99 * 0.85 = 84.9915
	assert.True(t, order.TotalPay.Equal(decimal.RequireFromString("84.99")), "total pay %s", order.TotalPay)

	// the discount survives later mutations
	order, err = svc.ReduceItemCount(ctx, db, user.ID, "whey")
	require.NoError(t, err)
	assert.True(t, order.TotalPay.Equal(decimal.RequireFromString("56.66")), "total pay %s", order.TotalPay)

	_, err = svc.ApplyDiscount(ctx, db, user.ID, "NOPE")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.HTTPCode)
}

func TestOrderService_SaveDelivery(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, _ := newTestOrderService()
	user := testutil.CreateCustomer(t, db)
	testutil.CreateProduct(t, db, "whey", "100.00")

	req := &dto.DeliveryRequest{
		CountryCity: "Kazakhstan, Almaty",
		Address:     "Abay 1",
		Index:       "050000",
		FullName:    "Test User",
		Phone:       "+77001234567",
	}

	_, err := svc.SaveDelivery(ctx, db, user.ID, req)
	assert.ErrorIs(t, err, apperrors.ErrNoActiveOrder)

	_, err = svc.AddItem(ctx, db, user.ID, "whey", 1)
	require.NoError(t, err)

	_, err = svc.SaveDelivery(ctx, db, user.ID, req)
	require.NoError(t, err)

	req.Address = "Abay 2"
	_, err = svc.SaveDelivery(ctx, db, user.ID, req)
	require.NoError(t, err)

	order, err := svc.GetActiveOrder(ctx, db, user.ID)
	require.NoError(t, err)
	require.NotNil(t, order.Delivery)
	assert.Equal(t, "Abay 2", order.Delivery.Address)

	var n int64
	require.NoError(t, db.Model(&models.Delivery{}).Where("order_id = ?", order.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestOrderService_CheckoutEmptyCart(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, _ := newTestOrderService()
	user := testutil.CreateCustomer(t, db)
	testutil.CreateProduct(t, db, "whey", "100.00")

	_, err := svc.Checkout(ctx, db, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNoActiveOrder)

	_, err = svc.AddItem(ctx, db, user.ID, "whey", 1)
	require.NoError(t, err)
	_, err = svc.DeleteItem(ctx, db, user.ID, "whey")
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, db, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)
}

func TestOrderService_CheckoutAndConfirmPayment(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, robokassa := newTestOrderService()
	user := testutil.CreateCustomer(t, db)
	testutil.CreateProduct(t, db, "whey", "100.00")

	_, err := svc.AddItem(ctx, db, user.ID, "whey", 2)
	require.NoError(t, err)

	checkout, err := svc.Checkout(ctx, db, user.ID)
	require.NoError(t, err)
	assert.NotZero(t, checkout.InvID)
	assert.True(t, checkout.Amount.Equal(decimal.RequireFromString("200")))
	assert.Contains(t, checkout.PaymentURL, "OutSum=200.00")

	invID := decimalInv(checkout.InvID)
	req := &dto.RobokassaResultRequest{
		OutSum:         "200.00",
		InvID:          invID,
		SignatureValue: robokassa.Sign("200.00", invID),
	}
	payload := datatypes.JSON(`{"OutSum":"200.00"}`)

	answer, err := svc.ConfirmPayment(ctx, db, req, payload)
	require.NoError(t, err)
	assert.Equal(t, "OK"+invID, answer)

	var order models.Order
	require.NoError(t, db.First(&order, "id = ?", checkout.OrderID).Error)
	assert.Equal(t, models.OrderStatusPayed, order.Status)
	assert.NotNil(t, order.PayedAt)

	// repeated callback
	answer, err = svc.ConfirmPayment(ctx, db, req, payload)
	require.NoError(t, err)
	assert.Equal(t, "OK"+invID, answer)

	_, err = svc.GetActiveOrder(ctx, db, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNoActiveOrder)

	history, err := svc.History(ctx, db, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, checkout.OrderID, history[0].ID)

	// a payed order is never reused as the cart
	next, err := svc.AddItem(ctx, db, user.ID, "whey", 1)
	require.NoError(t, err)
	assert.NotEqual(t, checkout.OrderID, next.ID)
	assert.Equal(t, models.OrderStatusNew, next.Status)
	assert.Equal(t, 1, next.CountItems())
}

func TestOrderService_ConfirmPaymentRejectsTampering(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, robokassa := newTestOrderService()
	user := testutil.CreateCustomer(t, db)
	testutil.CreateProduct(t, db, "whey", "100.00")

	_, err := svc.AddItem(ctx, db, user.ID, "whey", 1)
	require.NoError(t, err)
	checkout, err := svc.Checkout(ctx, db, user.ID)
	require.NoError(t, err)
	invID := decimalInv(checkout.InvID)

	_, err = svc.ConfirmPayment(ctx, db, &dto.RobokassaResultRequest{
		OutSum:         "100.00",
		InvID:          invID,
		SignatureValue: "DEADBEEF",
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidPaymentSignature)

	_, err = svc.ConfirmPayment(ctx, db, &dto.RobokassaResultRequest{
		OutSum:         "1.00",
		InvID:          invID,
		SignatureValue: robokassa.Sign("1.00", invID),
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidPaymentAmount)

	order, err := svc.GetActiveOrder(ctx, db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusNew, order.Status)
}

func TestOrderService_CartBusy(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc, _ := newTestOrderService()
	user := testutil.CreateCustomer(t, db)
	testutil.CreateProduct(t, db, "whey", "100.00")

	impl := svc.(*orderService)
	unlock, err := impl.locker.Lock(context.Background(), cartLockKey(user.ID))
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = svc.AddItem(ctx, db, user.ID, "whey", 1)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, apperrors.ErrCartBusy.Code, appErr.Code)
	assert.True(t, errors.Is(err, locker.ErrNotAcquired))
}

func decimalInv(invID uint) string {
	return strconv.FormatUint(uint64(invID), 10)
}

func TestOrderService_CartChangeAfterCheckoutClosesInvoice(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, robokassa := newTestOrderService()
	user := testutil.CreateCustomer(t, db)
	testutil.CreateProduct(t, db, "whey", "100.00")

	_, err := svc.AddItem(ctx, db, user.ID, "whey", 1)
	require.NoError(t, err)
	checkout, err := svc.Checkout(ctx, db, user.ID)
	require.NoError(t, err)
	invID := decimalInv(checkout.InvID)

	_, err = svc.AddItem(ctx, db, user.ID, "whey", 9)
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(ctx, db, &dto.RobokassaResultRequest{
		OutSum:         "100.00",
		InvID:          invID,
		SignatureValue: robokassa.Sign("100.00", invID),
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrPaymentSuperseded)

	order, err := svc.GetActiveOrder(ctx, db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusNew, order.Status)
	assert.True(t, order.TotalPay.Equal(decimal.RequireFromString("1000")))

	var closed models.PaymentTransaction
	require.NoError(t, db.First(&closed, "inv_id = ?", checkout.InvID).Error)
	assert.Equal(t, models.PaymentStatusFailed, closed.Status)

	// a fresh checkout bills the new total
	again, err := svc.Checkout(ctx, db, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, checkout.InvID, again.InvID)
	assert.True(t, again.Amount.Equal(decimal.RequireFromString("1000")))

	againID := decimalInv(again.InvID)
	answer, err := svc.ConfirmPayment(ctx, db, &dto.RobokassaResultRequest{
		OutSum:         "1000.00",
		InvID:          againID,
		SignatureValue: robokassa.Sign("1000.00", againID),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "OK"+againID, answer)
}

func TestOrderService_CheckoutReusesOpenInvoice(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, _ := newTestOrderService()
	user := testutil.CreateCustomer(t, db)
	testutil.CreateProduct(t, db, "whey", "100.00")

	_, err := svc.AddItem(ctx, db, user.ID, "whey", 1)
	require.NoError(t, err)

	first, err := svc.Checkout(ctx, db, user.ID)
	require.NoError(t, err)
	second, err := svc.Checkout(ctx, db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.InvID, second.InvID)
	assert.Equal(t, first.PaymentURL, second.PaymentURL)

	var n int64
	require.NoError(t, db.Model(&models.PaymentTransaction{}).Where("order_id = ?", first.OrderID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestOrderService_ConfirmPaymentChecksCurrentOrderTotal(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, robokassa := newTestOrderService()
	user := testutil.CreateCustomer(t, db)
	testutil.CreateProduct(t, db, "whey", "100.00")

	order, err := svc.AddItem(ctx, db, user.ID, "whey", 1)
	require.NoError(t, err)
	checkout, err := svc.Checkout(ctx, db, user.ID)
	require.NoError(t, err)
	invID := decimalInv(checkout.InvID)

	// the line changes behind the service's back
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Update("count", 10).Error)

	_, err = svc.ConfirmPayment(ctx, db, &dto.RobokassaResultRequest{
		OutSum:         "100.00",
		InvID:          invID,
		SignatureValue: robokassa.Sign("100.00", invID),
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidPaymentAmount)
	assert.EqualValues(t, 0, countOrders(t, db, user.ID, models.OrderStatusPayed))
}

func TestOrderService_PaidOrderClosesOtherInvoices(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc, robokassa := newTestOrderService()
	user := testutil.CreateCustomer(t, db)
	testutil.CreateProduct(t, db, "whey", "100.00")

	_, err := svc.AddItem(ctx, db, user.ID, "whey", 1)
	require.NoError(t, err)
	checkout, err := svc.Checkout(ctx, db, user.ID)
	require.NoError(t, err)

	extra := &models.PaymentTransaction{
		OrderID: checkout.OrderID,
		UserID:  user.ID,
		Amount:  checkout.Amount,
		Status:  models.PaymentStatusPending,
	}
	require.NoError(t, repositories.NewPaymentRepository().Create(db, extra))

	invID := decimalInv(checkout.InvID)
	_, err = svc.ConfirmPayment(ctx, db, &dto.RobokassaResultRequest{
		OutSum:         "100.00",
		InvID:          invID,
		SignatureValue: robokassa.Sign("100.00", invID),
	}, nil)
	require.NoError(t, err)

	extraID := decimalInv(extra.InvID)
	_, err = svc.ConfirmPayment(ctx, db, &dto.RobokassaResultRequest{
		OutSum:         "100.00",
		InvID:          extraID,
		SignatureValue: robokassa.Sign("100.00", extraID),
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrPaymentSuperseded)
}

// ============================================================================
// get-or-create retry
// ============================================================================

type noopLocker struct{}

func (noopLocker) Lock(context.Context, string) (locker.Unlock, error) {
	return func() {}, nil
}

// racingOrderRepo makes the first hideActive lookups miss and the first
// conflicts inserts lose against ux_orders_user_active.
type racingOrderRepo struct {
	repositories.OrderRepository
	hideActive int
	conflicts  int
	lookups    int
	inserts    int
}

func (r *racingOrderRepo) FindActiveByUser(db *gorm.DB, userID string) (*models.Order, error) {
	r.lookups++
	if r.lookups <= r.hideActive {
		return nil, repositories.ErrActiveOrderNotFound
	}
	return r.OrderRepository.FindActiveByUser(db, userID)
}

func (r *racingOrderRepo) CreateActive(db *gorm.DB, userID string) (*models.Order, error) {
	r.inserts++
	if r.inserts <= r.conflicts {
		return nil, repositories.ErrActiveOrderExists
	}
	return r.OrderRepository.CreateActive(db, userID)
}

func newRacingOrderService(repo *racingOrderRepo, retries int) OrderService {
	return NewOrderService(
		repo,
		repositories.NewProductRepository(),
		repositories.NewDiscountRepository(),
		repositories.NewPaymentRepository(),
		repositories.NewUserRepository(),
		noopLocker{},
		payment.NewRobokassaService(payment.RobokassaConfig{}),
		retries,
	)
}

func TestOrderService_GetOrCreateRetriesAfterLostInsert(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.CreateCustomer(t, db)
	testutil.CreateProduct(t, db, "whey", "10.00")

	// the concurrent winner
	winner, err := repositories.NewOrderRepository().CreateActive(db, user.ID)
	require.NoError(t, err)

	repo := &racingOrderRepo{OrderRepository: repositories.NewOrderRepository(), hideActive: 1, conflicts: 1}
	svc := newRacingOrderService(repo, 3)

	order, err := svc.AddItem(ctx, db, user.ID, "whey", 2)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, order.ID)
	assert.Equal(t, 2, order.CountItems())
	assert.Equal(t, 1, repo.inserts)
	assert.EqualValues(t, 1, countOrders(t, db, user.ID, models.OrderStatusNew))
}

func TestOrderService_GetOrCreateGivesUpAfterRetries(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.CreateCustomer(t, db)
	testutil.CreateProduct(t, db, "whey", "10.00")

	const retries = 2
	repo := &racingOrderRepo{OrderRepository: repositories.NewOrderRepository(), hideActive: 100, conflicts: 100}
	svc := newRacingOrderService(repo, retries)

	_, err := svc.AddItem(ctx, db, user.ID, "whey", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrActiveOrderExists)
	assert.Equal(t, retries+1, repo.inserts)
	assert.EqualValues(t, 0, countOrders(t, db, user.ID, models.OrderStatusNew))
}
