package repositories_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gerai/internal/models"
	"gerai/internal/repositories"
)

// setupDB opens a private in-memory SQLite database with the full schema.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A named shared-cache DB keeps the schema visible across the pool's
	// connections while staying private to the test.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Product{},
		&models.Order{},
		&models.OrderDetail{},
		&models.Payment{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:       uuid.New().String(),
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Currency: "USD",
		Stock:    stock,
		Active:   true,
		SellerID: uuid.New().String(),
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedDraftOrder(t *testing.T, db *gorm.DB) *models.Order {
	t.Helper()
	o := &models.Order{
		ID:                uuid.New().String(),
		UserID:            uuid.New().String(),
		ShippingAddressID: uuid.New().String(),
		Status:            models.StatusDraft,
	}
	require.NoError(t, db.Create(o).Error)
	return o
}

func currentStock(t *testing.T, db *gorm.DB, productID string) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, "id = ?", productID).Error)
	return p.Stock
}

func TestGORMStockLedger_TryReserve(t *testing.T) {
	db := setupDB(t)
	ledger := repositories.NewGORMStockLedger()
	product := seedProduct(t, db, "Laptop", "1200.00", 10)

	// Successful reservation decrements in place
	err := db.Transaction(func(tx *gorm.DB) error {
		res, err := ledger.TryReserve(tx, product.ID, 4)
		require.NoError(t, err)
		assert.True(t, res.OK)
		assert.Equal(t, 6, res.Available)
		assert.Equal(t, "Laptop", res.ProductName)
		assert.True(t, res.UnitPrice.Equal(decimal.RequireFromString("1200.00")))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 6, currentStock(t, db, product.ID))

	// Requesting more than available fails with the current stock reported
	err = db.Transaction(func(tx *gorm.DB) error {
		res, err := ledger.TryReserve(tx, product.ID, 7)
		require.NoError(t, err)
		assert.False(t, res.OK)
		assert.Equal(t, 6, res.Available)
		assert.Equal(t, "Laptop", res.ProductName)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 6, currentStock(t, db, product.ID))

	// Unknown product is a failed reservation, not an error
	err = db.Transaction(func(tx *gorm.DB) error {
		res, err := ledger.TryReserve(tx, "no-such-product", 1)
		require.NoError(t, err)
		assert.False(t, res.OK)
		assert.Equal(t, 0, res.Available)
		assert.Equal(t, "Unknown", res.ProductName)
		return nil
	})
	require.NoError(t, err)
}

func TestCommitter_AddOrderDetails_Success(t *testing.T) {
	db := setupDB(t)
	committer := repositories.NewGORMOrderDetailCommitter(db, repositories.NewGORMStockLedger())

	laptop := seedProduct(t, db, "Laptop", "1200.00", 10)
	mouse := seedProduct(t, db, "Mouse", "25.00", 50)
	order := seedDraftOrder(t, db)

	result, err := committer.AddOrderDetails(context.Background(), order.ID, []repositories.RequestedItem{
		{ProductID: laptop.ID, Quantity: 2},
		{ProductID: mouse.ID, Quantity: 3},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.StockErrors)

	// Stock decremented for both lines
	assert.Equal(t, 8, currentStock(t, db, laptop.ID))
	assert.Equal(t, 47, currentStock(t, db, mouse.ID))

	// Detail rows persisted with price snapshots
	var details []models.OrderDetail
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&details).Error)
	assert.Len(t, details, 2)

	// Total recomputed: 2*1200 + 3*25 = 2475
	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.True(t, reloaded.TotalAmount.Equal(decimal.RequireFromString("2475")),
		"expected total 2475, got %s", reloaded.TotalAmount)
}

func TestCommitter_AddOrderDetails_CollectsAllShortages(t *testing.T) {
	db := setupDB(t)
	committer := repositories.NewGORMOrderDetailCommitter(db, repositories.NewGORMStockLedger())

	laptop := seedProduct(t, db, "Laptop", "1200.00", 1)
	mouse := seedProduct(t, db, "Mouse", "25.00", 2)
	order := seedDraftOrder(t, db)

	result, err := committer.AddOrderDetails(context.Background(), order.ID, []repositories.RequestedItem{
		{ProductID: laptop.ID, Quantity: 5},
		{ProductID: mouse.ID, Quantity: 10},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.StockErrors, 2, "both shortages must be reported at once")

	byProduct := map[string]repositories.StockShortage{}
	for _, s := range result.StockErrors {
		byProduct[s.ProductID] = s
	}
	assert.Equal(t, 1, byProduct[laptop.ID].AvailableStock)
	assert.Equal(t, 5, byProduct[laptop.ID].RequestedQuantity)
	assert.Equal(t, 2, byProduct[mouse.ID].AvailableStock)
	assert.Equal(t, 10, byProduct[mouse.ID].RequestedQuantity)

	// Nothing persisted
	var count int64
	require.NoError(t, db.Model(&models.OrderDetail{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, 1, currentStock(t, db, laptop.ID))
	assert.Equal(t, 2, currentStock(t, db, mouse.ID))
}

func TestCommitter_AddOrderDetails_PartialShortageRollsBackEverything(t *testing.T) {
	db := setupDB(t)
	committer := repositories.NewGORMOrderDetailCommitter(db, repositories.NewGORMStockLedger())

	laptop := seedProduct(t, db, "Laptop", "1200.00", 10)
	mouse := seedProduct(t, db, "Mouse", "25.00", 1)
	order := seedDraftOrder(t, db)

	result, err := committer.AddOrderDetails(context.Background(), order.ID, []repositories.RequestedItem{
		{ProductID: laptop.ID, Quantity: 2}, // would succeed alone
		{ProductID: mouse.ID, Quantity: 5},  // shortage
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.StockErrors, 1)
	assert.Equal(t, mouse.ID, result.StockErrors[0].ProductID)

	// The successful reservation was rolled back with the failed one
	assert.Equal(t, 10, currentStock(t, db, laptop.ID))
	assert.Equal(t, 1, currentStock(t, db, mouse.ID))

	var count int64
	require.NoError(t, db.Model(&models.OrderDetail{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCommitter_AddOrderDetails_MissingProductReportedAsUnknown(t *testing.T) {
	db := setupDB(t)
	committer := repositories.NewGORMOrderDetailCommitter(db, repositories.NewGORMStockLedger())
	order := seedDraftOrder(t, db)

	result, err := committer.AddOrderDetails(context.Background(), order.ID, []repositories.RequestedItem{
		{ProductID: "no-such-product", Quantity: 1},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.StockErrors, 1)
	assert.Equal(t, "Unknown", result.StockErrors[0].ProductName)
	assert.Equal(t, 0, result.StockErrors[0].AvailableStock)
}

func TestCommitter_AddOrderDetails_OrderNotFound(t *testing.T) {
	db := setupDB(t)
	committer := repositories.NewGORMOrderDetailCommitter(db, repositories.NewGORMStockLedger())
	product := seedProduct(t, db, "Mouse", "25.00", 5)

	result, err := committer.AddOrderDetails(context.Background(), "no-such-order", []repositories.RequestedItem{
		{ProductID: product.ID, Quantity: 1},
	})
	assert.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Nil(t, result)
	assert.Equal(t, 5, currentStock(t, db, product.ID))
}

// shortThenFailLedger reports a shortage for every product except failID,
// where it returns a backend error instead.
type shortThenFailLedger struct {
	failID string
}

func (l *shortThenFailLedger) TryReserve(_ *gorm.DB, productID string, _ int) (repositories.Reservation, error) {
	if productID == l.failID {
		return repositories.Reservation{}, fmt.Errorf("backend unavailable")
	}
	return repositories.Reservation{OK: false, Available: 1, ProductName: "Scarce"}, nil
}

func TestCommitter_AddOrderDetails_UnexpectedErrorReportsSingleEntry(t *testing.T) {
	db := setupDB(t)
	order := seedDraftOrder(t, db)
	committer := repositories.NewGORMOrderDetailCommitter(db, &shortThenFailLedger{failID: "p2"})

	// A real shortage is collected before the backend error aborts the run;
	// the caller still sees exactly one synthetic entry, not a mixed list.
	result, err := committer.AddOrderDetails(context.Background(), order.ID, []repositories.RequestedItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.StockErrors, 1)
	assert.Empty(t, result.StockErrors[0].ProductID)
	assert.Equal(t, "Unknown", result.StockErrors[0].ProductName)
}

func TestCommitter_AddOrderDetails_TotalAccumulatesAcrossCommits(t *testing.T) {
	db := setupDB(t)
	committer := repositories.NewGORMOrderDetailCommitter(db, repositories.NewGORMStockLedger())

	laptop := seedProduct(t, db, "Laptop", "1200.00", 10)
	mouse := seedProduct(t, db, "Mouse", "25.00", 50)
	order := seedDraftOrder(t, db)

	first, err := committer.AddOrderDetails(context.Background(), order.ID, []repositories.RequestedItem{
		{ProductID: laptop.ID, Quantity: 1},
	})
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := committer.AddOrderDetails(context.Background(), order.ID, []repositories.RequestedItem{
		{ProductID: mouse.ID, Quantity: 4},
	})
	require.NoError(t, err)
	require.True(t, second.Success)

	// 1200 + 4*25 = 1300 over all details, not just the last batch
	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.True(t, reloaded.TotalAmount.Equal(decimal.RequireFromString("1300")),
		"expected total 1300, got %s", reloaded.TotalAmount)
}

func TestMockStockLedger_ConcurrentReservationsNeverOversell(t *testing.T) {
	ledger := repositories.NewMockStockLedger()
	const stock = 5
	ledger.SetStock("p1", "Laptop", decimal.RequireFromString("1200.00"), stock)

	const workers = 20
	var wg sync.WaitGroup
	successes := make(chan repositories.Reservation, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := ledger.TryReserve(nil, "p1", 1)
			if err == nil && res.OK {
				successes <- res
			}
		}()
	}
	wg.Wait()
	close(successes)

	var granted int
	for range successes {
		granted++
	}
	assert.Equal(t, stock, granted, "exactly the available stock may be reserved")
	assert.Equal(t, 0, ledger.Stock("p1"), "stock never goes negative")
}

func TestMockStockLedger_ConcurrentBatchesGrantAtMostFloor(t *testing.T) {
	ledger := repositories.NewMockStockLedger()
	ledger.SetStock("p1", "Laptop", decimal.RequireFromString("1200.00"), 5)

	// Two concurrent requests for quantity 3 against stock 5: exactly one
	// may succeed.
	var wg sync.WaitGroup
	results := make([]repositories.Reservation, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := ledger.TryReserve(nil, "p1", 3)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	granted := 0
	for _, res := range results {
		if res.OK {
			granted++
		} else {
			assert.Contains(t, []int{5, 2}, res.Available,
				"loser observes pre- or post-decrement stock depending on interleaving")
		}
	}
	assert.Equal(t, 1, granted)
	assert.Equal(t, 2, ledger.Stock("p1"))
}

// Guards against accidentally widening the committer contract: a batch with
// a duplicate product decrements twice, once per line.
func TestCommitter_AddOrderDetails_DuplicateProductLines(t *testing.T) {
	db := setupDB(t)
	committer := repositories.NewGORMOrderDetailCommitter(db, repositories.NewGORMStockLedger())

	mouse := seedProduct(t, db, "Mouse", "25.00", 10)
	order := seedDraftOrder(t, db)

	result, err := committer.AddOrderDetails(context.Background(), order.ID, []repositories.RequestedItem{
		{ProductID: mouse.ID, Quantity: 2},
		{ProductID: mouse.ID, Quantity: 3},
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, 5, currentStock(t, db, mouse.ID))

	var count int64
	require.NoError(t, db.Model(&models.OrderDetail{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

// Sanity check for the helper used throughout: sqlite in-memory DBs are
// isolated per connection string.
func TestSetupDBIsolation(t *testing.T) {
	db1 := setupDB(t)
	db2 := setupDB(t)
	seedProduct(t, db1, fmt.Sprintf("only-in-db1-%s", uuid.New().String()), "1.00", 1)

	var count int64
	require.NoError(t, db2.Model(&models.Product{}).Count(&count).Error)
	assert.Zero(t, count)
}
