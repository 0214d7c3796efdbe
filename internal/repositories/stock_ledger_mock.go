package repositories

import (
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type mockStockEntry struct {
	Name  string
	Price decimal.Decimal
	Stock int
}

// MockStockLedger is an in-memory implementation of StockLedger. A single
// mutex serializes every check-then-decrement, giving the same linearization
// guarantee the GORM implementation gets from row-level locking.
type MockStockLedger struct {
	products map[string]*mockStockEntry
	mu       sync.Mutex
}

// NewMockStockLedger creates a new instance of MockStockLedger.
func NewMockStockLedger() *MockStockLedger {
	return &MockStockLedger{
		products: make(map[string]*mockStockEntry),
	}
}

// SetStock seeds or replaces a product entry.
func (l *MockStockLedger) SetStock(productID, name string, price decimal.Decimal, stock int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.products[productID] = &mockStockEntry{Name: name, Price: price, Stock: stock}
}

// Stock returns the current stock for a product, or 0 if unknown.
func (l *MockStockLedger) Stock(productID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.products[productID]; ok {
		return p.Stock
	}
	return 0
}

// TryReserve decrements stock if enough is available. The tx argument is
// ignored; the mock has no transactional store behind it.
func (l *MockStockLedger) TryReserve(_ *gorm.DB, productID string, quantity int) (Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.products[productID]
	if !ok {
		return Reservation{OK: false, Available: 0, ProductName: "Unknown"}, nil
	}
	if p.Stock < quantity {
		return Reservation{OK: false, Available: p.Stock, ProductName: p.Name, UnitPrice: p.Price}, nil
	}
	p.Stock -= quantity
	return Reservation{OK: true, Available: p.Stock, ProductName: p.Name, UnitPrice: p.Price}, nil
}
