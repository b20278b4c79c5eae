package services

import (
	"context"
	"sync"
	"testing"

	"shop-service/models"
	"shop-service/repository"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// memCheckoutStore is an in-memory CheckoutStore with real transaction
// semantics: the callback runs under a store-wide lock and any error restores
// the pre-transaction state, so concurrent checkouts serialize exactly like
// row-locked database transactions.
type memCheckoutStore struct {
	mu          sync.Mutex
	products    map[uint]models.Product
	carts       map[uint]*models.Cart
	orders      []models.Order
	nextCartID  uint
	nextOrderID uint
}

func newMemCheckoutStore() *memCheckoutStore {
	return &memCheckoutStore{
		products:    make(map[uint]models.Product),
		carts:       make(map[uint]*models.Cart),
		nextCartID:  1,
		nextOrderID: 1,
	}
}

func (s *memCheckoutStore) addProduct(p models.Product) {
	s.products[p.ID] = p
}

func (s *memCheckoutStore) openCart(userID uint, items ...models.CartItem) *models.Cart {
	cart := &models.Cart{ID: s.nextCartID, UserID: userID, IsOpen: true}
	s.nextCartID++
	for i := range items {
		items[i].CartID = cart.ID
	}
	cart.Items = items
	s.carts[cart.ID] = cart
	return cart
}

func (s *memCheckoutStore) snapshot() *memCheckoutStore {
	snap := &memCheckoutStore{
		products:    make(map[uint]models.Product, len(s.products)),
		carts:       make(map[uint]*models.Cart, len(s.carts)),
		orders:      append([]models.Order(nil), s.orders...),
		nextCartID:  s.nextCartID,
		nextOrderID: s.nextOrderID,
	}
	for id, p := range s.products {
		snap.products[id] = p
	}
	for id, c := range s.carts {
		copied := *c
		copied.Items = append([]models.CartItem(nil), c.Items...)
		snap.carts[id] = &copied
	}
	return snap
}

func (s *memCheckoutStore) restore(snap *memCheckoutStore) {
	s.products = snap.products
	s.carts = snap.carts
	s.orders = snap.orders
	s.nextCartID = snap.nextCartID
	s.nextOrderID = snap.nextOrderID
}

func (s *memCheckoutStore) RunInTransaction(_ context.Context, fn func(tx repository.CheckoutTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&memCheckoutTx{store: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memCheckoutTx struct {
	store *memCheckoutStore
}

func (t *memCheckoutTx) OpenCartForUpdate(userID uint) (*models.Cart, error) {
	for _, cart := range t.store.carts {
		if cart.UserID == userID && cart.IsOpen {
			copied := *cart
			copied.Items = append([]models.CartItem(nil), cart.Items...)
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (t *memCheckoutTx) ProductsForUpdate(ids []uint) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := t.store.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (t *memCheckoutTx) DecrementStock(productID uint, quantity int) error {
	p, ok := t.store.products[productID]
	if !ok || p.Stock < quantity {
		return gorm.ErrRecordNotFound
	}
	p.Stock -= quantity
	t.store.products[productID] = p
	return nil
}

func (t *memCheckoutTx) CreateOrder(order *models.Order) error {
	order.ID = t.store.nextOrderID
	t.store.nextOrderID++
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	copied := *order
	copied.Items = append([]models.OrderItem(nil), order.Items...)
	t.store.orders = append(t.store.orders, copied)
	return nil
}

func (t *memCheckoutTx) CloseCart(cartID uint) error {
	if cart, ok := t.store.carts[cartID]; ok {
		cart.IsOpen = false
	}
	return nil
}

// memOrderRepo reads completed orders back out of the store.
type memOrderRepo struct {
	store *memCheckoutStore
}

func (r *memOrderRepo) FindByUserID(_ context.Context, userID uint) ([]models.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Order
	for _, o := range r.store.orders {
		if o.UserID == userID {
			copied := o
			copied.Items = append([]models.OrderItem(nil), o.Items...)
			out = append(out, copied)
		}
	}
	return out, nil
}

func (r *memOrderRepo) FindByIDAndUserID(_ context.Context, orderID, userID uint) (*models.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, o := range r.store.orders {
		if o.ID == orderID && o.UserID == userID {
			copied := o
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type recordingPublisher struct {
	mu     sync.Mutex
	orders []string
}

func (p *recordingPublisher) PublishOrderCreated(_ context.Context, order *models.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, order.OrderNumber)
	return nil
}

// --- Tests ---

func TestCreateOrder_ChecksOutCart(t *testing.T) {
	store := newMemCheckoutStore()
	store.addProduct(models.Product{ID: 1, Name: "mug", Price: 10.0, Stock: 5})
	store.addProduct(models.Product{ID: 2, Name: "pin", Price: 3.5, Stock: 1})
	cart := store.openCart(1,
		models.CartItem{ID: 1, ProductID: 1, Quantity: 2},
		models.CartItem{ID: 2, ProductID: 2, Quantity: 1},
	)
	events := &recordingPublisher{}
	svc := NewOrderService(store, &memOrderRepo{store: store}, events)

	order, err := svc.CreateOrder(context.Background(), 1)
	assert.NoError(t, err)

	assert.InDelta(t, 23.5, order.TotalAmount, 1e-9)
	assert.NotEmpty(t, order.OrderNumber)
	assert.Len(t, order.Items, 2)

	assert.Equal(t, 3, store.products[1].Stock)
	assert.Equal(t, 0, store.products[2].Stock)
	assert.False(t, store.carts[cart.ID].IsOpen, "cart must be closed by checkout")

	assert.Equal(t, []string{order.OrderNumber}, events.orders)
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	store := newMemCheckoutStore()
	svc := NewOrderService(store, &memOrderRepo{store: store}, nil)

	_, err := svc.CreateOrder(context.Background(), 1)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, store.orders)

	// A cart with zero line items counts as empty too.
	store.openCart(2)
	_, err = svc.CreateOrder(context.Background(), 2)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, store.orders)
}

func TestCreateOrder_InsufficientStockIsAtomic(t *testing.T) {
	store := newMemCheckoutStore()
	store.addProduct(models.Product{ID: 1, Name: "mug", Price: 10.0, Stock: 5})
	store.addProduct(models.Product{ID: 2, Name: "pin", Price: 3.5, Stock: 1})
	cart := store.openCart(1,
		models.CartItem{ID: 1, ProductID: 1, Quantity: 2},
		models.CartItem{ID: 2, ProductID: 2, Quantity: 3}, // over-stocked
	)
	svc := NewOrderService(store, &memOrderRepo{store: store}, nil)

	_, err := svc.CreateOrder(context.Background(), 1)

	var stockErr *InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, uint(2), stockErr.ProductID)

	// No partial application: stock untouched, no order, cart still open.
	assert.Equal(t, 5, store.products[1].Stock)
	assert.Equal(t, 1, store.products[2].Stock)
	assert.Empty(t, store.orders)
	assert.True(t, store.carts[cart.ID].IsOpen)
}

func TestCreateOrder_TotalsSurviveLaterPriceChanges(t *testing.T) {
	store := newMemCheckoutStore()
	store.addProduct(models.Product{ID: 1, Name: "mug", Price: 10.0, Stock: 5})
	store.openCart(1, models.CartItem{ID: 1, ProductID: 1, Quantity: 2})
	svc := NewOrderService(store, &memOrderRepo{store: store}, nil)

	order, err := svc.CreateOrder(context.Background(), 1)
	assert.NoError(t, err)

	// Reprice the product after checkout.
	p := store.products[1]
	p.Price = 99.0
	store.products[1] = p

	orders, err := svc.GetUserOrders(context.Background(), 1)
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.InDelta(t, 20.0, orders[0].TotalAmount, 1e-9)
	assert.InDelta(t, 10.0, orders[0].Items[0].Price, 1e-9)
	assert.Equal(t, order.OrderNumber, orders[0].OrderNumber)
}

func TestCreateOrder_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	const stock = 3
	const buyers = 10

	store := newMemCheckoutStore()
	store.addProduct(models.Product{ID: 1, Name: "mug", Price: 10.0, Stock: stock})
	for userID := uint(1); userID <= buyers; userID++ {
		store.openCart(userID, models.CartItem{ID: userID, ProductID: 1, Quantity: 1})
	}
	svc := NewOrderService(store, &memOrderRepo{store: store}, nil)

	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateOrder(context.Background(), uint(i+1))
		}(i)
	}
	wg.Wait()

	var succeeded, outOfStock int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			var stockErr *InsufficientStockError
			assert.ErrorAs(t, err, &stockErr)
			outOfStock++
		}
	}

	assert.Equal(t, stock, succeeded)
	assert.Equal(t, buyers-stock, outOfStock)
	assert.Equal(t, 0, store.products[1].Stock, "stock must end at zero, never negative")
	assert.Len(t, store.orders, stock)
}
