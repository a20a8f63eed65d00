package ordering

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/ordering"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of ordering.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]ordering.Order, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ordering.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) HasCompletedOrder(ctx context.Context, ownerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) HasCompletedOrderWithProduct(ctx context.Context, ownerID, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) BestSellers(ctx context.Context, limit int) ([]ordering.ProductSales, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.ProductSales), args.Error(1)
}

func (m *MockOrderRepository) SavePayment(ctx context.Context, payment *ordering.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockOrderRepository) FindPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]ordering.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.Payment), args.Error(1)
}

// mockUserRepository backs the authorization engine in these tests
type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *mockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *mockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockRoleRepository backs the authorization engine in these tests
type mockRoleRepository struct {
	mock.Mock
}

func (m *mockRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Role), args.Error(1)
}

func (m *mockRoleRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.Role, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Role), args.Error(1)
}

func (m *mockRoleRepository) FindByName(ctx context.Context, name string) (*identity.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Role), args.Error(1)
}

func (m *mockRoleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Role, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Role), args.Error(1)
}

func (m *mockRoleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRoleRepository) Save(ctx context.Context, role *identity.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *mockRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Test helpers

type testActors struct {
	userRepo *mockUserRepository
	roleRepo *mockRoleRepository
	authz    *identityapp.AuthorizationService
}

func newTestAuthz(t *testing.T) *testActors {
	t.Helper()
	userRepo := new(mockUserRepository)
	roleRepo := new(mockRoleRepository)
	return &testActors{
		userRepo: userRepo,
		roleRepo: roleRepo,
		authz:    identityapp.NewAuthorizationService(userRepo, roleRepo, nil),
	}
}

// registerUser wires a user into the authorization engine's user lookup
func (a *testActors) registerUser(t *testing.T, admin bool) uuid.UUID {
	t.Helper()
	user, err := identity.NewUser("actor", "actor@example.com", "secret123")
	require.NoError(t, err)
	if admin {
		require.NoError(t, user.SetRoleTag(identity.AccountRoleAdmin))
	}
	a.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	return user.ID
}

func createTestOrder(t *testing.T, ownerID uuid.UUID) *ordering.Order {
	t.Helper()
	item, err := ordering.NewOrderItem(uuid.New(), "Laptop", 2, decimal.NewFromInt(100000))
	require.NoError(t, err)
	order, err := ordering.NewOrder(ownerID, []ordering.OrderItem{item}, ordering.ContactInfo{})
	require.NoError(t, err)
	return order
}

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("derives total from items, never from input", func(t *testing.T) {
		repo := new(MockOrderRepository)
		actors := newTestAuthz(t)
		service := NewOrderService(repo, actors.authz, nil)

		var saved *ordering.Order
		repo.On("Save", ctx, mock.AnythingOfType("*ordering.Order")).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*ordering.Order)
		}).Return(nil)

		ownerID := uuid.New()
		order, err := service.Create(ctx, ownerID, CreateOrderRequest{
			Items: []OrderItemInput{
				{ProductID: uuid.New(), ProductName: "Laptop", Quantity: 2, UnitPrice: decimal.NewFromInt(100000)},
			},
			Contact: ordering.ContactInfo{Email: "buyer@example.com"},
		})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(200000)), "total = %s", order.TotalAmount)
		assert.Equal(t, ordering.OrderStatusPending, order.Status)
		assert.Equal(t, ownerID, order.OwnerID)
	})

	t.Run("rejects empty item list", func(t *testing.T) {
		repo := new(MockOrderRepository)
		actors := newTestAuthz(t)
		service := NewOrderService(repo, actors.authz, nil)

		_, err := service.Create(ctx, uuid.New(), CreateOrderRequest{})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save")
	})

	t.Run("rejects invalid item quantity", func(t *testing.T) {
		repo := new(MockOrderRepository)
		actors := newTestAuthz(t)
		service := NewOrderService(repo, actors.authz, nil)

		_, err := service.Create(ctx, uuid.New(), CreateOrderRequest{
			Items: []OrderItemInput{
				{ProductID: uuid.New(), ProductName: "Laptop", Quantity: 0, UnitPrice: decimal.NewFromInt(100)},
			},
		})
		assert.Error(t, err)
	})
}

func TestOrderService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("owner can read their order", func(t *testing.T) {
		repo := new(MockOrderRepository)
		actors := newTestAuthz(t)
		service := NewOrderService(repo, actors.authz, nil)

		ownerID := uuid.New()
		order := createTestOrder(t, ownerID)
		repo.On("FindByID", ctx, order.ID).Return(order, nil)

		got, err := service.Get(ctx, ownerID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.ID, got.ID)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		repo := new(MockOrderRepository)
		actors := newTestAuthz(t)
		service := NewOrderService(repo, actors.authz, nil)

		order := createTestOrder(t, uuid.New())
		repo.On("FindByID", ctx, order.ID).Return(order, nil)
		strangerID := actors.registerUser(t, false)

		_, err := service.Get(ctx, strangerID, order.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("admin can read any order", func(t *testing.T) {
		repo := new(MockOrderRepository)
		actors := newTestAuthz(t)
		service := NewOrderService(repo, actors.authz, nil)

		order := createTestOrder(t, uuid.New())
		repo.On("FindByID", ctx, order.ID).Return(order, nil)
		adminID := actors.registerUser(t, true)

		got, err := service.Get(ctx, adminID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.ID, got.ID)
	})

	t.Run("missing order yields NOT_FOUND", func(t *testing.T) {
		repo := new(MockOrderRepository)
		actors := newTestAuthz(t)
		service := NewOrderService(repo, actors.authz, nil)

		orderID := uuid.New()
		repo.On("FindByID", ctx, orderID).Return(nil, shared.ErrNotFound)

		_, err := service.Get(ctx, uuid.New(), orderID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOrderService_ListForOwner(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous caller is rejected", func(t *testing.T) {
		repo := new(MockOrderRepository)
		actors := newTestAuthz(t)
		service := NewOrderService(repo, actors.authz, nil)

		_, err := service.ListForOwner(ctx, uuid.Nil, shared.DefaultFilter())
		assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	})

	t.Run("returns paginated orders", func(t *testing.T) {
		repo := new(MockOrderRepository)
		actors := newTestAuthz(t)
		service := NewOrderService(repo, actors.authz, nil)

		ownerID := uuid.New()
		filter := shared.DefaultFilter()
		repo.On("FindByOwner", ctx, ownerID, filter).Return([]ordering.Order{*createTestOrder(t, ownerID)}, nil)
		repo.On("CountByOwner", ctx, ownerID).Return(int64(1), nil)

		page, err := service.ListForOwner(ctx, ownerID, filter)
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, int64(1), page.Total)
	})
}

func TestOrderService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces items wholesale and recomputes total", func(t *testing.T) {
		repo := new(MockOrderRepository)
		actors := newTestAuthz(t)
		service := NewOrderService(repo, actors.authz, nil)

		ownerID := uuid.New()
		order := createTestOrder(t, ownerID)
		repo.On("FindByID", ctx, order.ID).Return(order, nil)
		repo.On("Save", ctx, order).Return(nil)

		updated, err := service.Update(ctx, ownerID, order.ID, UpdateOrderRequest{
			Items: []OrderItemInput{
				{ProductID: uuid.New(), ProductName: "Keyboard", Quantity: 1, UnitPrice: decimal.NewFromInt(5000)},
				{ProductID: uuid.New(), ProductName: "Monitor", Quantity: 3, UnitPrice: decimal.NewFromInt(10000)},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, updated.ItemCount())
		assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(35000)), "total = %s", updated.TotalAmount)
	})

	t.Run("status write validates membership only", func(t *testing.T) {
		repo := new(MockOrderRepository)
		actors := newTestAuthz(t)
		service := NewOrderService(repo, actors.authz, nil)

		ownerID := uuid.New()
		order := createTestOrder(t, ownerID)
		repo.On("FindByID", ctx, order.ID).Return(order, nil)
		repo.On("Save", ctx, order).Return(nil)

		completed := ordering.OrderStatusCompleted
		updated, err := service.Update(ctx, ownerID, order.ID, UpdateOrderRequest{Status: &completed})
		require.NoError(t, err)
		assert.True(t, updated.IsCompleted())
	})

	t.Run("unknown status is rejected before save", func(t *testing.T) {
		repo := new(MockOrderRepository)
		actors := newTestAuthz(t)
		service := NewOrderService(repo, actors.authz, nil)

		ownerID := uuid.New()
		order := createTestOrder(t, ownerID)
		repo.On("FindByID", ctx, order.ID).Return(order, nil)

		bogus := ordering.OrderStatus("refunded")
		_, err := service.Update(ctx, ownerID, order.ID, UpdateOrderRequest{Status: &bogus})
		require.Error(t, err)
		repo.AssertNotCalled(t, "Save")
	})

	t.Run("nil items leaves line items untouched", func(t *testing.T) {
		repo := new(MockOrderRepository)
		actors := newTestAuthz(t)
		service := NewOrderService(repo, actors.authz, nil)

		ownerID := uuid.New()
		order := createTestOrder(t, ownerID)
		originalTotal := order.TotalAmount
		repo.On("FindByID", ctx, order.ID).Return(order, nil)
		repo.On("Save", ctx, order).Return(nil)

		contact := ordering.ContactInfo{Email: "new@example.com"}
		updated, err := service.Update(ctx, ownerID, order.ID, UpdateOrderRequest{Contact: &contact})
		require.NoError(t, err)
		assert.Equal(t, 1, updated.ItemCount())
		assert.True(t, updated.TotalAmount.Equal(originalTotal))
		assert.Equal(t, "new@example.com", updated.Contact.Email)
	})
}

func TestOrderService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes their order", func(t *testing.T) {
		repo := new(MockOrderRepository)
		actors := newTestAuthz(t)
		service := NewOrderService(repo, actors.authz, nil)

		ownerID := uuid.New()
		order := createTestOrder(t, ownerID)
		repo.On("FindByID", ctx, order.ID).Return(order, nil)
		repo.On("Delete", ctx, order.ID).Return(nil)

		require.NoError(t, service.Delete(ctx, ownerID, order.ID))
		repo.AssertExpectations(t)
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		repo := new(MockOrderRepository)
		actors := newTestAuthz(t)
		service := NewOrderService(repo, actors.authz, nil)

		order := createTestOrder(t, uuid.New())
		repo.On("FindByID", ctx, order.ID).Return(order, nil)
		strangerID := actors.registerUser(t, false)

		err := service.Delete(ctx, strangerID, order.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
		repo.AssertNotCalled(t, "Delete")
	})
}

func TestOrderService_RecordPayment(t *testing.T) {
	ctx := context.Background()
	repo := new(MockOrderRepository)
	actors := newTestAuthz(t)
	service := NewOrderService(repo, actors.authz, nil)

	ownerID := uuid.New()
	order := createTestOrder(t, ownerID)
	repo.On("FindByID", ctx, order.ID).Return(order, nil)
	repo.On("SavePayment", ctx, mock.AnythingOfType("*ordering.Payment")).Return(nil)

	payment, err := service.RecordPayment(ctx, ownerID, order.ID, "card")
	require.NoError(t, err)
	assert.Equal(t, order.ID, payment.OrderID)
	assert.Equal(t, ordering.PaymentStatusPending, payment.Status)
	assert.True(t, payment.Amount.Equal(order.TotalAmount), "payment covers the order total")
}

func TestOrderService_BestSellers(t *testing.T) {
	ctx := context.Background()
	repo := new(MockOrderRepository)
	actors := newTestAuthz(t)
	service := NewOrderService(repo, actors.authz, nil)

	sales := []ordering.ProductSales{
		{ProductID: uuid.New(), ProductName: "Laptop", TotalQuantity: 12},
	}
	// A non-positive limit falls back to the default of 10
	repo.On("BestSellers", ctx, 10).Return(sales, nil)

	got, err := service.BestSellers(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, sales, got)
}
