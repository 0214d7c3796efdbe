package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gerai/internal/models"
	"gerai/internal/services"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func sellerActor(id string) services.Actor {
	return services.Actor{UserID: id, Role: models.RoleSeller}
}

func newProduct() *models.Product {
	return &models.Product{
		Name:  "Test Product",
		Price: decimal.RequireFromString("9.99"),
		Stock: 10,
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("customers cannot create products", func(t *testing.T) {
		repo := new(MockProductRepository)
		service := services.NewProductService(repo)

		err := service.CreateProduct(ctx, services.Actor{UserID: "u1", Role: models.RoleCustomer}, newProduct())
		assert.ErrorIs(t, err, services.ErrUnauthorized)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("negative initial stock is rejected", func(t *testing.T) {
		repo := new(MockProductRepository)
		service := services.NewProductService(repo)

		product := newProduct()
		product.Stock = -1
		err := service.CreateProduct(ctx, sellerActor("s1"), product)
		assert.ErrorIs(t, err, services.ErrArgument)
	})

	t.Run("sellers always own what they create", func(t *testing.T) {
		repo := new(MockProductRepository)
		service := services.NewProductService(repo)

		product := newProduct()
		product.SellerID = "somebody-else"
		repo.On("Create", ctx, mock.MatchedBy(func(p *models.Product) bool {
			return p.SellerID == "s1"
		})).Return(nil).Once()

		require.NoError(t, service.CreateProduct(ctx, sellerActor("s1"), product))
		repo.AssertExpectations(t)
	})
}

func TestProductService_UpdateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("sellers cannot touch another seller's product", func(t *testing.T) {
		repo := new(MockProductRepository)
		service := services.NewProductService(repo)

		repo.On("GetByID", ctx, "p1").
			Return(&models.Product{ID: "p1", SellerID: "other"}, nil).Once()

		err := service.UpdateProduct(ctx, sellerActor("s1"), &models.Product{ID: "p1"})
		assert.ErrorIs(t, err, services.ErrUnauthorized)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("admins may update any product", func(t *testing.T) {
		repo := new(MockProductRepository)
		service := services.NewProductService(repo)

		repo.On("GetByID", ctx, "p1").
			Return(&models.Product{ID: "p1", SellerID: "other"}, nil).Once()
		repo.On("Update", ctx, mock.Anything).Return(nil).Once()

		err := service.UpdateProduct(ctx, services.Actor{UserID: "a1", Role: models.RoleAdmin}, &models.Product{ID: "p1"})
		assert.NoError(t, err)
	})

	t.Run("missing product is NotFound", func(t *testing.T) {
		repo := new(MockProductRepository)
		service := services.NewProductService(repo)

		repo.On("GetByID", ctx, "p1").Return(nil, notFoundErr()).Once()

		err := service.UpdateProduct(ctx, sellerActor("s1"), &models.Product{ID: "p1"})
		assert.ErrorIs(t, err, services.ErrNotFound)
	})
}

func TestProductService_DeleteProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("owner may delete", func(t *testing.T) {
		repo := new(MockProductRepository)
		service := services.NewProductService(repo)

		repo.On("GetByID", ctx, "p1").
			Return(&models.Product{ID: "p1", SellerID: "s1"}, nil).Once()
		repo.On("Delete", ctx, "p1").Return(nil).Once()

		assert.NoError(t, service.DeleteProduct(ctx, sellerActor("s1"), "p1"))
		repo.AssertExpectations(t)
	})

	t.Run("non-owner may not", func(t *testing.T) {
		repo := new(MockProductRepository)
		service := services.NewProductService(repo)

		repo.On("GetByID", ctx, "p1").
			Return(&models.Product{ID: "p1", SellerID: "other"}, nil).Once()

		err := service.DeleteProduct(ctx, sellerActor("s1"), "p1")
		assert.ErrorIs(t, err, services.ErrUnauthorized)
	})
}
