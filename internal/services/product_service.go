package services

import (
	"context"
	"fmt"

	"gerai/internal/models"
	"gerai/internal/repositories"
)

// ProductService handles business logic related to products. Only sellers
// and admins manage products; sellers are confined to their own.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves all active products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return product, nil
}

// CreateProduct creates a new product owned by the acting seller. Initial
// stock is set here; afterwards only the stock ledger decrements it.
func (s *ProductService) CreateProduct(ctx context.Context, actor Actor, product *models.Product) error {
	if actor.Role != models.RoleSeller && actor.Role != models.RoleAdmin {
		return fmt.Errorf("%w: only sellers can create products", ErrUnauthorized)
	}
	if product.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrArgument)
	}
	if actor.Role == models.RoleSeller {
		product.SellerID = actor.UserID
	}
	return s.repo.Create(ctx, product)
}

// UpdateProduct updates the catalog fields of a product the actor owns.
func (s *ProductService) UpdateProduct(ctx context.Context, actor Actor, product *models.Product) error {
	existing, err := s.repo.GetByID(ctx, product.ID)
	if err != nil {
		return mapNotFound(err)
	}
	if actor.Role != models.RoleAdmin && existing.SellerID != actor.UserID {
		return fmt.Errorf("%w: product %s does not belong to seller %s", ErrUnauthorized, product.ID, actor.UserID)
	}
	return s.repo.Update(ctx, product)
}

// DeleteProduct deletes a product the actor owns.
func (s *ProductService) DeleteProduct(ctx context.Context, actor Actor, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}
	if actor.Role != models.RoleAdmin && existing.SellerID != actor.UserID {
		return fmt.Errorf("%w: product %s does not belong to seller %s", ErrUnauthorized, id, actor.UserID)
	}
	return s.repo.Delete(ctx, id)
}
