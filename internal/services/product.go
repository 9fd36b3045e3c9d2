package service

import (
	"context"
	"database/sql"
	"errors"

	appErrors "github.com/farma-ya/pharmacy-platform/internal/errors"
	"github.com/farma-ya/pharmacy-platform/internal/models"
	repository "github.com/farma-ya/pharmacy-platform/internal/repositories"
)

// lowStockThreshold marks products that need restocking on the dashboard.
const lowStockThreshold = 10

type ProductService interface {
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error)
	ListProducts(ctx context.Context, page, pageSize int) ([]*models.Product, int, error)
	ListLowStockProducts(ctx context.Context) ([]*models.Product, error)
	DeactivateProduct(ctx context.Context, id int64) error
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {

	product := &models.Product{
		SKU:              req.SKU,
		Name:             req.Name,
		Description:      req.Description,
		Presentation:     req.Presentation,
		ActiveIngredient: req.ActiveIngredient,
		Price:            req.Price,
		Category:         req.Category,
		ImageURL:         req.ImageURL,
		Stock:            req.Stock,
		Active:           true,
	}

	err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to create product").WithError(err)
	}

	return product, nil
}

func (s *productService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to get product").WithError(err)
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error) {

	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SKU != nil {
		product.SKU = *req.SKU
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Presentation != nil {
		product.Presentation = *req.Presentation
	}
	if req.ActiveIngredient != nil {
		product.ActiveIngredient = *req.ActiveIngredient
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, appErrors.DatabaseError("Failed to update product").WithError(err)
	}

	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, page, pageSize int) ([]*models.Product, int, error) {

	if page < 1 {
		page = 1
	}

	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	products, total, err := s.repo.ListProducts(ctx, page, pageSize)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to list products").WithError(err)
	}

	return products, total, nil
}

func (s *productService) ListLowStockProducts(ctx context.Context) ([]*models.Product, error) {

	products, err := s.repo.ListLowStockProducts(ctx, lowStockThreshold)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to list low stock products").WithError(err)
	}

	return products, nil
}

// DeactivateProduct hides the product from the catalog. Rows are never
// deleted, order items keep referencing them.
func (s *productService) DeactivateProduct(ctx context.Context, id int64) error {

	err := s.repo.DeactivateProduct(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFoundError("Product not found").WithError(err)
		}
		return appErrors.DatabaseError("Failed to deactivate product").WithError(err)
	}

	return nil
}
