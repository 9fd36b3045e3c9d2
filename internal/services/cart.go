package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	appErrors "github.com/farma-ya/pharmacy-platform/internal/errors"
	"github.com/farma-ya/pharmacy-platform/internal/models"
	repository "github.com/farma-ya/pharmacy-platform/internal/repositories"
)

type CartService interface {
	GetCart(ctx context.Context, userID int64) (*models.Cart, error)
	AddItem(ctx context.Context, userID int64, req *models.AddCartItemRequest) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID int64) (*models.Cart, error)
	ClearCart(ctx context.Context, userID int64) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo}
}

// GetCart creates the cart on first access.
func (s *cartService) GetCart(ctx context.Context, userID int64) (*models.Cart, error) {

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.DatabaseError("Failed to get cart").WithError(err)
		}

		cart = &models.Cart{
			UserID: userID,
			Items:  map[string]models.CartItem{},
		}

		if err := s.cartRepo.CreateCart(ctx, cart); err != nil {
			return nil, appErrors.DatabaseError("Failed to create cart").WithError(err)
		}
	}

	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, userID int64, req *models.AddCartItemRequest) (*models.Cart, error) {

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to get product").WithError(err)
	}

	if !product.Active {
		return nil, appErrors.BadRequestError("Product is not available")
	}

	key := strconv.FormatInt(product.ID, 10)

	quantity := req.Quantity
	if existing, ok := cart.Items[key]; ok {
		quantity += existing.Quantity
	}

	// Advisory check only; checkout re-verifies against live stock.
	if product.Stock < quantity {
		return nil, appErrors.InsufficientStockError(product.Name, product.Stock, quantity)
	}

	cart.Items[key] = models.CartItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.Price,
	}

	if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
		return nil, appErrors.DatabaseError("Failed to update cart").WithError(err)
	}

	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID int64) (*models.Cart, error) {

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := strconv.FormatInt(productID, 10)

	if _, ok := cart.Items[key]; !ok {
		return nil, appErrors.NotFoundError("Item not found in cart")
	}

	delete(cart.Items, key)

	if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
		return nil, appErrors.DatabaseError("Failed to update cart").WithError(err)
	}

	return cart, nil
}

func (s *cartService) ClearCart(ctx context.Context, userID int64) error {

	if err := s.cartRepo.ClearCart(ctx, userID); err != nil {
		return appErrors.DatabaseError("Failed to clear cart").WithError(err)
	}

	return nil
}
