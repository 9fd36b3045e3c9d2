package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/farma-ya/pharmacy-platform/internal/errors"
	"github.com/farma-ya/pharmacy-platform/internal/models"
	"github.com/farma-ya/pharmacy-platform/internal/utils"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	ListProducts(ctx context.Context, page, size int) ([]*models.Product, int, error)
	ListLowStockProducts(ctx context.Context, threshold int) ([]*models.Product, error)
	DecrementStock(ctx context.Context, productID int64, quantity int) error
	DeactivateProduct(ctx context.Context, id int64) error
	CountProducts(ctx context.Context) (int64, error)
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `id, sku, name, description, presentation, active_ingredient, price, category, image_url, stock, active, created_at`

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO products (sku, name, description, presentation, active_ingredient, price, category, image_url, stock, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, NOW())
		RETURNING id, active, created_at
	`

	return r.DB.QueryRowContext(dbCtx, query,
		product.SKU, product.Name, product.Description, product.Presentation, product.ActiveIngredient,
		product.Price, product.Category, product.ImageURL, product.Stock).
		Scan(&product.ID, &product.Active, &product.CreatedAt)
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	product := &models.Product{}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(
		&product.ID, &product.SKU, &product.Name, &product.Description, &product.Presentation,
		&product.ActiveIngredient, &product.Price, &product.Category, &product.ImageURL,
		&product.Stock, &product.Active, &product.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	return product, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET name = $1, description = $2, presentation = $3, active_ingredient = $4, price = $5,
			category = $6, image_url = $7, stock = $8, active = $9
		WHERE id = $10
	`

	result, err := r.DB.ExecContext(dbCtx, query,
		product.Name, product.Description, product.Presentation, product.ActiveIngredient,
		product.Price, product.Category, product.ImageURL, product.Stock, product.Active, product.ID)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *productRepository) ListProducts(ctx context.Context, page, size int) ([]*models.Product, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	countQuery := `SELECT COUNT(*) FROM products`

	err := r.DB.QueryRowContext(dbCtx, countQuery).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	// Offset
	offset := (page - 1) * size

	query := `SELECT ` + productColumns + ` FROM products ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(dbCtx, query, size, offset)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) ListLowStockProducts(ctx context.Context, threshold int) ([]*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products WHERE active = TRUE AND stock <= $1 ORDER BY stock, id`

	rows, err := r.DB.QueryContext(dbCtx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}

	defer rows.Close()

	return scanProducts(rows)
}

// DecrementStock verifies and decrements stock in one guarded statement. The
// WHERE clause is what keeps stock from ever going below zero; two concurrent
// checkouts cannot both pass the check.
func (r *productRepository) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	return decrementStock(dbCtx, r.DB, productID, quantity)
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// decrementStock runs against either the pool or an open transaction, so the
// checkout workflow can reuse the same guard inside its transaction.
func decrementStock(ctx context.Context, db execQuerier, productID int64, quantity int) error {

	query := `UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`

	result, err := db.ExecContext(ctx, query, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows > 0 {
		return nil
	}

	// Zero rows means either a missing product or not enough stock.
	var (
		name      string
		available int
	)

	err = db.QueryRowContext(ctx, `SELECT name, stock FROM products WHERE id = $1`, productID).Scan(&name, &available)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.NotFoundError(fmt.Sprintf("Product not found: %d", productID))
		}
		return fmt.Errorf("failed to read product stock: %w", err)
	}

	return errors.InsufficientStockError(name, available, quantity)
}

func (r *productRepository) DeactivateProduct(ctx context.Context, id int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `UPDATE products SET active = FALSE WHERE id = $1`

	result, err := r.DB.ExecContext(dbCtx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate product: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *productRepository) CountProducts(ctx context.Context) (int64, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var count int64

	err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM products`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return count, nil
}

func scanProducts(rows *sql.Rows) ([]*models.Product, error) {
	var products []*models.Product

	for rows.Next() {
		product := &models.Product{}

		err := rows.Scan(
			&product.ID, &product.SKU, &product.Name, &product.Description, &product.Presentation,
			&product.ActiveIngredient, &product.Price, &product.Category, &product.ImageURL,
			&product.Stock, &product.Active, &product.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
