package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/farma-ya/pharmacy-platform/internal/models"
	"github.com/farma-ya/pharmacy-platform/internal/utils"
)

type CartRepository interface {
	CreateCart(ctx context.Context, cart *models.Cart) error
	GetCartByUserID(ctx context.Context, userID int64) (*models.Cart, error)
	UpdateCart(ctx context.Context, cart *models.Cart) error
	ClearCart(ctx context.Context, userID int64) error
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

func (r *cartRepository) CreateCart(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	itemsJSON, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart items: %w", err)
	}

	query := `
		INSERT INTO carts (user_id, items, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query, cart.UserID, itemsJSON).Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
}

func (r *cartRepository) GetCartByUserID(ctx context.Context, userID int64) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, user_id, items, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`

	cart := &models.Cart{}

	var itemsJSON []byte

	err := r.DB.QueryRowContext(dbCtx, query, userID).Scan(&cart.ID, &cart.UserID, &itemsJSON, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &cart.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart items: %w", err)
	}

	return cart, nil
}

// UpdateCart overwrites the whole items document. Concurrent edits from two
// sessions of the same user resolve last-write-wins.
func (r *cartRepository) UpdateCart(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	itemsJSON, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart items: %w", err)
	}

	query := `
		UPDATE carts
		SET items = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.DB.ExecContext(dbCtx, query, itemsJSON, time.Now(), cart.ID)
	if err != nil {
		return fmt.Errorf("failed to update the cart: %w", err)
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

func (r *cartRepository) ClearCart(ctx context.Context, userID int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `UPDATE carts SET items = '{}', updated_at = NOW() WHERE user_id = $1`

	if _, err := r.DB.ExecContext(dbCtx, query, userID); err != nil {
		return fmt.Errorf("failed to clear the cart: %w", err)
	}

	return nil
}
