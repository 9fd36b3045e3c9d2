package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/farma-ya/pharmacy-platform/internal/models"
	"github.com/farma-ya/pharmacy-platform/internal/utils"
)

type OrderRepository interface {
	CreateOrderFromCart(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.Order, error)
	ListRecentOrders(ctx context.Context, limit int) ([]models.Order, error)
	ListOrdersByCourier(ctx context.Context, courierID int64) ([]models.Order, error)
	ListUnassignedOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	ListDeliveredOrdersBetween(ctx context.Context, start, end time.Time) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error
	AssignCourier(ctx context.Context, orderID, courierID int64) error
	CountOrdersByStatus(ctx context.Context, status models.OrderStatus) (int64, error)
	GetDeliveryStats(ctx context.Context, courierID int64) (*models.DeliveryStats, error)
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

// CreateOrderFromCart runs the whole checkout inside one transaction: every
// line item's stock decrement, the shipping-address snapshot, the order and
// item inserts, and the cart clear. Any failure rolls all of it back; no
// partial order or partial stock mutation survives.
func (r *orderRepository) CreateOrderFromCart(ctx context.Context, order *models.Order) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	for _, item := range order.Items {
		if err := decrementStock(dbCtx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	var addressID sql.NullInt64

	if order.ShippingAddress != nil {
		addr := order.ShippingAddress

		query := `
			INSERT INTO addresses (user_id, line, district, reference, created_at)
			VALUES ($1, $2, $3, $4, NOW())
			RETURNING id, created_at
		`

		err := tx.QueryRowContext(dbCtx, query, order.UserID, addr.Line, addr.District, addr.Reference).
			Scan(&addr.ID, &addr.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert shipping address: %w", err)
		}

		addressID = sql.NullInt64{Int64: addr.ID, Valid: true}
	}

	query := `
		INSERT INTO orders (order_number, user_id, status, subtotal, total, shipping_address_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, query,
		order.OrderNumber, order.UserID, order.Status, order.Subtotal, order.Total, addressID).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		query := `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`

		err := tx.QueryRowContext(dbCtx, query, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal).
			Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	// Clearing the cart commits together with the order insert, so a crash
	// can leave a stale cart but never a lost order.
	if _, err := tx.ExecContext(dbCtx, `UPDATE carts SET items = '{}', updated_at = NOW() WHERE user_id = $1`, order.UserID); err != nil {
		return fmt.Errorf("failed to clear the cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

const orderColumns = `o.id, o.order_number, o.user_id, o.courier_id, o.status, o.subtotal, o.total, o.created_at, o.updated_at,
		a.id, a.user_id, a.line, a.district, a.reference, a.created_at`

const orderFrom = ` FROM orders o LEFT JOIN addresses a ON o.shipping_address_id = a.id`

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + orderColumns + orderFrom + ` WHERE o.id = $1`

	order, err := scanOrderRow(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get the order: %w", err)
	}

	items, err := r.loadOrderItems(dbCtx, order.ID)
	if err != nil {
		return nil, err
	}

	order.Items = items

	return order, nil
}

func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` WHERE o.user_id = $1 ORDER BY o.created_at DESC`

	return r.listOrders(ctx, query, userID)
}

func (r *orderRepository) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` ORDER BY o.created_at DESC`

	return r.listOrders(ctx, query)
}

func (r *orderRepository) ListRecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` ORDER BY o.created_at DESC LIMIT $1`

	return r.listOrders(ctx, query, limit)
}

func (r *orderRepository) ListOrdersByCourier(ctx context.Context, courierID int64) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` WHERE o.courier_id = $1 ORDER BY o.created_at DESC`

	return r.listOrders(ctx, query, courierID)
}

func (r *orderRepository) ListUnassignedOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` WHERE o.courier_id IS NULL AND o.status = $1 ORDER BY o.created_at`

	return r.listOrders(ctx, query, status)
}

func (r *orderRepository) ListDeliveredOrdersBetween(ctx context.Context, start, end time.Time) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + `
		WHERE o.status = $1 AND o.created_at >= $2 AND o.created_at <= $3
		ORDER BY o.created_at`

	return r.listOrders(ctx, query, models.OrderStatusDelivered, start, end)
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.DB.ExecContext(dbCtx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
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

func (r *orderRepository) AssignCourier(ctx context.Context, orderID, courierID int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `UPDATE orders SET courier_id = $1, updated_at = $2 WHERE id = $3`

	result, err := r.DB.ExecContext(dbCtx, query, courierID, time.Now(), orderID)
	if err != nil {
		return fmt.Errorf("failed to assign courier: %w", err)
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

func (r *orderRepository) CountOrdersByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var count int64

	err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM orders WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return count, nil
}

// GetDeliveryStats aggregates a courier's workload in one query. Earnings
// count DELIVERED orders created today, not delivered today.
func (r *orderRepository) GetDeliveryStats(ctx context.Context, courierID int64) (*models.DeliveryStats, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'PENDING'),
			COUNT(*) FILTER (WHERE status = 'PROCESSING'),
			COUNT(*) FILTER (WHERE status = 'DELIVERED'),
			COALESCE(SUM(total) FILTER (WHERE status = 'DELIVERED' AND created_at::date = CURRENT_DATE), 0)
		FROM orders
		WHERE courier_id = $1
	`

	stats := &models.DeliveryStats{}

	err := r.DB.QueryRowContext(dbCtx, query, courierID).
		Scan(&stats.Pending, &stats.InProcess, &stats.Delivered, &stats.TodaysEarnings)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery stats: %w", err)
	}

	return stats, nil
}

func (r *orderRepository) listOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	var orders []models.Order

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.loadOrderItems(dbCtx, orders[i].ID)
		if err != nil {
			return nil, err
		}

		orders[i].Items = items
	}

	return orders, nil
}

func (r *orderRepository) loadOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {

	query := `
		SELECT i.id, i.product_id, i.quantity, i.unit_price, i.subtotal, p.name, p.category
		FROM order_items i
		JOIN products p ON i.product_id = p.id
		WHERE i.order_id = $1
		ORDER BY i.id
	`

	rows, err := r.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get the order items: %w", err)
	}

	defer rows.Close()

	var items []models.OrderItem

	for rows.Next() {
		var item models.OrderItem

		err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Subtotal, &item.ProductName, &item.ProductCategory)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		item.OrderID = orderID

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrderRow(row *sql.Row) (*models.Order, error) {
	return scanOrder(row)
}

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}

	var (
		courierID sql.NullInt64
		addrID    sql.NullInt64
		addrUser  sql.NullInt64
		line      sql.NullString
		district  sql.NullString
		reference sql.NullString
		addrTime  sql.NullTime
	)

	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.UserID, &courierID, &order.Status,
		&order.Subtotal, &order.Total, &order.CreatedAt, &order.UpdatedAt,
		&addrID, &addrUser, &line, &district, &reference, &addrTime)
	if err != nil {
		return nil, err
	}

	if courierID.Valid {
		order.CourierID = &courierID.Int64
	}

	if addrID.Valid {
		order.ShippingAddress = &models.Address{
			ID:        addrID.Int64,
			UserID:    addrUser.Int64,
			Line:      line.String,
			District:  district.String,
			Reference: reference.String,
			CreatedAt: addrTime.Time,
		}
	}

	return order, nil
}
