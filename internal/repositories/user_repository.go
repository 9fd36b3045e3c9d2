package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/farma-ya/pharmacy-platform/internal/models"
	"github.com/farma-ya/pharmacy-platform/internal/utils"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsersByRole(ctx context.Context, roleID int) ([]*models.User, error)
	CountUsersByRole(ctx context.Context, roleID int) (int64, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users (username, email, phone, password, role_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	return r.DB.QueryRowContext(dbCtx, query, user.Username, user.Email, user.Phone, user.Password, user.RoleID).
		Scan(&user.ID, &user.CreatedAt)
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, username, email, phone, password, role_id, created_at
		FROM users
		WHERE username = $1
	`

	return r.scanUser(r.DB.QueryRowContext(dbCtx, query, username))
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, username, email, phone, password, role_id, created_at
		FROM users
		WHERE id = $1
	`

	return r.scanUser(r.DB.QueryRowContext(dbCtx, query, id))
}

func (r *userRepository) ListUsersByRole(ctx context.Context, roleID int) ([]*models.User, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, username, email, phone, password, role_id, created_at
		FROM users
		WHERE role_id = $1
		ORDER BY username
	`

	rows, err := r.DB.QueryContext(dbCtx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}

	defer rows.Close()

	var users []*models.User

	for rows.Next() {
		user := &models.User{}

		err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Phone, &user.Password, &user.RoleID, &user.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) CountUsersByRole(ctx context.Context, roleID int) (int64, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var count int64

	query := `SELECT COUNT(*) FROM users WHERE role_id = $1`

	err := r.DB.QueryRowContext(dbCtx, query, roleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users by role: %w", err)
	}

	return count, nil
}

func (r *userRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}

	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Phone, &user.Password, &user.RoleID, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	return user, nil
}
