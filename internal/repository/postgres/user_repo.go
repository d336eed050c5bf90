package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/tawk/internal/domain"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = "id, email, username, display_name, password_hash, avatar_url, status, socket_id, created_at, updated_at"

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, username, display_name, password_hash, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.Username, user.DisplayName,
		user.PasswordHash, user.Status, user.CreatedAt, user.UpdatedAt,
	)
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1", username)
}

func (r *UserRepo) UpdatePresence(ctx context.Context, id uuid.UUID, status string, socketID *string) error {
	if socketID != nil {
		_, err := r.pool.Exec(ctx,
			`UPDATE users SET status = $1, socket_id = $2, updated_at = now() WHERE id = $3`,
			status, *socketID, id,
		)
		return err
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	)
	return err
}

func (r *UserRepo) ListDiscoverable(ctx context.Context, userID uuid.UUID) ([]domain.User, error) {
	query := `
		SELECT u.id, u.username, u.display_name, u.avatar_url, u.status
		FROM users u
		WHERE u.id != $1
			AND NOT EXISTS (
				SELECT 1 FROM friendships f
				WHERE (f.user1_id = $1 AND f.user2_id = u.id)
					OR (f.user1_id = u.id AND f.user2_id = $1)
			)
			AND NOT EXISTS (
				SELECT 1 FROM friend_requests fr
				WHERE (fr.sender_id = $1 AND fr.receiver_id = u.id)
					OR (fr.sender_id = u.id AND fr.receiver_id = $1)
			)
		ORDER BY u.display_name ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.AvatarURL, &u.Status); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Username, &u.DisplayName,
		&u.PasswordHash, &u.AvatarURL, &u.Status, &u.SocketID,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &u, err
}
