package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/tawk/internal/domain"
	"github.com/vedran77/tawk/internal/repository"
)

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

// GetOrCreate is an atomic create-if-absent on the canonical pair: the
// INSERT either wins or hits the unique index over (user1_id, user2_id),
// and the follow-up SELECT observes whichever row won. Two users starting
// the same chat concurrently end up in the same conversation.
func (r *ConversationRepo) GetOrCreate(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Conversation, error) {
	insert := `
		INSERT INTO conversations (id, user1_id, user2_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user1_id, user2_id) DO NOTHING`
	if _, err := r.pool.Exec(ctx, insert, uuid.New(), user1ID, user2ID, time.Now()); err != nil {
		return nil, fmt.Errorf("inserting conversation: %w", err)
	}

	query := `
		SELECT id, user1_id, user2_id, created_at
		FROM conversations
		WHERE user1_id = $1 AND user2_id = $2`
	var conv domain.Conversation
	err := r.pool.QueryRow(ctx, query, user1ID, user2ID).Scan(
		&conv.ID, &conv.User1ID, &conv.User2ID, &conv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ConversationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	query := `
		SELECT id, user1_id, user2_id, created_at
		FROM conversations
		WHERE id = $1`
	var conv domain.Conversation
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&conv.ID, &conv.User1ID, &conv.User2ID, &conv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &conv, err
}

func (r *ConversationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	query := `
		SELECT c.id, c.user1_id, c.user2_id, c.created_at,
			CASE WHEN c.user1_id = $1 THEN c.user2_id ELSE c.user1_id END AS other_user_id,
			CASE WHEN c.user1_id = $1 THEN u2.username ELSE u1.username END AS other_username,
			CASE WHEN c.user1_id = $1 THEN u2.display_name ELSE u1.display_name END AS other_display_name,
			CASE WHEN c.user1_id = $1 THEN u2.status ELSE u1.status END AS other_status
		FROM conversations c
		JOIN users u1 ON c.user1_id = u1.id
		JOIN users u2 ON c.user2_id = u2.id
		WHERE c.user1_id = $1 OR c.user2_id = $1
		ORDER BY c.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		var conv domain.Conversation
		if err := rows.Scan(
			&conv.ID, &conv.User1ID, &conv.User2ID, &conv.CreatedAt,
			&conv.OtherUserID, &conv.OtherUserUsername, &conv.OtherUserDisplayName, &conv.OtherUserStatus,
		); err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}

// AppendMessage is a single INSERT; the bigserial seq column orders
// messages without any read-modify-write, so concurrent senders cannot
// lose each other's appends.
func (r *ConversationRepo) AppendMessage(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, from_id, to_id, type, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq`
	err := r.pool.QueryRow(ctx, query,
		msg.ID, msg.ConversationID, msg.From, msg.To, msg.Type, msg.Text, msg.CreatedAt,
	).Scan(&msg.Seq)
	if isPgError(err, pgForeignKeyViolation) {
		return repository.ErrConversationMissing
	}
	return err
}

func (r *ConversationRepo) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT id, conversation_id, from_id, to_id, type, text, seq, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY seq ASC`

	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.From, &msg.To,
			&msg.Type, &msg.Text, &msg.Seq, &msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
