package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pawangupta079/skill-hire/internal/apperr"
	"github.com/pawangupta079/skill-hire/pkg/model"
)

const messageColumns = `message_id, room_id, participants, sender_id, sender_name, message, message_type,
	attachments, read_by, is_edited, edited_at, is_deleted, deleted_at, reply_to, metadata, created_at, updated_at`

// readByUser matches a read_by array holding a marker for the given user.
const readByUser = `read_by @> jsonb_build_array(jsonb_build_object('user_id', %s::text))`

func scanMessage(row pgx.Row) (*model.ChatMessage, error) {
	var m model.ChatMessage
	err := row.Scan(
		&m.MessageID, &m.RoomID, &m.Participants, &m.SenderID, &m.SenderName, &m.Message, &m.MessageType,
		&m.Attachments, &m.ReadBy, &m.IsEdited, &m.EditedAt, &m.IsDeleted, &m.DeletedAt, &m.ReplyTo,
		&m.Metadata, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) InsertMessage(ctx context.Context, m *model.ChatMessage) error {
	if !m.IsReadBy(m.SenderID) {
		m.ReadBy = append(m.ReadBy, model.ReadMarker{UserID: m.SenderID, ReadAt: m.CreatedAt})
	}
	const q = `
INSERT INTO chat_messages (message_id, room_id, participants, sender_id, sender_name, message, message_type,
	attachments, read_by, reply_to, metadata, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`
	_, err := r.db.Exec(ctx, q,
		m.MessageID, m.RoomID, m.Participants, m.SenderID, m.SenderName, m.Message, m.MessageType,
		orEmpty(m.Attachments), m.ReadBy, m.ReplyTo, m.Metadata, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *Repository) GetMessage(ctx context.Context, id string) (*model.ChatMessage, error) {
	q := `SELECT ` + messageColumns + ` FROM chat_messages WHERE message_id = $1`
	m, err := scanMessage(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return nil, notFound(err, "message", "scan message")
	}
	return m, nil
}

func (r *Repository) ListRoomMessages(ctx context.Context, roomID string, offset, limit int) ([]model.ChatMessage, error) {
	q := `SELECT ` + messageColumns + ` FROM chat_messages
WHERE room_id = $1 AND NOT is_deleted
ORDER BY created_at DESC, seq DESC LIMIT $2 OFFSET $3`
	lim, off := pageArgs(limit, offset)
	rows, err := r.db.Query(ctx, q, roomID, lim, off)
	if err != nil {
		return nil, fmt.Errorf("query room messages: %w", err)
	}
	defer rows.Close()

	out := []model.ChatMessage{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// AddReadMarker appends the marker only when absent. Concurrent callers are
// serialized by the row lock and the WHERE clause is rechecked.
func (r *Repository) AddReadMarker(ctx context.Context, messageID, userID string, at time.Time) error {
	q := `UPDATE chat_messages
SET read_by = read_by || jsonb_build_array(jsonb_build_object('user_id', $2::text, 'read_at', $3::timestamptz))
WHERE message_id = $1 AND NOT ` + fmt.Sprintf(readByUser, "$2")
	tag, err := r.db.Exec(ctx, q, messageID, userID, at)
	if err != nil {
		return fmt.Errorf("add read marker: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM chat_messages WHERE message_id = $1)`, messageID).Scan(&exists); err != nil {
		return fmt.Errorf("check message exists: %w", err)
	}
	if !exists {
		return apperr.NotFound("message")
	}
	return nil
}

func (r *Repository) EditMessage(ctx context.Context, id, body string, at time.Time) (*model.ChatMessage, error) {
	q := `UPDATE chat_messages SET message = $2, is_edited = TRUE, edited_at = $3, updated_at = $3
WHERE message_id = $1 RETURNING ` + messageColumns
	m, err := scanMessage(r.db.QueryRow(ctx, q, id, body, at))
	if err != nil {
		return nil, notFound(err, "message", "edit message")
	}
	return m, nil
}

func (r *Repository) SoftDeleteMessage(ctx context.Context, id, placeholder string, at time.Time) (*model.ChatMessage, error) {
	q := `UPDATE chat_messages
SET message = $2, is_deleted = TRUE, deleted_at = COALESCE(deleted_at, $3), updated_at = $3
WHERE message_id = $1 RETURNING ` + messageColumns
	m, err := scanMessage(r.db.QueryRow(ctx, q, id, placeholder, at))
	if err != nil {
		return nil, notFound(err, "message", "delete message")
	}
	return m, nil
}

func (r *Repository) CountUnread(ctx context.Context, userID, roomID string) (int, error) {
	q := `SELECT COUNT(1) FROM chat_messages
WHERE $1 = ANY(participants) AND NOT is_deleted AND ($2 = '' OR room_id = $2) AND NOT ` + fmt.Sprintf(readByUser, "$1")
	var n int
	if err := r.db.QueryRow(ctx, q, userID, roomID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

func (r *Repository) ListRooms(ctx context.Context, userID string) ([]model.RoomSummary, error) {
	q := `
WITH mine AS (
	SELECT room_id, participants, message, created_at, seq, NOT ` + fmt.Sprintf(readByUser, "$1") + ` AS unread
	FROM chat_messages
	WHERE $1 = ANY(participants) AND NOT is_deleted
), latest AS (
	SELECT DISTINCT ON (room_id) room_id, participants, message, created_at
	FROM mine
	ORDER BY room_id, created_at DESC, seq DESC
)
SELECT l.room_id, l.participants, l.message, l.created_at,
	(SELECT COUNT(1) FROM mine m WHERE m.room_id = l.room_id AND m.unread)
FROM latest l
ORDER BY l.created_at DESC`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	out := []model.RoomSummary{}
	for rows.Next() {
		var s model.RoomSummary
		if err := rows.Scan(&s.RoomID, &s.Participants, &s.LastMessage, &s.LastMessageTime, &s.UnreadCount); err != nil {
			return nil, fmt.Errorf("scan room row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
