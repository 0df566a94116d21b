package repository

import (
	"context"

	"github.com/civicgrid/be-civic-works/internal/apperr"
	"github.com/civicgrid/be-civic-works/internal/database"
)

// NotificationRepository stores in-app notification rows. Delivery transport
// is downstream; rows are written by services alongside JetStream publishes.
type NotificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Append inserts one notification row.
func (r *NotificationRepository) Append(ctx context.Context, n *Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, event_type, resource_type, resource_id, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		n.RecipientID,
		n.EventType,
		n.ResourceType,
		n.ResourceID,
		n.Message,
	).Scan(&n.ID, &n.CreatedAt)

	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to append notification")
	}
	return nil
}

// ListForRecipient returns a recipient's notifications newest-first.
func (r *NotificationRepository) ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]*Notification, error) {
	query := `
		SELECT id, recipient_id, event_type, resource_type, resource_id, message, is_read, created_at
		FROM notifications
		WHERE recipient_id = $1
		  AND ($2 = FALSE OR is_read = FALSE)
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, recipientID, unreadOnly, limit)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to list notifications")
	}
	defer rows.Close()

	notifications := make([]*Notification, 0)
	for rows.Next() {
		n := &Notification{}
		err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.EventType,
			&n.ResourceType,
			&n.ResourceID,
			&n.Message,
			&n.IsRead,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to scan notification")
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// MarkRead flags a notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`,
		id, recipientID)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeInternal, "failed to mark notification read")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("notification", id)
	}
	return nil
}
