package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/match-hub/match-hub/internal/domain/notification"
)

const notificationColumns = `id, notification_id, recipient_id, type, title, content, link, is_read, created_at, read_at`

// NotificationRepository implements notification.Repository.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// CreateBatch inserts all notifications in one round trip.
func (r *NotificationRepository) CreateBatch(ctx context.Context, items []*notification.Notification) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, n := range items {
		batch.Queue(`
			INSERT INTO notifications
			(notification_id, recipient_id, type, title, content, link, is_read, created_at, read_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			RETURNING id
		`, n.NotificationID, n.RecipientID, n.Type, n.Title, n.Content, n.Link, n.IsRead, n.CreatedAt, n.ReadAt).QueryRow(func(row pgx.Row) error {
			return row.Scan(&n.ID)
		})
	}

	return r.pool.SendBatch(ctx, batch).Close()
}

func (r *NotificationRepository) GetByID(ctx context.Context, notificationID uuid.UUID) (*notification.Notification, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+notificationColumns+` FROM notifications WHERE notification_id=$1
	`, notificationID)
	return scanNotification(row)
}

func (r *NotificationRepository) List(ctx context.Context, filter notification.Filter, limit, offset int) ([]*notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id=$1`
	args := []interface{}{filter.RecipientID}
	idx := 2
	if filter.Type != nil {
		query += addWhere(query) + " type=$" + itoa(idx)
		args = append(args, *filter.Type)
		idx++
	}
	if filter.UnreadOnly {
		query += addWhere(query) + " is_read = FALSE"
	}
	if filter.Since != nil {
		query += addWhere(query) + " created_at >= $" + itoa(idx)
		args = append(args, *filter.Since)
		idx++
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT $" + itoa(idx) + " OFFSET $" + itoa(idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*notification.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE recipient_id=$1 AND is_read = FALSE
	`, recipientID).Scan(&count)
	return count, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at=$1
		WHERE notification_id=$2 AND is_read = FALSE
	`, at, notificationID)
	return err
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID, at time.Time) (int64, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at=$1
		WHERE recipient_id=$2 AND is_read = FALSE
	`, at, recipientID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var n notification.Notification
	if err := row.Scan(&n.ID, &n.NotificationID, &n.RecipientID, &n.Type, &n.Title, &n.Content, &n.Link, &n.IsRead, &n.CreatedAt, &n.ReadAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}
