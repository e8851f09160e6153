package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sudooom.devconnect/internal/model"
)

var ErrEventNotFound = errors.New("event not found")

// EventRepository 活动数据访问
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository 创建活动仓库
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create 创建活动
func (r *EventRepository) Create(ctx context.Context, ev *model.Event) error {
	query := `
		INSERT INTO events (id, title, description, type, start_at, duration, location,
		                    virtual_link, is_virtual, max_attendees, registration_deadline,
		                    organizer_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		ev.ID,
		ev.Title,
		ev.Description,
		ev.Type,
		ev.StartAt,
		ev.Duration,
		ev.Location,
		ev.VirtualLink,
		ev.IsVirtual,
		ev.MaxAttendees,
		ev.RegistrationDeadline,
		ev.OrganizerID,
		ev.Status,
	).Scan(&ev.CreatedAt, &ev.UpdatedAt)
}

// GetByID 获取活动，附带报名人数和请求者的报名状态
func (r *EventRepository) GetByID(ctx context.Context, id, viewerID int64) (*model.Event, error) {
	query := `
		SELECT e.id, e.title, e.description, e.type, e.start_at, e.duration, e.location,
		       e.virtual_link, e.is_virtual, e.max_attendees, e.registration_deadline,
		       e.organizer_id, e.status, e.created_at, e.updated_at,
		       (SELECT COUNT(*) FROM event_registrations er
		        WHERE er.event_id = e.id AND er.status = 'registered') AS attendees_count,
		       EXISTS(SELECT 1 FROM event_registrations er
		              WHERE er.event_id = e.id AND er.user_id = $2 AND er.status = 'registered') AS is_registered
		FROM events e WHERE e.id = $1
	`
	ev := &model.Event{}
	err := r.db.QueryRow(ctx, query, id, viewerID).Scan(
		&ev.ID, &ev.Title, &ev.Description, &ev.Type, &ev.StartAt, &ev.Duration, &ev.Location,
		&ev.VirtualLink, &ev.IsVirtual, &ev.MaxAttendees, &ev.RegistrationDeadline,
		&ev.OrganizerID, &ev.Status, &ev.CreatedAt, &ev.UpdatedAt,
		&ev.AttendeesCount, &ev.IsRegistered,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return ev, nil
}

// ListPublished 获取已发布的活动，按开始时间升序
func (r *EventRepository) ListPublished(ctx context.Context, viewerID int64) ([]model.Event, error) {
	query := `
		SELECT e.id, e.title, e.description, e.type, e.start_at, e.duration, e.location,
		       e.virtual_link, e.is_virtual, e.max_attendees, e.registration_deadline,
		       e.organizer_id, e.status, e.created_at, e.updated_at,
		       (SELECT COUNT(*) FROM event_registrations er
		        WHERE er.event_id = e.id AND er.status = 'registered') AS attendees_count,
		       EXISTS(SELECT 1 FROM event_registrations er
		              WHERE er.event_id = e.id AND er.user_id = $1 AND er.status = 'registered') AS is_registered
		FROM events e
		WHERE e.status = 'published'
		ORDER BY e.start_at ASC
	`
	rows, err := r.db.Query(ctx, query, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]model.Event, 0)
	for rows.Next() {
		var ev model.Event
		if err := rows.Scan(
			&ev.ID, &ev.Title, &ev.Description, &ev.Type, &ev.StartAt, &ev.Duration, &ev.Location,
			&ev.VirtualLink, &ev.IsVirtual, &ev.MaxAttendees, &ev.RegistrationDeadline,
			&ev.OrganizerID, &ev.Status, &ev.CreatedAt, &ev.UpdatedAt,
			&ev.AttendeesCount, &ev.IsRegistered,
		); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Register 报名活动，幂等
func (r *EventRepository) Register(ctx context.Context, eventID, userID int64) error {
	query := `
		INSERT INTO event_registrations (event_id, user_id, status)
		VALUES ($1, $2, 'registered')
		ON CONFLICT (event_id, user_id) DO UPDATE SET status = 'registered'
	`
	_, err := r.db.Exec(ctx, query, eventID, userID)
	return err
}

// Unregister 取消报名
func (r *EventRepository) Unregister(ctx context.Context, eventID, userID int64) error {
	query := `
		UPDATE event_registrations SET status = 'cancelled'
		WHERE event_id = $1 AND user_id = $2
	`
	_, err := r.db.Exec(ctx, query, eventID, userID)
	return err
}

// CountRegistered 统计有效报名数
func (r *EventRepository) CountRegistered(ctx context.Context, eventID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM event_registrations
		WHERE event_id = $1 AND status = 'registered'
	`, eventID).Scan(&count)
	return count, err
}
