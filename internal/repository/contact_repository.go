package repository

import (
	"context"
	"time"

	"github.com/careacademy/academy-backend/internal/datatable"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContactListSpec describes the admin contact message list.
var ContactListSpec = datatable.Spec{
	Sortable: map[string]string{
		"created_at": "created_at",
		"status":     "status",
		"email":      "email",
	},
	DefaultSort: "created_at.desc",
	Filters: map[string]datatable.Filter{
		"status":       {Kind: datatable.In, Columns: []string{"status"}},
		"q":            {Kind: datatable.Search, Columns: []string{"name", "email", "subject", "message"}},
		"created_from": {Kind: datatable.DateFrom, Columns: []string{"created_at"}},
		"created_to":   {Kind: datatable.DateTo, Columns: []string{"created_at"}},
	},
}

type ContactRepository interface {
	Create(ctx context.Context, m *model.ContactMessage) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ContactMessage, error)
	List(ctx context.Context, params datatable.Params) ([]model.ContactMessage, int, error)
	SaveReply(ctx context.Context, id uuid.UUID, body string, by uuid.UUID, at time.Time) (*model.ContactMessage, error)
	SetStatus(ctx context.Context, id uuid.UUID, status model.ContactStatus) (*model.ContactMessage, error)
}

type contactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

const contactColumns = `id, name, email, phone, subject, message, status, reply, replied_at, replied_by, created_at, updated_at`

func scanContact(row pgx.Row, m *model.ContactMessage) error {
	return row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message, &m.Status,
		&m.Reply, &m.RepliedAt, &m.RepliedBy, &m.CreatedAt, &m.UpdatedAt)
}

func (r *contactRepository) Create(ctx context.Context, m *model.ContactMessage) error {
	return scanContact(r.pool.QueryRow(ctx,
		`INSERT INTO contact_messages (name, email, phone, subject, message, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+contactColumns,
		m.Name, m.Email, m.Phone, m.Subject, m.Message, model.ContactNew), m)
}

func (r *contactRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ContactMessage, error) {
	m := &model.ContactMessage{}
	if err := scanContact(r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contact_messages WHERE id = $1`, id), m); err != nil {
		return nil, mapError(err)
	}
	return m, nil
}

func (r *contactRepository) List(ctx context.Context, params datatable.Params) ([]model.ContactMessage, int, error) {
	where, args := params.Where(1)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, limitArgs := params.LimitOffset(len(args) + 1)
	rows, err := r.pool.Query(ctx,
		`SELECT `+contactColumns+` FROM contact_messages`+where+params.OrderBy()+limit,
		append(args, limitArgs...)...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := []model.ContactMessage{}
	for rows.Next() {
		var m model.ContactMessage
		if err := scanContact(rows, &m); err != nil {
			return nil, 0, err
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

func (r *contactRepository) SaveReply(ctx context.Context, id uuid.UUID, body string, by uuid.UUID, at time.Time) (*model.ContactMessage, error) {
	m := &model.ContactMessage{}
	err := scanContact(r.pool.QueryRow(ctx,
		`UPDATE contact_messages
		 SET reply = $2, replied_at = $3, replied_by = $4, status = $5, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+contactColumns,
		id, body, at, by, model.ContactReplied), m)
	if err != nil {
		return nil, mapError(err)
	}
	return m, nil
}

func (r *contactRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.ContactStatus) (*model.ContactMessage, error) {
	m := &model.ContactMessage{}
	err := scanContact(r.pool.QueryRow(ctx,
		`UPDATE contact_messages SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING `+contactColumns,
		id, status), m)
	if err != nil {
		return nil, mapError(err)
	}
	return m, nil
}
