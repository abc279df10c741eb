package repository

import (
	"context"

	"github.com/careacademy/academy-backend/internal/datatable"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileListSpec describes the admin user list.
var ProfileListSpec = datatable.Spec{
	Sortable: map[string]string{
		"created_at": "created_at",
		"email":      "email",
		"full_name":  "full_name",
	},
	DefaultSort: "created_at.desc",
	Filters: map[string]datatable.Filter{
		"q":    {Kind: datatable.Search, Columns: []string{"email", "full_name"}},
		"role": {Kind: datatable.Equals, Columns: []string{"role"}},
	},
}

type ProfileRepository interface {
	Create(ctx context.Context, p *model.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	List(ctx context.Context, params datatable.Params) ([]model.Profile, int, error)
	Update(ctx context.Context, p *model.Profile) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type profileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileColumns = `id, email, full_name, phone, role, password_hash, created_at, updated_at`

func scanProfile(row pgx.Row, p *model.Profile) error {
	return row.Scan(&p.ID, &p.Email, &p.FullName, &p.Phone, &p.Role, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
}

func (r *profileRepository) Create(ctx context.Context, p *model.Profile) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO profiles (email, full_name, phone, role, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		p.Email, p.FullName, p.Phone, p.Role, p.PasswordHash,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapError(err)
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	p := &model.Profile{}
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	if err := scanProfile(row, p); err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	p := &model.Profile{}
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email)
	if err := scanProfile(row, p); err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *profileRepository) List(ctx context.Context, params datatable.Params) ([]model.Profile, int, error) {
	where, args := params.Where(1)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, limitArgs := params.LimitOffset(len(args) + 1)
	rows, err := r.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles`+where+params.OrderBy()+limit,
		append(args, limitArgs...)...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	profiles := []model.Profile{}
	for rows.Next() {
		var p model.Profile
		if err := scanProfile(rows, &p); err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, p)
	}
	return profiles, total, rows.Err()
}

func (r *profileRepository) Update(ctx context.Context, p *model.Profile) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE profiles SET full_name = $1, phone = $2, role = $3, updated_at = NOW()
		 WHERE id = $4
		 RETURNING email, created_at, updated_at`,
		p.FullName, p.Phone, p.Role, p.ID,
	).Scan(&p.Email, &p.CreatedAt, &p.UpdatedAt)
	return mapError(err)
}

func (r *profileRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *profileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
