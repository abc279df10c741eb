package repository

import (
	"context"

	"github.com/careacademy/academy-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingRepository handles the app_settings key/value store.
type SettingRepository struct {
	pool *pgxpool.Pool
}

func NewSettingRepository(pool *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{pool: pool}
}

func collectSettings(rows pgx.Rows) ([]model.AppSetting, error) {
	defer rows.Close()
	settings := []model.AppSetting{}
	for rows.Next() {
		var s model.AppSetting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (r *SettingRepository) GetAll(ctx context.Context) ([]model.AppSetting, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value, updated_at FROM app_settings ORDER BY key ASC`)
	if err != nil {
		return nil, err
	}
	return collectSettings(rows)
}

// GetByKeys returns the settings among keys that exist.
func (r *SettingRepository) GetByKeys(ctx context.Context, keys []string) ([]model.AppSetting, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT key, value, updated_at FROM app_settings WHERE key = ANY($1) ORDER BY key ASC`, keys)
	if err != nil {
		return nil, err
	}
	return collectSettings(rows)
}

// UpsertMany writes every pair in one transaction.
func (r *SettingRepository) UpsertMany(ctx context.Context, settings map[string]string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for key, value := range settings {
			batch.Queue(
				`INSERT INTO app_settings (key, value, updated_at) VALUES ($1, $2, NOW())
				 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
				key, value)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}
