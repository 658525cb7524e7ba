package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
)

// SettingRepository stores key/value configuration.
type SettingRepository interface {
	Get(ctx context.Context, key domain.SettingKey) (string, error)
	Upsert(ctx context.Context, key domain.SettingKey, value string) error
	List(ctx context.Context) ([]domain.Setting, error)
}

type settingRepository struct {
	db Database
}

// NewSettingRepository builds the repository.
func NewSettingRepository(db Database) SettingRepository {
	return &settingRepository{db: db}
}

// GetSettingSQL is exported for test expectations.
const GetSettingSQL = `SELECT value FROM settings WHERE key=$1`

func (r *settingRepository) Get(ctx context.Context, key domain.SettingKey) (string, error) {
	var value string
	if err := querierFor(ctx, r.db).QueryRow(ctx, GetSettingSQL, string(key)).Scan(&value); err != nil {
		return "", err
	}
	return value, nil
}

// UpsertSettingSQL is exported for test expectations.
const UpsertSettingSQL = `
        INSERT INTO settings (key, value) VALUES ($1,$2)
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`

func (r *settingRepository) Upsert(ctx context.Context, key domain.SettingKey, value string) error {
	_, err := querierFor(ctx, r.db).Exec(ctx, UpsertSettingSQL, string(key), value)
	return err
}

func (r *settingRepository) List(ctx context.Context) ([]domain.Setting, error) {
	rows, err := querierFor(ctx, r.db).Query(ctx, `SELECT key, value FROM settings ORDER BY key ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Setting
	for rows.Next() {
		var setting domain.Setting
		if err := rows.Scan(&setting.Key, &setting.Value); err != nil {
			return nil, err
		}
		result = append(result, setting)
	}
	return result, rows.Err()
}

// ErrSettingNotFound aliases the pgx sentinel for callers that treat missing
// keys as fallback-to-default.
var ErrSettingNotFound = pgx.ErrNoRows
