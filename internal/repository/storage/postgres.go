package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres stores values in the client_storage table.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `
SELECT value
FROM client_storage
WHERE namespace = $1 AND key = $2
`
	ns, k := splitKey(key)
	var value []byte
	if err := r.pool.QueryRow(ctx, q, ns, k).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Warn("storage get failed", zap.String("namespace", ns), zap.String("key", k), zap.Error(err))
		return nil, err
	}
	return value, nil
}

func (r *postgresRepo) Set(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO client_storage (namespace, key, value, updated_at)
VALUES ($1, $2, $3::jsonb, now())
ON CONFLICT (namespace, key) DO UPDATE SET
    value = EXCLUDED.value,
    updated_at = EXCLUDED.updated_at
`
	ns, k := splitKey(key)
	if _, err := r.pool.Exec(ctx, q, ns, k, string(value)); err != nil {
		r.logger.Warn("storage set failed", zap.String("namespace", ns), zap.String("key", k), zap.Error(err))
		return err
	}
	return nil
}

func (r *postgresRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
