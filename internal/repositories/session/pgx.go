package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/fb-post-manager/internal/domain"
	"github.com/orgball2608/fb-post-manager/internal/repositories"
	"github.com/orgball2608/fb-post-manager/pkg/logger"
)

type PgxRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPgxRepository(pool *pgxpool.Pool, logger logger.Logger) *PgxRepository {
	return &PgxRepository{
		pool:   pool,
		logger: logger.WithComponent("SessionRepo"),
	}
}

var _ Repository = (*PgxRepository)(nil)

var sessionColumns = []string{
	"id", "user_access_token", "accounts", "page_id", "page_name", "page_access_token", "created_at", "expires_at",
}

func (r *PgxRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	query, args, err := repositories.SqBuilder.
		Select(sessionColumns...).
		From("sessions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	var (
		s        domain.Session
		accounts []byte
	)
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&s.ID,
		&s.UserAccessToken,
		&accounts,
		&s.PageID,
		&s.PageName,
		&s.PageAccessToken,
		&s.CreatedAt,
		&s.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if len(accounts) > 0 {
		if err := json.Unmarshal(accounts, &s.Accounts); err != nil {
			return nil, fmt.Errorf("failed to decode session accounts: %w", err)
		}
	}
	return &s, nil
}

func (r *PgxRepository) Save(ctx context.Context, s *domain.Session) error {
	accounts, err := json.Marshal(s.Accounts)
	if err != nil {
		return fmt.Errorf("failed to encode session accounts: %w", err)
	}

	query, args, err := repositories.SqBuilder.
		Insert("sessions").
		Columns(sessionColumns...).
		Values(s.ID, s.UserAccessToken, accounts, s.PageID, s.PageName, s.PageAccessToken, s.CreatedAt, s.ExpiresAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			user_access_token = EXCLUDED.user_access_token,
			accounts = EXCLUDED.accounts,
			page_id = EXCLUDED.page_id,
			page_name = EXCLUDED.page_name,
			page_access_token = EXCLUDED.page_access_token,
			expires_at = EXCLUDED.expires_at`).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *PgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := repositories.SqBuilder.
		Delete("sessions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *PgxRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := repositories.SqBuilder.
		Delete("sessions").
		Where(sq.Lt{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected(), nil
}
