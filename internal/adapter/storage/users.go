package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/excelkipini/zolltaxforex-sub003/internal/core/domain"
	"github.com/excelkipini/zolltaxforex-sub003/internal/core/security"
)

// UserRepository is the adapter over the identity/role collaborator: it
// resolves who is calling, with which role, from which agency.
type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create provisions a user and issues their API key. Returns the real key,
// which is never stored and never shown again.
func (r *UserRepository) Create(ctx context.Context, name string, role domain.Role, agency string) (*domain.User, string, error) {
	realKey, keyHash, err := security.GenerateAPIKey()
	if err != nil {
		return nil, "", err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, "", err
	}
	defer tx.Rollback(ctx)

	var u domain.User
	err = tx.QueryRow(ctx, `
		INSERT INTO users (name, role, agency)
		VALUES ($1, $2, $3)
		RETURNING id, name, role, agency, active, last_assigned_at`,
		name, role, agency).Scan(&u.ID, &u.Name, &u.Role, &u.Agency, &u.Active, &u.LastAssignedAt)
	if err != nil {
		return nil, "", err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO api_keys (key_hash, user_id, key_prefix)
		VALUES ($1, $2, $3)`, keyHash, u.ID, security.KeyPrefix)
	if err != nil {
		return nil, "", err
	}

	return &u, realKey, tx.Commit(ctx)
}

// ByKeyHash resolves the caller behind a hashed API key.
func (r *UserRepository) ByKeyHash(ctx context.Context, keyHash string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, `
		SELECT u.id, u.name, u.role, u.agency, u.active, u.last_assigned_at
		FROM api_keys k
		JOIN users u ON u.id = k.user_id
		WHERE k.key_hash = $1 AND u.active`, keyHash).Scan(
		&u.ID, &u.Name, &u.Role, &u.Agency, &u.Active, &u.LastAssignedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Errorf(domain.ErrUnauthorized, "unknown API key")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Count reports how many users exist. The bootstrap route is only open while
// this is zero.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
