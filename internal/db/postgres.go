package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// unique_violation
const pqUniqueViolation = "23505"

type Postgres struct {
	db *sql.DB
}

var _ Store = (*Postgres)(nil)

// OpenPostgres connects, pings and migrates.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := Migrate(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Postgres{db: sqlDB}, nil
}

func (p *Postgres) UserByEmail(ctx context.Context, email string) (User, error) {
	return p.scanUser(p.db.QueryRowContext(ctx, `
		SELECT id, email, name, email_verified, created_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email))
}

func (p *Postgres) UserByID(ctx context.Context, id string) (User, error) {
	return p.scanUser(p.db.QueryRowContext(ctx, `
		SELECT id, email, name, email_verified, created_at
		FROM users
		WHERE id = $1
	`, id))
}

func (p *Postgres) CreateUser(ctx context.Context, email, name string, verified bool) (User, error) {
	u, err := p.scanUser(p.db.QueryRowContext(ctx, `
		INSERT INTO users (email, name, email_verified)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, email_verified, created_at
	`, email, name, verified))
	return u, mapErr(err)
}

func (p *Postgres) CredentialFor(ctx context.Context, userID string) (Credential, error) {
	var c Credential
	err := p.db.QueryRowContext(ctx, `
		SELECT user_id, password_hash, hash_version, created_at
		FROM credentials
		WHERE user_id = $1
	`, userID).Scan(&c.UserID, &c.PasswordHash, &c.HashVersion, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Credential{}, ErrNotFound
	}
	return c, err
}

func (p *Postgres) CreateCredential(ctx context.Context, c Credential) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, password_hash, hash_version)
		VALUES ($1, $2, $3)
	`, c.UserID, c.PasswordHash, c.HashVersion)
	return mapErr(err)
}

func (p *Postgres) UserIDByIdentity(ctx context.Context, provider, providerUserID string) (string, error) {
	var userID string
	err := p.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM identities
		WHERE provider = $1
		  AND provider_user_id = $2
	`, provider, providerUserID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return userID, err
}

func (p *Postgres) LinkIdentity(ctx context.Context, userID, provider, providerUserID string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO identities (user_id, provider, provider_user_id)
		VALUES ($1, $2, $3)
	`, userID, provider, providerUserID)
	return mapErr(err)
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.EmailVerified, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func mapErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pqErr.Constraint)
	}
	return err
}
