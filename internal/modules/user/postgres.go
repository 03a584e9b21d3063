package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/samber/oops"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL user repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, password_hash, display_name, phone_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.DisplayName, user.PhoneNumber,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return oops.In("user").
				Code(CodeEmailTaken).
				With("email", user.Email).
				Errorf("an account with this email already exists")
		}
		return oops.In("user").Code("USER_CREATE_FAILED").Wrap(err)
	}
	return nil
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, password_hash, display_name, phone_number, created_at, updated_at
		FROM users
		WHERE lower(email) = $1
	`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, strings.ToLower(email)).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound("email", email)
	}
	if err != nil {
		return nil, oops.In("user").Code("USER_QUERY_FAILED").Wrap(err)
	}
	return user, nil
}

func (r *postgresRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, email, password_hash, display_name, phone_number, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, errNotFound("id", id)
	}

	user, err := scanUser(r.db.QueryRowContext(ctx, query, parsedID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound("id", id)
	}
	if err != nil {
		return nil, oops.In("user").Code("USER_QUERY_FAILED").Wrap(err)
	}
	return user, nil
}

func scanUser(scan func(...any) error) (*User, error) {
	user := &User{}
	err := scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.PhoneNumber,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
