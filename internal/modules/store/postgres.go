package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgemunganga/pulse-backend/internal/modules/access"
	"github.com/lib/pq"
	"github.com/samber/oops"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint violation.
const uniqueViolation = "23505"

const storeColumns = `id,name,about,address_line1,city_and_state,pin_code,
	owner_id,owner_name,owner_email,owner_phone,admins,managers,shared_with,created_at,updated_at`

// ---- Store ----

type storePostgres struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL store repository.
func NewPostgresRepository(db *sql.DB) Repository { return &storePostgres{db: db} }

func (r *storePostgres) CreateStore(ctx context.Context, s *Store) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stores (`+storeColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		s.ID, s.Name, s.About, s.Address.AddressLine1, s.Address.CityAndState, s.Address.PinCode,
		s.OwnerID, s.Owner.Name, s.Owner.Email, s.Owner.PhoneNumber,
		pq.Array(s.Admins), pq.Array(s.Managers), pq.Array(s.SharedWith),
		s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return oops.In("store").Code("STORE_CREATE_FAILED").With("store_id", s.ID).Wrap(err)
	}
	return nil
}

func scanStore(scan func(...any) error) (*Store, error) {
	s := &Store{}
	err := scan(&s.ID, &s.Name, &s.About,
		&s.Address.AddressLine1, &s.Address.CityAndState, &s.Address.PinCode,
		&s.OwnerID, &s.Owner.Name, &s.Owner.Email, &s.Owner.PhoneNumber,
		pq.Array(&s.Admins), pq.Array(&s.Managers), pq.Array(&s.SharedWith),
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Owner.ID = s.OwnerID
	s.Admins = nonNil(s.Admins)
	s.Managers = nonNil(s.Managers)
	s.SharedWith = nonNil(s.SharedWith)
	return s, nil
}

func (r *storePostgres) GetStoreByID(ctx context.Context, id string) (*Store, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+storeColumns+` FROM stores WHERE id=$1`, id)
	s, err := scanStore(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errStoreNotFound(id)
	}
	if err != nil {
		return nil, oops.In("store").Code("STORE_QUERY_FAILED").With("store_id", id).Wrap(err)
	}
	return s, nil
}

func (r *storePostgres) ListStoresSharedWith(ctx context.Context, memberID string) ([]*Store, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+storeColumns+` FROM stores
		WHERE $1 = ANY(shared_with)
		ORDER BY created_at DESC`, memberID)
	if err != nil {
		return nil, oops.In("store").Code("STORE_QUERY_FAILED").With("member_id", memberID).Wrap(err)
	}
	defer rows.Close()

	stores := []*Store{}
	for rows.Next() {
		s, err := scanStore(rows.Scan)
		if err != nil {
			return nil, oops.In("store").Code("STORE_QUERY_FAILED").Wrap(err)
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.In("store").Code("STORE_QUERY_FAILED").Wrap(err)
	}
	return stores, nil
}

func (r *storePostgres) UpdateStore(ctx context.Context, s *Store) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE stores
		SET name=$1, about=$2, address_line1=$3, city_and_state=$4, pin_code=$5, updated_at=$6
		WHERE id=$7`,
		s.Name, s.About, s.Address.AddressLine1, s.Address.CityAndState, s.Address.PinCode,
		s.UpdatedAt, s.ID)
	if err != nil {
		return oops.In("store").Code("STORE_UPDATE_FAILED").With("store_id", s.ID).Wrap(err)
	}
	return requireRow(res, errStoreNotFound(s.ID))
}

func (r *storePostgres) DeleteStore(ctx context.Context, id string) error {
	// store_team rows go with the store through ON DELETE CASCADE.
	res, err := r.db.ExecContext(ctx, `DELETE FROM stores WHERE id=$1`, id)
	if err != nil {
		return oops.In("store").Code("STORE_DELETE_FAILED").With("store_id", id).Wrap(err)
	}
	return requireRow(res, errStoreNotFound(id))
}

// ---- Team ----

type teamPostgres struct{ db *sql.DB }

// NewTeamPostgresRepository creates a new PostgreSQL team repository.
func NewTeamPostgresRepository(db *sql.DB) TeamRepository { return &teamPostgres{db: db} }

func (r *teamPostgres) ListMembers(ctx context.Context, storeID string) ([]*TeamMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT member_id,name,email,phone_number,joined_at
		FROM store_team WHERE store_id=$1 ORDER BY name ASC`, storeID)
	if err != nil {
		return nil, oops.In("store").Code("TEAM_QUERY_FAILED").With("store_id", storeID).Wrap(err)
	}
	defer rows.Close()

	team := []*TeamMember{}
	for rows.Next() {
		m := &TeamMember{}
		var joined sql.NullTime
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.PhoneNumber, &joined); err != nil {
			return nil, oops.In("store").Code("TEAM_QUERY_FAILED").Wrap(err)
		}
		if joined.Valid {
			t := joined.Time
			m.JoinedAt = &t
		}
		team = append(team, m)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.In("store").Code("TEAM_QUERY_FAILED").Wrap(err)
	}
	return team, nil
}

// AddMember inserts the team record and appends the member to the role list
// and SharedWith in the same transaction. The list updates run in SQL against
// the locked row, so overlapping team writes on one store never drop an entry.
func (r *teamPostgres) AddMember(ctx context.Context, storeID string, m *TeamMember, role access.Role) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return oops.In("store").Code("TEAM_UPDATE_FAILED").Wrap(err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO store_team (store_id,member_id,name,email,phone_number,joined_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		storeID, m.ID, m.Name, m.Email, m.PhoneNumber, m.JoinedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return oops.In("store").
				Code(CodeMemberExists).
				With("store_id", storeID).
				With("member_id", m.ID).
				Errorf("this user already exists in your store")
		}
		return oops.In("store").Code("TEAM_UPDATE_FAILED").With("store_id", storeID).Wrap(err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE stores SET
			admins = CASE WHEN $2 AND NOT ($1 = ANY(admins))
				THEN array_append(admins, $1::text) ELSE admins END,
			managers = CASE WHEN NOT $2 AND NOT ($1 = ANY(managers))
				THEN array_append(managers, $1::text) ELSE managers END,
			shared_with = CASE WHEN NOT ($1 = ANY(shared_with))
				THEN array_append(shared_with, $1::text) ELSE shared_with END,
			updated_at = $3
		WHERE id = $4`,
		m.ID, role == access.RoleAdmin, time.Now().UTC(), storeID)
	if err != nil {
		return oops.In("store").Code("TEAM_UPDATE_FAILED").With("store_id", storeID).Wrap(err)
	}
	if err := requireRow(res, errStoreNotFound(storeID)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return oops.In("store").Code("TEAM_UPDATE_FAILED").Wrap(err)
	}
	return nil
}

// RemoveMember deletes the team record and strips the member from every
// membership list in one transaction.
func (r *teamPostgres) RemoveMember(ctx context.Context, storeID, memberID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return oops.In("store").Code("TEAM_UPDATE_FAILED").Wrap(err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM store_team WHERE store_id=$1 AND member_id=$2`, storeID, memberID)
	if err != nil {
		return oops.In("store").Code("TEAM_UPDATE_FAILED").With("store_id", storeID).Wrap(err)
	}
	notFound := oops.In("store").
		Code(CodeMemberNotFound).
		With("store_id", storeID).
		With("member_id", memberID).
		Errorf("member not found in this store")
	if err := requireRow(res, notFound); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE stores SET
			admins = array_remove(admins, $1::text),
			managers = array_remove(managers, $1::text),
			shared_with = array_remove(shared_with, $1::text),
			updated_at = $2
		WHERE id = $3`,
		memberID, time.Now().UTC(), storeID)
	if err != nil {
		return oops.In("store").Code("TEAM_UPDATE_FAILED").With("store_id", storeID).Wrap(err)
	}
	if err := tx.Commit(); err != nil {
		return oops.In("store").Code("TEAM_UPDATE_FAILED").Wrap(err)
	}
	return nil
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return oops.In("store").Wrap(err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
