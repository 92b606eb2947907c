package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/dbx"
	"github.com/dmitrijs2005/contactkeeper/internal/server/models"
	"github.com/dmitrijs2005/contactkeeper/internal/timex"
)

const contactColumns = `id, first_name, last_name, email, phone_number, birth_date, info, created_at, updated_at, user_id`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	query :=
		`INSERT INTO contacts (first_name, last_name, email, phone_number, birth_date, info, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		c.FirstName, c.LastName, c.Email, c.PhoneNumber, dateArg(c.BirthDate), stringArg(c.Info), c.UserID).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		return nil, mapWriteError(err)
	}

	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context, f models.ContactFilter) ([]*models.Contact, error) {
	query :=
		`SELECT ` + contactColumns + ` FROM contacts
		 WHERE user_id = $1
		   AND strpos(first_name, $2) > 0
		   AND strpos(last_name, $3) > 0
		   AND strpos(email, $4) > 0
		 ORDER BY id
		 OFFSET $5 LIMIT $6`

	return r.queryMany(ctx, query, f.UserID, f.FirstName, f.LastName, f.Email, f.Skip, f.Limit)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, userID int64) (*models.Contact, error) {
	query :=
		`SELECT ` + contactColumns + ` FROM contacts
		 WHERE id = $1 AND user_id = $2`

	return r.queryOne(ctx, query, id, userID)
}

func (r *PostgresRepository) Update(ctx context.Context, id, userID int64, patch models.ContactPatch) (*models.Contact, error) {
	sets := make([]string, 0, 7)
	args := []any{id, userID}

	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.FirstName != nil {
		set("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		set("last_name", *patch.LastName)
	}
	if patch.Email != nil {
		set("email", *patch.Email)
	}
	if patch.PhoneNumber != nil {
		set("phone_number", *patch.PhoneNumber)
	}
	if patch.BirthDate.Set {
		set("birth_date", dateArg(patch.BirthDate.Value))
	}
	if patch.Info.Set {
		set("info", stringArg(patch.Info.Value))
	}
	sets = append(sets, "updated_at = now()")

	query := `UPDATE contacts SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND user_id = $2 RETURNING ` + contactColumns

	c, err := scanContact(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, mapWriteError(err)
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID int64) (*models.Contact, error) {
	query :=
		`DELETE FROM contacts
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + contactColumns

	return r.queryOne(ctx, query, id, userID)
}

func (r *PostgresRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM contacts WHERE email = $1 OR phone_number = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email, phone).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) UpcomingBirthdays(ctx context.Context, userID int64, from, to timex.Date) ([]*models.Contact, error) {
	query :=
		`SELECT ` + contactColumns + ` FROM contacts
		 WHERE user_id = $1
		   AND birth_date IS NOT NULL
		   AND birth_date BETWEEN $2 AND $3
		 ORDER BY birth_date, id`

	return r.queryMany(ctx, query, userID, from.Time, to.Time)
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (*models.Contact, error) {
	c, err := scanContact(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...any) ([]*models.Contact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContact(s scanner) (*models.Contact, error) {
	c := &models.Contact{}
	var birth sql.NullTime
	var info sql.NullString

	err := s.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNumber,
		&birth, &info, &c.CreatedAt, &c.UpdatedAt, &c.UserID)
	if err != nil {
		return nil, err
	}

	if birth.Valid {
		d := timex.NewDate(birth.Time)
		c.BirthDate = &d
	}
	if info.Valid {
		c.Info = &info.String
	}
	return c, nil
}

func mapWriteError(err error) error {
	if constraint, ok := dbx.UniqueViolation(err); ok &&
		(constraint == "contacts_email_key" || constraint == "contacts_phone_number_key") {
		return common.ErrDuplicateContact
	}
	return fmt.Errorf("db error: %w", err)
}

func dateArg(d *timex.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

func stringArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
