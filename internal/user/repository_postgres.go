package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	createUsersTableQuery = `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			date_of_birth DATE NOT NULL,
			address TEXT,
			phone_number TEXT
		)
	`
	createEmailIndexQuery       = `CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email)`
	createDateOfBirthIndexQuery = `CREATE INDEX IF NOT EXISTS users_date_of_birth_idx ON users (date_of_birth)`

	listUsersQuery = `
		SELECT id, email, first_name, last_name, date_of_birth, address, phone_number
		FROM users
		ORDER BY id
	`
	getUserByIDQuery = `
		SELECT id, email, first_name, last_name, date_of_birth, address, phone_number
		FROM users
		WHERE id = $1
	`
	getUserByEmailQuery = `
		SELECT id, email, first_name, last_name, date_of_birth, address, phone_number
		FROM users
		WHERE email = $1
	`
	listUsersByDateOfBirthQuery = `
		SELECT id, email, first_name, last_name, date_of_birth, address, phone_number
		FROM users
		WHERE date_of_birth BETWEEN $1 AND $2
		ORDER BY id
	`

	insertUserQuery = `
		INSERT INTO users (email, first_name, last_name, date_of_birth, address, phone_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	updateUserQuery = `
		UPDATE users
		SET email = $1,
			first_name = $2,
			last_name = $3,
			date_of_birth = $4,
			address = $5,
			phone_number = $6
		WHERE id = $7
	`
	deleteUserQuery = `DELETE FROM users WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the users table and its indexes when missing.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	for _, stmt := range []string{createUsersTableQuery, createEmailIndexQuery, createDateOfBirthIndexQuery} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate users: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, listUsersQuery)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return collectUsers(rows)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, getUserByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user %d: %w", id, err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, getUserByEmailQuery, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user by email: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) Save(ctx context.Context, user User) (User, error) {
	if user.ID == 0 {
		return r.insert(ctx, user)
	}
	return r.update(ctx, user)
}

func (r *PostgresRepository) insert(ctx context.Context, user User) (User, error) {
	var id int64
	err := r.db.QueryRowContext(
		ctx,
		insertUserQuery,
		user.Email,
		user.FirstName,
		user.LastName,
		dateValue(user.DateOfBirth),
		nullString(user.Address),
		nullString(user.PhoneNumber),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailExists
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	user.ID = id
	return user, nil
}

func (r *PostgresRepository) update(ctx context.Context, user User) (User, error) {
	result, err := r.db.ExecContext(
		ctx,
		updateUserQuery,
		user.Email,
		user.FirstName,
		user.LastName,
		dateValue(user.DateOfBirth),
		nullString(user.Address),
		nullString(user.PhoneNumber),
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailExists
		}
		return User{}, fmt.Errorf("update user %d: %w", user.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return User{}, fmt.Errorf("update user %d: %w", user.ID, err)
	}
	if affected == 0 {
		return User{}, ErrNotFound
	}

	return user, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, deleteUserQuery, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) ListByDateOfBirthBetween(ctx context.Context, start, end civil.Date) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, listUsersByDateOfBirthQuery, dateValue(start), dateValue(end))
	if err != nil {
		return nil, fmt.Errorf("list users by date of birth: %w", err)
	}
	return collectUsers(rows)
}

func collectUsers(rows *sql.Rows) ([]User, error) {
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func scanUser(scanner rowScanner) (User, error) {
	user := User{}
	var dob time.Time
	var address sql.NullString
	var phone sql.NullString

	if err := scanner.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&dob,
		&address,
		&phone,
	); err != nil {
		return User{}, err
	}

	user.DateOfBirth = civil.DateOf(dob)
	user.Address = address.String
	user.PhoneNumber = phone.String
	return user, nil
}

// dateValue maps a calendar date to midnight UTC, which both drivers encode
// as a plain DATE.
func dateValue(d civil.Date) time.Time {
	return d.In(time.UTC)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}
