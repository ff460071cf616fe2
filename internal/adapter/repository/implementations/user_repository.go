package implementations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/mamgad/DVBLab/internal/domain"
	"github.com/mamgad/DVBLab/internal/logger"
)

type UserRepository struct {
	db *DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, balance, profile, role, created_at, last_login`

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	logger.Info("user repository create", logger.Fields{
		"username": user.Username,
		"role":     user.Role,
	})

	query := r.db.Rebind(`
INSERT INTO users (username, email, password_hash, balance, profile, role, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + userColumns)

	var profile *string
	if user.Profile != "" {
		profile = &user.Profile
	}

	var created domain.User
	if err := scanUser(r.db.QueryRowContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Balance,
		profile,
		user.Role,
		toMillis(user.CreatedAt),
	), &created); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrDuplicateUsername
		}
		logger.Error("user repository create failed", err, logger.Fields{
			"username": user.Username,
		})
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	logger.Info("user repository create success", logger.Fields{
		"userId":   created.ID,
		"username": created.Username,
	})

	return created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)

	var user domain.User
	if err := scanUser(r.db.QueryRowContext(ctx, query, id), &user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrRecordNotFound
		}
		logger.Error("user repository get by id failed", err, logger.Fields{
			"userId": id,
		})
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE username = ?`)

	var user domain.User
	if err := scanUser(r.db.QueryRowContext(ctx, query, username), &user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrRecordNotFound
		}
		logger.Error("user repository get by username failed", err, logger.Fields{
			"username": username,
		})
		return domain.User{}, fmt.Errorf("get user by username: %w", err)
	}

	return user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, email *string, profile string) (domain.User, error) {
	logger.Info("user repository update profile", logger.Fields{
		"userId": id,
	})

	query := r.db.Rebind(`
UPDATE users
SET email = ?,
    profile = ?
WHERE id = ?
RETURNING ` + userColumns)

	var updated domain.User
	if err := scanUser(r.db.QueryRowContext(ctx, query, email, profile, id), &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrRecordNotFound
		}
		if isUniqueViolation(err) {
			// Email carries a unique constraint like the username does.
			return domain.User{}, domain.NewValidationError("email already in use")
		}
		logger.Error("user repository update profile failed", err, logger.Fields{
			"userId": id,
		})
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}

	return updated, nil
}

func (r *UserRepository) SetProfile(ctx context.Context, id int64, profile string) error {
	query := r.db.Rebind(`UPDATE users SET profile = ? WHERE id = ?`)
	return r.execOnUser(ctx, query, "set profile", profile, id)
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error {
	query := r.db.Rebind(`UPDATE users SET password_hash = ? WHERE id = ?`)
	return r.execOnUser(ctx, query, "update password hash", passwordHash, id)
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	query := r.db.Rebind(`UPDATE users SET last_login = ? WHERE id = ?`)
	return r.execOnUser(ctx, query, "update last login", toMillis(at), id)
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}

// execOnUser runs a single-row mutation keyed by user id; zero affected rows
// means the user does not exist.
func (r *UserRepository) execOnUser(ctx context.Context, query, operation string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error("user repository "+operation+" failed", err, nil)
		return fmt.Errorf("%s: %w", operation, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func scanUser(row rowScanner, user *domain.User) error {
	var (
		email     sql.NullString
		profile   sql.NullString
		balance   decimal.Decimal
		createdAt int64
		lastLogin sql.NullInt64
	)

	if err := row.Scan(
		&user.ID,
		&user.Username,
		&email,
		&user.PasswordHash,
		&balance,
		&profile,
		&user.Role,
		&createdAt,
		&lastLogin,
	); err != nil {
		return err
	}

	if email.Valid {
		value := email.String
		user.Email = &value
	}
	if profile.Valid {
		user.Profile = profile.String
	}
	user.Balance = balance
	user.CreatedAt = fromMillis(createdAt)
	if lastLogin.Valid {
		value := fromMillis(lastLogin.Int64)
		user.LastLogin = &value
	}

	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return false
}
