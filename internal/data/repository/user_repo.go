package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coffee-shop-api/internal/data/entity"
	"coffee-shop-api/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("user with this email already exists")
)

const uniqueViolation = "23505"

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindAll(ctx context.Context) ([]*entity.User, error)
	// Update writes only the columns set in patch and returns the stored row.
	Update(ctx context.Context, id int64, patch entity.UserPatch) (*entity.User, error)
	Delete(ctx context.Context, id int64) error

	// SetVerificationCode replaces the pending code of an unverified account.
	// It reports false when the account is missing or already verified.
	SetVerificationCode(ctx context.Context, id int64, code string, expiresAt time.Time) (bool, error)
	// ConfirmVerification marks the account verified only if the stored code and
	// expiry still equal the given ones. It reports false when they changed.
	ConfirmVerification(ctx context.Context, id int64, code string, expiresAt time.Time) (bool, error)
	DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

const userColumns = `id, email, password, first_name, last_name, role, is_staff,
		       is_verified, verification_code, verification_expires_at, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.IsStaff,
		&user.IsVerified,
		&user.VerificationCode,
		&user.VerificationExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Create inserts a new user record and fills in its generated id
func (ur *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (email, password, first_name, last_name, role, is_staff,
		                   is_verified, verification_code, verification_expires_at,
		                   created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := ur.db.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
		user.IsStaff,
		user.IsVerified,
		user.VerificationCode,
		user.VerificationExpiresAt,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		ur.log.Error("Failed to create user", zap.Error(err), zap.String("email", user.Email))
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}

	return nil
}

func (ur *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(ur.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user by ID", zap.Error(err), zap.Int64("user_id", id))
		return nil, fmt.Errorf("find user by ID %d: %w", id, err)
	}

	return user, nil
}

func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(ur.db.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("find user by email %s: %w", email, err)
	}

	return user, nil
}

// FindAll returns every account ordered by id
func (ur *userRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := ur.db.Query(ctx, query)
	if err != nil {
		ur.log.Error("Failed to get all users", zap.Error(err))
		return nil, fmt.Errorf("find all users: %w", err)
	}
	defer rows.Close()

	users := make([]*entity.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			ur.log.Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		ur.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate users rows: %w", err)
	}

	return users, nil
}

func (ur *userRepository) Update(ctx context.Context, id int64, patch entity.UserPatch) (*entity.User, error) {
	// NULL parameters keep the stored column; setting is_verified=true also clears the pending code
	query := `
		UPDATE users
		SET email = COALESCE($2, email),
		    first_name = COALESCE($3, first_name),
		    last_name = COALESCE($4, last_name),
		    role = COALESCE($5, role),
		    is_staff = COALESCE($6, is_staff),
		    is_verified = COALESCE($7, is_verified),
		    verification_code = CASE WHEN $7::boolean THEN NULL ELSE verification_code END,
		    verification_expires_at = CASE WHEN $7::boolean THEN NULL ELSE verification_expires_at END,
		    updated_at = $8
		WHERE id = $1
		RETURNING ` + userColumns

	var role *string
	if patch.Role != nil {
		r := string(*patch.Role)
		role = &r
	}

	user, err := scanUser(ur.db.QueryRow(ctx, query,
		id,
		patch.Email,
		patch.FirstName,
		patch.LastName,
		role,
		patch.IsStaff,
		patch.IsVerified,
		patch.UpdatedAt,
	))

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("update user %d: %w", id, ErrUserNotFound)
	case isUniqueViolation(err):
		return nil, ErrEmailTaken
	case err != nil:
		ur.log.Error("Failed to update user", zap.Error(err), zap.Int64("user_id", id))
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}

	return user, nil
}

func (ur *userRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := ur.db.Exec(ctx, query, id)
	if err != nil {
		ur.log.Error("Failed to delete user", zap.Error(err), zap.Int64("user_id", id))
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete user %d: %w", id, ErrUserNotFound)
	}

	ur.log.Info("User deleted", zap.Int64("user_id", id))
	return nil
}

func (ur *userRepository) SetVerificationCode(ctx context.Context, id int64, code string, expiresAt time.Time) (bool, error) {
	query := `
		UPDATE users
		SET verification_code = $2, verification_expires_at = $3, updated_at = NOW()
		WHERE id = $1 AND is_verified = FALSE
	`

	result, err := ur.db.Exec(ctx, query, id, code, expiresAt)
	if err != nil {
		ur.log.Error("Failed to set verification code", zap.Error(err), zap.Int64("user_id", id))
		return false, fmt.Errorf("set verification code for user %d: %w", id, err)
	}

	return result.RowsAffected() == 1, nil
}

func (ur *userRepository) ConfirmVerification(ctx context.Context, id int64, code string, expiresAt time.Time) (bool, error) {
	query := `
		UPDATE users
		SET is_verified = TRUE, verification_code = NULL,
		    verification_expires_at = NULL, updated_at = NOW()
		WHERE id = $1 AND verification_code = $2 AND verification_expires_at = $3
	`

	result, err := ur.db.Exec(ctx, query, id, code, expiresAt)
	if err != nil {
		ur.log.Error("Failed to confirm verification", zap.Error(err), zap.Int64("user_id", id))
		return false, fmt.Errorf("confirm verification for user %d: %w", id, err)
	}

	return result.RowsAffected() == 1, nil
}

func (ur *userRepository) DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM users WHERE is_verified = FALSE AND created_at < $1`

	result, err := ur.db.Exec(ctx, query, cutoff)
	if err != nil {
		ur.log.Error("Failed to delete unverified users", zap.Error(err), zap.Time("cutoff", cutoff))
		return 0, fmt.Errorf("delete unverified users before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	return result.RowsAffected(), nil
}
