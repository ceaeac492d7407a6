package repository

import (
	"context"
	"fmt"
	"time"

	"travelblog/internal/logger"
	"travelblog/internal/models"
	"travelblog/internal/query"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var UserListSchema = query.NewSchema("-createdAt",
	query.Field{Name: "id", Column: "u.id", Kind: query.Int, Filter: true, Sort: true, Select: true},
	query.Field{Name: "name", Column: "u.name", Kind: query.String, Filter: true, Sort: true, Select: true},
	query.Field{Name: "email", Column: "LOWER(u.email)", Kind: query.String, Filter: true, Sort: true, Select: true},
	query.Field{Name: "role", Column: "u.role", Kind: query.Enum, Enum: models.RoleValues(), Filter: true, Sort: true, Select: true},
	query.Field{Name: "avatar", Column: "u.avatar", Kind: query.String, Select: true},
	query.Field{Name: "createdAt", Column: "u.created_at", Kind: query.Time, Filter: true, Sort: true, Select: true},
	query.Field{Name: "updatedAt", Column: "u.updated_at", Kind: query.Time, Filter: true, Sort: true, Select: true},
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `u.id, u.name, u.email, u.role, u.avatar, u.password_hash,
	u.reset_password_token, u.reset_password_expire, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Avatar, &u.PasswordHash,
		&u.ResetPasswordToken, &u.ResetPasswordExpire, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser вставляет пользователя. Занятый email (без учёта регистра) — ErrDuplicate.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	logger.WithCtx(ctx).Info("Создание пользователя (repo)", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	const q = `
		INSERT INTO users (name, email, role, avatar, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, q, user.Name, user.Email, user.Role, user.Avatar, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		err = mapErr(err)
		if err != ErrDuplicate {
			logger.WithCtx(ctx).Error("Ошибка создания пользователя (repo)", zap.Error(err))
		}
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users u WHERE u.id = $1", id))
	return u, mapErr(err)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users u WHERE LOWER(u.email) = LOWER($1)", email))
	return u, mapErr(err)
}

func (r *UserRepository) List(ctx context.Context, q query.ListQuery) ([]*models.User, int64, error) {
	where, args := UserListSchema.Where(q.Filters, 1)

	total, err := count(ctx, r.db, "SELECT COUNT(*) FROM users u"+where, args)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка подсчёта пользователей (repo)", zap.Error(err))
		return nil, 0, err
	}

	sql := "SELECT " + userColumns + " FROM users u" + where + UserListSchema.OrderBy(q.Sort) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, sql, append(args, q.Limit, q.Offset())...)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка получения пользователей (repo)", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			logger.WithCtx(ctx).Error("Ошибка сканирования пользователя (repo)", zap.Error(err))
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) ListProjected(ctx context.Context, q query.ListQuery) ([]map[string]any, int64, error) {
	return listProjected(ctx, r.db, UserListSchema, "users u", q)
}

// Update сохраняет профиль целиком: имя, email, роль, аватар и хеш пароля.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	logger.WithCtx(ctx).Info("Обновление пользователя (repo)", zap.Int64("target_id", u.ID))
	const q = `
		UPDATE users
		SET name = $2, email = $3, role = $4, avatar = $5, password_hash = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.QueryRow(ctx, q, u.ID, u.Name, u.Email, u.Role, u.Avatar, u.PasswordHash).Scan(&u.UpdatedAt)
	return mapErr(err)
}

func (r *UserRepository) SetAvatar(ctx context.Context, id int64, path string) error {
	return affected(r.db.Exec(ctx, "UPDATE users SET avatar = $2, updated_at = NOW() WHERE id = $1", id, path))
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	logger.WithCtx(ctx).Info("Удаление пользователя (repo)", zap.Int64("target_id", id))
	return affected(r.db.Exec(ctx, "DELETE FROM users WHERE id = $1", id))
}

// SetResetToken сохраняет хеш токена сброса пароля и срок его действия.
func (r *UserRepository) SetResetToken(ctx context.Context, id int64, tokenHash string, expire time.Time) error {
	return affected(r.db.Exec(ctx,
		"UPDATE users SET reset_password_token = $2, reset_password_expire = $3 WHERE id = $1",
		id, tokenHash, expire))
}

// GetByResetToken находит пользователя по хешу непросроченного токена.
func (r *UserRepository) GetByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	const q = "SELECT " + userColumns + ` FROM users u
		WHERE u.reset_password_token = $1 AND u.reset_password_expire > NOW()`
	u, err := scanUser(r.db.QueryRow(ctx, q, tokenHash))
	return u, mapErr(err)
}

// ResetPassword устанавливает новый хеш пароля и гасит токен сброса.
func (r *UserRepository) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	const q = `
		UPDATE users
		SET password_hash = $2, reset_password_token = NULL, reset_password_expire = NULL, updated_at = NOW()
		WHERE id = $1`
	return affected(r.db.Exec(ctx, q, id, passwordHash))
}

func (r *UserRepository) AdminExists(ctx context.Context) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE role = 'admin')").Scan(&ok)
	return ok, err
}

// ClearExpiredResetTokens гасит просроченные токены сброса пароля.
func (r *UserRepository) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET reset_password_token = NULL, reset_password_expire = NULL
		WHERE reset_password_expire IS NOT NULL AND reset_password_expire <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
