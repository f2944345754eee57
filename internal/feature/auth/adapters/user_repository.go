// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mdobak/go-xerrors"
	"gorm.io/gorm"

	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/usecase"
)

// uniqueViolation はPostgreSQLの一意制約違反のSQLSTATEです。
const uniqueViolation = "23505"

// userRepository はUserRepositoryインターフェースのGORM実装です。
type userRepository struct {
	db *gorm.DB
}

// userRepositoryがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userRepository)(nil)

// NewUserRepository は指定されたgorm.DB接続でuserRepositoryの新しいインスタンスを生成します。
func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

// Create はユーザーをデータベースに追加します。
// 同じメールアドレスのユーザーが既に存在する場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userRepository) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicateKey(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return xerrors.New(err)
	}
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します（大文字小文字を区別）。
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, xerrors.New(err)
	}
	return &u, nil
}

// FindByID はIDでユーザーを取得します。
func (r *userRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, xerrors.New(err)
	}
	return &u, nil
}

// isDuplicateKey は一意制約違反かどうかを判定します。
// TranslateError が有効な場合は gorm.ErrDuplicatedKey、無効な場合は pgconn のエラーコードで判定します。
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
