package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/shared/timeout"
	"blog_backend/internal/shared/validation"
)

const (
	// maxPasswordBytes はbcryptが扱える最大バイト数です。
	maxPasswordBytes = 72
	// maxEmailLength はメールアドレスの最大文字数です。
	maxEmailLength = 255
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーを永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail はメールアドレスに一致するユーザーを取得します。存在しない場合はErrUserNotFoundです。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID はIDに一致するユーザーを取得します。存在しない場合はErrUserNotFoundです。
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// TokenIssuer は署名済みトークンを発行します。
type TokenIssuer interface {
	GenerateToken(userID uint, email string) (string, error)
}

// TokenRevoker は有効期限前のトークンを失効させます。
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// Option はauthUsecaseの設定を変更します。
type Option func(*authUsecase)

// WithBcryptCost はパスワードハッシュのコストを設定します。
func WithBcryptCost(cost int) Option {
	return func(u *authUsecase) { u.cost = cost }
}

// WithRevoker はログアウト時にトークンを失効させるストアを設定します。
// 未設定の場合、ログアウトはクライアント側でトークンを破棄するだけです。
func WithRevoker(r TokenRevoker) Option {
	return func(u *authUsecase) { u.revoker = r }
}

// WithOpTimeout は永続化呼び出し1回あたりの上限時間を設定します。
func WithOpTimeout(d time.Duration) Option {
	return func(u *authUsecase) { u.opTimeout = d }
}

var validate = validator.New()

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users     UserRepository
	tokens    TokenIssuer
	revoker   TokenRevoker
	cost      int
	opTimeout time.Duration
	dummyHash []byte
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, tokens TokenIssuer, opts ...Option) *authUsecase {
	u := &authUsecase{
		users:  users,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(u)
	}

	// 存在しないメールアドレスでも同じコストの比較を行うためのダミーハッシュ
	hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), u.cost)
	if err != nil {
		hash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")
	}
	u.dummyHash = hash

	return u
}

// validateCredentials は登録時の入力を検証し、違反したフィールドをすべて返します。
func validateCredentials(email, password string) error {
	v := validation.New()
	v.CheckNotBlank(email, "email", "is required")
	v.Check(len(email) <= maxEmailLength, "email", fmt.Sprintf("must be at most %d characters", maxEmailLength))
	v.Check(validate.Var(email, "email") == nil, "email", "must be a valid email address")
	v.Check(password != "", "password", "is required")
	v.Check(len(password) <= maxPasswordBytes, "password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	return v.Err()
}

// Register はハッシュ化されたパスワードで新規ユーザーを登録し、トークンを発行します。
func (u *authUsecase) Register(ctx context.Context, email, password string) (*entity.User, string, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{Email: email, PasswordHash: string(hashed)}
	if err := timeout.Do(ctx, u.opTimeout, func(ctx context.Context) error {
		return u.users.Create(ctx, user)
	}); err != nil {
		return nil, "", err
	}

	token, err := u.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// Login はユーザーを認証し、成功時にトークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := timeout.Call(ctx, u.opTimeout, func(ctx context.Context) (*entity.User, error) {
		return u.users.FindByEmail(ctx, email)
	})
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, "", err
	}

	passwordHash := u.dummyHash
	if user != nil {
		passwordHash = []byte(user.PasswordHash)
	}

	// 第1引数はハッシュ化パスワード、第2引数は平文パスワード
	compareErr := bcrypt.CompareHashAndPassword(passwordHash, []byte(password))
	if user == nil || compareErr != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := u.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// Me は認証済みユーザー自身のプロフィールを返します。
func (u *authUsecase) Me(ctx context.Context, userID uint) (*entity.User, error) {
	return timeout.Call(ctx, u.opTimeout, func(ctx context.Context) (*entity.User, error) {
		return u.users.FindByID(ctx, userID)
	})
}

// Logout は提示されたトークンを有効期限まで失効させます。
// 失効ストアが無い場合は何もしません。
func (u *authUsecase) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if u.revoker == nil {
		return nil
	}
	return timeout.Do(ctx, u.opTimeout, func(ctx context.Context) error {
		return u.revoker.Revoke(ctx, tokenID, expiresAt)
	})
}
