package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/projboard/projboard/internal/domain/entity"
	repo "github.com/projboard/projboard/internal/domain/repository"
	"github.com/projboard/projboard/pkg/helpers"
	"github.com/projboard/projboard/pkg/mailer"
	tpl "github.com/projboard/projboard/pkg/mailer/templates"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
)

// AccountService implements registration, authentication and profile
// management against the system of record.
type AccountService struct {
	Repo        repo.AccountRepository
	JWT         *helpers.JWTManager
	GCS         *storage.Client
	GCSBucket   string
	Redis       *redis.Client
	Logger      *logrus.Logger
	Pub         *helpers.RabbitPublisher
	AppName     string
	MailEnabled bool
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func sessionKey(accountID string) string {
	return "account:session:" + accountID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func NewAccountService(repo repo.AccountRepository, jwt *helpers.JWTManager, gcs *storage.Client, gcsBucket string, rdb *redis.Client, logger *logrus.Logger, pub *helpers.RabbitPublisher, appName string, mailEnabled bool) *AccountService {
	return &AccountService{
		Repo:        repo,
		JWT:         jwt,
		GCS:         gcs,
		GCSBucket:   gcsBucket,
		Redis:       rdb,
		Logger:      logger,
		Pub:         pub,
		AppName:     appName,
		MailEnabled: mailEnabled,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// Register creates an account with a bcrypt-hashed password and, when a
// queue is configured, enqueues the welcome email. Duplicate emails
// surface as repository.ErrDuplicateEmail.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*entity.Account, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	a := &entity.Account{
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: hash,
		Name:     in.Name,
		Phone:    in.Phone,
		Role:     "user",
	}
	if err := s.Repo.Create(a); err != nil {
		return nil, err
	}

	if s.Pub != nil && s.MailEnabled {
		job := mailer.EmailJob{
			To:       a.Email,
			Template: tpl.Welcome,
			Data:     map[string]any{"Name": a.Name, "Email": a.Email, "AppName": s.AppName},
		}
		if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("email", a.Email).Warn("welcome email enqueue failed")
		}
	}
	return a, nil
}

// Authenticate validates email/password and returns the account without
// issuing tokens. The caller cannot learn which of the two was wrong.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*entity.Account, error) {
	a, err := s.Repo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil || a == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(a.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// IssueTokens generates access/refresh tokens and records a session hash
// in Redis mirroring the account's display fields.
func (s *AccountService) IssueTokens(ctx context.Context, a *entity.Account) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(a.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", a.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(a.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", a.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := sessionKey(a.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"account_id": a.ID,
			"email":      a.Email,
			"name":       a.Name,
			"phone":      a.Phone,
			"avatar_url": a.AvatarURL,
			"logged_in":  true,
			"created_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

type LoginResponse struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResponse, TokenPair, error) {
	a, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, a)
	if err != nil {
		return nil, TokenPair{}, err
	}
	resp := &LoginResponse{AccountID: a.ID, Email: a.Email, Name: a.Name, AvatarURL: a.AvatarURL}
	return resp, pair, nil
}

// Refresh rotates the token pair when the refresh token is valid and the
// session is still alive in Redis.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	a, err := s.Repo.GetByID(claims.UserID)
	if err != nil || a == nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, sessionKey(a.ID)).Result()
		if rErr != nil || len(data) == 0 {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}
	pair, err := s.IssueTokens(ctx, a)
	if err != nil {
		return TokenPair{}, "", err
	}
	return pair, a.ID, nil
}

// Logout drops the Redis session; cookies are cleared at the handler.
func (s *AccountService) Logout(ctx context.Context, accountID string) {
	if s.Redis == nil || accountID == "" {
		return
	}
	if err := s.Redis.Del(ctx, sessionKey(accountID)).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("account_id", accountID).Warn("session delete failed")
	}
}

func (s *AccountService) GetProfile(accountID string) (*entity.Account, error) {
	a, err := s.Repo.GetByID(accountID)
	if err != nil || a == nil {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

type UpdateProfileInput struct {
	Name  string
	Phone string
}

// UpdateProfile persists the change and mirrors the display fields into
// the Redis session hash, preserving the session TTL.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID string, in UpdateProfileInput) (*entity.Account, error) {
	a, err := s.Repo.GetByID(accountID)
	if err != nil || a == nil {
		return nil, ErrAccountNotFound
	}
	if in.Name != "" {
		a.Name = in.Name
	}
	if in.Phone != "" {
		a.Phone = in.Phone
	}
	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}
	s.refreshSession(ctx, a)
	return a, nil
}

// UploadAvatar stores the image in GCS and updates the profile with the
// public URL. At most one current avatar per account: the URL is simply
// overwritten.
func (s *AccountService) UploadAvatar(ctx context.Context, accountID string, r io.Reader, filename, contentType string) (string, error) {
	a, err := s.Repo.GetByID(accountID)
	if err != nil || a == nil {
		return "", ErrAccountNotFound
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("avatar storage not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", accountID, "avatar"+ext))
	url, err := helpers.UploadImageToGCS(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	a.AvatarURL = url
	if err := s.Repo.Update(a); err != nil {
		return "", err
	}
	s.refreshSession(ctx, a)
	return url, nil
}

func (s *AccountService) refreshSession(ctx context.Context, a *entity.Account) {
	if s.Redis == nil {
		return
	}
	key := sessionKey(a.ID)
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"name":       a.Name,
		"phone":      a.Phone,
		"avatar_url": a.AvatarURL,
		"updated_at": nowRFC3339(),
	})
	if ttl, tErr := s.Redis.TTL(ctx, key).Result(); tErr == nil && ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, pErr := pipe.Exec(ctx); pErr != nil && s.Logger != nil {
		s.Logger.WithError(pErr).WithField("key", key).Warn("redis pipeline failed")
	}
}
