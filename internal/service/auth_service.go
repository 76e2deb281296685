package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/magicspin/laundry-api/internal/config"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/magicspin/laundry-api/internal/events"
	"github.com/magicspin/laundry-api/internal/platform/logger"
	"github.com/magicspin/laundry-api/internal/redact"
	"github.com/magicspin/laundry-api/internal/service/auth"
	"github.com/magicspin/laundry-api/internal/store"
)

// RegisterInput carries the fields of a new customer account.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
	Address  string
}

// ProfileUpdate holds optional profile changes; nil fields are left alone.
type ProfileUpdate struct {
	FullName *string
	Phone    *string
	Address  *string
}

// AuthResult is a user together with a freshly issued session token.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService implements registration, login, email verification,
// password reset and profile management.
type AuthService struct {
	users    store.UserStore
	tokens   auth.JWTService
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	events   events.EventEmitter

	sessionLifetime      time.Duration
	verificationLifetime time.Duration
	resetLifetime        time.Duration

	logger *slog.Logger
	now    func() time.Time
}

// NewAuthService creates an AuthService. Lifetimes come from cfg.
func NewAuthService(
	users store.UserStore,
	tokens auth.JWTService,
	passwords auth.PasswordManager,
	emitter events.EventEmitter,
	cfg config.AuthConfig,
	logger *slog.Logger,
) (*AuthService, error) {
	if users == nil {
		return nil, errors.New("user store cannot be nil")
	}
	if tokens == nil {
		return nil, errors.New("jwt service cannot be nil")
	}
	if passwords == nil {
		return nil, errors.New("password hasher cannot be nil")
	}
	if emitter == nil {
		return nil, errors.New("event emitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		users:                users,
		tokens:               tokens,
		hasher:               passwords,
		verifier:             passwords,
		events:               emitter,
		sessionLifetime:      time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		verificationLifetime: time.Duration(cfg.VerificationTokenLifetimeHours) * time.Hour,
		resetLifetime:        time.Duration(cfg.ResetTokenLifetimeMinutes) * time.Minute,
		logger:               logger.With(slog.String("component", "auth_service")),
		now:                  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Register creates an unverified customer, queues the verification email
// and issues a session token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateSignupEmail(in.Email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	_, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ErrDuplicateEmail
	case !errors.Is(err, store.ErrUserNotFound):
		log.Error("failed to check for existing user", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("register", "failed to check email", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, NewServiceError("register", "failed to hash password", err)
	}

	user, err := domain.NewUser(in.Email, hash, in.FullName, in.Phone, in.Address)
	if err != nil {
		return nil, err
	}

	token, err := auth.GenerateOneTimeToken()
	if err != nil {
		return nil, NewServiceError("register", "failed to generate verification token", err)
	}
	user.SetVerificationToken(token, s.now().Add(s.verificationLifetime))

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, ErrDuplicateEmail
		}
		log.Error("failed to create user", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("register", "failed to create user", err)
	}

	s.notify(ctx, domain.Notification{
		Kind:  domain.NotificationVerifyEmail,
		To:    user.Email,
		Name:  user.FullName,
		Token: token,
	})

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return s.issue(ctx, user)
}

// Login authenticates by email and password. Unknown emails and wrong
// passwords both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to load user for login", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("login", "failed to load user", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, ErrNotVerified
	}

	return s.issue(ctx, user)
}

// VerifyEmail consumes a verification token and marks the user verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.lookupToken(ctx, "verify_email", token, s.users.GetByVerificationToken)
	if err != nil {
		return err
	}
	if !auth.TokensEqual(user.VerificationToken, token) {
		return ErrInvalidToken
	}
	if domain.TokenExpired(user.VerificationTokenExpiresAt, s.now()) {
		return ErrTokenExpired
	}

	user.MarkVerified()
	if err := s.users.Update(ctx, user); err != nil {
		return s.updateFailed(ctx, "verify_email", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("email verified",
		slog.String("user_id", user.ID.String()))
	return nil
}

// ForgotPassword stores a reset token and queues the reset email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return NewServiceError("forgot_password", "failed to load user", err)
	}

	token, err := auth.GenerateOneTimeToken()
	if err != nil {
		return NewServiceError("forgot_password", "failed to generate reset token", err)
	}
	user.SetResetToken(token, s.now().Add(s.resetLifetime))

	if err := s.users.Update(ctx, user); err != nil {
		return s.updateFailed(ctx, "forgot_password", err)
	}

	s.notify(ctx, domain.Notification{
		Kind:  domain.NotificationPasswordReset,
		To:    user.Email,
		Name:  user.FullName,
		Token: token,
	})
	return nil
}

// ResetPassword consumes a reset token and stores the new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.lookupToken(ctx, "reset_password", token, s.users.GetByResetToken)
	if err != nil {
		return err
	}
	if !auth.TokensEqual(user.ResetToken, token) {
		return ErrInvalidToken
	}
	if domain.TokenExpired(user.ResetTokenExpiresAt, s.now()) {
		return ErrTokenExpired
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return NewServiceError("reset_password", "failed to hash password", err)
	}
	user.ResetPassword(hash)

	if err := s.users.Update(ctx, user); err != nil {
		return s.updateFailed(ctx, "reset_password", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("password reset",
		slog.String("user_id", user.ID.String()))
	return nil
}

// GetProfile returns the user's own record.
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, NewServiceError("get_profile", "failed to load user", err)
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of upd to the user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.FullName != nil {
		user.FullName = strings.TrimSpace(*upd.FullName)
	}
	if upd.Phone != nil {
		user.Phone = strings.TrimSpace(*upd.Phone)
	}
	if upd.Address != nil {
		user.Address = strings.TrimSpace(*upd.Address)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, s.updateFailed(ctx, "update_profile", err)
	}
	return user, nil
}

func (s *AuthService) lookupToken(
	ctx context.Context,
	op, token string,
	lookup func(context.Context, string) (*domain.User, error),
) (*domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidToken
	}
	user, err := lookup(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, NewServiceError(op, "failed to look up token", err)
	}
	return user, nil
}

// updateFailed maps a UserStore.Update error. Validation errors pass through.
func (s *AuthService) updateFailed(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return err
	case errors.Is(err, store.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrEmailExists):
		return ErrDuplicateEmail
	}
	logger.FromContextOrDefault(ctx, s.logger).Error("failed to update user",
		slog.String("operation", op),
		slog.String("error", redact.Error(err)))
	return NewServiceError(op, "failed to update user", err)
}

func (s *AuthService) issue(ctx context.Context, user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		return nil, NewServiceError("issue_token", "failed to sign token", err)
	}
	return &AuthResult{
		User:      user,
		Token:     token,
		ExpiresAt: s.now().Add(s.sessionLifetime),
	}, nil
}

// notify emits a notification event. Delivery is best-effort: failures are
// logged and never fail the request.
func (s *AuthService) notify(ctx context.Context, n domain.Notification) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewNotificationEvent(n)
	if err != nil {
		log.Error("failed to build notification event", slog.String("error", err.Error()))
		return
	}
	if err := s.events.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit notification event",
			slog.String("event_type", event.Type),
			slog.String("error", redact.Error(err)))
	}
}
