package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sl "campus_delivery/internal/lib/logger/sl"
	"campus_delivery/internal/lib/pwdhash"
	"campus_delivery/internal/lib/resetmail"
	"campus_delivery/internal/lib/token"
	"campus_delivery/internal/models"
	"campus_delivery/internal/storage"
)

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	sessions    SessionStore
	publisher   resetmail.Publisher
	policy      Policy
	now         func() time.Time
}

type UserSaver interface {
	SaveUser(ctx context.Context, user models.User) (uid int64, err error)
	UpdatePassword(ctx context.Context, uid int64, passHash string) error
	SetResetToken(ctx context.Context, uid int64, tokenHash string, expiresAt time.Time) error
	// CompleteReset stores passHash and clears the pending reset token.
	CompleteReset(ctx context.Context, uid int64, passHash string) error
}

type UserProvider interface {
	User(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, uid int64) (models.User, error)
	UserByResetToken(ctx context.Context, tokenHash string) (models.User, error)
}

type SessionStore interface {
	SaveSession(ctx context.Context, session models.Session) error
	Session(ctx context.Context, id string) (models.Session, error)
	ExtendSession(ctx context.Context, id string, expiresAt time.Time) error
	// DeleteSession is a no-op for unknown ids.
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, uid int64) error
}

type Policy struct {
	SessionTTL     time.Duration
	RenewBefore    time.Duration
	ResetTTL       time.Duration
	PasswordMinLen int
	PasswordMaxLen int
	EmailMaxLen    int
	NameMaxLen     int
	FrontendURL    string
}

func DefaultPolicy() Policy {
	return Policy{
		SessionTTL:     30 * 24 * time.Hour,
		RenewBefore:    15 * 24 * time.Hour,
		ResetTTL:       time.Hour,
		PasswordMinLen: 8,
		PasswordMaxLen: 128,
		EmailMaxLen:    254,
		NameMaxLen:     64,
		FrontendURL:    "http://localhost:8081",
	}
}

type Option func(*Auth)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Auth) {
		a.now = now
	}
}

// Issued is the result of a successful login. Token is the only copy of the
// raw bearer token.
type Issued struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	sessions SessionStore,
	publisher resetmail.Publisher,
	policy Policy,
	opts ...Option,
) *Auth {
	a := &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		sessions:    sessions,
		publisher:   publisher,
		policy:      policy,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

func (a *Auth) Policy() Policy {
	return a.policy
}

// Register creates a user. It does not open a session.
func (a *Auth) Register(
	ctx context.Context,
	email, password, name, role string,
) (models.User, error) {
	const op = "auth.Register"

	log := a.log.With(slog.String("op", op))

	if err := a.checkPassword(password); err != nil {
		return models.User{}, err
	}

	email = sanitize(email, a.policy.EmailMaxLen)
	name = sanitize(name, a.policy.NameMaxLen)

	if email == "" {
		return models.User{}, newError(ErrValidation, MsgCredentialsRequired)
	}

	switch role {
	case "":
		role = models.RoleCustomer
	case models.RoleCustomer, models.RoleWorker:
	default:
		return models.User{}, newError(ErrValidation, MsgInvalidRole)
	}

	_, err := a.usrProvider.User(ctx, email)
	switch {
	case err == nil:
		log.Warn("email already in use")
		return models.User{}, newError(ErrConflict, MsgEmailInUse)
	case !errors.Is(err, storage.ErrUserNotFound):
		log.Error("failed to look up user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	passHash, err := pwdhash.Hash(password)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Email:    email,
		Name:     name,
		Role:     role,
		PassHash: passHash,
	}

	user.ID, err = a.usrSaver.SaveUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("email already in use")
			return models.User{}, newError(ErrConflict, MsgEmailInUse)
		}

		log.Error("failed to save user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.Int64("uid", user.ID))

	return user, nil
}

// Login checks credentials and opens a session. Unknown email and wrong
// password fail identically.
func (a *Auth) Login(ctx context.Context, email, password string) (Issued, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.User(ctx, sanitize(email, a.policy.EmailMaxLen))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			pwdhash.VerifyDummy(password)
			log.Info("invalid credentials")
			return Issued{}, newError(ErrAuthentication, MsgInvalidCredentials)
		}

		log.Error("failed to get user", sl.Err(err))
		return Issued{}, fmt.Errorf("%s: %w", op, err)
	}

	if !pwdhash.Verify(password, user.PassHash) {
		log.Info("invalid credentials", slog.Int64("uid", user.ID))
		return Issued{}, newError(ErrAuthentication, MsgInvalidCredentials)
	}

	raw, err := token.NewSession()
	if err != nil {
		log.Error("failed to generate session token", sl.Err(err))
		return Issued{}, fmt.Errorf("%s: %w", op, err)
	}

	session := models.Session{
		ID:        token.Hash(raw),
		UserID:    user.ID,
		ExpiresAt: a.now().Add(a.policy.SessionTTL),
	}

	if err := a.sessions.SaveSession(ctx, session); err != nil {
		log.Error("failed to save session", sl.Err(err))
		return Issued{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in", slog.Int64("uid", user.ID))

	return Issued{Token: raw, ExpiresAt: session.ExpiresAt, User: user}, nil
}

// ValidateSession resolves a bearer token to its session. Expired sessions are
// deleted; sessions close to expiry get a fresh lifetime under the same id.
func (a *Auth) ValidateSession(ctx context.Context, rawToken string) (models.Session, error) {
	const op = "auth.ValidateSession"

	log := a.log.With(slog.String("op", op))

	if rawToken == "" {
		return models.Session{}, newError(ErrAuthentication, MsgInvalidSession)
	}

	session, err := a.sessions.Session(ctx, token.Hash(rawToken))
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return models.Session{}, newError(ErrAuthentication, MsgInvalidSession)
		}

		log.Error("failed to get session", sl.Err(err))
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	now := a.now()

	if session.IsExpired(now) {
		if err := a.sessions.DeleteSession(ctx, session.ID); err != nil {
			log.Error("failed to delete expired session", sl.Err(err))
			return models.Session{}, fmt.Errorf("%s: %w", op, err)
		}

		log.Debug("expired session removed", slog.Int64("uid", session.UserID))
		return models.Session{}, newError(ErrAuthentication, MsgInvalidSession)
	}

	if !now.Before(session.ExpiresAt.Add(-a.policy.RenewBefore)) {
		session.ExpiresAt = now.Add(a.policy.SessionTTL)

		if err := a.sessions.ExtendSession(ctx, session.ID, session.ExpiresAt); err != nil {
			log.Error("failed to extend session", sl.Err(err))
			return models.Session{}, fmt.Errorf("%s: %w", op, err)
		}

		log.Debug("session renewed", slog.Int64("uid", session.UserID))
	}

	return session, nil
}

// Logout removes the session for rawToken, if there is one.
func (a *Auth) Logout(ctx context.Context, rawToken string) error {
	const op = "auth.Logout"

	if rawToken == "" {
		return nil
	}

	if err := a.sessions.DeleteSession(ctx, token.Hash(rawToken)); err != nil {
		a.log.Error("failed to delete session", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *Auth) Me(ctx context.Context, uid int64) (models.User, error) {
	const op = "auth.Me"

	user, err := a.usrProvider.UserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, newError(ErrNotFound, MsgUserNotFound)
		}

		a.log.Error("failed to get user", slog.String("op", op), sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// ChangePassword revokes every session of the user before storing the new
// hash, so a failed update still leaves no session valid under the old one.
func (a *Auth) ChangePassword(
	ctx context.Context,
	uid int64,
	currentPassword, newPassword string,
) error {
	const op = "auth.ChangePassword"

	log := a.log.With(slog.String("op", op), slog.Int64("uid", uid))

	user, err := a.Me(ctx, uid)
	if err != nil {
		return err
	}

	if !pwdhash.Verify(currentPassword, user.PassHash) {
		log.Info("current password mismatch")
		return newError(ErrAuthentication, MsgWrongPassword)
	}

	if err := a.checkPassword(newPassword); err != nil {
		return err
	}

	passHash, err := pwdhash.Hash(newPassword)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.sessions.DeleteUserSessions(ctx, uid); err != nil {
		log.Error("failed to revoke sessions", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.usrSaver.UpdatePassword(ctx, uid, passHash); err != nil {
		log.Error("failed to update password", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("password changed")

	return nil
}

// RequestPasswordReset answers with the same message whether or not the
// email is registered.
func (a *Auth) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	const op = "auth.RequestPasswordReset"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.User(ctx, sanitize(email, a.policy.EmailMaxLen))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return MsgResetRequested, nil
		}

		log.Error("failed to get user", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	raw, err := token.NewReset()
	if err != nil {
		log.Error("failed to generate reset token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	expiresAt := a.now().Add(a.policy.ResetTTL)

	if err := a.usrSaver.SetResetToken(ctx, user.ID, token.Hash(raw), expiresAt); err != nil {
		log.Error("failed to store reset token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	err = resetmail.SendResetLink(ctx, log, a.publisher, a.policy.FrontendURL, user.Email, raw)
	if err != nil {
		log.Warn("reset link not queued", slog.Int64("uid", user.ID))
	} else {
		log.Info("reset link queued", slog.Int64("uid", user.ID))
	}

	return MsgResetRequested, nil
}

// ResetPassword consumes a reset token, stores the new password and revokes
// every session of the user.
func (a *Auth) ResetPassword(ctx context.Context, rawToken, newPassword string) (string, error) {
	const op = "auth.ResetPassword"

	log := a.log.With(slog.String("op", op))

	if rawToken == "" {
		return "", newError(ErrInvalidToken, MsgInvalidResetToken)
	}

	user, err := a.usrProvider.UserByResetToken(ctx, token.Hash(rawToken))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", newError(ErrInvalidToken, MsgInvalidResetToken)
		}

		log.Error("failed to get user", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if !a.now().Before(user.ResetTokenExpiry) {
		log.Info("reset token expired", slog.Int64("uid", user.ID))
		return "", newError(ErrInvalidToken, MsgInvalidResetToken)
	}

	if err := a.checkPassword(newPassword); err != nil {
		return "", err
	}

	passHash, err := pwdhash.Hash(newPassword)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := a.sessions.DeleteUserSessions(ctx, user.ID); err != nil {
		log.Error("failed to revoke sessions", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := a.usrSaver.CompleteReset(ctx, user.ID, passHash); err != nil {
		log.Error("failed to store new password", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("password reset", slog.Int64("uid", user.ID))

	return MsgResetDone, nil
}

func (a *Auth) checkPassword(password string) error {
	n := len([]rune(password))

	if n < a.policy.PasswordMinLen {
		return newError(ErrValidation,
			fmt.Sprintf("Password must be at least %d characters long", a.policy.PasswordMinLen))
	}

	if n > a.policy.PasswordMaxLen {
		return newError(ErrValidation,
			fmt.Sprintf("Password cannot exceed %d characters", a.policy.PasswordMaxLen))
	}

	return nil
}

// sanitize truncates s to maxLen characters, then trims it.
func sanitize(s string, maxLen int) string {
	if r := []rune(s); len(r) > maxLen {
		s = string(r[:maxLen])
	}

	return strings.TrimSpace(s)
}
