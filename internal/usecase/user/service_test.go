package user

import (
	"context"
	"net/url"
	"testing"
	"time"

	"pet-adoption-marketplace/internal/auth"
	"pet-adoption-marketplace/internal/config"
	domainUser "pet-adoption-marketplace/internal/domain/user"
	"pet-adoption-marketplace/internal/infrastructure/database/memory"
	appErrors "pet-adoption-marketplace/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jwtConfig = config.JWTConfig{
	AccessSecret:  "access-secret-for-tests",
	RefreshSecret: "refresh-secret-for-tests",
	AccessExpiry:  15 * time.Minute,
	RefreshExpiry: time.Hour,
	Issuer:        "test",
}

type capturingNotifier struct {
	links []string
}

func (n *capturingNotifier) SendPasswordReset(_ context.Context, _ *domainUser.User, link string) error {
	n.links = append(n.links, link)
	return nil
}

func (n *capturingNotifier) lastToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, n.links)
	u, err := url.Parse(n.links[len(n.links)-1])
	require.NoError(t, err)
	return u.Query().Get("token")
}

type fixture struct {
	svc      *Service
	users    *memory.UserRepository
	resets   *memory.ResetTokenRepository
	notifier *capturingNotifier
}

func newFixture(t *testing.T, authCfg config.AuthConfig, resetCfg config.PasswordResetConfig) *fixture {
	t.Helper()
	tokens, err := auth.NewTokenService(jwtConfig)
	require.NoError(t, err)

	if resetCfg.TTL == 0 {
		resetCfg.TTL = 30 * time.Minute
	}
	if resetCfg.AppBaseURL == "" {
		resetCfg.AppBaseURL = "http://localhost:5173/"
	}

	f := &fixture{
		users:    memory.NewUserRepository(),
		resets:   memory.NewResetTokenRepository(),
		notifier: &capturingNotifier{},
	}
	f.svc = NewService(f.users, f.resets, tokens, f.notifier, authCfg, resetCfg)
	return f
}

func registerRequest(username string) *RegisterRequest {
	return &RegisterRequest{
		Username:     username,
		FullName:     "Alice Example",
		Email:        username + "@Example.com",
		Password:     "password123",
		ContactPhone: "555-123-4567",
	}
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := appErrors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr.Code
}

func TestRegisterThenLogin(t *testing.T) {
	f := newFixture(t, config.AuthConfig{}, config.PasswordResetConfig{})
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, registerRequest("alice"))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", reg.User.Email)
	assert.Equal(t, "5551234567", reg.User.Phone)
	assert.Equal(t, domainUser.RoleUser, reg.User.Role)
	assert.NotEmpty(t, reg.User.Avatar)
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotEmpty(t, reg.RefreshToken)

	for _, req := range []*LoginRequest{
		{Email: "ALICE@example.com", Password: "password123"},
		{Username: "Alice", Password: "password123"},
		{Identifier: "alice@example.com", Password: "password123"},
		{Identifier: "alice", Password: "password123"},
	} {
		login, err := f.svc.Login(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID, login.User.ID)
	}

	_, err = f.svc.Login(ctx, &LoginRequest{Username: "alice", Password: "wrong-password"})
	assert.Equal(t, appErrors.CodeUnauthenticated, codeOf(t, err))

	_, err = f.svc.Login(ctx, &LoginRequest{Username: "nobody", Password: "password123"})
	assert.Equal(t, appErrors.CodeUnauthenticated, codeOf(t, err))

	_, err = f.svc.Login(ctx, &LoginRequest{Password: "password123"})
	assert.Equal(t, appErrors.CodeValidation, codeOf(t, err))
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t, config.AuthConfig{}, config.PasswordResetConfig{})
	ctx := context.Background()

	req := registerRequest("alice")
	req.ContactPhone = ""
	req.Phone = "12345"
	_, err := f.svc.Register(ctx, req)
	assert.Equal(t, appErrors.CodeValidation, codeOf(t, err))

	req = registerRequest("alice")
	req.Password = "this-password-is-too-long"
	_, err = f.svc.Register(ctx, req)
	assert.Equal(t, appErrors.CodeValidation, codeOf(t, err))

	req = registerRequest("al")
	_, err = f.svc.Register(ctx, req)
	assert.Equal(t, appErrors.CodeValidation, codeOf(t, err))
}

func TestRegister_DuplicateDoesNotRevealField(t *testing.T) {
	f := newFixture(t, config.AuthConfig{}, config.PasswordResetConfig{})
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerRequest("alice"))
	require.NoError(t, err)

	dupName := registerRequest("ALICE")
	dupName.Email = "fresh@example.com"
	_, err = f.svc.Register(ctx, dupName)
	require.Error(t, err)
	appErr, _ := appErrors.As(err)
	assert.Equal(t, appErrors.CodeConflict, appErr.Code)
	assert.Equal(t, "Email or username already in use", appErr.Message)

	dupMail := registerRequest("someone")
	dupMail.Email = "alice@example.com"
	_, err = f.svc.Register(ctx, dupMail)
	assert.Equal(t, appErrors.CodeConflict, codeOf(t, err))
}

func TestRefreshCookieMode(t *testing.T) {
	f := newFixture(t, config.AuthConfig{UseRefreshCookie: true}, config.PasswordResetConfig{})

	reg, err := f.svc.Register(context.Background(), registerRequest("alice"))
	require.NoError(t, err)
	assert.Empty(t, reg.RefreshToken)
	assert.NotEmpty(t, reg.RefreshCookie)
	assert.Equal(t, time.Hour, reg.RefreshTTL)

	refreshed, err := f.svc.Refresh(context.Background(), reg.RefreshCookie)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestRefresh_Failures(t *testing.T) {
	f := newFixture(t, config.AuthConfig{}, config.PasswordResetConfig{})
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, registerRequest("alice"))
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, "")
	assert.Equal(t, appErrors.CodeUnauthenticated, codeOf(t, err))

	_, err = f.svc.Refresh(ctx, reg.AccessToken)
	assert.Equal(t, appErrors.CodeUnauthenticated, codeOf(t, err))

	stale, err := auth.NewTokenService(jwtConfig)
	require.NoError(t, err)
	stale.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	u, err := f.users.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	expired, _, err := stale.IssueRefreshToken(u)
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, expired)
	assert.Equal(t, appErrors.CodeTokenExpired, codeOf(t, err))

	require.NoError(t, f.users.Delete(ctx, reg.User.ID))
	_, err = f.svc.Refresh(ctx, reg.RefreshToken)
	assert.Equal(t, appErrors.CodeUnauthenticated, codeOf(t, err))
}

func TestPasswordReset_SingleUse(t *testing.T) {
	f := newFixture(t, config.AuthConfig{}, config.PasswordResetConfig{})
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerRequest("alice"))
	require.NoError(t, err)

	resp, err := f.svc.ForgotPassword(ctx, &ForgotPasswordRequest{Email: "ALICE@example.com"})
	require.NoError(t, err)
	assert.Empty(t, resp.Link)
	token := f.notifier.lastToken(t)
	assert.Len(t, token, 64)
	assert.Contains(t, f.notifier.links[0], "http://localhost:5173/reset-password?token=")

	require.NoError(t, f.svc.ResetPassword(ctx, &ResetPasswordRequest{Token: token, Password: "brand-new-pass"}))

	err = f.svc.ResetPassword(ctx, &ResetPasswordRequest{Token: token, Password: "another-pass"})
	require.Error(t, err)
	appErr, _ := appErrors.As(err)
	assert.Equal(t, "Invalid or expired token", appErr.Message)

	_, err = f.svc.Login(ctx, &LoginRequest{Username: "alice", Password: "brand-new-pass"})
	assert.NoError(t, err)
}

func TestForgotPassword_NewTokenInvalidatesOld(t *testing.T) {
	f := newFixture(t, config.AuthConfig{}, config.PasswordResetConfig{})
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerRequest("alice"))
	require.NoError(t, err)

	_, err = f.svc.ForgotPassword(ctx, &ForgotPasswordRequest{Email: "alice@example.com"})
	require.NoError(t, err)
	first := f.notifier.lastToken(t)

	_, err = f.svc.ForgotPassword(ctx, &ForgotPasswordRequest{Email: "alice@example.com"})
	require.NoError(t, err)
	second := f.notifier.lastToken(t)
	require.NotEqual(t, first, second)

	err = f.svc.ResetPassword(ctx, &ResetPasswordRequest{Token: first, Password: "brand-new-pass"})
	assert.Equal(t, appErrors.CodeValidation, codeOf(t, err))
	assert.NoError(t, f.svc.ResetPassword(ctx, &ResetPasswordRequest{Token: second, Password: "brand-new-pass"}))
}

func TestForgotPassword_UnknownEmailSucceedsQuietly(t *testing.T) {
	f := newFixture(t, config.AuthConfig{}, config.PasswordResetConfig{SendLinkInResponse: true})

	resp, err := f.svc.ForgotPassword(context.Background(), &ForgotPasswordRequest{Email: "ghost@example.com"})
	require.NoError(t, err)
	assert.Empty(t, resp.Link)
	assert.Empty(t, f.notifier.links)
}

func TestForgotPassword_ExposesLinkWhenEnabled(t *testing.T) {
	f := newFixture(t, config.AuthConfig{}, config.PasswordResetConfig{SendLinkInResponse: true})
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerRequest("alice"))
	require.NoError(t, err)

	resp, err := f.svc.ForgotPassword(ctx, &ForgotPasswordRequest{Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, f.notifier.links[0], resp.Link)
}

func TestResetPassword_Expired(t *testing.T) {
	f := newFixture(t, config.AuthConfig{}, config.PasswordResetConfig{})
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerRequest("alice"))
	require.NoError(t, err)
	_, err = f.svc.ForgotPassword(ctx, &ForgotPasswordRequest{Email: "alice@example.com"})
	require.NoError(t, err)
	token := f.notifier.lastToken(t)

	f.svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	err = f.svc.ResetPassword(ctx, &ResetPasswordRequest{Token: token, Password: "brand-new-pass"})
	assert.Equal(t, appErrors.CodeValidation, codeOf(t, err))

	f.svc.cleanupExpiredResetTokens(ctx)
	_, err = f.resets.FindActive(ctx, token)
	assert.ErrorIs(t, err, domainUser.ErrResetTokenNotFound)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t, config.AuthConfig{}, config.PasswordResetConfig{})
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, registerRequest("alice"))
	require.NoError(t, err)

	err = f.svc.ChangePassword(ctx, reg.User.ID, &ChangePasswordRequest{CurrentPassword: "nope-nope", NewPassword: "new-password-1"})
	assert.Equal(t, appErrors.CodeValidation, codeOf(t, err))

	require.NoError(t, f.svc.ChangePassword(ctx, reg.User.ID, &ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "new-password-1"}))
	_, err = f.svc.Login(ctx, &LoginRequest{Username: "alice", Password: "new-password-1"})
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t, config.AuthConfig{}, config.PasswordResetConfig{})
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, registerRequest("alice"))
	require.NoError(t, err)

	name := "  Alice Liddell  "
	phone := "+44 20 7946 0958"
	updated, err := f.svc.UpdateProfile(ctx, reg.User.ID, &UpdateProfileRequest{FullName: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", updated.FullName)
	assert.Equal(t, "442079460958", updated.Phone)

	short := "1"
	_, err = f.svc.UpdateProfile(ctx, reg.User.ID, &UpdateProfileRequest{FullName: &short})
	assert.Equal(t, appErrors.CodeValidation, codeOf(t, err))
}

func TestAdminOperations(t *testing.T) {
	f := newFixture(t, config.AuthConfig{}, config.PasswordResetConfig{})
	ctx := context.Background()

	alice, err := f.svc.Register(ctx, registerRequest("alice"))
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, registerRequest("bob"))
	require.NoError(t, err)

	users, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, f.svc.DeleteUser(ctx, alice.User.ID))
	_, err = f.svc.GetUser(ctx, alice.User.ID)
	assert.Equal(t, appErrors.CodeNotFound, codeOf(t, err))
	assert.Equal(t, appErrors.CodeNotFound, codeOf(t, f.svc.DeleteUser(ctx, alice.User.ID)))
}
