package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minishop/models"
)

func signupAndVerify(t *testing.T, f *fixture, email, password string) *models.User {
	t.Helper()
	ctx := context.Background()
	user, err := f.auth.Signup(ctx, SignupInput{FirstName: "Ada", Email: email, Password: password})
	require.NoError(t, err)
	code := codeFrom(t, f.mail.last(t).HTML, "?token=", `"`)
	_, err = f.auth.Verify(ctx, code)
	require.NoError(t, err)
	return user
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.auth.Signup(ctx, SignupInput{FirstName: "Ada", Email: " Ada@Minishop.io ", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "ada@minishop.io", user.Email)
	assert.Equal(t, []string{models.RoleUser}, user.Roles)

	msg := f.mail.last(t)
	assert.Equal(t, "ada@minishop.io", msg.To)
	code := codeFrom(t, msg.HTML, "?token=", `"`)
	assert.Regexp(t, "^"+user.PublicID+`\.[0-9a-f]{20}$`, code)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := f.auth.Signup(ctx, SignupInput{Email: "ada@minishop.io", Password: "another-pass"})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := f.auth.Signup(ctx, SignupInput{Email: "not-an-email", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = f.auth.Signup(ctx, SignupInput{Email: "bob@minishop.io", Password: "short"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("login before verification", func(t *testing.T) {
		_, err := f.auth.Login(ctx, LoginInput{Email: "ada@minishop.io", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("bad verification code", func(t *testing.T) {
		_, err := f.auth.Verify(ctx, user.PublicID+".deadbeef")
		assert.ErrorIs(t, err, ErrUnauthorized)
		_, err = f.auth.Verify(ctx, "garbage")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	pair, err := f.auth.Verify(ctx, code)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	t.Run("code is single use", func(t *testing.T) {
		_, err := f.auth.Verify(ctx, code)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.auth.Login(ctx, LoginInput{Email: "ada@minishop.io", Password: "wrong-pass"})
		assert.ErrorIs(t, err, ErrUnauthorized)
		_, err = f.auth.Login(ctx, LoginInput{Email: "nobody@minishop.io", Password: "wrong-pass"})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	pair, err = f.auth.Login(ctx, LoginInput{Email: "ada@minishop.io", Password: "s3cret-pass"})
	require.NoError(t, err)

	principal, err := f.auth.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.PublicID, principal.UserID)
	assert.Equal(t, []string{models.RoleUser}, principal.Roles)

	_, err = f.auth.Authenticate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerificationCodeExpires(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.auth.Signup(ctx, SignupInput{Email: "late@minishop.io", Password: "s3cret-pass"})
	require.NoError(t, err)
	code := codeFrom(t, f.mail.last(t).HTML, "?token=", `"`)

	stored, err := f.store.Users().GetByID(ctx, user.PublicID)
	require.NoError(t, err)
	past := time.Now().Add(-time.Minute)
	stored.TokenExpiredAt = &past
	require.NoError(t, f.store.Users().Update(ctx, stored))

	_, err = f.auth.Verify(ctx, code)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, f.auth.ResendVerification(ctx, "late@minishop.io"))
	fresh := codeFrom(t, f.mail.last(t).HTML, "?token=", `"`)
	assert.NotEqual(t, code, fresh)
	_, err = f.auth.Verify(ctx, fresh)
	assert.NoError(t, err)

	assert.ErrorIs(t, f.auth.ResendVerification(ctx, "ghost@minishop.io"), ErrNotFound)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := signupAndVerify(t, f, "ref@minishop.io", "s3cret-pass")

	pair, err := f.auth.Login(ctx, LoginInput{Email: "ref@minishop.io", Password: "s3cret-pass"})
	require.NoError(t, err)

	next, err := f.auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)

	t.Run("superseded token", func(t *testing.T) {
		_, err := f.auth.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := f.auth.Refresh(ctx, next.AccessToken)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("deactivated account", func(t *testing.T) {
		require.NoError(t, f.users.Deactivate(ctx, user.PublicID))
		_, err := f.auth.Refresh(ctx, next.RefreshToken)
		assert.Error(t, err)
		_, err = f.auth.Authenticate(ctx, next.AccessToken)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	signupAndVerify(t, f, "reset@minishop.io", "old-password")

	require.NoError(t, f.auth.RequestPasswordReset(ctx, "reset@minishop.io"))
	otp := codeFrom(t, f.mail.last(t).HTML, "reset code is ", "<")
	assert.Regexp(t, `\.[0-9]{5}$`, otp)

	_, err := f.auth.ConfirmPasswordReset(ctx, ResetPasswordInput{OTP: otp, Password: "tiny"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	pair, err := f.auth.ConfirmPasswordReset(ctx, ResetPasswordInput{OTP: otp, Password: "new-password"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	_, err = f.auth.Login(ctx, LoginInput{Email: "reset@minishop.io", Password: "old-password"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.auth.Login(ctx, LoginInput{Email: "reset@minishop.io", Password: "new-password"})
	assert.NoError(t, err)

	assert.ErrorIs(t, f.auth.RequestPasswordReset(ctx, ""), ErrInvalidInput)
}

func TestIssuedBeforePasswordChange(t *testing.T) {
	changed := time.Unix(1_700_000_000, 0)
	user := &models.User{ChangedPasswordAt: &changed}

	assert.True(t, issuedBeforePasswordChange(user, changed.Unix()-1))
	assert.False(t, issuedBeforePasswordChange(user, changed.Unix()))
	assert.False(t, issuedBeforePasswordChange(&models.User{}, 0))
}
