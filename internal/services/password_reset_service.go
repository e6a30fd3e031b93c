package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/logger"
	"faithledger/internal/mailer"
	"faithledger/internal/models"
	"faithledger/internal/uuid"
)

const (
	resetTokenType = "password_reset"
	resetSubject   = "FaithLedger - Password Reset"
)

// resetClaims are the claims of a password reset token. The fingerprint ties
// the token to the account state it was issued for.
type resetClaims struct {
	Type        string `json:"type"`
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

// EncodeUID renders a user ID for use in a reset link.
func EncodeUID(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uid string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// passwordResetService issues and redeems password reset links.
type passwordResetService struct {
	users   UserServicer
	mail    mailer.Sender
	secret  []byte
	timeout time.Duration
	now     func() time.Time
}

// NewPasswordResetService creates a new PasswordResetServicer.
func NewPasswordResetService(users UserServicer, mail mailer.Sender, secret string, timeout time.Duration) PasswordResetServicer {
	return &passwordResetService{
		users:   users,
		mail:    mail,
		secret:  []byte(secret),
		timeout: timeout,
		now:     time.Now,
	}
}

// fingerprint changes whenever the password or the last login changes, so a
// reset or a fresh sign-in invalidates outstanding links.
func fingerprint(user *models.User) string {
	lastLogin := ""
	if user.LastLoginAt != nil {
		lastLogin = strconv.FormatInt(user.LastLoginAt.UTC().Unix(), 10)
	}
	sum := sha256.Sum256([]byte(user.ID + "|" + user.Password + "|" + lastLogin))
	return hex.EncodeToString(sum[:])
}

// MakeToken signs a reset token for user.
func (s *passwordResetService) MakeToken(user *models.User) (string, error) {
	now := s.now()
	claims := resetClaims{
		Type:        resetTokenType,
		Fingerprint: fingerprint(user),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   EncodeUID(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.timeout)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return token, nil
}

// CheckToken reports whether token is an unexpired reset token for user in
// its current state.
func (s *passwordResetService) CheckToken(user *models.User, token string) bool {
	claims := &resetClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return false
	}
	if claims.Type != resetTokenType || claims.Subject != EncodeUID(user.ID) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(claims.Fingerprint), []byte(fingerprint(user))) == 1
}

// RequestReset emails a reset link to the account registered under email.
// An unknown address is a field error; a delivery failure is returned as
// ErrEmailDelivery.
func (s *passwordResetService) RequestReset(ctx context.Context, email, baseURL string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperrors.FieldErrors{"email": "This field is required."}
	}

	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.FieldErrors{"email": "No account found with this email address."}
		}
		return err
	}

	token, err := s.MakeToken(user)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password/%s/%s", strings.TrimRight(baseURL, "/"), EncodeUID(user.ID), token)
	body := resetEmailBody(user.DisplayName(), link, s.timeout)

	if err := s.mail.Send(ctx, user.Email, resetSubject, body); err != nil {
		logger.Get().Errorw("Password reset email failed", "user_id", user.ID, "error", err)
		return apperrors.Wrap(apperrors.ErrEmailDelivery, err)
	}
	return nil
}

func resetEmailBody(name, link string, valid time.Duration) string {
	return fmt.Sprintf(`Hello %s,

You requested a password reset for your FaithLedger account.

Click the link below to reset your password (valid for %d minutes):
%s

If you did not request this, please ignore this email.

Best regards,
FaithLedger Team
`, name, int(valid.Minutes()), link)
}

// ResolveUser returns the user a reset link was issued for. Every failure
// collapses into ErrInvalidResetLink.
func (s *passwordResetService) ResolveUser(uid, token string) (*models.User, error) {
	id, err := DecodeUID(uid)
	if err != nil || !uuid.IsValid(id) {
		return nil, apperrors.ErrInvalidResetLink
	}

	user, err := s.users.GetUserByID(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidResetLink
		}
		return nil, err
	}

	if !s.CheckToken(user, token) {
		return nil, apperrors.ErrInvalidResetLink
	}
	return user, nil
}

// ConfirmReset validates the new password pair and stores it.
func (s *passwordResetService) ConfirmReset(uid, token, password1, password2 string) error {
	user, err := s.ResolveUser(uid, token)
	if err != nil {
		return err
	}

	fields := apperrors.FieldErrors{}
	if password1 == "" {
		fields.Add("new_password1", "This field is required.")
	} else if msg := passwordProblem(password1, msgPasswordShortReset); msg != "" {
		fields.Add("new_password1", msg)
	}
	if password2 == "" {
		fields.Add("new_password2", "This field is required.")
	} else if password1 != "" && password1 != password2 {
		fields.Add("new_password2", "The two password fields didn't match.")
	}
	if err := fields.Err(); err != nil {
		return err
	}

	return s.users.SetPassword(user.ID, password1)
}
