package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/middleware"
	"faithledger/internal/services"
)

// Flash messages of the account pages.
const (
	msgLoggedOut     = "You have been logged out."
	msgResetSent     = "Password reset link sent to your Gmail. Please check your inbox."
	msgResetComplete = "Password reset successful. You can now login."
)

// features is the pitch shown beside the login and registration forms.
var features = []string{
	"Track income and expenses",
	"Monthly reports and analytics",
	"Calendar overview",
	"Excel and PDF exports",
}

// AuthHandler handles sign-in, registration and password recovery.
type AuthHandler struct {
	view     *View
	sessions *middleware.Sessions
	users    services.UserServicer
	resets   services.PasswordResetServicer
	baseURL  string
}

// NewAuthHandler creates a new AuthHandler. Reset links point at baseURL.
func NewAuthHandler(view *View, sessions *middleware.Sessions, users services.UserServicer, resets services.PasswordResetServicer, baseURL string) *AuthHandler {
	return &AuthHandler{view: view, sessions: sessions, users: users, resets: resets, baseURL: baseURL}
}

// signedIn reports whether the request already carries a valid session of
// an active user.
func (h *AuthHandler) signedIn(c *gin.Context) bool {
	claims, ok := h.sessions.Current(c)
	if !ok {
		return false
	}
	user, err := h.users.GetUserByID(claims.Subject)
	return err == nil && user.IsActive
}

// LoginPage shows the sign-in form.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if h.signedIn(c) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.view.render(c, http.StatusOK, "login.html", gin.H{
		"Identifier": "",
		"Next":       c.Query("next"),
		"Error":      "",
		"Features":   features,
	})
}

// Login authenticates by username, falling back to email address.
func (h *AuthHandler) Login(c *gin.Context) {
	identifier := c.PostForm("identifier")
	next := c.PostForm("next")

	user, err := h.users.Authenticate(identifier, c.PostForm("password"))
	if err != nil {
		if !errors.Is(err, apperrors.ErrInvalidCredentials) {
			respondWithError(c, err)
			return
		}
		h.view.render(c, http.StatusOK, "login.html", gin.H{
			"Identifier": identifier,
			"Next":       next,
			"Error":      apperrors.ErrInvalidCredentials.Message,
			"Features":   features,
		})
		return
	}

	if err := h.sessions.Login(c, user); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	redirectWithFlash(c, middleware.FlashSuccess, "Welcome back, "+user.DisplayName()+"!", middleware.SafeNext(next))
}

// RegisterPage shows the sign-up form.
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	if h.signedIn(c) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.view.render(c, http.StatusOK, "register.html", gin.H{
		"Form":     services.RegisterInput{},
		"Errors":   apperrors.FieldErrors{},
		"Features": features,
	})
}

// Register creates an account and signs it in. Every invalid field is
// reported at once.
func (h *AuthHandler) Register(c *gin.Context) {
	in := services.RegisterInput{
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
		Email:     c.PostForm("email"),
		Username:  c.PostForm("username"),
		Password1: c.PostForm("password1"),
		Password2: c.PostForm("password2"),
	}

	user, err := h.users.Register(in)
	if err != nil {
		fields, ok := fieldErrors(err)
		if !ok {
			respondWithError(c, err)
			return
		}
		in.Password1, in.Password2 = "", ""
		h.view.render(c, http.StatusOK, "register.html", gin.H{
			"Form":     in,
			"Errors":   fields,
			"Features": features,
		})
		return
	}

	if err := h.sessions.Login(c, user); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	redirectWithFlash(c, middleware.FlashSuccess,
		"Welcome to FaithLedger, "+user.FirstName+"! Your account has been created.", "/")
}

// Logout clears the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Logout(c)
	redirectWithFlash(c, middleware.FlashInfo, msgLoggedOut, "/login")
}

// ForgotPasswordPage shows the reset request form.
func (h *AuthHandler) ForgotPasswordPage(c *gin.Context) {
	h.view.render(c, http.StatusOK, "forgot_password.html", gin.H{
		"Email":  "",
		"Errors": apperrors.FieldErrors{},
	})
}

// ForgotPassword emails a reset link. A delivery failure is reported as a
// flash message, never as an error page.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	email := c.PostForm("email")

	err := h.resets.RequestReset(c.Request.Context(), email, h.baseURL)
	switch {
	case err == nil:
		redirectWithFlash(c, middleware.FlashSuccess, msgResetSent, "/login")
	case errors.Is(err, apperrors.ErrEmailDelivery):
		redirectWithFlash(c, middleware.FlashError, apperrors.ErrEmailDelivery.Message, "/login")
	default:
		fields, ok := fieldErrors(err)
		if !ok {
			respondWithError(c, err)
			return
		}
		h.view.render(c, http.StatusOK, "forgot_password.html", gin.H{
			"Email":  email,
			"Errors": fields,
		})
	}
}

// ResetPasswordPage shows the new password form for a valid reset link.
func (h *AuthHandler) ResetPasswordPage(c *gin.Context) {
	uid, token := c.Param("uid"), c.Param("token")
	if _, err := h.resets.ResolveUser(uid, token); err != nil {
		h.rejectResetLink(c, err)
		return
	}
	h.view.render(c, http.StatusOK, "reset_password.html", gin.H{
		"UID":    uid,
		"Token":  token,
		"Errors": apperrors.FieldErrors{},
	})
}

// ResetPassword stores the new password of a valid reset link.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	uid, token := c.Param("uid"), c.Param("token")

	err := h.resets.ConfirmReset(uid, token, c.PostForm("new_password1"), c.PostForm("new_password2"))
	if err != nil {
		if fields, ok := fieldErrors(err); ok {
			h.view.render(c, http.StatusOK, "reset_password.html", gin.H{
				"UID":    uid,
				"Token":  token,
				"Errors": fields,
			})
			return
		}
		h.rejectResetLink(c, err)
		return
	}
	redirectWithFlash(c, middleware.FlashSuccess, msgResetComplete, "/login")
}

// rejectResetLink sends the visitor back to the login page without saying
// which part of the link was wrong.
func (h *AuthHandler) rejectResetLink(c *gin.Context, err error) {
	if !errors.Is(err, apperrors.ErrInvalidResetLink) {
		respondWithError(c, err)
		return
	}
	redirectWithFlash(c, middleware.FlashError, apperrors.ErrInvalidResetLink.Message, "/login")
}
