package services

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/models"
)

// passwordSymbols is the set of characters that satisfy the symbol rule.
const passwordSymbols = `!@#$%^&*(),.?":{}|<>_-+=[]\/`

// Password policy messages. The reset form words the length rule slightly
// differently from the sign-up form.
const (
	msgPasswordShort      = "Password must be at least 8 characters."
	msgPasswordShortReset = "Password must be at least 8 characters long."
	msgPasswordDigit      = "Password must contain at least one number."
	msgPasswordSymbol     = "Password must contain at least one special character."
)

// passwordProblem returns the first policy rule pw breaks, or "".
func passwordProblem(pw, shortMsg string) string {
	if len([]rune(pw)) < 8 {
		return shortMsg
	}
	if !strings.ContainsFunc(pw, unicode.IsDigit) {
		return msgPasswordDigit
	}
	if !strings.ContainsAny(pw, passwordSymbols) {
		return msgPasswordSymbol
	}
	return ""
}

// userService handles user-related business logic.
type userService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db, now: time.Now}
}

// Register validates the sign-up form and creates an active user. Every
// failing field is reported in a single FieldErrors.
func (s *userService) Register(in RegisterInput) (*models.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	fields := apperrors.FieldErrors{}
	if in.FirstName == "" {
		fields.Add("first_name", "First name is required.")
	}
	if in.LastName == "" {
		fields.Add("last_name", "Last name is required.")
	}

	if in.Email == "" {
		fields.Add("email", "Email is required.")
	} else {
		taken, err := s.exists("email = ?", in.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			fields.Add("email", "This email is already registered.")
		}
	}

	if in.Username == "" {
		fields.Add("username", "Username is required.")
	} else {
		taken, err := s.exists("username = ?", in.Username)
		if err != nil {
			return nil, err
		}
		switch {
		case taken:
			fields.Add("username", "This username is already taken.")
		case len([]rune(in.Username)) < 3:
			fields.Add("username", "Username must be at least 3 characters.")
		}
	}

	if in.Password1 == "" {
		fields.Add("password1", "Password is required.")
	} else if msg := passwordProblem(in.Password1, msgPasswordShort); msg != "" {
		fields.Add("password1", msg)
	}
	if in.Password1 != "" && in.Password1 != in.Password2 {
		fields.Add("password2", "Passwords do not match.")
	}

	if err := fields.Err(); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashedPassword),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IsActive:  true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

func (s *userService) exists(query string, args ...interface{}) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where(query, args...).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// Authenticate checks identifier as a username first and then as an email
// address. Inactive users never authenticate. A successful login records
// the login time.
func (s *userService) Authenticate(identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.findActive("username = ?", identifier)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.VerifyPassword(user, password) {
		user, err = s.findActive("email = ?", identifier)
		if err != nil {
			return nil, err
		}
		if user == nil || !s.VerifyPassword(user, password) {
			return nil, apperrors.ErrInvalidCredentials
		}
	}

	now := s.now().UTC()
	if err := s.db.Model(user).UpdateColumn("last_login_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.LastLoginAt = &now

	return user, nil
}

// findActive returns the active user matching query, or nil when none does.
func (s *userService) findActive(query string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := s.db.Where(query, args...).Where("is_active = ?", true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.TrimSpace(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// SetPassword stores a new bcrypt hash for the user.
func (s *userService) SetPassword(userID, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("password", string(hashedPassword))
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
