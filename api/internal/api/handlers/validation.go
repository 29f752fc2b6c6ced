package handlers

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// usernamePattern allows ASCII letters, digits, underscore and CJK ideographs.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_\x{4e00}-\x{9fa5}]{3,20}$`)

// Use a single instance of Validate, it caches struct info
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// ==============================================================================
// Request Payloads (Input Validation)
// ==============================================================================

type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type LoginRequest struct {
	// Username may also be the account's email address.
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type UpdateProfileRequest struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Nickname *string `json:"nickname" validate:"omitempty,max=50"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required,max=128"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=128"`
}

type UpdateAPIConfigRequest struct {
	AIModel     *string  `json:"aiModel" validate:"omitempty,max=100"`
	APIKey      *string  `json:"apiKey" validate:"omitempty,max=512"`
	APIBaseURL  *string  `json:"apiBaseUrl" validate:"omitempty,max=512"`
	MaxTokens   *int     `json:"maxTokens" validate:"omitempty,min=100,max=4000"`
	Temperature *float64 `json:"temperature" validate:"omitempty,min=0,max=2"`
}

type TestAPIRequest struct {
	APIKey     string `json:"apiKey" validate:"required,max=512"`
	AIModel    string `json:"aiModel" validate:"max=100"`
	APIBaseURL string `json:"apiBaseUrl" validate:"max=512"`
}
