package users

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/wsauth/internal/common"
)

var usernameChars = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameChars.MatchString(fl.Field().String())
	})
	v.RegisterStructValidation(validateLoginIdentity, LoginRequest{})
	return v
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,max=32,username"`
	Password string `json:"password" validate:"required,max=128"`
}

// Normalize trims the identity fields and lowercases the email.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)
}

func (r *RegisterRequest) Validate() error {
	return validationError(validate.Struct(r))
}

// LoginRequest names the account by exactly one of Email, Username or
// Identifier. Identifier is read as an email when it contains '@'.
type LoginRequest struct {
	Email      string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Username   string `json:"username,omitempty" validate:"omitempty,max=254"`
	Identifier string `json:"identifier,omitempty" validate:"omitempty,max=254"`
	Password   string `json:"password" validate:"required,max=128"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)
	r.Identifier = strings.TrimSpace(r.Identifier)
}

func (r *LoginRequest) Validate() error {
	return validationError(validate.Struct(r))
}

func validateLoginIdentity(sl validator.StructLevel) {
	r := sl.Current().Interface().(LoginRequest)
	set := 0
	for _, v := range []string{r.Email, r.Username, r.Identifier} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		sl.ReportError(r.Email, "email", "Email", "one_identifier", "")
	}
}

// filter returns the single-field lookup for a normalized, valid request.
func (r *LoginRequest) filter() map[string]any {
	email, username := r.Email, r.Username
	if r.Identifier != "" {
		if strings.Contains(r.Identifier, "@") {
			email = strings.ToLower(r.Identifier)
		} else {
			username = r.Identifier
		}
	}
	if email != "" {
		return map[string]any{"email": email}
	}
	return map[string]any{"username": username}
}

// validationError folds validator failures into common.ErrorValidation with
// a message naming the first offending field.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return fmt.Errorf("%w: %s", common.ErrorValidation, describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " is not a valid email address"
	case "max":
		return fmt.Sprintf("%s is longer than %s characters", field, fe.Param())
	case "username":
		return "username may contain only letters, digits, '_', '.', '-'"
	case "one_identifier":
		return "exactly one of email or username is required"
	}
	return field + " is invalid"
}
