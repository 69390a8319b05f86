// Package validation checks login and registration payloads and persisted
// user records. It never panics on bad input: every problem is reported as
// a field-level message in Errors.
package validation

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/staffhub/internal/server/models"
)

// SpecialChars is the set a registration password must draw from.
const SpecialChars = "!@#$%^&*"

// Password length bounds in characters, shared by login and registration.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 20
)

// MaxNameLength bounds profile names.
const MaxNameLength = 50

// Errors maps a JSON field path ("email", "profile.name") to its messages.
type Errors map[string][]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) add(field string, msgs ...string) {
	e[field] = append(e[field], msgs...)
}

// orNil keeps a nil Errors from turning into a non-nil error.
func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8,max=20"`
}

// ProfileInput is the optional profile part of a registration.
type ProfileInput struct {
	Name   string `json:"name" validate:"omitempty,min=2,max=50"`
	Avatar string `json:"avatar" validate:"omitempty,url"`
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Email    string        `json:"email" validate:"required,email"`
	Password string        `json:"password" validate:"strong_password"`
	Role     models.Role   `json:"role" validate:"omitempty,oneof=admin manager employee"`
	Profile  *ProfileInput `json:"profile"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
		return len(passwordProblems(fl.Field().String())) == 0
	}); err != nil {
		panic(err)
	}

	return v
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateLogin normalizes and checks a login payload. The returned error,
// when not nil, is Errors.
func ValidateLogin(in LoginInput) (LoginInput, error) {
	in.Email = NormalizeEmail(in.Email)
	return in, check(in)
}

// ValidateRegistration normalizes and checks a registration payload and
// applies the role default. The returned error, when not nil, is Errors.
func ValidateRegistration(in RegisterInput) (RegisterInput, error) {
	in.Email = NormalizeEmail(in.Email)
	if in.Profile != nil {
		p := *in.Profile
		p.Name = strings.TrimSpace(p.Name)
		in.Profile = &p
	}

	if err := check(in); err != nil {
		return in, err
	}

	if in.Role == "" {
		in.Role = models.RoleEmployee
	}
	return in, nil
}

// ValidateUser re-checks a record at the persistence boundary.
func ValidateUser(u *models.User) error {
	errs := Errors{}

	if u == nil {
		errs.add("user", "User is required")
		return errs
	}

	if err := validate.Var(u.Email, "required,email"); err != nil {
		errs.add("email", messageFor("email", err.(validator.ValidationErrors)[0]))
	}
	if u.PasswordHash == "" {
		errs.add("password", "Password hash is required")
	}
	if !u.Role.Valid() {
		errs.add("role", roleMessage)
	}
	// Names derived from an email local part may be a single character, so
	// only the upper bound applies to stored records.
	if u.Profile != nil {
		if utf8.RuneCountInString(u.Profile.Name) > MaxNameLength {
			errs.add("profile.name", "Name cannot exceed 50 characters")
		}
		if err := validate.Var(u.Profile.Avatar, "omitempty,url"); err != nil {
			errs.add("profile.avatar", "Please enter a valid URL for the avatar")
		}
	}
	for _, a := range u.ActivityLog {
		if a.Action == "" || a.Timestamp.IsZero() {
			errs.add("activityLog", "Activity entries need an action and a timestamp")
			break
		}
	}

	return errs.orNil()
}

// DecodeError converts a request body decoding failure into Errors, so that
// type mismatches surface as field messages like any other rule.
func DecodeError(err error) Errors {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return Errors{field: {"Expected " + typeErr.Type.Kind().String() + ", received " + typeErr.Value}}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return Errors{"body": {"Malformed JSON"}}
	case errors.Is(err, io.EOF):
		return Errors{"body": {"Request body is required"}}
	default:
		return Errors{"body": {"Invalid request body"}}
	}
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	errs := Errors{}
	collect(errs, err)
	return errs.orNil()
}

func collect(errs Errors, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.add("body", err.Error())
		return
	}

	for _, fe := range verrs {
		path := fe.Namespace()
		// drop the struct name: "RegisterInput.profile.name" -> "profile.name"
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}

		if fe.Tag() == "strong_password" {
			errs.add(path, passwordProblems(fe.Value().(string))...)
			continue
		}
		errs.add(path, messageFor(path, fe))
	}
}

const roleMessage = "Role must be one of: admin, manager, employee"

func messageFor(path string, fe validator.FieldError) string {
	switch path + "/" + fe.Tag() {
	case "email/required":
		return "Email is required"
	case "email/email":
		return "Please enter a valid email address"
	case "password/min":
		return "Password must be at least 8 characters long"
	case "password/max":
		return "Password cannot exceed 20 characters"
	case "role/oneof":
		return roleMessage
	case "profile.name/min":
		return "Name must be at least 2 characters"
	case "profile.name/max":
		return "Name cannot exceed 50 characters"
	case "profile.avatar/url":
		return "Please enter a valid URL for the avatar"
	}
	return "Invalid value"
}

func passwordProblems(pw string) []string {
	var problems []string

	// Same bounds as LoginInput, counted in runes like the validator does.
	// With the three required ASCII classes, 20 runes stay under bcrypt's
	// 72-byte limit.
	n := utf8.RuneCountInString(pw)
	if n < MinPasswordLength {
		problems = append(problems, "Password must be at least 8 characters long")
	}
	if n > MaxPasswordLength {
		problems = append(problems, "Password cannot exceed 20 characters")
	}
	if !strings.ContainsAny(pw, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		problems = append(problems, "Password must contain at least one uppercase letter")
	}
	if !strings.ContainsAny(pw, "0123456789") {
		problems = append(problems, "Password must contain at least one number")
	}
	if !strings.ContainsAny(pw, SpecialChars) {
		problems = append(problems, "Password must contain at least one special character (!@#$%^&*)")
	}

	return problems
}
