// Package validate checks signup and login input. It never touches storage.
package validate

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/dtroode/farmgate-identity/internal/apierror"
	"github.com/dtroode/farmgate-identity/internal/model"
)

const (
	minEmailLength = 5
	maxEmailLength = 100
	minPhoneLength = 10
	maxPhoneLength = 20
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
)

var v = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("contact_email", isEmail); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("contact_phone", isPhone); err != nil {
		panic(err)
	}
	return v
}

func isEmail(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	n := utf8.RuneCountInString(s)
	return n >= minEmailLength && n <= maxEmailLength && emailRegex.MatchString(s)
}

func isPhone(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return len(s) >= minPhoneLength && len(s) <= maxPhoneLength && phoneRegex.MatchString(s)
}

// messages maps the first failing Field.tag to the message shown to clients.
// Fields are checked in declaration order, so struct layout sets precedence.
var messages = map[string]string{
	"Name.required":           "Name is required",
	"Name.min":                "Name must be between 2 and 50 characters",
	"Name.max":                "Name must be between 2 and 50 characters",
	"Email.required_without":  "Either email or phone number is required",
	"Email.contact_email":     "Invalid email format",
	"Phone.contact_phone":     "Invalid phone number format",
	"ConfirmPassword.eqfield": "Passwords do not match",
	"Password.required":       "Password is required",
	"Password.min":            "Password must be at least 6 characters",
	"Password.max":            "Password is too long",
	"Role.oneof":              "Role must be one of farmer, buyer",
	"Address.required_if":     "Farm address is required for farmers",
	"Address.min":             "Please provide a complete farm address",
	"Address.max":             "Farm address is too long",
	"Contact.contact_email":   "Invalid email format",
	"Contact.contact_phone":   "Invalid phone number format",
}

func translate(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apierror.NewErrValidation("Invalid request")
	}

	fe := fieldErrs[0]
	if msg, ok := messages[fe.StructField()+"."+fe.Tag()]; ok {
		return apierror.NewErrValidation(msg)
	}
	return apierror.NewErrValidation("Invalid " + strings.ToLower(fe.StructField()))
}

// SignupInput is the raw signup request.
type SignupInput struct {
	Name            string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
	Role            string
	Address         string
}

// signupForm is a normalized SignupInput. A password mismatch is reported
// before the length rules, so ConfirmPassword precedes Password.
type signupForm struct {
	Name            string `validate:"required,min=2,max=50"`
	Email           string `validate:"required_without=Phone,omitempty,contact_email"`
	Phone           string `validate:"omitempty,contact_phone"`
	ConfirmPassword string `validate:"eqfield=Password"`
	Password        string `validate:"required,min=6,max=1024"`
	Role            string `validate:"oneof=farmer buyer"`
	Address         string `validate:"required_if=Role farmer,omitempty,min=10,max=255"`
}

// Signup is the validated, normalized form of a SignupInput.
type Signup struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     model.Role
	Address  string
}

// Contacts returns the contacts given on signup, email first.
func (s Signup) Contacts() []model.Contact {
	var contacts []model.Contact
	if s.Email != "" {
		contacts = append(contacts, model.Contact{Kind: model.ContactEmail, Value: s.Email})
	}
	if s.Phone != "" {
		contacts = append(contacts, model.Contact{Kind: model.ContactPhone, Value: s.Phone})
	}
	return contacts
}

// Contact classifies s as an email or a phone number.
func Contact(s string) (model.Contact, error) {
	s = strings.TrimSpace(s)
	if err := v.Var(s, "required"); err != nil {
		return model.Contact{}, apierror.NewErrValidation("Email or phone number is required")
	}

	kind, tag := model.ContactPhone, "contact_phone"
	if strings.Contains(s, "@") {
		kind, tag, s = model.ContactEmail, "contact_email", strings.ToLower(s)
	}
	if err := v.Var(s, tag); err != nil {
		return model.Contact{}, apierror.NewErrValidation(messages["Contact."+tag])
	}
	return model.Contact{Kind: kind, Value: s}, nil
}

// Password enforces the password policy on a password set without
// confirmation.
func Password(password string) error {
	if err := v.Struct(passwordForm{Password: password}); err != nil {
		return translate(err)
	}
	return nil
}

type passwordForm struct {
	Password string `validate:"required,min=6,max=1024"`
}

// SignupRequest validates a signup and normalizes its fields.
func SignupRequest(in SignupInput) (Signup, error) {
	form := signupForm{
		Name:            strings.TrimSpace(in.Name),
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:           strings.TrimSpace(in.Phone),
		ConfirmPassword: in.ConfirmPassword,
		Password:        in.Password,
	}
	// An unknown role parses to "" and fails oneof below.
	role, _ := model.ParseRole(in.Role)
	form.Role = string(role)
	// Only farmers keep an address.
	if form.Role == string(model.RoleFarmer) {
		form.Address = strings.TrimSpace(in.Address)
	}

	if err := v.Struct(form); err != nil {
		return Signup{}, translate(err)
	}

	return Signup{
		Name:     form.Name,
		Email:    form.Email,
		Phone:    form.Phone,
		Password: form.Password,
		Role:     model.Role(form.Role),
		Address:  form.Address,
	}, nil
}

type loginForm struct {
	Contact  string `validate:"required"`
	Password string `validate:"required"`
}

// LoginRequest validates login input and classifies the contact.
func LoginRequest(contact, password string) (model.Contact, error) {
	if err := v.Struct(loginForm{Contact: strings.TrimSpace(contact), Password: password}); err != nil {
		return model.Contact{}, apierror.NewErrValidation("Email/phone and password are required")
	}
	return Contact(contact)
}
