package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

var (
	cardNumberPattern = regexp.MustCompile(`^[0-9 ]{13,19}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	cvvPattern        = regexp.MustCompile(`^[0-9]{3}$`)
)

// Register adds the custom tags used by the form models to v
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"password_strength": passwordStrength,
		"card_number":       matches(cardNumberPattern),
		"card_expiry":       matches(expiryPattern),
		"card_cvv":          matches(cvvPattern),
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

// New returns a validator that reads `binding` tags like gin does, with the
// custom tags registered. Used where no gin context exists (CLI, services).
func New() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func passwordStrength(fl validator.FieldLevel) bool {
	return PasswordProblem(fl.Field().String()) == ""
}

// PasswordProblem returns the first complexity rule the password breaks, or ""
func PasswordProblem(password string) string {
	var hasDigit, hasUpper bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		}
	}

	switch {
	case !hasDigit:
		return "Password must contain at least one number"
	case !hasUpper:
		return "Password must contain at least one uppercase letter"
	case !strings.ContainsAny(password, passwordSpecials):
		return "Password must contain at least one special character"
	}
	return ""
}

// Problem is a user-facing message for one failed field
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Problems converts validator errors into messages. Other errors (for
// example a form value that is not a number) become a single problem.
func Problems(err error) []Problem {
	if err == nil {
		return nil
	}

	var out []Problem
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range validationErrors {
			out = append(out, Problem{Field: fe.Field(), Message: Message(fe)})
		}
		return out
	}

	return []Problem{{Field: "form", Message: "Please check the form values"}}
}

// Message renders a single field error
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		if fe.Kind().String() == "string" {
			return fe.Field() + " must be at least " + fe.Param() + " characters"
		}
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		if fe.Kind().String() == "string" {
			return fe.Field() + " must not exceed " + fe.Param() + " characters"
		}
		return fe.Field() + " must be at most " + fe.Param()
	case "gte":
		return fe.Field() + " must be " + fe.Param() + " or more"
	case "lte":
		return fe.Field() + " must be " + fe.Param() + " or less"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "url":
		return "Invalid URL format"
	case "uuid":
		return fe.Field() + " must be a UUID"
	case "password_strength":
		if msg := PasswordProblem(fe.Value().(string)); msg != "" {
			return msg
		}
		return "Password is too weak"
	case "card_number":
		return "Card number must be 13 to 19 digits"
	case "card_expiry":
		return "Expiry date must be MM/YY"
	case "card_cvv":
		return "CVV must be 3 digits"
	default:
		return fe.Field() + " is invalid"
	}
}

// Summary joins all problems into one line, suitable for a flash message
func Summary(err error) string {
	problems := Problems(err)
	msgs := make([]string, 0, len(problems))
	for _, p := range problems {
		msgs = append(msgs, p.Message)
	}
	return strings.Join(msgs, "; ")
}
