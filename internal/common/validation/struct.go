package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"mca-workers/internal/models"
)

var (
	looseEmailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phoneCharsPattern = regexp.MustCompile(`^[0-9\-()+ .]+$`)

	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the MCA rule tags registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)

		mustRegister(v, "loose_email", func(fl validator.FieldLevel) bool {
			return looseEmailPattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "phone_chars", func(fl validator.FieldLevel) bool {
			return phoneCharsPattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "business_type", func(fl validator.FieldLevel) bool {
			return models.IsBusinessType(fl.Field().String())
		})
		mustRegister(v, "industry", func(fl validator.FieldLevel) bool {
			return models.IsIndustry(fl.Field().String())
		})
		instance = v
	})
	return instance
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s: %v", tag, err))
	}
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// FieldError is a per-field rule violation reported back to the caller
// rather than raised.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidateStruct runs the tag rules on v and returns one FieldError per
// failing field. A non-validation failure (e.g. a nil pointer) is returned
// as err.
func ValidateStruct(v interface{}) ([]FieldError, error) {
	err := Validator().Struct(v)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Code:    fieldErrorCode(fe),
			Message: fieldErrorMessage(fe),
		})
	}
	return out, nil
}

func fieldErrorCode(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "REQUIRED"
	case "loose_email", "email":
		return "INVALID_EMAIL"
	case "phone_chars":
		return "INVALID_PHONE"
	case "business_type", "industry", "oneof":
		return "INVALID_OPTION"
	case "gte", "gtefield":
		return "BELOW_MINIMUM"
	case "lte", "ltefield":
		return "ABOVE_MAXIMUM"
	default:
		return strings.ToUpper(fe.Tag())
	}
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "loose_email", "email":
		return "please enter a valid email address"
	case "phone_chars":
		return "please enter a valid phone number"
	case "business_type":
		return fmt.Sprintf("business type must be one of: %s", strings.Join(models.BusinessTypes, ", "))
	case "industry":
		return fmt.Sprintf("industry must be one of: %s", strings.Join(models.Industries, ", "))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", fe.Field(), lowerCamel(fe.Param()))
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

func lowerCamel(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
