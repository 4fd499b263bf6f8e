// =============================================================================
// Business Search - Validation
// =============================================================================
//
// This module validates configuration and HTTP request bodies using struct
// tags. Failures are translated into readable English messages, collected
// per field rather than stopping at the first one.
//
// =============================================================================

package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New()

	uni := ut.New(en.New(), en.New())
	trans, _ = uni.GetTranslator("en")

	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	_ = validate.RegisterTranslation("required", trans, func(ut ut.Translator) error {
		return ut.Add("required", "{0} is a required field", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("required", fe.Field())
		return t
	})
}

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError describes one field that failed validation.
type ValidationError struct {
	// Field is the struct path of the field, e.g. "Config.Server.Port".
	Field string

	// Message is the translated, human readable reason.
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Errors is the set of failures for one value.
type Errors []*ValidationError

func (e Errors) Error() string {
	return FormatErrors(e)
}

// =============================================================================
// VALIDATION
// =============================================================================

// Struct validates v against its `validate` tags. It returns nil or an
// Errors value sorted by field.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	errs := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, &ValidationError{
			Field:   fe.Namespace(),
			Message: fe.Translate(trans),
		})
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return errs
}

// FormatErrors joins the messages of errs into a single line.
func FormatErrors(errs []*ValidationError) string {
	if len(errs) == 0 {
		return ""
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Wrap prefixes a validation failure with context.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}
