package internaltypes

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	locale := en.New()
	translator, _ = ut.New(locale, locale).GetTranslator("en")

	validate = validator.New(validator.WithRequiredStructEnabled())
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// report fields by their form names, matching what templates look up
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterTranslation("required", translator,
		func(t ut.Translator) error { return t.Add("required", "This field is required.", true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T("required", fe.Field())
			return s
		},
	)
}

// ValidateForm checks v against its `validate` struct tags. Failures come
// back as a *ValidationError with one message per field.
func ValidateForm(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	fields := make(map[string]string, len(ves))
	for _, fe := range ves {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = fe.Translate(translator)
	}
	return &ValidationError{Fields: fields, Err: ErrInvalidInput}
}
