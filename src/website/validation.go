package website

import (
	"errors"
	"reflect"
	"strings"

	"git.nurpath.academy/nurpath/portal/src/authoring"
	"git.nurpath.academy/nurpath/portal/src/oops"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	formValidator  *validator.Validate
	formTranslator ut.Translator

	// custom validation tags
	notBlankTag     = "notblank"
	phaseTag        = "phase"
	lessonStatusTag = "lessonstatus"
)

func init() {
	formValidator = validator.New()

	// English error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	formTranslator, _ = uni.GetTranslator("en")
	mustRegister(en_translations.RegisterDefaultTranslations(formValidator, formTranslator), "default translations")

	// Errors name the form field, not the Go field.
	formValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(formValidator.RegisterValidation(notBlankTag, notBlankValidation), notBlankTag)
	mustRegister(formValidator.RegisterValidation(phaseTag, phaseValidation), phaseTag)
	mustRegister(formValidator.RegisterValidation(lessonStatusTag, lessonStatusValidation), lessonStatusTag)

	registerCustomValidationsTranslations(notBlankTag, phaseTag, lessonStatusTag)
}

// The translator func is already registered as the default, so a no-op
// register func is enough here.
func registerCustomValidationsTranslations(tags ...string) {
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range tags {
		mustRegister(formValidator.RegisterTranslation(tag, formTranslator, registerFn, translateCustomValidationErrs), tag+" translation")
	}
}

// A validator that fails to register would silently accept bad forms.
func mustRegister(err error, what string) {
	if err != nil {
		panic(oops.New(err, "failed to register form validation: %s", what))
	}
}

func translateCustomValidationErrs(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case phaseTag:
		return fe.Field() + " must be a course phase"
	case lessonStatusTag:
		return fe.Field() + " must be draft, ready or published"
	default:
		return ""
	}
}

func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func phaseValidation(fl validator.FieldLevel) bool {
	_, err := authoring.ParsePhase(fl.Field().String())
	return err == nil
}

func lessonStatusValidation(fl validator.FieldLevel) bool {
	_, err := authoring.ParseLessonStatus(fl.Field().String())
	return err == nil
}

// Returns nil, or a SafeError listing every problem with the form.
func validateForm(form any) error {
	err := formValidator.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return oops.New(err, "failed to validate form")
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(formTranslator))
	}
	return NewSafeError(err, "%s", strings.Join(msgs, "; "))
}
