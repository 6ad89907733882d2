// Package validator provides request validation based on go-playground/validator,
// with the SEC-specific rules (CIK, accession number, filing year) registered on
// both the global instance and, via RegisterRules, on gin's binding engine.
// Error messages are translated through universal-translator (en/zh).
package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Language constants for i18n support.
const (
	LangEN = "en"
	LangZH = "zh"
)

// Validator wraps go-playground/validator with domain rules and translations.
type Validator struct {
	validate *validator.Validate
	uni      *ut.UniversalTranslator
	trans    map[string]ut.Translator
	mu       sync.RWMutex
}

var (
	globalValidator *Validator
	once            sync.Once
)

// Global returns the global validator instance.
// It initializes the validator on first call with default settings.
func Global() *Validator {
	once.Do(func() {
		globalValidator = New()
	})
	return globalValidator
}

// New creates a new Validator instance with default configuration.
func New() *Validator {
	v := &Validator{
		validate: validator.New(),
		trans:    make(map[string]ut.Translator),
	}

	// Use JSON tag names for error field names
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	enLocale := en.New()
	zhLocale := zh.New()
	v.uni = ut.New(enLocale, enLocale, zhLocale)

	enTrans, _ := v.uni.GetTranslator(LangEN)
	_ = en_translations.RegisterDefaultTranslations(v.validate, enTrans)
	v.trans[LangEN] = enTrans

	zhTrans, _ := v.uni.GetTranslator(LangZH)
	_ = zh_translations.RegisterDefaultTranslations(v.validate, zhTrans)
	v.trans[LangZH] = zhTrans

	v.registerCustomRules()
	v.registerCustomTranslations()

	return v
}

// Validate validates a struct and returns validation errors.
func (v *Validator) Validate(s interface{}) error {
	return v.validate.Struct(s)
}

// ValidateWithLang validates a struct and returns translated validation errors.
func (v *Validator) ValidateWithLang(s interface{}, lang string) *ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return NewValidationError("unknown", "unknown", err.Error())
	}

	trans := v.GetTranslator(lang)
	return v.translateErrors(validationErrors, trans)
}

// ValidateVar validates a single variable against a tag expression.
func (v *Validator) ValidateVar(field interface{}, tag string) error {
	return v.validate.Var(field, tag)
}

// GetTranslator returns a translator for the specified language.
func (v *Validator) GetTranslator(lang string) ut.Translator {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if trans, ok := v.trans[lang]; ok {
		return trans
	}
	// Default to English
	return v.trans[LangEN]
}

// RegisterValidation registers a custom validation function.
func (v *Validator) RegisterValidation(tag string, fn validator.Func, callValidationEvenIfNull ...bool) error {
	return v.validate.RegisterValidation(tag, fn, callValidationEvenIfNull...)
}

// Engine returns the underlying validator.Validate instance.
// Use this only when direct access is absolutely necessary.
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

// translateErrors translates validation errors to human-readable messages.
func (v *Validator) translateErrors(errs validator.ValidationErrors, trans ut.Translator) *ValidationErrors {
	result := &ValidationErrors{
		Errors: make([]FieldError, 0, len(errs)),
	}

	for _, err := range errs {
		fe := FieldError{
			Field:   err.Field(),
			Tag:     err.Tag(),
			Value:   err.Value(),
			Param:   err.Param(),
			Message: err.Translate(trans),
		}
		result.Errors = append(result.Errors, fe)
	}

	return result
}

// Struct validates a struct (convenience wrapper for global validator).
func Struct(s interface{}) error {
	return Global().Validate(s)
}

// StructWithLang validates a struct with language support (convenience wrapper).
func StructWithLang(s interface{}, lang string) *ValidationErrors {
	return Global().ValidateWithLang(s, lang)
}

// Var validates a single variable (convenience wrapper for global validator).
func Var(field interface{}, tag string) error {
	return Global().ValidateVar(field, tag)
}
