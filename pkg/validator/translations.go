package validator

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// registerCustomTranslations registers translations for custom validation rules.
func (v *Validator) registerCustomTranslations() {
	if enTrans := v.GetTranslator(LangEN); enTrans != nil {
		v.registerEnglishTranslations(enTrans)
	}
	if zhTrans := v.GetTranslator(LangZH); zhTrans != nil {
		v.registerChineseTranslations(zhTrans)
	}
}

// registerEnglishTranslations registers English translations for custom rules.
func (v *Validator) registerEnglishTranslations(trans ut.Translator) {
	translations := map[string]string{
		TagCIK:        "{0} must be a valid SEC CIK (1-10 decimal digits)",
		TagAccession:  "{0} must be a valid EDGAR accession number",
		TagTicker:     "{0} must be a valid ticker symbol",
		TagFilingYear: "{0} must be a filing year no earlier than 1993",
		TagSafeString: "{0} contains potentially unsafe content",
		TagTrimmed:    "{0} must not have leading or trailing spaces",
	}

	for tag, message := range translations {
		registerTranslation(v.validate, trans, tag, message)
	}
}

// registerChineseTranslations registers Chinese translations for custom rules.
func (v *Validator) registerChineseTranslations(trans ut.Translator) {
	translations := map[string]string{
		TagCIK:        "{0}必须是有效的 SEC CIK（1-10 位十进制数字）",
		TagAccession:  "{0}必须是有效的 EDGAR 接收号",
		TagTicker:     "{0}必须是有效的股票代码",
		TagFilingYear: "{0}必须是不早于 1993 年的申报年份",
		TagSafeString: "{0}包含潜在的不安全内容",
		TagTrimmed:    "{0}不能有前导或尾随空格",
	}

	for tag, message := range translations {
		registerTranslation(v.validate, trans, tag, message)
	}
}

// registerTranslation registers a single translation.
func registerTranslation(validate *validator.Validate, trans ut.Translator, tag, message string) {
	_ = validate.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		},
	)
}

// RegisterTranslation registers a single translation override.
func (v *Validator) RegisterTranslation(lang, tag, message string) {
	trans := v.GetTranslator(lang)
	if trans == nil {
		return
	}

	registerTranslation(v.validate, trans, tag, message)
}
