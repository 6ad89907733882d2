package validator

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Custom validation tags
const (
	TagCIK        = "cik"        // SEC Central Index Key (1-10 decimal digits)
	TagAccession  = "accession"  // EDGAR accession number (dashed or dashless)
	TagTicker     = "ticker"     // Exchange ticker symbol
	TagFilingYear = "filingyear" // Plausible EDGAR filing year
	TagSafeString = "safestring" // Safe string (no SQL injection, XSS patterns)
	TagTrimmed    = "trimmed"    // String should be trimmed (no leading/trailing spaces)
)

var (
	// Regex patterns
	cikRegex       = regexp.MustCompile(`^[0-9]{1,10}$`)
	accessionRegex = regexp.MustCompile(`^[0-9]{10}-[0-9]{2}-[0-9]{6}$|^[0-9]{18}$`)
	tickerRegex    = regexp.MustCompile(`^[A-Z]{1,5}([.-][A-Z]{1,2})?$`)

	// Dangerous patterns for safe string validation
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:",
		"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "DROP ",
		"UNION ", "OR 1=1", "' OR '", "-- ", "/*", "*/",
	}
)

// EDGAR went live for electronic filings in 1993; anything earlier is a typo.
const minFilingYear = 1993

// registerCustomRules registers all custom validation rules.
func (v *Validator) registerCustomRules() {
	RegisterRules(v.validate)
}

// RegisterRules registers the domain validation rules on an external engine.
// Call this with gin's binding engine so request structs can carry the same
// tags the global validator understands.
func RegisterRules(validate *validator.Validate) {
	_ = validate.RegisterValidation(TagCIK, validateCIK)
	_ = validate.RegisterValidation(TagAccession, validateAccession)
	_ = validate.RegisterValidation(TagTicker, validateTicker)
	_ = validate.RegisterValidation(TagFilingYear, validateFilingYear)
	_ = validate.RegisterValidation(TagSafeString, validateSafeString)
	_ = validate.RegisterValidation(TagTrimmed, validateTrimmed)
}

// validateCIK validates SEC Central Index Keys. Leading zeros are allowed;
// the value must be pure decimal digits, at most ten of them.
func validateCIK(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let 'required' handle empty values
	}
	return cikRegex.MatchString(value)
}

// validateAccession validates EDGAR accession numbers in either the dashed
// form (0000320193-24-000005) or the 18-digit dashless form.
func validateAccession(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return accessionRegex.MatchString(value)
}

// validateTicker validates exchange ticker symbols such as AAPL or BRK.B.
func validateTicker(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return tickerRegex.MatchString(value)
}

// validateFilingYear validates that an integer field holds a plausible
// EDGAR filing year: no earlier than 1993 and no later than next year.
func validateFilingYear(fl validator.FieldLevel) bool {
	year := fl.Field().Int()
	if year == 0 {
		return true
	}
	return year >= minFilingYear && year <= int64(time.Now().Year()+1)
}

// validateSafeString checks for potentially dangerous patterns.
func validateSafeString(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	upperValue := strings.ToUpper(value)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(upperValue, strings.ToUpper(pattern)) {
			return false
		}
	}

	return true
}

// validateTrimmed validates that string has no leading/trailing whitespace.
func validateTrimmed(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	if value != strings.TrimSpace(value) {
		return false
	}
	for _, char := range value {
		if unicode.IsControl(char) {
			return false
		}
	}
	return true
}
