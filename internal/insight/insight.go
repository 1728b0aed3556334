// Package insight turns a validation result into a short descriptive sentence.
package insight

import (
	"strings"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
)

const (
	InvalidNumber = "This phone number appears to be invalid or not in service. It may be a typo or a disconnected number."
	genericValid  = "This appears to be a valid phone number."
	trustSuffix   = " Based on the validation, this number is legitimate and properly formatted for its region."
)

// Describe is deterministic. Clauses always appear in the order
// line type, carrier, location, country.
func Describe(res domain.ValidationResult) string {
	if !res.Valid {
		return InvalidNumber
	}

	clauses := make([]string, 0, 4)

	switch res.LineType {
	case "mobile":
		clauses = append(clauses, "This is a mobile number")
	case "landline":
		clauses = append(clauses, "This is a landline number")
	}
	if res.Carrier != "" {
		clauses = append(clauses, "registered with "+res.Carrier)
	}
	if res.Location != "" {
		clauses = append(clauses, "located in "+res.Location)
	}
	if res.CountryName != "" {
		clauses = append(clauses, "from "+res.CountryName)
	}

	summary := genericValid
	if len(clauses) > 0 {
		summary = strings.Join(clauses, ", ") + "."
	}
	return summary + trustSuffix
}
