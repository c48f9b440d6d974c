package schema

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

// Normalize converts a wire element name to the field key convention.
//
// Examples:
//   - "FirstName"    -> "first_name"
//   - "ContactID"    -> "contact_id"
//   - "AddressLine1" -> "address_line1"
//   - "is_active"    -> "is_active"
func Normalize(name string) string {
	tokens := tokenize(name)
	for i := range tokens {
		tokens[i] = strings.ToLower(tokens[i])
	}
	return strings.Join(tokens, "_")
}

// WireName derives the default wire element name for a field key.
func WireName(key string) string {
	return inflect.Camelize(key)
}

// Plural returns the collection element name for a model name, e.g. the
// <LineItems> wrapper around <LineItem> elements.
func Plural(model string) string {
	return inflect.Pluralize(model)
}

// tokenize splits a CamelCase or snake_case identifier into words. Runs of
// capitals are kept together as an acronym.
func tokenize(s string) []string {
	var tokens []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			continue
		}

		if i > 0 && startsToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}

	// "contactID" splits before 'I'.
	if !unicode.IsUpper(prev) {
		return true
	}

	// "XMLParser" splits before 'P'.
	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
