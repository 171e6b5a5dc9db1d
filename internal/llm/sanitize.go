package llm

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Arupreza/ScholarScout/constants"
)

var (
	authorNameField  = string(constants.ColumnAuthorName)
	emailField       = string(constants.ColumnEmail)
	departmentField  = string(constants.ColumnDepartment)
	institutionField = string(constants.ColumnInstitution)
	countryField     = string(constants.ColumnCountry)
)

// fieldSynonyms maps normalized keys models use in practice to our fields.
var fieldSynonyms = map[string]string{
	"name":             authorNameField,
	"author":           authorNameField,
	"full_name":        authorNameField,
	"author_full_name": authorNameField,
	"e_mail":           emailField,
	"mail":             emailField,
	"email_address":    emailField,
	"dept":             departmentField,
	"affiliation":      institutionField,
	"organization":     institutionField,
	"organisation":     institutionField,
	"university":       institutionField,
	"institute":        institutionField,
	"country_name":     countryField,
}

// canonicalField returns our field name for a response key, or "" when the
// key is not recognized. paper_name is never taken from the model.
func canonicalField(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.NewReplacer(" ", "_", "-", "_").Replace(k)
	for _, f := range modelFields() {
		if k == f {
			return f
		}
	}
	return fieldSynonyms[k]
}

// NormalizeAuthorObject maps one untrusted response object onto our fields.
// Exact field names win over synonyms; unknown keys are ignored; missing
// fields become "". It returns the mapped object and the keys it ignored or
// could not coerce.
func NormalizeAuthorObject(obj map[string]any) (map[string]any, []string) {
	out := make(map[string]any, len(modelFields()))
	for _, f := range modelFields() {
		out[f] = ""
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var dropped []string
	exact := map[string]bool{}
	for _, k := range keys {
		field := canonicalField(k)
		if field == "" {
			dropped = append(dropped, k+"(unknown)")
			continue
		}
		isExact := k == field
		if !isExact && (exact[field] || out[field] != "") {
			dropped = append(dropped, k+"(shadowed)")
			continue
		}
		val, ok := coerceString(obj[k])
		if !ok {
			dropped = append(dropped, k+"(type)")
			continue
		}
		if isExact {
			exact[field] = true
		}
		out[field] = val
	}
	return out, dropped
}

// coerceString turns a JSON value into a trimmed cell value. Lists of
// strings are joined with "; ". Nested objects are rejected.
func coerceString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		s := strings.TrimSpace(t)
		if strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
			return "", true
		}
		return s, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case []any:
		parts := make([]string, 0, len(t))
		for _, el := range t {
			s, ok := el.(string)
			if !ok {
				return "", false
			}
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; "), true
	default:
		return "", false
	}
}
