package llm

import "github.com/Arupreza/ScholarScout/constants"

// fieldDescriptions document each output field for the model. The order
// follows constants.Columns; paper_name is filled in by the pipeline and is
// not requested.
var fieldDescriptions = map[string]string{
	string(constants.ColumnAuthorName):  "full name of the author exactly as printed, without affiliation markers",
	string(constants.ColumnEmail):       "the author's email address if printed, otherwise empty",
	string(constants.ColumnDepartment):  "department, school, faculty or lab within the institution, otherwise empty",
	string(constants.ColumnInstitution): "university, company or research organization the author is affiliated with",
	string(constants.ColumnCountry):     "country of that institution, otherwise empty",
}

// modelFields returns the fields the model is asked to produce, in column order.
func modelFields() []string {
	cols := constants.Columns()
	out := make([]string, 0, len(cols)-1)
	for _, c := range cols {
		if c == string(constants.ColumnPaperName) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// BuildAffiliationRecordSchema returns the JSON-Schema for one author object
// as a generic map. Only author_name is required and must be non-empty.
func BuildAffiliationRecordSchema() map[string]any {
	props := map[string]any{}
	for _, f := range modelFields() {
		props[f] = map[string]any{"type": "string"}
	}
	props[string(constants.ColumnAuthorName)] = map[string]any{
		"type":      "string",
		"minLength": 1,
		"pattern":   `\S`,
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{string(constants.ColumnAuthorName)},
	}
}

// BuildAffiliationArraySchema wraps the record schema in the array the model
// is asked to return.
func BuildAffiliationArraySchema() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": BuildAffiliationRecordSchema(),
	}
}
