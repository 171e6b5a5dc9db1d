package llm

import (
	"encoding/json"
	"strings"
)

// BuildAffiliationPrompt composes the complete instruction sent to the model
// for one paper. The result depends only on excerpt: the same excerpt always
// yields the same prompt, and nothing from a previous paper leaks in. An
// empty excerpt still yields a well-formed prompt; the model is told to
// answer with an empty array in that case.
func BuildAffiliationPrompt(excerpt string) string {
	var b strings.Builder

	b.WriteString("You extract author affiliations from the first pages of a scientific paper.\n\n")
	b.WriteString("Return ONLY a JSON array. Each element is one author of the paper, in the order the authors are listed, ")
	b.WriteString("and is an object with exactly these fields:\n")
	for _, f := range modelFields() {
		b.WriteString("- \"")
		b.WriteString(f)
		b.WriteString("\": ")
		b.WriteString(fieldDescriptions[f])
		b.WriteString("\n")
	}

	b.WriteString("\nRules:\n")
	for _, r := range promptRules {
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteString("\n")
	}

	b.WriteString("\nJSON Schema of the array:\n")
	b.WriteString(mustJSON(BuildAffiliationArraySchema()))
	b.WriteString("\n\nPaper text:\n<<<\n")
	b.WriteString(excerpt)
	b.WriteString("\n>>>\n")
	return b.String()
}

var promptRules = []string{
	"Emit one object per author, including authors who share an affiliation.",
	"Affiliations are often linked to authors with superscript numbers, letters or symbols (1, 2, a, b, *, †). " +
		"Resolve every author's markers to the affiliation lines they point to, even when a marker is shared by several authors.",
	"If an author has several affiliations, use the first one listed for department, institution and country.",
	"Emails are often printed as a group such as {alice, bob}@example.org; expand them to the matching author.",
	"Use an empty string for any field that is not stated in the text. Do not guess or invent values.",
	"Ignore cited authors, editors and acknowledgements.",
	"If the text contains no authors, return [].",
	"Output the JSON array only: no prose, no markdown, no code fences.",
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
