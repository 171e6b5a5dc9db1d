package entity

// AffiliationRecord is one author's affiliation entry extracted from one paper.
// PaperName is assigned by the pipeline from the source file, never by the model.
type AffiliationRecord struct {
	AuthorName  string `json:"author_name"`
	Email       string `json:"email"`
	Department  string `json:"department"`
	Institution string `json:"institution"`
	Country     string `json:"country"`
	PaperName   string `json:"paper_name"`
}

// Row returns the record's values in table column order.
func (r AffiliationRecord) Row() []string {
	return []string{r.AuthorName, r.Email, r.Department, r.Institution, r.Country, r.PaperName}
}
