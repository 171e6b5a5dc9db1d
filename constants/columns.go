package constants

// Column is one field of the output table.
type Column string

const (
	ColumnAuthorName  Column = "author_name"
	ColumnEmail       Column = "email"
	ColumnDepartment  Column = "department"
	ColumnInstitution Column = "institution"
	ColumnCountry     Column = "country"
	ColumnPaperName   Column = "paper_name"
)

// allColumns is the fixed output order.
var allColumns = []Column{
	ColumnAuthorName,
	ColumnEmail,
	ColumnDepartment,
	ColumnInstitution,
	ColumnCountry,
	ColumnPaperName,
}

// Columns returns the header row in output order.
func Columns() []string {
	result := make([]string, len(allColumns))
	for i, c := range allColumns {
		result[i] = string(c)
	}
	return result
}
