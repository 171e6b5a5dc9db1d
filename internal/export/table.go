package export

import (
	"github.com/Arupreza/ScholarScout/constants"
	"github.com/Arupreza/ScholarScout/internal/entity"
)

// Table is the final affiliation table: a fixed header and one row per record.
type Table struct {
	Header []string
	Rows   [][]string
}

// Assemble builds the table from a finished run. Rows keep the result's
// record order (paper order, then author order). A run with no records gives
// a header-only table.
func Assemble(res entity.BatchResult) Table {
	rows := make([][]string, 0, len(res.Records))
	for _, r := range res.Records {
		rows = append(rows, r.Row())
	}
	return Table{Header: constants.Columns(), Rows: rows}
}

func (t Table) Len() int {
	return len(t.Rows)
}
