package llm

import (
	"log/slog"
	"strings"

	"github.com/Arupreza/ScholarScout/internal/common"
	"github.com/Arupreza/ScholarScout/internal/entity"
)

// Parser turns raw completions into affiliation records.
type Parser struct {
	validator *RecordValidator
	logger    *slog.Logger
}

func NewParser(logger *slog.Logger) (*Parser, error) {
	if logger == nil {
		logger = slog.Default()
	}
	v, err := NewRecordValidator()
	if err != nil {
		return nil, err
	}
	return &Parser{validator: v, logger: logger}, nil
}

// Parse recovers the author array from raw and maps it to records, each
// carrying paperName. Objects that are not author records (no author_name,
// wrong shape) are dropped and logged; the paper still succeeds with the
// rest. Only a response with no recoverable JSON array is an error
// (MalformedExtraction). An empty array yields no records and no error.
func (p *Parser) Parse(raw, paperName string) ([]entity.AffiliationRecord, error) {
	objs, skipped, ok := recoverObjects(raw)
	if !ok {
		p.logger.Warn("llm.parse.no_json_array",
			"paper", paperName,
			"raw_len", len(raw),
			"raw_head", head(raw, 200),
		)
		return nil, common.MalformedExtraction("no JSON array of author objects in model response", nil)
	}

	records := make([]entity.AffiliationRecord, 0, len(objs))
	invalid := 0
	var droppedKeys []string
	for _, obj := range objs {
		mapped, dropped := NormalizeAuthorObject(obj)
		droppedKeys = append(droppedKeys, dropped...)
		if err := p.validator.Validate(mapped); err != nil {
			invalid++
			p.logger.Debug("llm.parse.object_rejected", "paper", paperName, "error", err)
			continue
		}
		records = append(records, entity.AffiliationRecord{
			AuthorName:  mapped[authorNameField].(string),
			Email:       mapped[emailField].(string),
			Department:  mapped[departmentField].(string),
			Institution: mapped[institutionField].(string),
			Country:     mapped[countryField].(string),
			PaperName:   paperName,
		})
	}

	if skipped > 0 || invalid > 0 || len(droppedKeys) > 0 {
		p.logger.Warn("llm.parse.lenient_sanitize_applied",
			"paper", paperName,
			"non_object_elements", skipped,
			"rejected_objects", invalid,
			"dropped_keys", droppedKeys,
		)
	}
	p.logger.Debug("llm.parse.ok", "paper", paperName, "objects", len(objs), "records", len(records))
	return records, nil
}

func head(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
