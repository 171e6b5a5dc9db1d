package llm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arupreza/ScholarScout/internal/common"
	"github.com/Arupreza/ScholarScout/internal/entity"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser(nil)
	require.NoError(t, err)
	return p
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []entity.AffiliationRecord
	}{
		{
			name: "plain array",
			raw:  `[{"author_name":"Alice","email":"a@mit.edu","department":"CS","institution":"MIT","country":"USA"}]`,
			want: []entity.AffiliationRecord{
				{AuthorName: "Alice", Email: "a@mit.edu", Department: "CS", Institution: "MIT", Country: "USA", PaperName: "paper"},
			},
		},
		{
			name: "empty array",
			raw:  `[]`,
			want: []entity.AffiliationRecord{},
		},
		{
			name: "multi author shared institution",
			raw:  `[{"author_name":"A","institution":"X"},{"author_name":"B","institution":"X"}]`,
			want: []entity.AffiliationRecord{
				{AuthorName: "A", Institution: "X", PaperName: "paper"},
				{AuthorName: "B", Institution: "X", PaperName: "paper"},
			},
		},
		{
			name: "code fence and prose",
			raw:  "Here are the authors:\n```json\n[{\"author_name\":\"Alice\"}]\n```\nHope this helps.",
			want: []entity.AffiliationRecord{{AuthorName: "Alice", PaperName: "paper"}},
		},
		{
			name: "prose with bracketed citation before the answer",
			raw:  `As shown in [1], the authors are: [{"author_name":"Alice"}]`,
			want: []entity.AffiliationRecord{{AuthorName: "Alice", PaperName: "paper"}},
		},
		{
			name: "object wrapper",
			raw:  `{"authors":[{"author_name":"Alice","institution":"MIT"}]}`,
			want: []entity.AffiliationRecord{{AuthorName: "Alice", Institution: "MIT", PaperName: "paper"}},
		},
		{
			name: "object with single unknown array key",
			raw:  `{"result":[{"author_name":"Alice"}],"count":1}`,
			want: []entity.AffiliationRecord{{AuthorName: "Alice", PaperName: "paper"}},
		},
		{
			name: "single author object",
			raw:  `{"author_name":"Alice","affiliation":["MIT","ETH"]}`,
			want: []entity.AffiliationRecord{{AuthorName: "Alice", Institution: "MIT; ETH", PaperName: "paper"}},
		},
		{
			name: "missing optionals and nulls",
			raw:  `[{"author_name":"  Alice  ","email":null,"country":"null"}]`,
			want: []entity.AffiliationRecord{{AuthorName: "Alice", PaperName: "paper"}},
		},
		{
			name: "synonyms and unknown keys",
			raw:  `[{"Name":"Alice","E-mail":"a@x.org","dept":"Physics","organization":"CERN","country":"Switzerland","orcid":"0000"}]`,
			want: []entity.AffiliationRecord{
				{AuthorName: "Alice", Email: "a@x.org", Department: "Physics", Institution: "CERN", Country: "Switzerland", PaperName: "paper"},
			},
		},
		{
			name: "exact field wins over synonym",
			raw:  `[{"author_name":"Alice","institution":"MIT","affiliation":"Harvard"}]`,
			want: []entity.AffiliationRecord{{AuthorName: "Alice", Institution: "MIT", PaperName: "paper"}},
		},
		{
			name: "model supplied paper_name is overridden",
			raw:  `[{"author_name":"Alice","paper_name":"Something Else"}]`,
			want: []entity.AffiliationRecord{{AuthorName: "Alice", PaperName: "paper"}},
		},
		{
			name: "invalid objects dropped, valid kept",
			raw:  `[{"author_name":""},{"institution":"MIT"},"stray",{"author_name":"Bob","country":{"code":"US"}},{"author_name":"Carol"}]`,
			want: []entity.AffiliationRecord{
				{AuthorName: "Bob", PaperName: "paper"},
				{AuthorName: "Carol", PaperName: "paper"},
			},
		},
		{
			name: "empty array in prose before the answer",
			raw:  `I found [] nothing at first. Corrected: [{"author_name":"A"}]`,
			want: []entity.AffiliationRecord{{AuthorName: "A", PaperName: "paper"}},
		},
		{
			name: "only empty arrays",
			raw:  `Authors: [] and affiliations: []`,
			want: []entity.AffiliationRecord{},
		},
		{
			name: "empty wrapper",
			raw:  `{"authors":[]}`,
			want: []entity.AffiliationRecord{},
		},
		{
			name: "bracketed prose that is not JSON",
			raw:  `See [Smith et al.] for details: [{"author_name":"Alice"}]`,
			want: []entity.AffiliationRecord{{AuthorName: "Alice", PaperName: "paper"}},
		},
		{
			name: "numbers stringified",
			raw:  `[{"author_name":"Alice","department":42}]`,
			want: []entity.AffiliationRecord{{AuthorName: "Alice", Department: "42", PaperName: "paper"}},
		},
	}

	p := newTestParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.raw, "paper")
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "whitespace", raw: "   \n"},
		{name: "prose only", raw: "I could not find any authors in this text."},
		{name: "truncated array", raw: `[{"author_name":"Alice",`},
		{name: "array cut off after a complete object", raw: `[{"author_name":"Alice","institution":"MIT"},{"author_name":"Bob","institution":"ET`},
		{name: "fenced wrapper cut off", raw: "```json\n{\"authors\":[{\"author_name\":\"Alice\"},{\"author_name\":\"Bob\",\"inst"},
		{name: "empty array then cut off", raw: `[] [{"author_name":"Alice"`},
		{name: "broken element inside array", raw: `[{"author_name":"Alice"},{"author_name": Bob}]`},
		{name: "array of strings", raw: `["Alice","Bob"]`},
		{name: "unrelated object", raw: `{"status":"ok"}`},
	}

	p := newTestParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.raw, "paper")
			require.Error(t, err)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, common.ErrMalformedExtraction)
		})
	}
}

func TestNormalizeAuthorObject_ReportsDroppedKeys(t *testing.T) {
	mapped, dropped := NormalizeAuthorObject(map[string]any{
		"author_name": "Alice",
		"orcid":       "0000-0001",
		"country":     map[string]any{"code": "US"},
	})
	assert.Equal(t, "Alice", mapped["author_name"])
	assert.Equal(t, "", mapped["country"])
	assert.ElementsMatch(t, []string{"orcid(unknown)", "country(type)"}, dropped)
}
