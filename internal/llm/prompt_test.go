package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAffiliationPrompt_Deterministic(t *testing.T) {
	excerpt := "Deep Things\nAlice Smith¹, Bob Jones¹²\n¹ MIT, USA ² ETH Zürich, Switzerland"

	first := BuildAffiliationPrompt(excerpt)
	second := BuildAffiliationPrompt(excerpt)
	assert.Equal(t, first, second)

	// a different paper in between changes nothing
	_ = BuildAffiliationPrompt("Other paper\nCarol")
	assert.Equal(t, first, BuildAffiliationPrompt(excerpt))
}

func TestBuildAffiliationPrompt_Contents(t *testing.T) {
	excerpt := "Title\n  Alice¹\t and  Bob²  \n\n¹ Dept. of CS, MIT"
	p := BuildAffiliationPrompt(excerpt)

	assert.Contains(t, p, excerpt, "excerpt must be embedded verbatim")
	assert.Contains(t, p, "JSON array")
	assert.Contains(t, p, "superscript")
	for _, f := range []string{"author_name", "email", "department", "institution", "country"} {
		assert.Contains(t, p, `"`+f+`"`)
	}
	assert.NotContains(t, p, "paper_name")
}

func TestBuildAffiliationPrompt_EmptyExcerpt(t *testing.T) {
	p := BuildAffiliationPrompt("")
	require.NotEmpty(t, p)
	assert.Contains(t, p, "return []")
	assert.True(t, strings.HasSuffix(p, "<<<\n\n>>>\n"))
}
