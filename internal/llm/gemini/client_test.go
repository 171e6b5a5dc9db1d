package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arupreza/ScholarScout/internal/common"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{APIKey: "  "}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(context.Background(), Config{APIKey: "test-key"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, c.Model())
	assert.Positive(t, c.cfg.Timeout)
}
