package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ Model = (*MockModel)(nil)

func TestMockModel_CannedAndFallbackResponses(t *testing.T) {
	m := NewMockModel("test-model")
	m.AddResponse("status?", "all clear")

	resp, err := m.Complete(context.Background(), Request{Prompt: "status?"})
	require.NoError(t, err)
	assert.Equal(t, "all clear", resp.Text)

	resp, err = m.Complete(context.Background(), Request{Prompt: "unknown"})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "unknown")

	assert.Equal(t, "test-model", m.Info().Name)
	assert.Equal(t, "mock", m.Info().Provider)
}

func TestMockModel_FailWith(t *testing.T) {
	m := NewMockModel("test-model")
	m.FailWith(errors.New("quota exceeded"))

	_, err := m.Complete(context.Background(), Request{Prompt: "status?"})
	assert.EqualError(t, err, "quota exceeded")
}
