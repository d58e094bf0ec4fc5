package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineNilWhenUnfiltered(t *testing.T) {
	assert.Nil(t, NewPipeline("", false, nil))
}

func TestNilPipelineMatchesEverything(t *testing.T) {
	var p *Pipeline
	assert.True(t, p.Match(fixtureSession()))
}

func TestPipelineProjectSubstring(t *testing.T) {
	p := NewPipeline("api", false, nil)
	require.NotNil(t, p)
	assert.True(t, p.Match(fixtureSession()))

	p = NewPipeline("frontend", false, nil)
	assert.False(t, p.Match(fixtureSession()))
}

func TestPipelineActiveOnly(t *testing.T) {
	p := NewPipeline("", true, nil)
	require.NotNil(t, p)

	s := fixtureSession()
	assert.True(t, p.Match(s))

	s.IsActive = false
	assert.False(t, p.Match(s))
}

func TestPipelineCombinesAllFilters(t *testing.T) {
	where, err := NewWhereFilter([]string{"messages>=10"})
	require.NoError(t, err)

	p := NewPipeline("api", true, where)
	require.NotNil(t, p)
	assert.True(t, p.Match(fixtureSession()))

	s := fixtureSession()
	s.MessageCount = 2
	assert.False(t, p.Match(s))
}
