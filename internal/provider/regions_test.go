package provider

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionDirectory_Countries(t *testing.T) {
	countries, err := NewRegionDirectory().Countries(context.Background())
	require.NoError(t, err)

	require.Greater(t, len(countries), 150)
	assert.True(t, sort.SliceIsSorted(countries, func(i, j int) bool {
		return countries[i].Name < countries[j].Name
	}))

	byID := make(map[string]string, len(countries))
	for _, c := range countries {
		assert.NotEmpty(t, c.Name)
		byID[c.ID] = c.Name
	}
	assert.Equal(t, "Canada", byID["CA"])
	assert.Equal(t, "France", byID["FR"])
	assert.NotContains(t, byID, "ZZ")
}
