package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cryptoquote/internal/fields"
)

func names(list []fields.Asset) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Name)
	}
	return out
}

func TestDefaultPolicy_Resolve(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		country string
		want    []string
	}{
		{"Canada", []string{"BTC", "ETH"}},
		{"France", []string{"BTC"}},
		{"canada", []string{"BTC"}},
		{"", []string{"BTC"}},
	}

	for _, tc := range tests {
		t.Run(tc.country, func(t *testing.T) {
			assert.Equal(t, tc.want, names(p.Resolve(tc.country)))
		})
	}
}

func TestResolve_ReturnsCopy(t *testing.T) {
	p := DefaultPolicy()

	list := p.Resolve("Canada")
	list[0].Name = "XXX"

	assert.Equal(t, []string{"BTC", "ETH"}, names(p.Resolve("Canada")))
}

func TestWithRule(t *testing.T) {
	base := DefaultPolicy()
	ext := base.WithRule("Mexico", []fields.Asset{{ID: 1, Name: "ETH"}})

	assert.Equal(t, []string{"ETH"}, names(ext.Resolve("Mexico")))
	assert.Equal(t, []string{"BTC"}, names(base.Resolve("Mexico")))
	assert.Equal(t, []string{"Canada", "Mexico"}, ext.Countries())
}
