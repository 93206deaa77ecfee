package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		query string
		want  Params
	}{
		{"", Params{Page: 1, Limit: 20}},
		{"?page=3&limit=50", Params{Page: 3, Limit: 50}},
		{"?page=2&per_page=5", Params{Page: 2, Limit: 5}},
		{"?limit=1000", Params{Page: 1, Limit: MaxLimit}},
		{"?page=-1&limit=abc", Params{Page: 1, Limit: 20}},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/clinics"+tc.query, nil)
			assert.Equal(t, tc.want, ParseParams(r))
		})
	}
}

func TestCalculateMeta(t *testing.T) {
	p := Params{Page: 2, Limit: 10}
	assert.Equal(t, 10, p.CalculateOffset())

	m := p.CalculateMeta(25)
	assert.Equal(t, 3, m.TotalPages)
	assert.True(t, m.HasNext)
	assert.True(t, m.HasPrevious)

	empty := Params{Page: 1, Limit: 10}.CalculateMeta(0)
	assert.Equal(t, 1, empty.TotalPages)
	assert.False(t, empty.HasNext)
}

func TestNewPage_NeverNil(t *testing.T) {
	page := NewPage[string](nil, Params{Page: 1, Limit: 10}, 0)
	assert.NotNil(t, page.Items)
}
