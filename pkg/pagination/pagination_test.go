package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name    string
		in      Params
		page    int
		perPage int
	}{
		{"zeroValues", Params{}, 1, DefaultPerPage},
		{"negativePage", Params{Page: -3, PerPage: 10}, 1, 10},
		{"overMax", Params{Page: 2, PerPage: 500}, 2, MaxPerPage},
		{"passthrough", Params{Page: 4, PerPage: 24}, 4, 24},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := tc.in.Normalize()
			assert.Equal(t, tc.page, n.Page)
			assert.Equal(t, tc.perPage, n.PerPage)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, PerPage: 12}.Offset())
	assert.Equal(t, 24, Params{Page: 3, PerPage: 12}.Offset())
	assert.Equal(t, 0, Params{}.Offset())
}

func TestNewPageInfo(t *testing.T) {
	info := NewPageInfo(Params{Page: 2, PerPage: 10}, 25)
	assert.Equal(t, 2, info.Page)
	assert.Equal(t, 10, info.PerPage)
	assert.EqualValues(t, 25, info.Total)
	assert.Equal(t, 3, info.TotalPages)

	exact := NewPageInfo(Params{Page: 1, PerPage: 5}, 10)
	assert.Equal(t, 2, exact.TotalPages)

	empty := NewPageInfo(Params{}, 0)
	assert.Zero(t, empty.TotalPages)
}
