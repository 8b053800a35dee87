package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	p := Pagination{}.Normalize(20, 100)
	assert.Equal(t, Pagination{Page: 1, Limit: 20}, p)

	p = Pagination{Page: -3, Limit: 500}.Normalize(20, 100)
	assert.Equal(t, Pagination{Page: 1, Limit: 100}, p)

	p = Pagination{Page: 4, Limit: 25}.Normalize(20, 100)
	assert.Equal(t, 75, p.Offset())
}

func TestBuildPageInfo(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		total     int64
		wantPages int
	}{
		{"exact multiple", 10, 40, 4},
		{"partial last page", 10, 41, 5},
		{"empty result", 10, 0, 0},
		{"single row", 10, 1, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info := BuildPageInfo(Pagination{Page: 1, Limit: tc.limit}, tc.total)
			assert.Equal(t, tc.total, info.Total)
			assert.Equal(t, tc.wantPages, info.TotalPages)
		})
	}
}
