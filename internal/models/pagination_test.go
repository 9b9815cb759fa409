package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		total     int64
		wantPages int
		wantLimit int
	}{
		{name: "exact fit", page: 1, limit: 10, total: 20, wantPages: 2, wantLimit: 10},
		{name: "partial last page", page: 2, limit: 10, total: 21, wantPages: 3, wantLimit: 10},
		{name: "empty result", page: 1, limit: 10, total: 0, wantPages: 0, wantLimit: 10},
		{name: "zero limit is clamped", page: 1, limit: 0, total: 5, wantPages: 5, wantLimit: 1},
		{name: "negative limit is clamped", page: 1, limit: -3, total: 2, wantPages: 2, wantLimit: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.limit, tt.total)

			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.total, p.Total)
			assert.Equal(t, tt.wantPages, p.Pages)
		})
	}
}
