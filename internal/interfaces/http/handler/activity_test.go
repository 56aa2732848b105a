package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/agency/backend/internal/domain/system"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityHandler_List(t *testing.T) {
	f := newFixture(t)
	for i := range 3 {
		f.activity.Append(context.Background(), system.ActivityRecord{
			Label: fmt.Sprintf("entry %d", i),
			Type:  system.ActivityTypeClient,
		})
	}
	r := gin.New()
	r.GET("/activity", NewActivityHandler(f.activity).List)

	tests := []struct {
		name   string
		query  string
		status int
		count  int
		first  string
	}{
		{"default limit", "", http.StatusOK, 3, "entry 2"},
		{"limited", "?limit=2", http.StatusOK, 2, "entry 2"},
		{"zero means all", "?limit=0", http.StatusOK, 3, "entry 2"},
		{"not a number", "?limit=abc", http.StatusBadRequest, 0, ""},
		{"negative", "?limit=-1", http.StatusBadRequest, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodGet, "/activity"+tt.query, nil)
			require.Equal(t, tt.status, w.Code)
			if tt.status != http.StatusOK {
				return
			}
			entries := decode(t, w).Data.([]any)
			require.Len(t, entries, tt.count)
			assert.Equal(t, tt.first, entries[0].(map[string]any)["label"])
		})
	}
}
