package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Café Déjà Vu!  ", "cafe-deja-vu"},
		{"Go 1.25 -- what's new?", "go-1-25-what-s-new"},
		{"Ünïcödé", "unicode"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestArticle_Normalize(t *testing.T) {
	now := time.Now()

	t.Run("derives slug and defaults", func(t *testing.T) {
		a := &Article{Title: "Launch Day"}
		a.Normalize(now)

		assert.Equal(t, "launch-day", a.Slug)
		assert.Equal(t, ArticleStatusDraft, a.Status)
		assert.True(t, a.PublishedAt.IsZero())
	})

	t.Run("keeps explicit slug", func(t *testing.T) {
		a := &Article{Title: "Launch Day", Slug: "custom"}
		a.Normalize(now)
		assert.Equal(t, "custom", a.Slug)
	})

	t.Run("stamps publication once", func(t *testing.T) {
		a := &Article{Title: "x", Status: ArticleStatusPublished}
		a.Normalize(now)
		assert.Equal(t, now, a.PublishedAt)

		a.Normalize(now.Add(time.Hour))
		assert.Equal(t, now, a.PublishedAt)
	})
}

func TestService_Normalize(t *testing.T) {
	s := &Service{Status: "bogus"}
	s.Normalize(time.Now())

	assert.Equal(t, ServiceStatusDraft, s.Status)
	assert.NotNil(t, s.Features)
}
