package content

import (
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/agency/backend/internal/domain/shared"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ArticleIDPrefix prefixes generated article IDs
const ArticleIDPrefix = "art"

// ArticleStatus represents the publication state of an article
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
	ArticleStatusArchived  ArticleStatus = "archived"
)

// IsValid reports whether the status is known
func (s ArticleStatus) IsValid() bool {
	return s == ArticleStatusDraft || s == ArticleStatusPublished || s == ArticleStatusArchived
}

// Article is a blog post or case study
type Article struct {
	shared.BaseRecord
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Excerpt     string        `json:"excerpt,omitempty"`
	Body        string        `json:"body,omitempty"`
	Category    string        `json:"category,omitempty"`
	Tags        []string      `json:"tags"`
	Status      ArticleStatus `json:"status"`
	PublishedAt time.Time     `json:"publishedAt"`
}

// Clone returns a deep copy of the article
func (a *Article) Clone() *Article {
	cp := *a
	cp.Tags = slices.Clone(a.Tags)
	return &cp
}

// Normalize applies creation defaults, derives the slug when missing and
// stamps the publication date the first time the article is published.
func (a *Article) Normalize(now time.Time) {
	a.Touch(now)
	if !a.Status.IsValid() {
		a.Status = ArticleStatusDraft
	}
	if a.Slug == "" {
		a.Slug = Slugify(a.Title)
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if a.Status == ArticleStatusPublished && a.PublishedAt.IsZero() {
		a.PublishedAt = now
	}
}

// ArticlePatch is a partial update for an article
type ArticlePatch struct {
	Title    *string
	Slug     *string
	Excerpt  *string
	Body     *string
	Category *string
	Tags     []string
	Status   *ArticleStatus
}

// Apply merges the patch into the article
func (p ArticlePatch) Apply(a *Article) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Slug != nil {
		a.Slug = *p.Slug
	}
	if p.Excerpt != nil {
		a.Excerpt = *p.Excerpt
	}
	if p.Body != nil {
		a.Body = *p.Body
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Tags != nil {
		a.Tags = slices.Clone(p.Tags)
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
}

// Slugify turns a title into a lower-case ASCII slug: accents are folded,
// runs of anything that is not a letter or digit become a single dash.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
