package dto

import (
	"github.com/agency/backend/internal/domain/content"
	"github.com/shopspring/decimal"
)

// CreateServiceRequest is the body of POST /services
type CreateServiceRequest struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" binding:"max=100"`
	Status      string          `json:"status" binding:"omitempty,oneof=active draft archived"`
	Features    []string        `json:"features"`
}

// ToDomain builds the service draft
func (r CreateServiceRequest) ToDomain() *content.Service {
	return &content.Service{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Status:      content.ServiceStatus(r.Status),
		Features:    r.Features,
	}
}

// UpdateServiceRequest is the body of PUT /services/:id
type UpdateServiceRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category" binding:"omitempty,max=100"`
	Status      *string          `json:"status" binding:"omitempty,oneof=active draft archived"`
	Features    []string         `json:"features"`
}

// ToPatch converts the request to a service patch
func (r UpdateServiceRequest) ToPatch() content.ServicePatch {
	p := content.ServicePatch{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Features:    r.Features,
	}
	if r.Status != nil {
		s := content.ServiceStatus(*r.Status)
		p.Status = &s
	}
	return p
}

// CreateArticleRequest is the body of POST /articles. The slug is derived
// from the title when empty.
type CreateArticleRequest struct {
	Title    string   `json:"title" binding:"required,max=300"`
	Slug     string   `json:"slug" binding:"max=300"`
	Excerpt  string   `json:"excerpt"`
	Body     string   `json:"body"`
	Category string   `json:"category" binding:"max=100"`
	Tags     []string `json:"tags"`
	Status   string   `json:"status" binding:"omitempty,oneof=draft published archived"`
}

// ToDomain builds the article draft
func (r CreateArticleRequest) ToDomain() *content.Article {
	return &content.Article{
		Title:    r.Title,
		Slug:     r.Slug,
		Excerpt:  r.Excerpt,
		Body:     r.Body,
		Category: r.Category,
		Tags:     r.Tags,
		Status:   content.ArticleStatus(r.Status),
	}
}

// UpdateArticleRequest is the body of PUT /articles/:id
type UpdateArticleRequest struct {
	Title    *string  `json:"title" binding:"omitempty,min=1,max=300"`
	Slug     *string  `json:"slug" binding:"omitempty,max=300"`
	Excerpt  *string  `json:"excerpt"`
	Body     *string  `json:"body"`
	Category *string  `json:"category" binding:"omitempty,max=100"`
	Tags     []string `json:"tags"`
	Status   *string  `json:"status" binding:"omitempty,oneof=draft published archived"`
}

// ToPatch converts the request to an article patch
func (r UpdateArticleRequest) ToPatch() content.ArticlePatch {
	p := content.ArticlePatch{
		Title:    r.Title,
		Slug:     r.Slug,
		Excerpt:  r.Excerpt,
		Body:     r.Body,
		Category: r.Category,
		Tags:     r.Tags,
	}
	if r.Status != nil {
		s := content.ArticleStatus(*r.Status)
		p.Status = &s
	}
	return p
}
