package dto

import (
	"time"

	"github.com/agency/backend/internal/domain/crm"
	"github.com/shopspring/decimal"
)

// CreateClientRequest is the body of POST /clients
type CreateClientRequest struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Email       string          `json:"email" binding:"omitempty,email"`
	Phone       string          `json:"phone" binding:"max=50"`
	Company     string          `json:"company" binding:"max=200"`
	Website     string          `json:"website" binding:"omitempty,url"`
	Notes       string          `json:"notes"`
	Status      string          `json:"status" binding:"omitempty,oneof=lead negotiation active completed lost"`
	Value       decimal.Decimal `json:"value"`
	Tags        []string        `json:"tags"`
	LastContact time.Time       `json:"lastContact"`
}

// ToDomain builds the client draft
func (r CreateClientRequest) ToDomain() *crm.Client {
	return &crm.Client{
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		Company:     r.Company,
		Website:     r.Website,
		Notes:       r.Notes,
		Status:      crm.ClientStatus(r.Status),
		Value:       r.Value,
		Tags:        r.Tags,
		LastContact: r.LastContact,
	}
}

// UpdateClientRequest is the body of PUT /clients/:id. Absent fields are kept.
type UpdateClientRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Email       *string          `json:"email" binding:"omitempty,email"`
	Phone       *string          `json:"phone" binding:"omitempty,max=50"`
	Company     *string          `json:"company" binding:"omitempty,max=200"`
	Website     *string          `json:"website" binding:"omitempty,url"`
	Notes       *string          `json:"notes"`
	Status      *string          `json:"status" binding:"omitempty,oneof=lead negotiation active completed lost"`
	Value       *decimal.Decimal `json:"value"`
	Tags        []string         `json:"tags"`
	LastContact *time.Time       `json:"lastContact"`
}

// ToPatch converts the request to a client patch
func (r UpdateClientRequest) ToPatch() crm.ClientPatch {
	p := crm.ClientPatch{
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		Company:     r.Company,
		Website:     r.Website,
		Notes:       r.Notes,
		Value:       r.Value,
		Tags:        r.Tags,
		LastContact: r.LastContact,
	}
	if r.Status != nil {
		s := crm.ClientStatus(*r.Status)
		p.Status = &s
	}
	return p
}

// LeadScoreResponse is the computed score of one client
type LeadScoreResponse struct {
	ClientID string `json:"clientId"`
	Score    int    `json:"score"`
	Level    string `json:"level"`
}

// CreateProjectRequest is the body of POST /projects
type CreateProjectRequest struct {
	Name        string             `json:"name" binding:"required,max=200"`
	ClientID    string             `json:"clientId"`
	Description string             `json:"description"`
	Status      string             `json:"status" binding:"omitempty,oneof=planning in-progress completed archived"`
	Budget      decimal.Decimal    `json:"budget"`
	StartDate   time.Time          `json:"startDate"`
	DueDate     time.Time          `json:"dueDate"`
	Tasks       []TaskRequest      `json:"tasks" binding:"dive"`
	Milestones  []MilestoneRequest `json:"milestones" binding:"dive"`
}

// TaskRequest is one project task
type TaskRequest struct {
	ID     string `json:"id"`
	Title  string `json:"title" binding:"required"`
	Status string `json:"status" binding:"omitempty,oneof=todo doing done"`
}

// MilestoneRequest is one project milestone
type MilestoneRequest struct {
	ID        string    `json:"id"`
	Title     string    `json:"title" binding:"required"`
	DueDate   time.Time `json:"dueDate"`
	Completed bool      `json:"completed"`
}

// ToDomain builds the project draft
func (r CreateProjectRequest) ToDomain() *crm.Project {
	return &crm.Project{
		Name:        r.Name,
		ClientID:    r.ClientID,
		Description: r.Description,
		Status:      crm.ProjectStatus(r.Status),
		Budget:      r.Budget,
		StartDate:   r.StartDate,
		DueDate:     r.DueDate,
		Tasks:       toTasks(r.Tasks),
		Milestones:  toMilestones(r.Milestones),
	}
}

// UpdateProjectRequest is the body of PUT /projects/:id
type UpdateProjectRequest struct {
	Name        *string            `json:"name" binding:"omitempty,min=1,max=200"`
	ClientID    *string            `json:"clientId"`
	Description *string            `json:"description"`
	Status      *string            `json:"status" binding:"omitempty,oneof=planning in-progress completed archived"`
	Budget      *decimal.Decimal   `json:"budget"`
	StartDate   *time.Time         `json:"startDate"`
	DueDate     *time.Time         `json:"dueDate"`
	Tasks       []TaskRequest      `json:"tasks" binding:"omitempty,dive"`
	Milestones  []MilestoneRequest `json:"milestones" binding:"omitempty,dive"`
}

// ToPatch converts the request to a project patch
func (r UpdateProjectRequest) ToPatch() crm.ProjectPatch {
	p := crm.ProjectPatch{
		Name:        r.Name,
		ClientID:    r.ClientID,
		Description: r.Description,
		Budget:      r.Budget,
		StartDate:   r.StartDate,
		DueDate:     r.DueDate,
		Tasks:       toTasks(r.Tasks),
		Milestones:  toMilestones(r.Milestones),
	}
	if r.Status != nil {
		s := crm.ProjectStatus(*r.Status)
		p.Status = &s
	}
	return p
}

func toTasks(in []TaskRequest) []crm.Task {
	if in == nil {
		return nil
	}
	out := make([]crm.Task, len(in))
	for i, t := range in {
		out[i] = crm.Task{ID: t.ID, Title: t.Title, Status: crm.TaskStatus(t.Status)}
	}
	return out
}

func toMilestones(in []MilestoneRequest) []crm.Milestone {
	if in == nil {
		return nil
	}
	out := make([]crm.Milestone, len(in))
	for i, m := range in {
		out[i] = crm.Milestone{ID: m.ID, Title: m.Title, DueDate: m.DueDate, Completed: m.Completed}
	}
	return out
}
