package crm

import (
	"math"
	"slices"
	"time"

	"github.com/agency/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProjectIDPrefix prefixes generated project IDs
const ProjectIDPrefix = "prj"

// ProjectStatus represents the lifecycle of a project
type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "planning"
	ProjectStatusInProgress ProjectStatus = "in-progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusArchived   ProjectStatus = "archived"
)

// IsValid reports whether the status is known
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusInProgress, ProjectStatusCompleted, ProjectStatusArchived:
		return true
	}
	return false
}

// TaskStatus represents the board column of a task
type TaskStatus string

const (
	TaskStatusTodo  TaskStatus = "todo"
	TaskStatusDoing TaskStatus = "doing"
	TaskStatusDone  TaskStatus = "done"
)

// Task is a unit of work inside a project
type Task struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Status TaskStatus `json:"status"`
}

// Milestone is a dated checkpoint inside a project
type Milestone struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	DueDate   time.Time `json:"dueDate"`
	Completed bool      `json:"completed"`
}

// Project is a piece of client work. ClientID is a weak reference.
type Project struct {
	shared.BaseRecord
	Name        string          `json:"name"`
	ClientID    string          `json:"clientId,omitempty"`
	Description string          `json:"description,omitempty"`
	Status      ProjectStatus   `json:"status"`
	Budget      decimal.Decimal `json:"budget"`
	StartDate   time.Time       `json:"startDate"`
	DueDate     time.Time       `json:"dueDate"`
	Tasks       []Task          `json:"tasks,omitempty"`
	Milestones  []Milestone     `json:"milestones,omitempty"`
}

// Clone returns a deep copy of the project
func (p *Project) Clone() *Project {
	cp := *p
	cp.Tasks = slices.Clone(p.Tasks)
	cp.Milestones = slices.Clone(p.Milestones)
	return &cp
}

// Normalize applies creation defaults
func (p *Project) Normalize(now time.Time) {
	p.Touch(now)
	if !p.Status.IsValid() {
		p.Status = ProjectStatusPlanning
	}
	if p.Budget.IsNegative() {
		p.Budget = decimal.Zero
	}
	for i := range p.Tasks {
		if p.Tasks[i].ID == "" {
			p.Tasks[i].ID = shared.NewID("tsk")
		}
		if p.Tasks[i].Status == "" {
			p.Tasks[i].Status = TaskStatusTodo
		}
	}
	for i := range p.Milestones {
		if p.Milestones[i].ID == "" {
			p.Milestones[i].ID = shared.NewID("mst")
		}
	}
}

// Progress returns the share of done tasks as a whole percentage.
// A project without tasks reports 0.
func (p *Project) Progress() int {
	if len(p.Tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range p.Tasks {
		if t.Status == TaskStatusDone {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(p.Tasks)) * 100))
}

// OverdueMilestones returns milestones past their due date and not completed
func (p *Project) OverdueMilestones(now time.Time) []Milestone {
	var out []Milestone
	for _, m := range p.Milestones {
		if !m.Completed && !m.DueDate.IsZero() && m.DueDate.Before(now) {
			out = append(out, m)
		}
	}
	return out
}

// ProjectPatch is a partial update for a project
type ProjectPatch struct {
	Name        *string
	ClientID    *string
	Description *string
	Status      *ProjectStatus
	Budget      *decimal.Decimal
	StartDate   *time.Time
	DueDate     *time.Time
	Tasks       []Task
	Milestones  []Milestone
}

// Apply merges the patch into the project
func (pp ProjectPatch) Apply(p *Project) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.ClientID != nil {
		p.ClientID = *pp.ClientID
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Status != nil {
		p.Status = *pp.Status
	}
	if pp.Budget != nil {
		p.Budget = *pp.Budget
	}
	if pp.StartDate != nil {
		p.StartDate = *pp.StartDate
	}
	if pp.DueDate != nil {
		p.DueDate = *pp.DueDate
	}
	if pp.Tasks != nil {
		p.Tasks = slices.Clone(pp.Tasks)
	}
	if pp.Milestones != nil {
		p.Milestones = slices.Clone(pp.Milestones)
	}
}
