package backend

import "strings"

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration is the admin "add user" form.
type Registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin manager developer"`
	Phone    string `json:"phone" validate:"required"`
}

// DeveloperUpdate edits a developer. A blank password keeps the current one.
type DeveloperUpdate struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password,omitempty"`
}

// NewProject is the manager "create project" form.
type NewProject struct {
	Name           string `json:"project_name" validate:"required"`
	AssignedTo     int64  `json:"assigned_to" validate:"required"`
	Task           string `json:"task" validate:"required"`
	CompletionDate string `json:"completion_date" validate:"required"`
}

// NewTask is the manager "create task" form.
type NewTask struct {
	ProjectID      int64  `json:"projectId" validate:"required"`
	TaskName       string `json:"taskName" validate:"required"`
	DeveloperID    int64  `json:"developerId" validate:"required"`
	CompletionDate string `json:"completion_date" validate:"required"`
}

// Comment is a developer note on a task.
type Comment struct {
	Comment string `json:"comment" validate:"required"`
}

// Developer is a row of the admin developer table.
type Developer struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	TotalProjects int    `json:"total_projects"`
}

// Apply returns the row as it reads after a successful update.
func (d Developer) Apply(update DeveloperUpdate) Developer {
	d.Name = update.Name
	d.Email = update.Email
	d.Phone = update.Phone
	return d
}

// Suggestion is a developer match for the assignee dropdown.
type Suggestion struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AdminProject is a row of the admin project overview.
type AdminProject struct {
	ID          int64    `json:"id"`
	Name        string   `json:"project_name"`
	ManagerName string   `json:"manager_name"`
	Developers  []string `json:"developers"`
	Status      string   `json:"status"`
	StartDate   string   `json:"start_date"`
}

func (p AdminProject) FilterStatus() string  { return p.Status }
func (p AdminProject) FilterProject() string { return p.Name }

// AssignedDeveloper is a developer attached to a manager project.
type AssignedDeveloper struct {
	ID   int64  `json:"developer_id"`
	Name string `json:"developer_name"`
}

// ManagerProject is a row of the manager project table.
type ManagerProject struct {
	ID                 int64               `json:"project_id"`
	Name               string              `json:"project_name"`
	AssignedDevelopers []AssignedDeveloper `json:"assigned_developers"`
	StartDate          string              `json:"start_date"`
	CompletionDate     string              `json:"completion_date"`
	Status             string              `json:"status"`
}

func (p ManagerProject) FilterStatus() string  { return p.Status }
func (p ManagerProject) FilterProject() string { return p.Name }

// StartDay drops the time part of StartDate.
func (p ManagerProject) StartDay() string {
	day, _, _ := strings.Cut(p.StartDate, " ")
	return day
}

// DeveloperNames lists the assigned developers by name.
func (p ManagerProject) DeveloperNames() []string {
	names := make([]string, 0, len(p.AssignedDevelopers))
	for _, dev := range p.AssignedDevelopers {
		names = append(names, dev.Name)
	}
	return names
}

// ManagerTask is a row of the manager task table.
type ManagerTask struct {
	ID             int64  `json:"task_id"`
	ProjectName    string `json:"project_name"`
	Name           string `json:"task_name"`
	DeveloperName  string `json:"developer_name"`
	DeveloperEmail string `json:"developer_email"`
	Status         string `json:"task_status"`
	CompletionDate string `json:"completion_date"`
	CreatedAt      string `json:"created_at"`
}

func (t ManagerTask) FilterStatus() string  { return t.Status }
func (t ManagerTask) FilterProject() string { return t.ProjectName }

// CompletedTask is a row of a developer's completed task list.
type CompletedTask struct {
	ID          int64  `json:"task_id"`
	Title       string `json:"title"`
	ProjectName string `json:"project_name"`
	AssignedBy  string `json:"assigned_by_name"`
	Status      string `json:"status"`
	Comment     string `json:"comment"`
}

func (t CompletedTask) FilterStatus() string  { return t.Status }
func (t CompletedTask) FilterProject() string { return t.ProjectName }

// Profile is the developer header card. Name falls back to "Developer".
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// DefaultProfileName is shown when the profile cannot be loaded.
const DefaultProfileName = "Developer"

// AdminStats are the admin dashboard counters.
type AdminStats struct {
	TotalProjects   int `json:"totalProjects"`
	TotalDevelopers int `json:"totalDevelopers"`
	TotalTasks      int `json:"totalTasks"`
}

// TaskStats are the developer dashboard counters.
type TaskStats struct {
	Completed  int `json:"completed"`
	InProgress int `json:"active"`
	Todo       int `json:"new"`
}

// TotalKind selects one of the /api/total-* counters.
type TotalKind string

const (
	TotalProjects   TotalKind = "projects"
	TotalDevelopers TotalKind = "developers"
	TotalManagers   TotalKind = "managers"
)

// Valid reports whether k names a known counter.
func (k TotalKind) Valid() bool {
	switch k {
	case TotalProjects, TotalDevelopers, TotalManagers:
		return true
	}
	return false
}
