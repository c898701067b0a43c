package rpc

import "time"

type Empty struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type User struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Metadata  map[string]any `json:"user_metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

type SignUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateUserRequest merges Data into the caller's user metadata. Keys set
// to null are stored as null.
type UpdateUserRequest struct {
	Data map[string]any `json:"data"`
}

type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListProjectsRequest struct {
	Status string `json:"status"`
}

type ProjectList struct {
	Projects []Project `json:"projects"`
}

type ProjectID struct {
	ID string `json:"id"`
}

// ProjectPatch carries only the fields to change; nil means unchanged.
type ProjectPatch struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	ProjectID   string     `json:"project_id"`
	AssigneeID  string     `json:"assignee_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

type TaskList struct {
	Tasks []Task `json:"tasks"`
}

type TaskID struct {
	ID string `json:"id"`
}

// TaskPatch carries only the fields to change; nil means unchanged. An
// empty ProjectID / AssigneeID clears the reference.
type TaskPatch struct {
	ID          string     `json:"id"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	ProjectID   *string    `json:"project_id,omitempty"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
}

type Member struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	Role        string    `json:"role"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
}

type MemberList struct {
	Members []Member `json:"members"`
}

type PushTokenRequest struct {
	Token string `json:"token"`
}

// SubscribeRequest selects a table and, optionally, a single record.
type SubscribeRequest struct {
	Table    string `json:"table"`
	RecordID string `json:"record_id"`
}

type ChangeEvent struct {
	Table    string    `json:"table"`
	Type     string    `json:"type"`
	RecordID string    `json:"record_id"`
	At       time.Time `json:"at"`
}
