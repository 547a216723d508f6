package main

import "time"

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Calendar struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	StartMonth  string    `json:"start_month"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	UniqueURL   string    `json:"unique_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	// Per-caller annotations filled by the API layer from the access resolver
	IsOwner    bool   `json:"is_owner"`
	CanEdit    bool   `json:"can_edit"`
	CanDelete  bool   `json:"can_delete"`
	CanShare   bool   `json:"can_share"`
	OwnerName  string `json:"owner_name,omitempty"`
	OwnerEmail string `json:"owner_email,omitempty"`
}

type CalendarShare struct {
	ID           int64     `json:"id"`
	CalendarID   int64     `json:"calendar_id"`
	OwnerID      int64     `json:"owner_id"`
	SharedWithID int64     `json:"shared_with_id"`
	CanEdit      bool      `json:"can_edit"`
	CanDelete    bool      `json:"can_delete"`
	CanShare     bool      `json:"can_share"`
	SharedAt     time.Time `json:"shared_at"`
	// Grantee details for share listings
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

type Task struct {
	ID          int64    `json:"id"`
	CalendarID  int64    `json:"calendar_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ContentType string   `json:"content_type"`
	Platforms   []string `json:"platforms"`
	Status      string   `json:"status"`
	// ScheduledDate and DisplayDate are always written together and must
	// never diverge; DisplayDate exists for clients that render it directly.
	ScheduledDate *time.Time `json:"scheduled_date"`
	DisplayDate   *time.Time `json:"display_date"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CalendarName  string     `json:"calendar_name,omitempty"`
	CalendarColor string     `json:"calendar_color,omitempty"`
	NotesCount    int64      `json:"notes_count"`
	HasNotes      bool       `json:"has_notes"`
}

type Note struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	CalendarID   int64      `json:"calendar_id"`
	TaskID       *int64     `json:"task_id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Date         *time.Time `json:"date"`
	IsGeneral    bool       `json:"is_general"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CalendarName string     `json:"calendar_name,omitempty"`
	TaskTitle    string     `json:"task_title,omitempty"`
}

// Task enums. Unknown values are rejected at the API boundary.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusOverdue   = "overdue"
)

var validContentTypes = map[string]bool{
	"video": true, "image": true, "text": true, "campaign": true, "ad": true,
}

var validStatuses = map[string]bool{
	StatusPending: true, StatusCompleted: true, StatusOverdue: true,
}

var validPlatforms = map[string]bool{
	"instagram": true, "youtube": true, "tiktok": true, "facebook": true, "linkedin": true,
}

func validPlatformSet(ps []string) bool {
	for _, p := range ps {
		if !validPlatforms[p] {
			return false
		}
	}
	return true
}
