package domain

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// UserRole grants a role to an externally authenticated user.
type UserRole struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id" validate:"required,uuid"`
	Role      Role      `db:"role" json:"role" validate:"required,oneof=admin user"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (u *UserRole) GetID() string   { return u.ID }
func (u *UserRole) SetID(id string) { u.ID = id }

// Profile stores per-user preferences.
type Profile struct {
	ID          string          `db:"id" json:"id"`
	FullName    string          `db:"full_name" json:"full_name,omitempty"`
	Preferences UserPreferences `db:"preferences" json:"preferences"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// Media is an uploaded file tracked by the media library.
type Media struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	FileName    string    `db:"file_name" json:"file_name" validate:"required"`
	FilePath    string    `db:"file_path" json:"file_path" validate:"required"`
	FileType    string    `db:"file_type" json:"file_type"`
	FileSize    int64     `db:"file_size" json:"file_size" validate:"gte=0"`
	PublicURL   string    `db:"public_url" json:"public_url"`
	AltText     string    `db:"alt_text" json:"alt_text,omitempty" validate:"max=255"`
	Description string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func (m *Media) GetID() string   { return m.ID }
func (m *Media) SetID(id string) { m.ID = id }
