package domain

import "time"

// SystemSettings replaces the flat list of toggles of the admin settings page
// with one struct per concern.
type SystemSettings struct {
	ID          string              `db:"id" json:"id"`
	Features    FeatureSettings     `db:"features" json:"features"`
	Email       EmailSettings       `db:"email" json:"email"`
	Security    SecuritySettings    `db:"security" json:"security"`
	Performance PerformanceSettings `db:"performance" json:"performance"`
	UpdatedAt   time.Time           `db:"updated_at" json:"updated_at"`
}

type FeatureSettings struct {
	UserRegistration bool `json:"user_registration"`
	Notifications    bool `json:"notifications"`
	UserFavorites    bool `json:"user_favorites"`
	Comments         bool `json:"comments"`
	Analytics        bool `json:"analytics"`
	Export           bool `json:"export"`
	GuestAccess      bool `json:"guest_access"`
	MaintenanceMode  bool `json:"maintenance_mode"`
}

type EmailSettings struct {
	FromName      string `json:"from_name" validate:"max=100"`
	FromAddress   string `json:"from_address" validate:"omitempty,email"`
	FooterText    string `json:"footer_text,omitempty"`
	SMTPHost      string `json:"smtp_host,omitempty" validate:"omitempty,hostname"`
	SMTPPort      int    `json:"smtp_port" validate:"gte=0,lte=65535"`
	WelcomeEmails bool   `json:"welcome_emails"`
}

type SecuritySettings struct {
	SessionTimeoutMinutes int  `json:"session_timeout_minutes" validate:"gte=5,lte=1440"`
	MaxLoginAttempts      int  `json:"max_login_attempts" validate:"gte=1,lte=20"`
	PasswordMinLength     int  `json:"password_min_length" validate:"gte=6,lte=128"`
	AuditLogging          bool `json:"audit_logging"`
}

type PerformanceSettings struct {
	Caching              bool `json:"caching"`
	CacheDurationMinutes int  `json:"cache_duration_minutes" validate:"gte=0"`
	MaxUploadSizeMB      int  `json:"max_upload_size_mb" validate:"gte=1,lte=100"`
}

func DefaultSystemSettings() SystemSettings {
	return SystemSettings{
		ID: "default",
		Features: FeatureSettings{
			UserRegistration: true,
			Notifications:    true,
			UserFavorites:    true,
			Analytics:        true,
			Export:           true,
			GuestAccess:      true,
		},
		Email: EmailSettings{
			FromName: "Zambia Statistics",
			SMTPPort: 587,
		},
		Security: SecuritySettings{
			SessionTimeoutMinutes: 60,
			MaxLoginAttempts:      5,
			PasswordMinLength:     8,
			AuditLogging:          true,
		},
		Performance: PerformanceSettings{
			Caching:              true,
			CacheDurationMinutes: 15,
			MaxUploadSizeMB:      10,
		},
	}
}

// SiteConfig is the public branding of the site.
type SiteConfig struct {
	ID             string    `db:"id" json:"id"`
	SiteName       string    `db:"site_name" json:"site_name" validate:"required,max=100"`
	SiteTagline    string    `db:"site_tagline" json:"site_tagline,omitempty"`
	Description    string    `db:"site_description" json:"site_description,omitempty"`
	LogoURL        string    `db:"logo_url" json:"logo_url,omitempty" validate:"omitempty,url"`
	FaviconURL     string    `db:"favicon_url" json:"favicon_url,omitempty" validate:"omitempty,url"`
	PrimaryColor   string    `db:"primary_color" json:"primary_color,omitempty" validate:"omitempty,hexcolor"`
	SecondaryColor string    `db:"secondary_color" json:"secondary_color,omitempty" validate:"omitempty,hexcolor"`
	ContactEmail   string    `db:"contact_email" json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone   string    `db:"contact_phone" json:"contact_phone,omitempty"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		ID:             "default",
		SiteName:       "Zambia Provincial Statistics",
		SiteTagline:    "Open data on health, agriculture, economy and mining",
		PrimaryColor:   "#198a00",
		SecondaryColor: "#de2010",
	}
}

// UserPreferences groups the per-user display toggles.
type UserPreferences struct {
	Theme         string                `json:"theme" validate:"omitempty,oneof=light dark system"`
	Accessibility AccessibilitySettings `json:"accessibility"`
	Notifications NotificationSettings  `json:"notifications"`
}

type AccessibilitySettings struct {
	HighContrast      bool `json:"high_contrast"`
	LargeText         bool `json:"large_text"`
	ReduceMotion      bool `json:"reduce_motion"`
	ScreenReader      bool `json:"screen_reader"`
	KeyboardShortcuts bool `json:"keyboard_shortcuts"`
}

type NotificationSettings struct {
	Email       bool `json:"email"`
	Push        bool `json:"push"`
	DataUpdates bool `json:"data_updates"`
	Newsletter  bool `json:"newsletter"`
}

func DefaultUserPreferences() UserPreferences {
	return UserPreferences{
		Theme:         "system",
		Accessibility: AccessibilitySettings{KeyboardShortcuts: true},
		Notifications: NotificationSettings{Email: true, DataUpdates: true},
	}
}
