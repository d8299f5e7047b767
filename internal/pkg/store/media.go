package store

import "github.com/ougirez/zstats/internal/domain"

var mediaColumns = []string{
	"id", "user_id", "file_name", "file_path", "file_type", "file_size",
	"public_url", "alt_text", "description", "created_at", "updated_at",
}

func mediaValues(m *domain.Media) (map[string]interface{}, error) {
	return map[string]interface{}{
		"user_id":     m.UserID,
		"file_name":   m.FileName,
		"file_path":   m.FilePath,
		"file_type":   m.FileType,
		"file_size":   m.FileSize,
		"public_url":  m.PublicURL,
		"alt_text":    m.AltText,
		"description": m.Description,
	}, nil
}
