package store

import "github.com/ougirez/zstats/internal/domain"

var userRoleColumns = []string{"id", "user_id", "role", "created_at"}

func userRoleValues(u *domain.UserRole) (map[string]interface{}, error) {
	return map[string]interface{}{
		"user_id": u.UserID,
		"role":    string(u.Role),
	}, nil
}
