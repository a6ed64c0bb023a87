package serializer

import "github.com/mdouchement/corkboard/internal/model"

// User serializes the render of a user.
func User(m *model.User) map[string]interface{} {
	r := map[string]interface{}{
		"id":         m.ID,
		"created_at": m.CreatedAt.UTC(),
		"updated_at": m.UpdatedAt.UTC(),
		"name":       m.Name,
		"color":      m.Color,
	}

	if m.Handle != "" {
		r["handle"] = m.Handle
	}
	if m.Avatar != "" {
		r["avatar"] = m.Avatar
	}

	return r
}

// Users serializes the render of users.
func Users(m []*model.User) []map[string]interface{} {
	users := make([]map[string]interface{}, len(m))
	for i, u := range m {
		users[i] = User(u)
	}
	return users
}
