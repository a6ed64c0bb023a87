package serializer

import "github.com/mdouchement/corkboard/internal/model"

// Snapshot serializes the render of a snapshot with its items.
func Snapshot(m *model.Snapshot) map[string]interface{} {
	r := SnapshotSummary(m)
	r["items_data"] = m.Items
	return r
}

// SnapshotSummary serializes the render of a snapshot without its items.
func SnapshotSummary(m *model.Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"id":         m.ID,
		"date":       m.Date,
		"created_at": m.CreatedAt.UTC(),
		"created_by": m.CreatedBy,
		"count":      len(m.Items),
	}
}

// Snapshots serializes the timeline.
func Snapshots(m []*model.Snapshot) []map[string]interface{} {
	snapshots := make([]map[string]interface{}, len(m))
	for i, s := range m {
		snapshots[i] = SnapshotSummary(s)
	}
	return snapshots
}
