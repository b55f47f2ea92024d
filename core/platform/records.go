package platform

import (
	"flow-vault/core/models"
	"flow-vault/core/reconcile"
)

// FromRecords rebuilds Objects from stored records, re-deriving dependencies from
// the captured payloads.
func FromRecords(records []models.ObjectRecord) []reconcile.Object {
	out := make([]reconcile.Object, 0, len(records))
	for _, r := range records {
		obj := ToObject(r.ResourceType, r.Data)
		obj.ID = r.ResourceID
		if obj.Name == "" {
			obj.Name = r.Name
		}
		out = append(out, obj)
	}
	reconcile.SortObjects(out)
	return out
}
