package reconcile

import (
	"sort"

	"flow-vault/core/models"
)

// Key identifies an object within a run.
type Key struct {
	Type models.ResourceType `json:"type"`
	ID   string              `json:"id"`
}

// String returns "type/id".
func (k Key) String() string {
	return string(k.Type) + "/" + k.ID
}

// Less orders keys by resource type rank, then id.
func (k Key) Less(other Key) bool {
	if k.Type != other.Type {
		return k.Type.Rank() < other.Type.Rank()
	}
	return k.ID < other.ID
}

// Object is a snapshot of one platform object.
type Object struct {
	// Type is the resource type.
	Type models.ResourceType `json:"type"`

	// ID is the platform's external id.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Data is the captured payload as decoded JSON.
	Data map[string]any `json:"data"`

	// Dependencies are other objects this one references (e.g. a workflow's credentials).
	Dependencies []Key `json:"dependencies,omitempty"`
}

// Key returns the object's identity.
func (o Object) Key() Key {
	return Key{Type: o.Type, ID: o.ID}
}

// Index maps keys to objects. The first occurrence of a key wins.
type Index map[Key]Object

// NewIndex builds an index over objs.
func NewIndex(objs []Object) Index {
	idx := make(Index, len(objs))
	for _, o := range objs {
		if _, exists := idx[o.Key()]; exists {
			continue
		}
		idx[o.Key()] = o
	}
	return idx
}

// Has reports whether k is present.
func (i Index) Has(k Key) bool {
	_, ok := i[k]
	return ok
}

// TargetState is what the reconciler knows when applying one object.
type TargetState struct {
	// Existing indexes objects already present at the target.
	Existing Index

	// Working indexes every object in the run's input set.
	Working Index
}

// SortObjects sorts objs in place by key (types in dependency order, then id).
func SortObjects(objs []Object) {
	sort.SliceStable(objs, func(i, j int) bool {
		return objs[i].Key().Less(objs[j].Key())
	})
}

// SortKeys orders keys in dispatch order.
func SortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})
}

// SplitDuplicates separates the first occurrence of each key from later repeats,
// preserving input order in both slices.
func SplitDuplicates(objs []Object) (unique, duplicates []Object) {
	seen := make(map[Key]struct{}, len(objs))
	for _, o := range objs {
		if _, ok := seen[o.Key()]; ok {
			duplicates = append(duplicates, o)
			continue
		}
		seen[o.Key()] = struct{}{}
		unique = append(unique, o)
	}
	return unique, duplicates
}
