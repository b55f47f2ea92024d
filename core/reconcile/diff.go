package reconcile

import (
	"bytes"
	"encoding/json"
	"sort"
)

// volatileFields are bookkeeping fields the platform rewrites on every save.
var volatileFields = map[string]struct{}{
	"createdAt": {},
	"updatedAt": {},
	"versionId": {},
}

// unorderedFields are arrays whose element order carries no meaning.
var unorderedFields = map[string]struct{}{
	"tags":  {},
	"nodes": {},
}

// Modification describes an object present in both sets with differing content.
type Modification struct {
	// Key identifies the object.
	Key Key `json:"key"`

	// Base is the object as it appears in the base set.
	Base Object `json:"-"`

	// Current is the object as it appears in the current set.
	Current Object `json:"-"`

	// Fields lists the top-level payload fields that differ, sorted.
	Fields []string `json:"fields"`
}

// DiffResult is the classification of two object sets.
type DiffResult struct {
	Added     []Object       `json:"added"`
	Modified  []Modification `json:"modified"`
	Removed   []Object       `json:"removed"`
	Unchanged []Object       `json:"unchanged"`
	// Duplicates are repeats of a key already seen in current. They are not classified.
	Duplicates []Object `json:"duplicates,omitempty"`
}

// IsEmpty reports whether the two sets were identical.
func (r DiffResult) IsEmpty() bool {
	return len(r.Added) == 0 && len(r.Modified) == 0 && len(r.Removed) == 0
}

// Diff classifies current against base, keyed by (resource type, id).
// The first occurrence of a repeated key is compared; later ones of current land in
// Duplicates, so every current object appears exactly once in the result.
// The result is sorted by key.
func Diff(base, current []Object) DiffResult {
	baseUnique, _ := SplitDuplicates(base)
	currentUnique, dups := SplitDuplicates(current)
	baseIdx := NewIndex(baseUnique)
	currentIdx := NewIndex(currentUnique)

	result := DiffResult{
		Added:     []Object{},
		Modified:  []Modification{},
		Removed:   []Object{},
		Unchanged: []Object{},
	}

	for key, cur := range currentIdx {
		old, ok := baseIdx[key]
		if !ok {
			result.Added = append(result.Added, cur)
			continue
		}
		fields := ChangedFields(old.Data, cur.Data)
		if len(fields) == 0 {
			result.Unchanged = append(result.Unchanged, cur)
			continue
		}
		result.Modified = append(result.Modified, Modification{
			Key:     key,
			Base:    old,
			Current: cur,
			Fields:  fields,
		})
	}

	for key, old := range baseIdx {
		if !currentIdx.Has(key) {
			result.Removed = append(result.Removed, old)
		}
	}

	SortObjects(result.Added)
	SortObjects(result.Removed)
	SortObjects(result.Unchanged)
	if len(dups) > 0 {
		result.Duplicates = dups
		SortObjects(result.Duplicates)
	}
	sort.Slice(result.Modified, func(i, j int) bool {
		return result.Modified[i].Key.Less(result.Modified[j].Key)
	})

	return result
}

// ChangedFields returns the sorted top-level fields whose canonical values differ.
func ChangedFields(a, b map[string]any) []string {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}

	var changed []string
	for k := range keys {
		if _, skip := volatileFields[k]; skip {
			continue
		}
		av, aok := a[k]
		bv, bok := b[k]
		if aok != bok || !bytes.Equal(canonical(k, av), canonical(k, bv)) {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}

// canonical renders v as JSON with sorted map keys. Arrays stored under an
// unordered field name are sorted by their elements' encodings.
func canonical(field string, v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if _, unordered := unorderedFields[field]; !unordered {
		// Round-trip so ints and float64s built in memory encode the same way.
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return raw
		}
		out, _ := json.Marshal(decoded)
		return out
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return raw
	}
	encoded := make([]string, 0, len(items))
	for _, item := range items {
		b, _ := json.Marshal(item)
		encoded = append(encoded, string(b))
	}
	sort.Strings(encoded)
	out, _ := json.Marshal(encoded)
	return out
}
