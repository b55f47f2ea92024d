package reconcile

import (
	"testing"

	"flow-vault/core/models"

	"github.com/stretchr/testify/assert"
)

func wf(id string, data map[string]any) Object {
	return Object{Type: models.ResourceWorkflow, ID: id, Name: id, Data: data}
}

func TestDiff(t *testing.T) {
	base := []Object{
		wf("a", map[string]any{"x": 1}),
		wf("b", map[string]any{"x": 1}),
		wf("c", map[string]any{"x": 1}),
	}
	current := []Object{
		wf("d", map[string]any{"x": 1}),
		wf("b", map[string]any{"x": 2}),
		wf("a", map[string]any{"x": 1}),
	}

	result := Diff(base, current)

	assert.Len(t, result.Added, 1)
	assert.Equal(t, "d", result.Added[0].ID)
	assert.Len(t, result.Modified, 1)
	assert.Equal(t, "b", result.Modified[0].Key.ID)
	assert.Equal(t, []string{"x"}, result.Modified[0].Fields)
	assert.Len(t, result.Removed, 1)
	assert.Equal(t, "c", result.Removed[0].ID)
	assert.Len(t, result.Unchanged, 1)
	assert.Equal(t, "a", result.Unchanged[0].ID)
	assert.False(t, result.IsEmpty())
}

func TestDiff_SelfDiff(t *testing.T) {
	set := []Object{
		wf("2", map[string]any{"name": "two", "nodes": []any{map[string]any{"id": "n1"}}}),
		{Type: models.ResourceTag, ID: "t1", Data: map[string]any{"name": "prod"}},
		{Type: models.ResourceCredential, ID: "c1", Data: map[string]any{"type": "httpBasicAuth"}},
	}

	result := Diff(set, set)

	assert.Empty(t, result.Added)
	assert.Empty(t, result.Modified)
	assert.Empty(t, result.Removed)
	assert.Len(t, result.Unchanged, len(set))
	assert.True(t, result.IsEmpty())
	// Dependency order: tags, credentials, workflows.
	assert.Equal(t, models.ResourceTag, result.Unchanged[0].Type)
	assert.Equal(t, models.ResourceCredential, result.Unchanged[1].Type)
	assert.Equal(t, models.ResourceWorkflow, result.Unchanged[2].Type)
}

func TestDiff_SelfDiffWithRepeatedKeys(t *testing.T) {
	set := []Object{
		wf("a", map[string]any{"x": 1}),
		wf("b", map[string]any{"x": 1}),
		wf("a", map[string]any{"x": 2}),
	}

	result := Diff(set, set)

	assert.True(t, result.IsEmpty())
	assert.Len(t, result.Unchanged, 2)
	assert.Len(t, result.Duplicates, 1)
	assert.Equal(t, len(set), len(result.Unchanged)+len(result.Duplicates))
	// The first occurrence is the one compared.
	assert.Equal(t, 1, result.Unchanged[0].Data["x"])
}

func TestDiff_OrderIndependent(t *testing.T) {
	base := []Object{wf("a", map[string]any{"x": 1}), wf("b", map[string]any{"x": 1})}
	current := []Object{wf("c", map[string]any{}), wf("b", map[string]any{"x": 3}), wf("e", nil)}

	first := Diff(base, current)
	second := Diff([]Object{base[1], base[0]}, []Object{current[2], current[0], current[1]})

	assert.Equal(t, first, second)
}

func TestDiff_SameIDDifferentTypes(t *testing.T) {
	base := []Object{{Type: models.ResourceTag, ID: "1", Data: map[string]any{}}}
	current := []Object{{Type: models.ResourceWorkflow, ID: "1", Data: map[string]any{}}}

	result := Diff(base, current)
	assert.Len(t, result.Added, 1)
	assert.Len(t, result.Removed, 1)
}

func TestChangedFields_Equality(t *testing.T) {
	tests := []struct {
		name  string
		a     map[string]any
		b     map[string]any
		equal bool
	}{
		{"Identical", map[string]any{"x": 1}, map[string]any{"x": 1}, true},
		{"IntVsFloat", map[string]any{"x": 1}, map[string]any{"x": 1.0}, true},
		{"VolatileIgnored", map[string]any{"x": 1, "updatedAt": "a"}, map[string]any{"x": 1, "updatedAt": "b"}, true},
		{"VolatileOnlyOneSide", map[string]any{"x": 1, "versionId": "v"}, map[string]any{"x": 1}, true},
		{
			"TagsUnordered",
			map[string]any{"tags": []any{map[string]any{"id": "1"}, map[string]any{"id": "2"}}},
			map[string]any{"tags": []any{map[string]any{"id": "2"}, map[string]any{"id": "1"}}},
			true,
		},
		{
			"NodesUnordered",
			map[string]any{"nodes": []any{"a", "b"}},
			map[string]any{"nodes": []any{"b", "a"}},
			true,
		},
		{
			"OrderedArrayDiffers",
			map[string]any{"steps": []any{"a", "b"}},
			map[string]any{"steps": []any{"b", "a"}},
			false,
		},
		{"NestedMapKeyOrder", map[string]any{"s": map[string]any{"a": 1, "b": 2}}, map[string]any{"s": map[string]any{"b": 2, "a": 1}}, true},
		{"MissingField", map[string]any{"x": 1}, map[string]any{}, false},
		{"NilVsEmpty", nil, map[string]any{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, len(ChangedFields(tt.a, tt.b)) == 0)
		})
	}
}
