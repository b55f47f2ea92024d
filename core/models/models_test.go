package models_test

import (
	"testing"

	"flow-vault/core/models"

	"github.com/stretchr/testify/assert"
)

func TestResourceType(t *testing.T) {
	tests := []struct {
		name  string
		typ   models.ResourceType
		valid bool
	}{
		{"Workflow", models.ResourceWorkflow, true},
		{"Credential", models.ResourceCredential, true},
		{"Tag", models.ResourceTag, true},
		{"Variable", "variable", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.typ.IsValid())
		})
	}

	assert.Less(t, models.ResourceTag.Rank(), models.ResourceWorkflow.Rank())
	assert.Less(t, models.ResourceCredential.Rank(), models.ResourceWorkflow.Rank())
	assert.Equal(t, len(models.ResourceTypes), models.ResourceType("other").Rank())
}

func TestRunOptions_IncludesType(t *testing.T) {
	all := models.RunOptions{}
	assert.True(t, all.IncludesType(models.ResourceTag))

	onlyWorkflows := models.RunOptions{Types: []models.ResourceType{models.ResourceWorkflow}}
	assert.True(t, onlyWorkflows.IncludesType(models.ResourceWorkflow))
	assert.False(t, onlyWorkflows.IncludesType(models.ResourceCredential))
}

func TestVersion_HasTag(t *testing.T) {
	v := models.Version{Tags: []string{"release", "pinned"}}
	assert.True(t, v.HasTag("pinned"))
	assert.True(t, v.HasTag("nope", "release"))
	assert.False(t, v.HasTag("nope"))
	assert.False(t, models.Version{}.HasTag("pinned"))
}
