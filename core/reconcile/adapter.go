package reconcile

import (
	"context"

	"flow-vault/core/models"
)

// Target is the platform side the reconciler mutates.
// Implementations issue exactly one network mutation per call.
type Target interface {
	// PushObject creates (models.ActionCreate) or updates (models.ActionUpdate) obj
	// and returns the action that was applied.
	PushObject(ctx context.Context, obj Object, action models.Action) (models.Action, error)
}

// Source lists the objects of one platform instance.
type Source interface {
	// FetchObjects returns every workflow, credential and tag visible to the profile.
	FetchObjects(ctx context.Context) ([]Object, error)
}
