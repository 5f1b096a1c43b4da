package catalog

import "github.com/fitplate/dashboard/internal/backend"

// Action describes what happened to a catalog item
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Change is announced to connected admins whenever a catalog item is modified
type Change struct {
	Kind   backend.Kind `json:"kind"`
	Id     string       `json:"id"`
	Action Action       `json:"action"`
}
