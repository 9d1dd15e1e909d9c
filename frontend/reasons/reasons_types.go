package reasons

// ReasonView is the API shape of a cancellation reason.
type ReasonView struct {
	ID     int64  `json:"id" bun:"id"`
	Name   string `json:"name" bun:"name"`
	Active bool   `json:"active" bun:"active"`
}

// CreateReasonInput creates a new reason.
type CreateReasonInput struct {
	Name string `json:"name"`
}

// UpdateReasonInput renames or toggles a reason.
type UpdateReasonInput struct {
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}
