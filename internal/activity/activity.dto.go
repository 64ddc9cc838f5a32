package activity

type CompleteRequest struct {
	PactName    string `json:"pact_name"`
	CompletedAt string `json:"completed_at,omitempty"` // RFC3339; defaults to now
}

type FocusRequest struct {
	StartedAt       string `json:"started_at,omitempty"` // RFC3339; defaults to now
	DurationMinutes int    `json:"duration_minutes"`
}
