package dto

import "time"

// DirectoryEntryResponse is one visible listing row.
type DirectoryEntryResponse struct {
	EntityID  string    `json:"entity_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Tier      string    `json:"tier"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// VisibilityResponse explains an entity's directory status.
type VisibilityResponse struct {
	Visible bool   `json:"visible"`
	Tier    string `json:"tier,omitempty"`
	Reason  string `json:"reason"`
}
