package dto

// InquirySendRequest payload for sending an inquiry.
type InquirySendRequest struct {
	TargetEntityID string `json:"target_entity_id"`
	Body           string `json:"body"`
}
