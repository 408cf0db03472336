package packets

// Required strings are pointers so that a missing or null field fails binding
// while an explicit empty string is still accepted.
type TimestampPayload struct {
	Type      *string `json:"type" binding:"required"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

// body for creating a media item; echoed back unchanged on success
type CreateMediaRequest struct {
	MediaID    *string            `json:"media_id" binding:"required"`
	Title      *string            `json:"title" binding:"required"`
	Timestamps []TimestampPayload `json:"timestamps" binding:"required,dive"`
}
