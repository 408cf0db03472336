package packets

import "github.com/Nixie-Tech-LLC/cuepoint/internal/model"

type TimestampResponse struct {
	Type      string  `json:"type"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

type MediaResponse struct {
	MediaID    string              `json:"media_id"`
	Title      string              `json:"title"`
	Timestamps []TimestampResponse `json:"timestamps"`
}

type DeleteMediaResponse struct {
	Detail string `json:"detail"`
}

// NewMediaResponse renders times as HH:MM:SS. A missing time becomes JSON null,
// or nullLiteral when one is configured.
func NewMediaResponse(m model.Media, nullLiteral string) MediaResponse {
	out := MediaResponse{
		MediaID:    m.MediaID,
		Title:      m.Title,
		Timestamps: make([]TimestampResponse, 0, len(m.Timestamps)),
	}
	for _, ts := range m.Timestamps {
		out.Timestamps = append(out.Timestamps, TimestampResponse{
			Type:      ts.Type,
			StartTime: renderTime(ts.StartTime, nullLiteral),
			EndTime:   renderTime(ts.EndTime, nullLiteral),
		})
	}
	return out
}

func renderTime(t *model.TimeOfDay, nullLiteral string) *string {
	if t == nil {
		if nullLiteral == "" {
			return nil
		}
		s := nullLiteral
		return &s
	}
	s := t.String()
	return &s
}
