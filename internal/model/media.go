package model

// Media is a titled unit of content identified by an external key.
type Media struct {
	ID         int         `db:"id"        json:"-"`
	MediaID    string      `db:"media_id"  json:"media_id"`
	Title      string      `db:"title"     json:"title"`
	Timestamps []Timestamp `db:"-"         json:"timestamps"`
}

// Timestamp is a typed interval (intro, outro, recap...) attached to a media item.
type Timestamp struct {
	ID        int        `db:"id"          json:"-"`
	MediaRef  int        `db:"media_id"    json:"-"`
	Type      string     `db:"type"        json:"type"`
	StartTime *TimeOfDay `db:"start_time"  json:"start_time"`
	EndTime   *TimeOfDay `db:"end_time"    json:"end_time"`
}
