package thumbnail

import "time"

// Notification is the S3-style bucket notification envelope delivered on the
// uploads topic. One notification carries an ordered batch of zero or more
// object-created records; order carries no processing-order guarantee.
type Notification struct {
	Records []EventRecord `json:"Records"`
}

// EventRecord describes one newly created object.
type EventRecord struct {
	EventName string   `json:"eventName"`
	S3        RecordS3 `json:"s3"`
}

type RecordS3 struct {
	Bucket RecordBucket `json:"bucket"`
	Object RecordObject `json:"object"`
}

type RecordBucket struct {
	Name string `json:"name"`
}

type RecordObject struct {
	// Key arrives percent-encoded ('+' for space) and must be normalized
	// before any storage call.
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// CreatedEvent is emitted on the completion topic after both the thumbnail
// write and the metadata upsert have committed for a source object.
type CreatedEvent struct {
	ID              string    `json:"id"`
	SourceBucket    string    `json:"source_bucket"`
	SourceKey       string    `json:"source_key"`
	ThumbnailBucket string    `json:"thumbnail_bucket"`
	ThumbnailKey    string    `json:"thumbnail_key"`
	SizeBytes       int64     `json:"size_bytes"`
	Width           int       `json:"width"`
	Height          int       `json:"height"`
	ProcessedAt     time.Time `json:"processed_at"`
}
