package thumbnail

// Status is the terminal outcome of one upload event.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
	// StatusPartial means the thumbnail was written but the metadata upsert
	// failed. The thumbnail exists with no record pointing at it; a
	// redelivery of the same event converges to StatusSuccess.
	StatusPartial Status = "partial-success"
)

// FailureKind classifies why an event did not reach success.
type FailureKind string

const (
	FailureNone                   FailureKind = ""
	FailureMalformedEvent         FailureKind = "malformed-event"
	FailureSourceUnavailable      FailureKind = "source-unavailable"
	FailureDecodeError            FailureKind = "decode-error"
	FailureDestinationUnavailable FailureKind = "destination-unavailable"
	FailureMetadataError          FailureKind = "metadata-error"
)

// EventResult reports the outcome of a single upload event.
type EventResult struct {
	Bucket       string
	Key          string
	ThumbnailKey string
	Status       Status
	Kind         FailureKind
	Err          error
	Width        int
	Height       int
}

// BatchResult reports per-event outcomes for one notification batch. A batch
// never fails as a whole: configuration errors are caught at startup, before
// any event is accepted.
type BatchResult struct {
	BatchID string
	Results []EventResult
}

// Counts tallies outcomes across the batch.
func (b BatchResult) Counts() (succeeded, skipped, failed, partial int) {
	for _, r := range b.Results {
		switch r.Status {
		case StatusSuccess:
			succeeded++
		case StatusSkipped:
			skipped++
		case StatusPartial:
			partial++
		default:
			failed++
		}
	}
	return succeeded, skipped, failed, partial
}
