package history

import "time"

// Kind classifies what a submission carried.
type Kind string

const (
	KindFile   Kind = "file"
	KindLink   Kind = "link"
	KindStream Kind = "stream"
)

// Status mirrors the last observed lifecycle state of a submission.
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Submission is one row of the local history log.
type Submission struct {
	ID                string
	ResourceID        string
	Kind              Kind
	Source            string
	ThumbnailSizes    string
	ImagePreviewSizes string
	Status            Status
	ErrorMessage      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
