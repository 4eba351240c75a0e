package processr

// Status is the lifecycle state the server reports for a resource or one of
// its processors. Values beyond the constants below are server-defined and
// treated as terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// Processor is a server-side sub-job deriving one artifact (a thumbnail or an
// image preview) with its own status.
type Processor struct {
	Size   string `json:"size"`
	Status Status `json:"status"`
	URL    string `json:"url"`
}

// Resource is the server-side entity representing one submitted item and its
// derived artifacts. The client only ever holds a transient read-only copy.
type Resource struct {
	ID         string      `json:"id"`
	Status     Status      `json:"status"`
	URL        string      `json:"url"`
	Thumbnails []Processor `json:"thumbnails"`
	Images     []Processor `json:"images"`
}

// Pending reports whether the resource as a whole is still processing.
func (r *Resource) Pending() bool {
	return r != nil && r.Status == StatusPending
}

// processorsSettled reports whether every processor in the group has left the
// pending state. An empty group counts as settled.
func processorsSettled(processors []Processor) bool {
	for _, p := range processors {
		if p.Status == StatusPending {
			return false
		}
	}
	return true
}
