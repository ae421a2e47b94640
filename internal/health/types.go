package health

import (
	"encoding/json"
	"time"
)

// Status represents the health state of a provider.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Item is the tracked health of one provider.
type Item struct {
	Provider  string     `json:"provider"`
	Status    Status     `json:"status"`
	Message   string     `json:"message,omitempty"`
	Failures  int        `json:"failures,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// MarshalJSON omits the message and timestamp for OK items.
func (i Item) MarshalJSON() ([]byte, error) {
	type Alias Item
	alias := Alias(i)

	if i.Status == StatusOK {
		alias.Timestamp = nil
		alias.Message = ""
	}

	return json.Marshal(alias)
}

// Summary counts providers by status.
type Summary struct {
	OK        int  `json:"ok"`
	Warning   int  `json:"warning"`
	Error     int  `json:"error"`
	HasIssues bool `json:"hasIssues"`
}

// Total returns the number of tracked providers.
func (s Summary) Total() int {
	return s.OK + s.Warning + s.Error
}

// Response is the body of GET /api/v1/health.
type Response struct {
	Providers []Item  `json:"providers"`
	Summary   Summary `json:"summary"`
}
