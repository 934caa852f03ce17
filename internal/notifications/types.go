package notifications

import "time"

// Severity indicates the importance of a notification.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ValidSeverity reports whether s is a known severity.
func ValidSeverity(s Severity) bool {
	_, ok := severityLevels[s]
	return ok
}

var severityLevels = map[Severity]int{
	SeverityInfo:     0,
	SeverityWarning:  1,
	SeverityCritical: 2,
}

// Notification summarises one finished activation run.
type Notification struct {
	RunID     string       `json:"run_id"`
	Severity  Severity     `json:"severity"`
	Title     string       `json:"title"`
	Message   string       `json:"message"`
	Results   []FlowResult `json:"results"`
	Skipped   []string     `json:"skipped_orgs,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// FlowResult is the outcome of one flow in one org.
type FlowResult struct {
	Org           string `json:"org"`
	Flow          string `json:"flow"`
	Status        string `json:"status"`
	VersionNumber int    `json:"version_number,omitempty"`
	Message       string `json:"message,omitempty"`
}
