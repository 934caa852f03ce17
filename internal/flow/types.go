package flow

import "fmt"

// Status classifies how one flow activation ended.
type Status int

const (
	StatusActivated Status = iota
	StatusFlowNotFound
	StatusDefinitionNotFound
	StatusVerificationFailed
	StatusRemoteError
)

func (s Status) String() string {
	switch s {
	case StatusActivated:
		return "activated"
	case StatusFlowNotFound:
		return "flow not found"
	case StatusDefinitionNotFound:
		return "definition not found"
	case StatusVerificationFailed:
		return "verification failed"
	case StatusRemoteError:
		return "remote error"
	default:
		return "unknown"
	}
}

// Outcome is the result of activating one flow in one org. VersionNumber is
// set for StatusActivated and StatusVerificationFailed; Message for
// StatusRemoteError.
type Outcome struct {
	Flow          string
	Status        Status
	VersionNumber int
	Message       string
}

// OK reports whether the flow ended up on its latest version.
func (o Outcome) OK() bool {
	return o.Status == StatusActivated
}

func (o Outcome) String() string {
	switch o.Status {
	case StatusActivated:
		return fmt.Sprintf("%s: activated version %d", o.Flow, o.VersionNumber)
	case StatusVerificationFailed:
		return fmt.Sprintf("%s: version %d was not active after update", o.Flow, o.VersionNumber)
	case StatusRemoteError:
		return fmt.Sprintf("%s: %s", o.Flow, o.Message)
	default:
		return fmt.Sprintf("%s: %s", o.Flow, o.Status)
	}
}

// Version is a Tooling API Flow record: one numbered version of a flow.
type Version struct {
	ID            string `json:"Id"`
	VersionNumber int    `json:"VersionNumber"`
}

// Definition is a Tooling API FlowDefinition record.
type Definition struct {
	ID              string `json:"Id"`
	ActiveVersionID string `json:"ActiveVersionId"`
}
