package domain

// Status is a deployment lifecycle state reported to the tracking service.
// The values match the GitHub Deployments API state vocabulary.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// String implements the Stringer interface.
func (s Status) String() string {
	return string(s)
}
