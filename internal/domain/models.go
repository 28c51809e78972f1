package domain

import "github.com/google/uuid"

const (
	DisplayPrefix = "Your IP Address is: "
	// AbsentIP is rendered when the lookup response has no ip field.
	AbsentIP = "undefined"
)

type ActivationID string

func NewActivationID() ActivationID {
	return ActivationID(uuid.NewString())
}

// LookupResult is the decoded answer of one lookup. IP holds the ip field
// verbatim and is only meaningful when Present is true.
type LookupResult struct {
	IP      string
	Present bool
}

func (r LookupResult) Display() string {
	if !r.Present {
		return DisplayPrefix + AbsentIP
	}
	return DisplayPrefix + r.IP
}
