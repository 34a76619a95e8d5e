package moor

import "fmt"

// Endpoint is a single broker target: scheme, host, port, and credentials.
// It is immutable after construction and compared structurally.
type Endpoint struct {
	Scheme      string
	Host        string
	Port        int
	User        string
	Password    string
	ContainerID string
}

// String renders the endpoint without the password, safe for logging.
func (e Endpoint) String() string {
	return fmt.Sprintf("%s://%s@%s:%d", e.Scheme, e.User, e.Host, e.Port)
}

// Equal reports structural equality, including credentials.
func (e Endpoint) Equal(other Endpoint) bool {
	return e == other
}

// EndpointList is an ordered, non-empty rotation of broker endpoints. The
// supervisor picks E[i % len(E)] for connect attempt i.
type EndpointList struct {
	endpoints []Endpoint
}

// NewEndpointList builds a rotation from one or more endpoints. It rejects
// an empty list with a KindConfiguration error.
func NewEndpointList(endpoints ...Endpoint) (EndpointList, error) {
	if len(endpoints) == 0 {
		return EndpointList{}, newConfigError("endpoints", "at least one endpoint is required")
	}
	cp := make([]Endpoint, len(endpoints))
	copy(cp, endpoints)
	return EndpointList{endpoints: cp}, nil
}

// At returns the endpoint for connect attempt i, rotating through the list.
func (l EndpointList) At(attempt int) Endpoint {
	if len(l.endpoints) == 0 {
		return Endpoint{}
	}
	return l.endpoints[attempt%len(l.endpoints)]
}

// Len reports the number of distinct endpoints in the rotation.
func (l EndpointList) Len() int {
	return len(l.endpoints)
}
