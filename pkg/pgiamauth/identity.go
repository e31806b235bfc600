package pgiamauth

import "fmt"

// ConnectionIdentity identifies a database endpoint for token issuance and
// caching. Two identities are equal iff all four fields are equal, so the
// struct is used directly as a map key.
type ConnectionIdentity struct {
	// Region is the cloud region hosting the database instance.
	Region string

	// Host is the database server hostname or address.
	Host string

	// Port is the database server port, kept as a string because it is
	// parsed out of a URL and only ever recombined into "host:port".
	Port string

	// Username is the database user the token is minted for.
	Username string
}

// Endpoint returns the "host:port" form expected by cloud token APIs.
func (id ConnectionIdentity) Endpoint() string {
	return id.Host + ":" + id.Port
}

// String returns a diagnostic description of the identity.
// It never contains token material.
func (id ConnectionIdentity) String() string {
	return fmt.Sprintf("%s@%s:%s (region %s)", id.Username, id.Host, id.Port, id.Region)
}
