package pgiamauth

// Driver identifies the database kind a connection request targets.
// The registry passes it to CanHandle so providers only ever see requests
// for databases they understand.
type Driver string

const (
	// DriverPostgres is the PostgreSQL driver kind.
	DriverPostgres Driver = "postgres"
)

// Recognized connection option keys. Keys are case-sensitive.
const (
	// OptionURL is the target database URL (required).
	OptionURL = "url"

	// OptionUser is the database username (required).
	OptionUser = "user"

	// OptionRegion is the cloud region used for token issuance (required).
	OptionRegion = "region"

	// OptionIAMAuth opts a connection request in to IAM authentication.
	// The value must be exactly "true"; any other spelling leaves the
	// request to ordinary password-based providers.
	OptionIAMAuth = "iamAuth"
)

// ConnectionOptions carries the string key-value options handed to a
// connection provider by the registry.
type ConnectionOptions map[string]string

// IAMAuthRequested reports whether the options opt in to IAM authentication.
func (o ConnectionOptions) IAMAuthRequested() bool {
	return o[OptionIAMAuth] == "true"
}
