package core

// AdapterConfig holds configuration for connecting to a query engine.
type AdapterConfig struct {
	Type string

	// Path is the database file for embedded engines (":memory:" when empty).
	Path string

	// Network engines
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string

	// Warehouse engines
	Project         string
	Location        string
	CredentialsFile string

	Options map[string]string
	Params  map[string]any
}
