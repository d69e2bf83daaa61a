package types

import "errors"

// Config holds backend selection and parameters for attaching a storage
// engine.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// SchemaVersion overrides the schema version the engine expects. Zero
	// means SchemaVersion.
	SchemaVersion int `json:"schema_version,omitempty" yaml:"schema_version,omitempty"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty         = errors.New("backend must not be empty")
	ErrBackendUnknown       = errors.New("unknown backend")
	ErrSchemaVersionInvalid = errors.New("schema version must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.SchemaVersion < 0 {
		return ErrSchemaVersionInvalid
	}
	return nil
}

// GetSchemaVersion returns the effective schema version.
func (c Config) GetSchemaVersion() int {
	if c.SchemaVersion == 0 {
		return SchemaVersion
	}
	return c.SchemaVersion
}
