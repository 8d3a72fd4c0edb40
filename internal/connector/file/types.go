package file

// Config holds local catalog configuration.
type Config struct {
	// DataDir is the directory holding <srcid>.json metadata files.
	// Required; scanned recursively.
	DataDir string `json:"datadir"`

	// Substrings restricts the scan to file names containing at least
	// one of them. Empty means every .json file.
	Substrings []string `json:"substrings,omitempty"`
}

// ValidationError describes a config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return &ValidationError{Field: "datadir", Message: "required"}
	}
	return nil
}
