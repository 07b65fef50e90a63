package tools

// Status captures the resolved state of one scss-lint candidate. Recorded is
// set when Version came from the probe manifest instead of a fresh query.
type Status struct {
	Tool      string   `json:"tool"`
	Path      string   `json:"path,omitempty"`
	Version   string   `json:"version,omitempty"`
	Minimum   string   `json:"minimum,omitempty"`
	Valid     bool     `json:"valid"`
	Satisfied bool     `json:"satisfied"`
	Recorded  bool     `json:"recorded,omitempty"`
	Error     string   `json:"error,omitempty"`
	Notes     []string `json:"notes,omitempty"`
}
