package source

// Include is one #include directive (or compiler-reported header) as written.
type Include struct {
	Path   string `json:"path"`
	System bool   `json:"system,omitempty"` // <...> form
	Line   int    `json:"line,omitempty"`
}

// FileIncludes holds the includes extracted from a single file.
type FileIncludes struct {
	Path     string // path relative to the project directory
	Language string
	Includes []Include
}

// Severity of a non-fatal scanning issue.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Issue captures a soft failure: the file or directory contributes nothing
// and scanning continues.
type Issue struct {
	File     string `json:"file"`
	Language string `json:"language,omitempty"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}
