package types

// CommandResult is the captured outcome of one CLI subprocess run,
// with ANSI escape sequences already stripped from both streams.
type CommandResult struct {
	Command  string `json:"command"`
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	Success  bool   `json:"success"`
}

// Diagnostic is one message extracted from `terraform validate -json`.
type Diagnostic struct {
	Severity string `json:"severity"`
	Summary  string `json:"summary"`
	Detail   string `json:"detail,omitempty"`
	Filename string `json:"filename,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

// ValidationResult is the parsed output of a terraform validation.
type ValidationResult struct {
	Valid       bool         `json:"valid"`
	ErrorCount  int          `json:"error_count"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	RawOutput   string       `json:"raw_output,omitempty"`
}

// LintIssue is one finding reported by tflint.
type LintIssue struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Filename string `json:"filename,omitempty"`
	Line     int    `json:"line,omitempty"`
}

// LintReport is the parsed result of one tflint run.
type LintReport struct {
	Issues     []LintIssue `json:"issues"`
	ErrorCount int         `json:"error_count"`
	RawOutput  string      `json:"raw_output,omitempty"`
}

// PolicyFinding is one conftest policy failure or warning.
type PolicyFinding struct {
	Policy   string `json:"policy,omitempty"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// PolicyReport is the parsed result of one conftest run.
type PolicyReport struct {
	Findings  []PolicyFinding `json:"findings"`
	Passed    int             `json:"passed"`
	Failed    int             `json:"failed"`
	RawOutput string          `json:"raw_output,omitempty"`
}

// InstallationStatus reports whether an external tool is available.
type InstallationStatus struct {
	Tool      string `json:"tool"`
	Installed bool   `json:"installed"`
	Version   string `json:"version,omitempty"`
	Help      string `json:"help,omitempty"`
}

// ExportResult is the outcome of one aztfexport invocation.
type ExportResult struct {
	OutputDir string        `json:"output_dir"`
	Result    CommandResult `json:"result"`
}
