package exitcodes

// Exit codes for the shredder CLI
// These codes form the operational contract with scripts and operators
const (
	Success         = 0 // Target shredded (or dry run completed)
	InvalidArgs     = 2 // Wrong argument count or unparsable iterations
	SafetyViolation = 3 // Safety validator refused the target
	RuntimeError    = 4 // I/O or permission failure while shredding
	NotFound        = 5 // Target is neither a file nor a directory
	InvalidConfig   = 6 // Configuration file invalid or missing
)
