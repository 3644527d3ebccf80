package ir

// Version constants for journal records and engine.
const (
	// FormatVersion is the journal record format version.
	FormatVersion = "1"

	// EngineVersion is the kanjimerge engine version.
	EngineVersion = "0.1.0"
)
