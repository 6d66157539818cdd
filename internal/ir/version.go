package ir

const (
	// SchemaVersion is the version of the declaration format.
	SchemaVersion = "1"

	// CompilerVersion is stamped into generated file headers and the build cache.
	CompilerVersion = "0.3.0"
)
