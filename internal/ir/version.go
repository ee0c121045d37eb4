package ir

// Version constants for derivation records and the engine.
const (
	// TraceVersion is the derivation record schema version.
	TraceVersion = "1"

	// EngineVersion is the peano engine version.
	EngineVersion = "0.1.0"
)
