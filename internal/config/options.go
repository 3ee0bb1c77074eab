package config

import "slices"

// ValidEngines contains the supported aggregation backends.
var ValidEngines = []string{
	"memory", // Group and average in Go
	"sqlite", // Group and average with SQL in an in-memory database
}

// DefaultEngine is the default aggregation backend.
const DefaultEngine = "memory"

// ValidFormats contains the supported console summary formats.
var ValidFormats = []string{
	"table",
	"json",
}

// DefaultFormat is the default console summary format.
const DefaultFormat = "table"

// IsValidEngine returns true if the engine name is valid.
func IsValidEngine(engine string) bool {
	return slices.Contains(ValidEngines, engine)
}

// ValidateEngine returns the engine if valid, or the default if invalid.
func ValidateEngine(engine string) string {
	if IsValidEngine(engine) {
		return engine
	}
	return DefaultEngine
}

// IsValidFormat returns true if the format name is valid.
func IsValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// ValidateFormat returns the format if valid, or the default if invalid.
func ValidateFormat(format string) string {
	if IsValidFormat(format) {
		return format
	}
	return DefaultFormat
}
