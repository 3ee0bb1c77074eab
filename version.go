// Package aqreport analyzes adaptive-quantization tuning sweeps.
package aqreport

// Version is the release version, reported by --version.
const Version = "0.1.0"
