package domain

import "time"

// ScanResult is the verdict of a malware scan.
// Err is set when the engine could not be reached or failed mid-scan.
type ScanResult struct {
	IsInfected bool
	VirusName  string
	Err        error
	ScannedAt  time.Time
	Skipped    bool
}
