package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// transcriptTimeLayout renders DD-MM-YYYY-HH:MM.
const transcriptTimeLayout = "02-01-2006-15:04"

// TranscriptName returns the transcript file name for a profile started at t,
// e.g. "Rock17-10-2026-09:30.txt".
func TranscriptName(profileName string, t time.Time) string {
	return profileName + t.Format(transcriptTimeLayout) + ".txt"
}

// OpenTranscript opens (creating if needed) the transcript file for a run in
// append mode. dir is created when missing; an empty dir means the working
// directory.
func OpenTranscript(dir, profileName string, t time.Time) (*os.File, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create transcript directory: %w", err)
		}
	}

	path := filepath.Join(dir, TranscriptName(profileName, t))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript %s: %w", path, err)
	}
	return f, nil
}
