package watch

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// stateVersion is the current state file format.
const stateVersion = 1

// FileState records the last analyzed version of a document.
type FileState struct {
	// Path is the document path as seen by the watcher.
	Path string `json:"path"`

	// ModTime is the modification time at analysis.
	ModTime time.Time `json:"mod_time"`

	// Hash is the SHA256 of the analyzed content.
	Hash string `json:"hash"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// ProcessedAt is when the report was written.
	ProcessedAt time.Time `json:"processed_at"`

	// ReportID is the id of the last report.
	ReportID string `json:"report_id"`

	// ReportPath is where the last report was written.
	ReportPath string `json:"report_path"`
}

// State tracks analyzed documents across restarts.
type State struct {
	// ProcessedFiles maps document paths to their state.
	ProcessedFiles map[string]FileState `json:"processed_files"`

	// LastCheck is the last scan timestamp.
	LastCheck time.Time `json:"last_check"`

	// Version is the state format version.
	Version int `json:"version"`
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		ProcessedFiles: make(map[string]FileState),
		Version:        stateVersion,
	}
}

// LoadState reads a state file. A missing file yields an empty state.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	if state.ProcessedFiles == nil {
		state.ProcessedFiles = make(map[string]FileState)
	}
	return &state, nil
}

// Save writes the state to path through a temporary file and a rename.
func (state *State) Save(path string) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return writeFileAtomic(path, data)
}

// unchanged reports whether a document still matches its recorded state.
func (state *State) unchanged(path string, info os.FileInfo, hash string) bool {
	previous, known := state.ProcessedFiles[path]
	if !known {
		return false
	}
	if hash != "" {
		return previous.Hash == hash
	}
	return previous.Size == info.Size() && previous.ModTime.Equal(info.ModTime())
}

// hashContent returns the hex SHA256 of data.
func hashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// writeFileAtomic writes data to a temporary sibling and renames it over
// path.
func writeFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}
