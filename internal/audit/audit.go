package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/gitenc/internal/utils"
	"github.com/google/uuid"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"`   // RFC3339 with microseconds.
	RunID     string `json:"run"`  // Identifies one command invocation.
	User      string `json:"user"` // Local OS user.
	Operation string `json:"op"`

	// Optional fields depending on operation.
	Files          []string `json:"files,omitempty"`           // For encrypt/decrypt.
	SkippedCount   int      `json:"skipped_count,omitempty"`   // For encrypt/decrypt.
	FailedCount    int      `json:"failed_count,omitempty"`    // For encrypt/decrypt.
	KeyFingerprint string   `json:"key_fingerprint,omitempty"` // Never the key itself.
	Hooks          []string `json:"hooks,omitempty"`           // For init.
	Entry          string   `json:"entry,omitempty"`           // For add.
}

// NewEntry returns an entry for op with a fresh run ID and the current user.
func NewEntry(op string) Entry {
	entry := Entry{
		RunID:     uuid.New().String(),
		Operation: op,
	}
	if username, err := utils.GetUsername(); err == nil {
		entry.User = username
	}
	return entry
}

// Log appends an entry to the audit log at logPath.
// Failures are ignored: an operation never fails because auditing did.
func Log(logPath string, entry Entry) {
	if logPath == "" {
		return
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_, _ = f.Write(append(data, '\n'))
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries(logPath string) ([]Entry, error) {
	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, scanner.Err()
}
