package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PolarWolf314/gitenc/internal/audit"
	kerrors "github.com/PolarWolf314/gitenc/internal/errors"
	"github.com/PolarWolf314/gitenc/internal/ui"
	"github.com/PolarWolf314/gitenc/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logUser      string
	logOperation string
	logSince     string
	logUntil     string
	logOneline   bool
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logUser, "user", "", "filter by user name")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "compact one-line format")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logUser = ""
	logOperation = ""
	logSince = ""
	logUntil = ""
	logOneline = false
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit log",
	Long: `Displays the local audit log of gitenc operations in this clone.

Examples:
  gitenc log                              # View full log
  gitenc log -n 10                        # Last 10 entries
  gitenc log --reverse                    # Most recent first
  gitenc log --operation encrypt,decrypt  # Filter by operation
  gitenc log --since 2024-01-01           # Filter by date
  gitenc log --json                       # JSON output`,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	settings, err := loadSettings()
	if err != nil {
		return printExpectedError(err, ignoreFileName(nil))
	}

	result, err := workflows.Log(context.Background(), settings, workflows.LogOptions{
		Limit:      logLimit,
		Reverse:    logReverse,
		User:       logUser,
		Operations: logOperation,
		Since:      logSince,
		Until:      logUntil,
	})
	if errors.Is(err, kerrors.ErrInvalidDateFormat) {
		fmt.Println(ui.Cross() + " " + err.Error())
		return nil
	}
	if err != nil {
		return Logger.ErrorfAndReturn("failed to read audit log: %v", err)
	}

	Logger.Debugf("Parsed %d entries from audit log", result.TotalEntriesBeforeFilter)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	if logJSON {
		data, err := json.MarshalIndent(result.Entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal entries to JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			fmt.Println("No audit log entries found.")
		} else {
			fmt.Println("No audit log entries found matching the filters.")
		}
		return nil
	}

	for _, e := range result.Entries {
		if logOneline {
			fmt.Printf("%s %s %s %s\n", formatDate(e.Timestamp), e.User, e.Operation, formatDetails(e))
			continue
		}
		fmt.Printf("%-19s  %-15s  %-10s  %s\n", formatDateTime(e.Timestamp), e.User, e.Operation, formatDetails(e))
	}
	return nil
}

func parseTimestamp(ts string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02T15:04:05.000000Z", ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
	}
	return t, err == nil
}

func formatDate(ts string) string {
	if t, ok := parseTimestamp(ts); ok {
		return t.Format("2006-01-02")
	}
	return ts
}

func formatDateTime(ts string) string {
	if t, ok := parseTimestamp(ts); ok {
		return t.Format("2006-01-02 15:04:05")
	}
	return ts
}

// formatDetails summarizes the operation specific fields of an entry.
func formatDetails(e audit.Entry) string {
	var parts []string
	switch {
	case len(e.Files) > 0:
		parts = append(parts, strings.Join(e.Files, ", "))
	case e.Entry != "":
		parts = append(parts, e.Entry)
	case len(e.Hooks) > 0:
		parts = append(parts, fmt.Sprintf("%d hooks", len(e.Hooks)))
	}
	if e.SkippedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", e.SkippedCount))
	}
	if e.FailedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", e.FailedCount))
	}
	if e.KeyFingerprint != "" {
		parts = append(parts, "key "+e.KeyFingerprint)
	}
	return strings.Join(parts, "  ")
}
