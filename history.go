package oursh

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

// HistoryFileName is the name of the history file in the user's home directory.
const HistoryFileName = ".oursh_history"

// HistoryConfig holds all history-related configuration.
//
// File path supports multiple formats:
//   - Empty string: Memory-only history (no persistence)
//   - Absolute path: "/home/user/.oursh_history"
//   - Home directory: "~/.oursh_history"
//   - Relative path: "./history" (converted to absolute)
type HistoryConfig struct {
	File       string // File path for history persistence (empty = memory only)
	MaxEntries int    // Maximum number of entries to keep (default: 1000)
}

// DefaultHistoryConfig returns the per-user history configuration.
func DefaultHistoryConfig() *HistoryConfig {
	return &HistoryConfig{
		File:       DefaultHistoryFile(),
		MaxEntries: 1000,
	}
}

// DefaultHistoryFile returns $HOME/.oursh_history, or "" when the home
// directory cannot be determined.
func DefaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, HistoryFileName)
}

// HistoryEntry is a previously submitted line and how many times it was
// entered.
type HistoryEntry struct {
	Text  string
	Count int
}

// History stores submitted lines most recent first, unique by text, and
// tracks how far back Up/Down navigation has gone.
type History struct {
	fs      afero.Fs
	config  *HistoryConfig
	entries []HistoryEntry
	index   int // -1 when not navigating
}

// NewHistory creates a history store persisted through fs. A nil fs uses
// the operating system filesystem, a nil config uses DefaultHistoryConfig.
func NewHistory(fs afero.Fs, config *HistoryConfig) *History {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if config == nil {
		config = DefaultHistoryConfig()
	}
	cfg := *config
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1000
	}
	if cfg.File != "" {
		if absPath, err := expandHistoryPath(cfg.File); err == nil {
			cfg.File = absPath
		}
	}
	return &History{
		fs:     fs,
		config: &cfg,
		index:  -1,
	}
}

// File returns the resolved history file path, "" for memory-only history.
func (h *History) File() string {
	return h.config.File
}

// Add records text as the most recent entry. Empty text is ignored. Text
// already present has its count incremented and moves to the front.
func (h *History) Add(text string) {
	if text == "" {
		return
	}
	if i := h.find(text); i >= 0 {
		entry := h.entries[i]
		entry.Count++
		h.entries = slices.Delete(h.entries, i, i+1)
		h.entries = slices.Insert(h.entries, 0, entry)
		return
	}
	h.entries = slices.Insert(h.entries, 0, HistoryEntry{Text: text, Count: 1})
	if len(h.entries) > h.config.MaxEntries {
		h.entries = h.entries[:h.config.MaxEntries]
	}
}

func (h *History) find(text string) int {
	return slices.IndexFunc(h.entries, func(e HistoryEntry) bool {
		return e.Text == text
	})
}

// Up goes one entry further into the past and returns its text. From the
// live line it goes to the most recent entry, at the oldest entry it stays
// there. It returns false when the history is empty.
func (h *History) Up() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.index < 0 {
		h.index = 0
	} else {
		h.index = min(h.index+1, len(h.entries)-1)
	}
	return h.entries[h.index].Text, true
}

// Down goes one entry toward the present and returns its text. Leaving the
// most recent entry returns to the live line and reports false.
func (h *History) Down() (string, bool) {
	if h.index <= 0 {
		h.index = -1
		return "", false
	}
	h.index--
	return h.entries[h.index].Text, true
}

// Index returns the navigation position and false when not navigating.
func (h *History) Index() (int, bool) {
	return h.index, h.index >= 0
}

// ResetNavigation returns navigation to the live line.
func (h *History) ResetNavigation() {
	h.index = -1
}

// Entries returns a copy of the entries, most recent first.
func (h *History) Entries() []HistoryEntry {
	return slices.Clone(h.entries)
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Clear removes every entry.
func (h *History) Clear() {
	h.entries = nil
	h.index = -1
}

// Load reads the history file. Lines are entries in file order, which is
// most recent first. A missing file leaves the history empty.
func (h *History) Load() error {
	h.entries = nil
	h.index = -1
	if h.config.File == "" {
		return nil
	}

	data, err := afero.ReadFile(h.fs, h.config.File)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist yet, that's ok
		}
		return fmt.Errorf("failed to open history file: %w", err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if i := h.find(line); i >= 0 {
			h.entries[i].Count++
			continue
		}
		if len(h.entries) < h.config.MaxEntries {
			h.entries = append(h.entries, HistoryEntry{Text: line, Count: 1})
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read history file: %w", err)
	}
	return nil
}

// Save writes every entry text, one per line, most recent first,
// overwriting the history file.
func (h *History) Save() error {
	if h.config.File == "" {
		return nil
	}

	dir := filepath.Dir(h.config.File)
	if dir != "." {
		if err := h.fs.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	var buf bytes.Buffer
	for _, entry := range h.entries {
		buf.WriteString(entry.Text)
		buf.WriteByte('\n')
	}
	if err := afero.WriteFile(h.fs, h.config.File, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}

// Search returns entry texts matching query, best fuzzy match first. Equal
// scores keep recency order. An empty query returns every entry.
func (h *History) Search(query string) []string {
	type match struct {
		text  string
		score int
	}
	queryLower := strings.ToLower(query)
	var matches []match
	for _, entry := range h.entries {
		if score := calculateFuzzyScore(queryLower, strings.ToLower(entry.Text), false); score > 0 {
			matches = append(matches, match{text: entry.Text, score: score})
		}
	}
	slices.SortStableFunc(matches, func(a, b match) int {
		return b.score - a.score
	})
	results := make([]string, len(matches))
	for i, m := range matches {
		results[i] = m.text
	}
	return results
}

// expandHistoryPath expands and validates the history file path
// Supports:
// - Absolute paths: /home/user/.history
// - Home directory expansion: ~/.history or ~/config/.history
// - Relative paths: ./.history or config/.history (converted to absolute)
func expandHistoryPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	// Expand home directory (~)
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = home
	}

	// Convert to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to convert to absolute path: %w", err)
	}

	return absPath, nil
}
