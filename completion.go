package oursh

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// CompletionKind tags a completion result.
type CompletionKind int

// Completion result kinds.
const (
	NoMatch CompletionKind = iota
	Multiple
	Single
)

func (k CompletionKind) String() string {
	switch k {
	case Multiple:
		return "multiple"
	case Single:
		return "single"
	default:
		return "no match"
	}
}

// Completion is the outcome of one completion request. Candidates are
// sorted; Prefix is the longest prefix they all share (the candidate
// itself for a Single result).
type Completion struct {
	Kind       CompletionKind
	Candidates []string
	Prefix     string
}

// First returns the lexicographically smallest candidate.
func (c Completion) First() (string, bool) {
	if len(c.Candidates) == 0 {
		return "", false
	}
	return c.Candidates[0], true
}

// Completer proposes executable names from a search path and, when no
// executable matches, filesystem paths.
//
// Nothing is cached: every request re-reads the directories it needs so
// that files created since the last Tab are seen.
type Completer struct {
	fs         afero.Fs
	searchPath []string
}

// NewCompleter creates a completer reading through fs. A nil fs uses the
// operating system filesystem. A nil searchPath reads $PATH on every
// request.
func NewCompleter(fs afero.Fs, searchPath []string) *Completer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Completer{fs: fs, searchPath: searchPath}
}

// Complete completes token, trying executables first and paths second.
// A token containing a path separator is only completed as a path.
func (c *Completer) Complete(token string) Completion {
	if token == "" {
		return Completion{Kind: NoMatch}
	}
	if !strings.ContainsRune(token, '/') {
		if result := c.Executables(token); result.Kind != NoMatch {
			return result
		}
	}
	return c.Paths(token)
}

// Executables completes token against the regular files with an execute
// bit in the search path directories. A name found in several
// directories is proposed once.
func (c *Completer) Executables(token string) Completion {
	trie := NewTrie()
	for _, dir := range c.path() {
		entries, err := afero.ReadDir(c.fs, dir)
		if err != nil {
			continue // missing or unreadable PATH entries are common
		}
		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasPrefix(name, token) {
				continue
			}
			info := c.follow(dir, entry)
			if info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0 {
				trie.Insert(name)
			}
		}
	}
	return completionFrom(trie, token)
}

// Paths completes token as a path: the entries of its parent directory
// whose names start with the partial last element. Directories are
// proposed with a trailing slash. Dot files are only proposed when the
// partial name starts with a dot.
func (c *Completer) Paths(token string) Completion {
	dir, partial := splitPathToken(token)
	readDir := dir
	switch {
	case readDir == "":
		readDir = "."
	case strings.HasPrefix(readDir, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return Completion{Kind: NoMatch}
		}
		readDir = filepath.Join(home, readDir[2:])
	}

	entries, err := afero.ReadDir(c.fs, readDir)
	if err != nil {
		return Completion{Kind: NoMatch}
	}
	trie := NewTrie()
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, partial) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(partial, ".") {
			continue
		}
		candidate := dir + name
		if c.follow(readDir, entry).IsDir() {
			candidate += "/"
		}
		trie.Insert(candidate)
	}
	return completionFrom(trie, token)
}

func (c *Completer) path() []string {
	if c.searchPath != nil {
		return c.searchPath
	}
	return splitSearchPath(os.Getenv("PATH"), os.PathListSeparator)
}

// follow resolves symlinked entries so that links to executables and to
// directories are treated like their targets.
func (c *Completer) follow(dir string, entry os.FileInfo) os.FileInfo {
	if entry.Mode()&os.ModeSymlink == 0 {
		return entry
	}
	info, err := c.fs.Stat(filepath.Join(dir, entry.Name()))
	if err != nil {
		return entry
	}
	return info
}

// splitPathToken splits token after its last slash. The directory part
// keeps the slash so candidates can be built by concatenation.
func splitPathToken(token string) (dir, partial string) {
	i := strings.LastIndexByte(token, '/')
	if i < 0 {
		return "", token
	}
	return token[:i+1], token[i+1:]
}

func completionFrom(t *Trie, token string) Completion {
	words := t.WithPrefix(token)
	switch len(words) {
	case 0:
		return Completion{Kind: NoMatch}
	case 1:
		return Completion{Kind: Single, Candidates: words, Prefix: words[0]}
	default:
		return Completion{Kind: Multiple, Candidates: words, Prefix: t.CommonPrefix(token)}
	}
}
