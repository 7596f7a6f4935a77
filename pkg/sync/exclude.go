package sync

import (
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/sdejongh/foldersync/pkg/models"
)

// Excluder matches paths against gitignore-style patterns.
// Patterns support:
//   - Simple globs: *.tmp, *.log
//   - Directory patterns: .git/, node_modules/
//   - Anchored and deep paths: /build, **/cache/*
//   - Negation: !important.log
//
// A nil *Excluder matches nothing.
type Excluder struct {
	matcher *ignore.GitIgnore
}

// NewExcluder compiles the patterns, returning nil when there are none
func NewExcluder(patterns []string) *Excluder {
	lines := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if strings.TrimSpace(p) != "" {
			lines = append(lines, p)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return &Excluder{matcher: ignore.CompileIgnoreLines(lines...)}
}

// Match reports whether the entry at relativePath (slash-separated, relative
// to the sync root) is excluded
func (e *Excluder) Match(relativePath string, kind models.EntityKind) bool {
	if e == nil || relativePath == "" {
		return false
	}
	if kind == models.KindDirectory {
		// Directory-only patterns ("build/") need the trailing slash to match
		return e.matcher.MatchesPath(relativePath + "/")
	}
	return e.matcher.MatchesPath(relativePath)
}
