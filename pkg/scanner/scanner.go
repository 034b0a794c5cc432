// Package scanner classifies a source tree by the language dependencies
// it implies, to seed a generated project manifest.
package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Lang is a language-dependency tag discovered in a source tree.
type Lang string

const (
	LangGo     Lang = "Go"
	LangNodeJS Lang = "NodeJS"
	LangPython Lang = "Python"
	LangRust   Lang = "Rust"
)

// LangSet is a deduplicated set of discovered language dependencies. A
// nil set means nothing matched.
type LangSet map[Lang]struct{}

// Contains reports whether lang is in the set.
func (s LangSet) Contains(lang Lang) bool {
	_, ok := s[lang]
	return ok
}

// Names returns the set's members sorted by name for stable output.
func (s LangSet) Names() []string {
	names := make([]string, 0, len(s))
	for lang := range s {
		names = append(names, string(lang))
	}
	sort.Strings(names)
	return names
}

// extensions maps a lower-cased file extension to its language tag.
var extensions = map[string]Lang{
	"go": LangGo,
	"rs": LangRust,
	"js": LangNodeJS,
	"ts": LangNodeJS,
	"py": LangPython,
}

// Scan walks the tree rooted at root and classifies every regular file
// by its lower-cased extension. Unreadable entries are skipped rather
// than aborting the walk; discovery order does not affect the result.
// Returns nil when nothing matched.
func Scan(root string) LangSet {
	var found LangSet

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		lang, ok := extensions[ext]
		if !ok {
			return nil
		}

		if found == nil {
			found = LangSet{}
		}
		found[lang] = struct{}{}
		return nil
	})

	return found
}
