package models

import (
	"fmt"
	"sort"
)

// EntityKind distinguishes files from directories
type EntityKind string

const (
	// KindFile is a regular file
	KindFile EntityKind = "file"
	// KindDirectory is a directory
	KindDirectory EntityKind = "directory"
)

// Operation is the mutation applied to a destination entity
type Operation string

const (
	// OpCreated indicates the entity did not exist in the destination
	OpCreated Operation = "created"
	// OpCopied indicates an existing file was overwritten with new content
	OpCopied Operation = "copied"
	// OpRemoved indicates the entity was deleted from the destination
	OpRemoved Operation = "removed"
)

// ChangeEvent describes one completed mutation of the destination tree
type ChangeEvent struct {
	Path string
	Kind EntityKind
	Op   Operation
}

// String renders the event the way it appears in the sync log
func (e ChangeEvent) String() string {
	label := "FILE"
	if e.Kind == KindDirectory {
		label = "FOLDER"
	}
	return fmt.Sprintf("%s '%s' %s", label, e.Path, e.Op)
}

// DirectoryListing holds the entries found directly inside one directory
type DirectoryListing map[string]EntityKind

// Has reports whether name is present in the listing
func (l DirectoryListing) Has(name string) bool {
	_, ok := l[name]
	return ok
}

// Names returns the entry names in lexical order
func (l DirectoryListing) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
