// Package model defines the data extracted from the filesystem for upload.
package model

import (
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Laisky/errors/v2"
)

// extensions the stdlib table may miss on bare systems, lookups stay
// deterministic across platforms
func init() {
	for ext, typ := range map[string]string{
		".csv":  "text/csv",
		".log":  "text/plain",
		".md":   "text/markdown",
		".txt":  "text/plain",
		".yaml": "application/x-yaml",
		".yml":  "application/x-yaml",
	} {
		if mime.TypeByExtension(ext) == "" {
			_ = mime.AddExtensionType(ext, typ)
		}
	}
}

// FileObject carries everything extracted from the filesystem for a single
// file. It is built once per run and never mutated afterwards; its remote
// representation is keyed by ExternalID on both channels.
type FileObject struct {
	// Path is the resolved absolute location on disk.
	Path string
	// ExternalID is the path relative to the scan root in slash form,
	// e.g. "sub/dir/file.txt". It is stable across runs for the same
	// (path, root) pair, so repeated runs overwrite instead of duplicate.
	ExternalID string
	// Name is the base name, presentational only.
	Name string
	// MimeType is guessed from the file extension, empty when unknown.
	MimeType string
	// Metadata describes the folder position between root and file.
	// Empty for files directly under the root.
	Metadata map[string]string
}

// NewFileObject builds the descriptor for path relative to root.
func NewFileObject(path, root string) (*FileObject, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "absolute path of %q", path)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "absolute path of %q", root)
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return nil, errors.Wrapf(err, "relativize %q against %q", path, root)
	}
	externalID := filepath.ToSlash(rel)

	// resolve symlinks so the stored path is the canonical one,
	// independent of how the file was matched
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %q", path)
	}

	metadata := map[string]string{}
	if folder := filepath.ToSlash(filepath.Dir(rel)); folder != "." {
		metadata["folder"] = folder
		for i, segment := range strings.Split(folder, "/") {
			metadata["col"+strconv.Itoa(i)] = segment
		}
	}

	return &FileObject{
		Path:       resolved,
		ExternalID: externalID,
		Name:       filepath.Base(path),
		MimeType:   mime.TypeByExtension(filepath.Ext(path)),
		Metadata:   metadata,
	}, nil
}

// NewFileObjects builds descriptors for all paths. Any single failure aborts
// the whole batch, discovery is all-or-nothing.
func NewFileObjects(root string, paths []string) ([]*FileObject, error) {
	objs := make([]*FileObject, 0, len(paths))
	for _, p := range paths {
		obj, err := NewFileObject(p, root)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		objs = append(objs, obj)
	}

	return objs, nil
}

// RawColumns returns the row published to the metadata channel.
func (o *FileObject) RawColumns() RawRow {
	return RawRow{
		Key:      o.ExternalID,
		Name:     o.Name,
		MimeType: o.MimeType,
		Columns:  o.Metadata,
	}
}

// TableID addresses one table in the raw metadata store.
type TableID struct {
	Database string
	Table    string
}

func (t TableID) String() string {
	return t.Database + ":" + t.Table
}

// RawRow is one flat metadata row. Name and Key are always present, MimeType
// only when the extension was recognized, Columns holds the folder-derived
// keys.
type RawRow struct {
	Key      string
	Name     string
	MimeType string
	Columns  map[string]string
}

// Document flattens the row into the column map stored remotely.
func (r RawRow) Document() map[string]string {
	doc := map[string]string{
		"name":        r.Name,
		"external_id": r.Key,
	}
	if r.MimeType != "" {
		doc["mime_type"] = r.MimeType
	}
	for k, v := range r.Columns {
		doc[k] = v
	}

	return doc
}

// UploadOptions controls how file content is pushed to the object store.
type UploadOptions struct {
	// Overwrite replaces an existing object sharing the same external id.
	Overwrite bool
	// IgnoreMetadata uploads content without the folder metadata.
	IgnoreMetadata bool
}
