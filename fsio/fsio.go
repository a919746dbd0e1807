// Package fsio resolves dataset path specs against a filesystem capability.
// The filesystem handle is shared read-only across every partition of a plan,
// so it must tolerate concurrent independent reads; this package never writes.
package fsio

import (
	"path/filepath"
	"sort"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/go-ragged/ragged/graph"
)

// MetadataFileName is the dataset-level aggregated metadata file written at
// the root of a columnar dataset.
const MetadataFileName = "_metadata"

// Resolve expands a path spec into a filesystem handle, a stable token for
// content-addressed naming, and the concrete file list. A directory spec
// lists its parquet files in sorted order; a glob pattern expands; anything
// else is taken as a single file. The dataset-level metadata file is never
// part of the data file list.
func Resolve(spec string, fs afero.Fs) (afero.Fs, string, []string, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	token := graph.Tokenize("fsio", spec)

	var paths []string
	switch {
	case strings.ContainsAny(spec, "*?["):
		matches, err := afero.Glob(fs, spec)
		if err != nil {
			return nil, "", nil, pkgerrors.Wrapf(err, "expanding %s", spec)
		}
		paths = matches
	default:
		info, err := fs.Stat(spec)
		if err != nil {
			return nil, "", nil, pkgerrors.Wrapf(err, "resolving %s", spec)
		}
		if !info.IsDir() {
			return fs, token, []string{spec}, nil
		}
		entries, err := afero.ReadDir(fs, spec)
		if err != nil {
			return nil, "", nil, pkgerrors.Wrapf(err, "listing %s", spec)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if strings.HasSuffix(e.Name(), ".parquet") {
				paths = append(paths, filepath.Join(spec, e.Name()))
			}
		}
	}
	filtered := paths[:0]
	for _, p := range paths {
		if filepath.Base(p) != MetadataFileName {
			filtered = append(filtered, p)
		}
	}
	sort.Strings(filtered)
	return fs, token, filtered, nil
}

// MetadataPath returns the dataset-level metadata path under a dataset root
func MetadataPath(root string) string {
	return filepath.Join(strings.TrimRight(root, "/"), MetadataFileName)
}

// HasMetadataFile reports whether a dataset root carries an aggregated
// metadata file
func HasMetadataFile(fs afero.Fs, root string) bool {
	info, err := fs.Stat(MetadataPath(root))
	return err == nil && !info.IsDir()
}
