package parquet

import (
	"path/filepath"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/metadata"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/hashicorp/go-multierror"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/go-ragged/ragged/errors"
	"github.com/go-ragged/ragged/fsio"
)

// colRange is the [min, max] span of one top-level column within a row
// group, widened to float64 for comparison against Filters.
type colRange struct {
	min float64
	max float64
}

// rowGroup is one row group's planning view: the file it belongs to, its
// index within that file, its row count and whatever statistics the footer
// carried.
type rowGroup struct {
	path    string
	index   int
	numRows int64
	stats   map[string]colRange
}

// dataset is the metadata-only view of a columnar dataset: the resolved
// file list, the unified arrow schema and, when the layout is complete,
// every row group in file order then footer order within file.
type dataset struct {
	fs       afero.Fs
	spec     string
	token    string
	paths    []string
	schema   *arrow.Schema
	groups   []rowGroup
	complete bool
}

// openDataset resolves a path spec and performs the single metadata pass,
// returning the dataset view and the decided partition granularity. The
// granularity is row-group-wise only on an explicit override, or by default
// when a dataset-level metadata file is present, not ignored, and describes
// more than one row group.
func openDataset(spec string, opts *Options) (*dataset, bool, error) {
	fs, token, paths, err := fsio.Resolve(spec, opts.Fs)
	if err != nil {
		return nil, false, err
	}
	if len(paths) == 0 {
		return nil, false, errors.EmptyDatasetError{Path: spec}
	}
	ds := &dataset{fs: fs, spec: spec, token: token, paths: paths}

	if fsio.HasMetadataFile(fs, spec) && !opts.ignoreMetadata() {
		if err := ds.loadMetadataFile(spec); err != nil {
			return nil, false, err
		}
		split := len(ds.groups) > 1
		if opts.SplitRowGroups != nil {
			split = *opts.SplitRowGroups
		}
		return ds, split, nil
	}

	split := opts.SplitRowGroups != nil && *opts.SplitRowGroups
	if err := ds.scan(split || opts.ScanFiles); err != nil {
		return nil, false, err
	}
	return ds, split, nil
}

// loadMetadataFile builds the dataset view from the aggregated _metadata
// file alone, without opening any data file.
func (ds *dataset) loadMetadataFile(root string) error {
	md, err := readMetadataFile(ds.fs, fsio.MetadataPath(root))
	if err != nil {
		return err
	}
	sc, err := pqarrow.FromParquet(md.Schema, nil, md.KeyValueMetadata())
	if err != nil {
		return pkgerrors.Wrap(err, "converting dataset schema")
	}
	ds.schema = sc

	byBase := make(map[string]string, len(ds.paths))
	for _, p := range ds.paths {
		byBase[filepath.Base(p)] = p
	}

	// Resolve each row group's recorded file path. As soon as any row
	// group carries no path the recorded membership is unusable, and every
	// row group falls back to sequential assignment in metadata order.
	total := len(md.RowGroups)
	resolved := make([]string, total)
	sequential := false
	for i := 0; i < total; i++ {
		rel := rowGroupPath(md.RowGroup(i))
		if rel == "" {
			sequential = true
			break
		}
		if p, ok := byBase[filepath.Base(rel)]; ok {
			resolved[i] = p
		} else {
			resolved[i] = filepath.Join(root, rel)
		}
	}
	if sequential {
		var err error
		if resolved, err = ds.sequentialMembership(total); err != nil {
			return err
		}
	}

	perFile := make(map[string]int)
	for i := 0; i < total; i++ {
		rg := md.RowGroup(i)
		ds.groups = append(ds.groups, rowGroup{
			path:    resolved[i],
			index:   perFile[resolved[i]],
			numRows: rg.NumRows(),
			stats:   rowGroupStats(rg),
		})
		perFile[resolved[i]]++
	}
	ds.complete = true
	return nil
}

// sequentialMembership distributes n row groups over the data files in
// metadata order: the aggregated footer lists row groups file by file, and
// each file's own footer says how many of them it holds.
func (ds *dataset) sequentialMembership(n int) ([]string, error) {
	out := make([]string, 0, n)
	for _, p := range ds.paths {
		md, _, err := readFooter(ds.fs, p)
		if err != nil {
			return nil, err
		}
		for i := 0; i < len(md.RowGroups); i++ {
			out = append(out, p)
		}
	}
	if len(out) != n {
		return nil, pkgerrors.Errorf("metadata lists %d row groups but the data files hold %d", n, len(out))
	}
	return out, nil
}

// scan builds the dataset view from the data files themselves. Without full
// scanning only the first footer is opened, enough to learn the unified
// schema; full scanning opens every footer, validates that the schemas
// agree and collects the complete row-group layout.
func (ds *dataset) scan(full bool) error {
	paths := ds.paths
	if !full {
		paths = paths[:1]
	}
	var errs *multierror.Error
	for _, p := range paths {
		md, sc, err := readFooter(ds.fs, p)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if ds.schema == nil {
			ds.schema = sc
		} else if !ds.schema.Equal(sc) {
			errs = multierror.Append(errs,
				pkgerrors.Errorf("schema of %s differs from that of %s", p, ds.paths[0]))
			continue
		}
		for i := 0; i < len(md.RowGroups); i++ {
			rg := md.RowGroup(i)
			ds.groups = append(ds.groups, rowGroup{
				path:    p,
				index:   i,
				numRows: rg.NumRows(),
				stats:   rowGroupStats(rg),
			})
		}
	}
	ds.complete = full
	return errs.ErrorOrNil()
}

// project restricts the unified schema to the selected top-level columns
// and returns the leaf-column indices those columns occupy. Leaf order
// follows depth-first field order, which is how the columnar format lays
// out nested columns.
func (ds *dataset) project(columns []string) (*arrow.Schema, []int, error) {
	fields := ds.schema.Fields()
	if columns == nil {
		total := 0
		for _, f := range fields {
			total += countLeaves(f.Type)
		}
		leaves := make([]int, total)
		for i := range leaves {
			leaves[i] = i
		}
		return ds.schema, leaves, nil
	}
	want := make(map[string]bool, len(columns))
	for _, c := range columns {
		want[c] = true
	}
	var kept []arrow.Field
	var leaves []int
	at := 0
	for _, f := range fields {
		n := countLeaves(f.Type)
		if want[f.Name] {
			kept = append(kept, f)
			for j := 0; j < n; j++ {
				leaves = append(leaves, at+j)
			}
			delete(want, f.Name)
		}
		at += n
	}
	for name := range want {
		return nil, nil, errors.NoSuchFieldError{Name: name}
	}
	md := ds.schema.Metadata()
	return arrow.NewSchema(kept, &md), leaves, nil
}

// countLeaves counts the primitive leaf columns a field of the given type
// occupies in the columnar layout.
func countLeaves(dt arrow.DataType) int {
	switch t := dt.(type) {
	case *arrow.ListType:
		return countLeaves(t.Elem())
	case *arrow.LargeListType:
		return countLeaves(t.Elem())
	case *arrow.StructType:
		total := 0
		for _, f := range t.Fields() {
			total += countLeaves(f.Type)
		}
		return total
	default:
		return 1
	}
}

// readFooter opens one file's footer and converts its schema, without
// reading any data page.
func readFooter(fs afero.Fs, path string) (*metadata.FileMetaData, *arrow.Schema, error) {
	fh, err := fs.Open(path)
	if err != nil {
		return nil, nil, pkgerrors.Wrapf(err, "opening %s", path)
	}
	defer fh.Close()
	rdr, err := file.NewParquetReader(fh)
	if err != nil {
		return nil, nil, pkgerrors.Wrapf(err, "reading footer of %s", path)
	}
	defer rdr.Close()
	md := rdr.MetaData()
	sc, err := pqarrow.FromParquet(md.Schema, nil, md.KeyValueMetadata())
	if err != nil {
		return nil, nil, pkgerrors.Wrapf(err, "converting schema of %s", path)
	}
	return md, sc, nil
}

// rowGroupPath returns the file path a row group reports membership of, or
// the empty string when the footer carries none.
func rowGroupPath(rg *metadata.RowGroupMetaData) string {
	if rg.NumColumns() == 0 {
		return ""
	}
	col, err := rg.ColumnChunk(0)
	if err != nil {
		return ""
	}
	return col.FilePath()
}

// rowGroupStats collects the [min, max] statistics of every top-level
// numeric column of a row group. Nested leaves and columns without
// statistics are left out, which keeps their row groups unprunable.
func rowGroupStats(rg *metadata.RowGroupMetaData) map[string]colRange {
	stats := make(map[string]colRange)
	for i := 0; i < rg.NumColumns(); i++ {
		col, err := rg.ColumnChunk(i)
		if err != nil {
			continue
		}
		path := col.PathInSchema()
		if len(path) != 1 {
			continue
		}
		st, err := col.Statistics()
		if err != nil || st == nil || !st.HasMinMax() {
			continue
		}
		switch s := st.(type) {
		case *metadata.Int64Statistics:
			stats[path[0]] = colRange{min: float64(s.Min()), max: float64(s.Max())}
		case *metadata.Float64Statistics:
			stats[path[0]] = colRange{min: s.Min(), max: s.Max()}
		}
	}
	return stats
}

// pruneGroups drops the row groups whose statistics prove no row can
// satisfy every Filter.
func pruneGroups(groups []rowGroup, filters []Filter) []rowGroup {
	if len(filters) == 0 {
		return groups
	}
	var kept []rowGroup
	for _, g := range groups {
		if !groupExcluded(g, filters) {
			kept = append(kept, g)
		}
	}
	return kept
}

func groupExcluded(g rowGroup, filters []Filter) bool {
	for _, f := range filters {
		r, ok := g.stats[f.Column]
		if ok && f.excludes(r.min, r.max) {
			return true
		}
	}
	return false
}

// pruneFiles drops the files whose row groups are all excluded by the
// Filters. It requires the complete row-group layout.
func pruneFiles(ds *dataset, filters []Filter) []string {
	keep := make(map[string]bool)
	for _, g := range ds.groups {
		if !groupExcluded(g, filters) {
			keep[g.path] = true
		}
	}
	var out []string
	for _, p := range ds.paths {
		if keep[p] {
			out = append(out, p)
		}
	}
	return out
}
