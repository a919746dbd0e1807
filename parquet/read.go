package parquet

import (
	"context"

	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/go-ragged/ragged"
	"github.com/go-ragged/ragged/array"
	"github.com/go-ragged/ragged/collection"
	"github.com/go-ragged/ragged/errors"
	"github.com/go-ragged/ragged/graph"
	"github.com/go-ragged/ragged/logging"
)

// FromParquet plans a lazy Collection over the columnar dataset at spec,
// which may name a file, a directory of part files, or a glob pattern. The
// plan is built from footers alone. In file-granularity mode one partition
// reads one whole file and divisions stay unknown; in row-group granularity
// one partition reads one row group and divisions are the cumulative row
// counts, in file order then row-group order within file. The
// representative value comes from the unified schema, never from data.
func FromParquet(spec string, opts *Options) (ragged.Collection, error) {
	if opts == nil {
		opts = &Options{}
	}
	ds, split, err := openDataset(spec, opts)
	if err != nil {
		return nil, err
	}
	projected, leaves, err := ds.project(opts.Columns)
	if err != nil {
		return nil, err
	}
	form, err := array.FormFromArrowSchema(projected)
	if err != nil {
		return nil, err
	}
	meta := array.TypetracerFromForm(form)
	token := graph.Tokenize("from-parquet", ds.token, opts.Columns, opts.Filters, split, form.String())

	if split {
		return fromParquetRowGroups(ds, opts, leaves, meta, token)
	}
	return fromParquetFiles(ds, opts, leaves, meta, token)
}

// fromParquetFiles plans one partition per data file. Files are dropped up
// front only when the complete row-group layout proves every one of their
// row groups excluded.
func fromParquetFiles(ds *dataset, opts *Options, leaves []int, meta ragged.Array, token string) (ragged.Collection, error) {
	paths := ds.paths
	if len(opts.Filters) > 0 {
		if ds.complete {
			paths = pruneFiles(ds, opts.Filters)
		} else {
			logging.Logger().Debugf("no complete layout for %s, keeping all %d files", ds.spec, len(paths))
		}
	}
	if len(paths) == 0 {
		return nil, errors.EmptyDatasetError{Path: ds.spec}
	}
	logging.Logger().Debugf("planned %d file-wise partitions for %s", len(paths), ds.spec)

	fn := &fileWiseFn{fs: ds.fs, leaves: leaves}
	inputs := make([]any, len(paths))
	for i, p := range paths {
		inputs[i] = p
	}
	return collection.FromMap(fn.call, [][]any{inputs}, &collection.FromMapOptions{
		Label: "from-parquet",
		Token: token,
		Meta:  meta,
	})
}

// fromParquetRowGroups plans one partition per surviving row group, with
// exact divisions summed from the footer row counts.
func fromParquetRowGroups(ds *dataset, opts *Options, leaves []int, meta ragged.Array, token string) (ragged.Collection, error) {
	groups := pruneGroups(ds.groups, opts.Filters)
	if len(groups) == 0 {
		return nil, errors.EmptyDatasetError{Path: ds.spec}
	}
	logging.Logger().Debugf("planned %d row-group partitions for %s", len(groups), ds.spec)

	pathIn := make([]any, len(groups))
	rgIn := make([]any, len(groups))
	divisions := make([]int64, len(groups)+1)
	for i, g := range groups {
		pathIn[i] = g.path
		rgIn[i] = []int{g.index}
		divisions[i+1] = divisions[i] + g.numRows
	}
	fn := &rowGroupWiseFn{fs: ds.fs, leaves: leaves}
	return collection.FromMap(fn.call, [][]any{pathIn, rgIn}, &collection.FromMapOptions{
		Label:     "from-parquet",
		Token:     token,
		Meta:      meta,
		Divisions: divisions,
	})
}

// fileWiseFn materializes one partition from one whole data file, with the
// leaf projection applied.
type fileWiseFn struct {
	fs     afero.Fs
	leaves []int
}

func (f *fileWiseFn) call(ctx context.Context, args ...any) (any, error) {
	path := args[0].(string)
	return readRowGroups(ctx, f.fs, path, f.leaves, nil)
}

// rowGroupWiseFn materializes one partition from the selected row groups of
// one data file, with the leaf projection applied.
type rowGroupWiseFn struct {
	fs     afero.Fs
	leaves []int
}

func (f *rowGroupWiseFn) call(ctx context.Context, args ...any) (any, error) {
	path := args[0].(string)
	rgs := args[1].([]int)
	return readRowGroups(ctx, f.fs, path, f.leaves, rgs)
}

// readRowGroups reads the selected row groups and leaf columns of one file
// into a concrete Array. A nil row-group selection reads the whole file.
func readRowGroups(ctx context.Context, fs afero.Fs, path string, leaves []int, rowGroups []int) (ragged.Array, error) {
	fh, err := fs.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "opening %s", path)
	}
	defer fh.Close()
	rdr, err := file.NewParquetReader(fh)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "reading %s", path)
	}
	defer rdr.Close()
	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "reading %s", path)
	}
	if rowGroups == nil {
		rowGroups = make([]int, rdr.NumRowGroups())
		for i := range rowGroups {
			rowGroups[i] = i
		}
	}
	tbl, err := fr.ReadRowGroups(ctx, leaves, rowGroups)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "reading %s", path)
	}
	defer tbl.Release()
	return array.FromArrowTable(tbl)
}
