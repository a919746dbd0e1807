package parquet

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"

	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/metadata"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/hashicorp/go-multierror"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/go-ragged/ragged"
	"github.com/go-ragged/ragged/array"
	"github.com/go-ragged/ragged/collection"
	"github.com/go-ragged/ragged/fsio"
	"github.com/go-ragged/ragged/graph"
	"github.com/go-ragged/ragged/logging"
)

// WriteOptions carries the optional parameters of ToParquet.
type WriteOptions struct {
	// WriteMetadata aggregates every part file's footer into a
	// dataset-level _metadata file after all parts are written
	WriteMetadata bool
	// RowGroupRows caps the rows per row group within each part file; the
	// writer default applies when zero
	RowGroupRows int64
	// Defer skips triggering execution; the returned handle performs the
	// write when computed
	Defer bool
	// Fs is the destination filesystem; the operating system's when nil
	Fs afero.Fs
}

// ToParquet writes a Collection under root as one part{K}.parquet file per
// partition, K zero-padded to the decimal width of the partition count. The
// write is expressed as a task graph whose finalize step depends on every
// part; unless deferred it is triggered before returning, and the returned
// handle resolves to the written part file names.
func ToParquet(ctx context.Context, c ragged.Collection, root string, opts *WriteOptions) (graph.Delayed, error) {
	if opts == nil {
		opts = &WriteOptions{}
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return graph.Delayed{}, pkgerrors.Wrapf(err, "creating %s", root)
	}

	w := &partWriter{
		fs:            fs,
		root:          root,
		width:         zeroPadWidth(c.NPartitions()),
		rowGroupRows:  opts.RowGroupRows,
		writeMetadata: opts.WriteMetadata,
	}
	token := graph.Tokenize("to-parquet", c.Name(), root, opts.WriteMetadata, opts.RowGroupRows)
	parts, err := collection.MapPartitions(c, w.writePart, &collection.MapOptions{
		Label:     "to-parquet",
		Token:     token,
		PassIndex: true,
	})
	if err != nil {
		return graph.Delayed{}, err
	}

	finalName := fmt.Sprintf("finalize-to-parquet-%s", token)
	args := make([]any, 0, parts.NPartitions())
	for _, k := range parts.Keys() {
		args = append(args, k)
	}
	final := graph.NewLayer(finalName, []*graph.Task{graph.NewTask(w.finalize, args...)})
	d := graph.Delayed{
		Key:   graph.Key{Name: finalName, Index: 0},
		Graph: graph.FromLayer(final, parts.Graph()),
	}
	if opts.Defer {
		return d, nil
	}
	if _, err := d.Compute(ctx); err != nil {
		return graph.Delayed{}, err
	}
	return d, nil
}

// zeroPadWidth is the digit width part indices are padded to, wide enough
// for the largest index of n partitions.
func zeroPadWidth(n int) int {
	if n <= 1 {
		return 1
	}
	w := int(math.Ceil(math.Log10(float64(n))))
	if w < 1 {
		w = 1
	}
	return w
}

// partFile is one written partition's view, carried from the write tasks to
// the finalize task.
type partFile struct {
	name string
	md   *metadata.FileMetaData
}

// partWriter writes one part file per partition and optionally aggregates
// the dataset-level metadata file once every part exists.
type partWriter struct {
	fs            afero.Fs
	root          string
	width         int
	rowGroupRows  int64
	writeMetadata bool
}

// writePart converts one partition to a columnar table and writes it as a
// part file. When metadata aggregation was requested the written footer is
// read back and returned alongside the part name.
func (w *partWriter) writePart(ctx context.Context, args ...any) (any, error) {
	part, ok := args[0].(ragged.Array)
	if !ok {
		return nil, pkgerrors.Errorf("partition produced %T, not an array", args[0])
	}
	name := fmt.Sprintf("part%0*d.parquet", w.width, args[1].(int64))
	full := filepath.Join(w.root, name)

	tbl, err := array.ToArrowTable(part, memory.DefaultAllocator)
	if err != nil {
		return nil, err
	}
	defer tbl.Release()

	fh, err := w.fs.Create(full)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "creating %s", full)
	}
	var props []parquet.WriterProperty
	if w.rowGroupRows > 0 {
		props = append(props, parquet.WithMaxRowGroupLength(w.rowGroupRows))
	}
	// the stored schema keeps field-level metadata intact across the round
	// trip, which the wrapped single-column layout relies on
	pw, err := pqarrow.NewFileWriter(tbl.Schema(), fh,
		parquet.NewWriterProperties(props...),
		pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()))
	if err != nil {
		fh.Close()
		return nil, pkgerrors.Wrapf(err, "writing %s", full)
	}
	chunk := tbl.NumRows()
	if w.rowGroupRows > 0 && w.rowGroupRows < chunk {
		chunk = w.rowGroupRows
	}
	if chunk < 1 {
		chunk = 1
	}
	if err := pw.WriteTable(tbl, chunk); err != nil {
		pw.Close()
		fh.Close()
		return nil, pkgerrors.Wrapf(err, "writing %s", full)
	}
	if err := pw.Close(); err != nil {
		fh.Close()
		return nil, pkgerrors.Wrapf(err, "closing %s", full)
	}
	if err := fh.Close(); err != nil {
		return nil, pkgerrors.Wrapf(err, "closing %s", full)
	}
	logging.Logger().Debugf("wrote %d rows to %s", tbl.NumRows(), full)

	res := &partFile{name: name}
	if w.writeMetadata {
		md, _, err := readFooter(w.fs, full)
		if err != nil {
			return nil, err
		}
		md.SetFilePath(name)
		res.md = md
	}
	return res, nil
}

// finalize runs once every part is written. When requested it appends all
// part footers, in part order, into one dataset-level metadata file at the
// root. It resolves to the written part file names.
func (w *partWriter) finalize(ctx context.Context, args ...any) (any, error) {
	names := make([]string, len(args))
	parts := make([]*partFile, len(args))
	for i, a := range args {
		p, ok := a.(*partFile)
		if !ok {
			return nil, pkgerrors.Errorf("part write produced %T", a)
		}
		parts[i] = p
		names[i] = p.name
	}
	if !w.writeMetadata {
		return names, nil
	}
	base := parts[0].md
	var errs *multierror.Error
	for _, p := range parts[1:] {
		if err := base.AppendRowGroups(p.md); err != nil {
			errs = multierror.Append(errs, pkgerrors.Wrapf(err, "aggregating %s", p.name))
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	if err := writeMetadataFile(w.fs, fsio.MetadataPath(w.root), base); err != nil {
		return nil, err
	}
	return names, nil
}

var parquetMagic = []byte("PAR1")

// writeMetadataFile serializes an aggregated footer with the standard
// columnar footer framing: leading magic, thrift payload, its little-endian
// byte length, trailing magic.
func writeMetadataFile(fs afero.Fs, path string, md *metadata.FileMetaData) error {
	var buf bytes.Buffer
	buf.Write(parquetMagic)
	n, err := md.WriteTo(&buf, nil)
	if err != nil {
		return pkgerrors.Wrapf(err, "serializing %s", path)
	}
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(n))
	buf.Write(size[:])
	buf.Write(parquetMagic)
	return pkgerrors.Wrapf(afero.WriteFile(fs, path, buf.Bytes(), 0o644), "writing %s", path)
}

// readMetadataFile parses a dataset-level metadata file written by
// writeMetadataFile.
func readMetadataFile(fs afero.Fs, path string) (*metadata.FileMetaData, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "reading %s", path)
	}
	if len(data) < 3*len(parquetMagic) ||
		!bytes.HasPrefix(data, parquetMagic) || !bytes.HasSuffix(data, parquetMagic) {
		return nil, pkgerrors.Errorf("%s is not a metadata file", path)
	}
	n := int(binary.LittleEndian.Uint32(data[len(data)-8 : len(data)-4]))
	start := len(data) - 8 - n
	if start < len(parquetMagic) {
		return nil, pkgerrors.Errorf("%s has a malformed footer", path)
	}
	md, err := metadata.NewFileMetaData(data[start:len(data)-8], nil)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "parsing %s", path)
	}
	return md, nil
}
