// Package jsonio builds lazy Collections from JSON Lines data, one
// partition per file or text blob. Lines are decoded with gjson; column
// selection uses gjson paths, so nested values can be lifted into top-level
// record fields. JSON Lines carries no schema metadata, so the
// representative value is inferred by materializing the first partition
// once at construction time.
package jsonio

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"math"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"

	"github.com/go-ragged/ragged"
	"github.com/go-ragged/ragged/array"
	"github.com/go-ragged/ragged/collection"
	"github.com/go-ragged/ragged/errors"
	"github.com/go-ragged/ragged/graph"
)

// Options carries the optional parameters of FromJSON and FromJSONText.
type Options struct {
	// Columns restricts each record to the named gjson paths; nil decodes
	// every line in full
	Columns []string
	// MaxBufferSize is the maximum size in bytes of the buffer used to
	// read lines from a file. Defaults to bufio.MaxScanTokenSize.
	MaxBufferSize int
	// Fs is the filesystem holding the files; the operating system's when
	// nil
	Fs afero.Fs
}

func (o *Options) maxBufferSize() int {
	if o.MaxBufferSize == 0 {
		return bufio.MaxScanTokenSize
	}
	return o.MaxBufferSize
}

// FromJSON creates a Collection with one partition per JSON Lines file.
// Divisions stay unknown: line counts are not derivable without reading.
func FromJSON(paths []string, opts *Options) (ragged.Collection, error) {
	if opts == nil {
		opts = &Options{}
	}
	if len(paths) == 0 {
		return nil, errors.EmptyInputsError{}
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	fn := &fileFn{fs: fs, columns: opts.Columns, maxBuffer: opts.maxBufferSize()}
	inputs := make([]any, len(paths))
	for i, p := range paths {
		inputs[i] = p
	}
	return collection.FromMap(fn.call, [][]any{inputs}, &collection.FromMapOptions{
		Label: "from-json",
		Token: graph.Tokenize("from-json", paths, opts.Columns),
	})
}

// FromJSONText creates a Collection with one partition per JSON Lines text
// blob, mostly useful when the data is already in memory.
func FromJSONText(blobs []string, opts *Options) (ragged.Collection, error) {
	if opts == nil {
		opts = &Options{}
	}
	if len(blobs) == 0 {
		return nil, errors.EmptyInputsError{}
	}
	fn := &textFn{columns: opts.Columns, maxBuffer: opts.maxBufferSize()}
	inputs := make([]any, len(blobs))
	for i, b := range blobs {
		inputs[i] = b
	}
	return collection.FromMap(fn.call, [][]any{inputs}, &collection.FromMapOptions{
		Label: "from-json",
		Token: graph.Tokenize("from-json-text", blobs, opts.Columns),
	})
}

// fileFn materializes one partition from one JSON Lines file.
type fileFn struct {
	fs        afero.Fs
	columns   []string
	maxBuffer int
}

func (f *fileFn) call(ctx context.Context, args ...any) (any, error) {
	path := args[0].(string)
	fh, err := f.fs.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "opening %s", path)
	}
	defer fh.Close()
	rows, err := decodeLines(fh, f.columns, f.maxBuffer)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "parsing %s", path)
	}
	return array.FromAny(rows)
}

// textFn materializes one partition from one in-memory JSON Lines blob.
type textFn struct {
	columns   []string
	maxBuffer int
}

func (f *textFn) call(ctx context.Context, args ...any) (any, error) {
	blob := args[0].(string)
	rows, err := decodeLines(strings.NewReader(blob), f.columns, f.maxBuffer)
	if err != nil {
		return nil, err
	}
	return array.FromAny(rows)
}

// decodeLines scans JSON Lines input into one row value per non-empty line.
func decodeLines(r io.Reader, columns []string, maxBuffer int) ([]any, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxBuffer)
	rows := []any{}
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			return nil, pkgerrors.Errorf("line %d is not valid JSON", lineno)
		}
		if len(columns) > 0 {
			rec := make(map[string]any, len(columns))
			for _, c := range columns {
				rec[c] = decodeResult(gjson.GetBytes(line, c))
			}
			rows = append(rows, rec)
		} else {
			rows = append(rows, decodeResult(gjson.ParseBytes(line)))
		}
	}
	return rows, scanner.Err()
}

// decodeResult converts a gjson value into the plain nested form FromAny
// accepts. Whole numbers decode as int64 so that integer columns stay
// integral; a leaf holding any fractional value widens as usual.
func decodeResult(r gjson.Result) any {
	switch {
	case r.IsObject():
		out := make(map[string]any)
		r.ForEach(func(k, v gjson.Result) bool {
			out[k.String()] = decodeResult(v)
			return true
		})
		return out
	case r.IsArray():
		out := []any{}
		r.ForEach(func(_, v gjson.Result) bool {
			out = append(out, decodeResult(v))
			return true
		})
		return out
	}
	switch r.Type {
	case gjson.Number:
		if r.Num == math.Trunc(r.Num) {
			return int64(r.Num)
		}
		return r.Num
	case gjson.String:
		return r.Str
	case gjson.True:
		return true
	case gjson.False:
		return false
	}
	return nil
}
