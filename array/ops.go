package array

import (
	"reflect"

	"github.com/go-ragged/ragged"
	"github.com/go-ragged/ragged/errors"
)

// Concat joins concrete Arrays row-wise. All inputs must share one Form; the
// result carries that Form and the summed row count.
func Concat(arrs ...ragged.Array) (ragged.Array, error) {
	if len(arrs) == 0 {
		return nil, errors.NoInputsError{}
	}
	nodes := make([]node, len(arrs))
	for i, a := range arrs {
		arr := a.(*Array)
		if arr.layout == nil {
			return nil, errors.MetadataUnavailableError{Op: "concatenating representative values"}
		}
		if !arr.frm.FormEquals(arrs[0].Form()) {
			return nil, errors.HeterogeneousListError{Detail: "concatenation requires equal forms"}
		}
		nodes[i] = compact(arr.layout)
	}
	merged, err := mergeNodes(nodes)
	if err != nil {
		return nil, err
	}
	return newConcrete(merged), nil
}

// Equal returns true iff the two Arrays have equal Forms and row-wise equal
// data. Two representatives are equal iff their Forms are.
func Equal(a, b ragged.Array) bool {
	if !a.Form().FormEquals(b.Form()) || a.Len() != b.Len() {
		return false
	}
	return reflect.DeepEqual(ToAny(a), ToAny(b))
}

// compact rewrites a node so list offsets begin at zero and content holds
// only referenced rows, which makes row-wise merging a plain append.
func compact(n node) node {
	switch t := n.(type) {
	case *leafNode:
		return t
	case *listNode:
		lo, hi := t.offsets[0], t.offsets[len(t.offsets)-1]
		offsets := make([]int64, len(t.offsets))
		for i, o := range t.offsets {
			offsets[i] = o - lo
		}
		return &listNode{offsets: offsets, content: compact(t.content.slice(int(lo), int(hi)))}
	default:
		rn := t.(*recordNode)
		contents := make([]node, len(rn.contents))
		for i, c := range rn.contents {
			contents[i] = compact(c)
		}
		return &recordNode{fields: rn.fields, contents: contents, nrows: rn.nrows}
	}
}

func mergeNodes(nodes []node) (node, error) {
	switch nodes[0].(type) {
	case *leafNode:
		out := &leafNode{dtype: nodes[0].(*leafNode).dtype}
		for _, n := range nodes {
			ln := n.(*leafNode)
			out.ints = append(out.ints, ln.ints...)
			out.floats = append(out.floats, ln.floats...)
			out.bools = append(out.bools, ln.bools...)
			out.strs = append(out.strs, ln.strs...)
		}
		return out, nil
	case *listNode:
		offsets := []int64{0}
		var contents []node
		var shift int64
		for _, n := range nodes {
			ln := n.(*listNode)
			for _, o := range ln.offsets[1:] {
				offsets = append(offsets, o+shift)
			}
			shift += int64(ln.content.length())
			contents = append(contents, ln.content)
		}
		content, err := mergeNodes(contents)
		if err != nil {
			return nil, err
		}
		return &listNode{offsets: offsets, content: content}, nil
	default:
		first := nodes[0].(*recordNode)
		contents := make([]node, len(first.contents))
		nrows := 0
		for fi := range first.contents {
			fieldNodes := make([]node, len(nodes))
			for i, n := range nodes {
				fieldNodes[i] = n.(*recordNode).contents[fi]
			}
			merged, err := mergeNodes(fieldNodes)
			if err != nil {
				return nil, err
			}
			contents[fi] = merged
		}
		for _, n := range nodes {
			nrows += n.length()
		}
		return &recordNode{fields: first.fields, contents: contents, nrows: nrows}, nil
	}
}
