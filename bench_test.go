package ojson_test

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/treelex/ojson"
	"github.com/treelex/ojson/ast"
)

// benchInput synthesizes a document of nrec records with a mix of value
// shapes, roughly the profile of an API response payload.
func benchInput(nrec int) string {
	var sb strings.Builder
	sb.WriteString(`{"records": [`)
	for i := 0; i < nrec; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, `{"id": %d, "name": "record-%d ✔", "score": %d.%03d, `+
			`"tags": ["a", "b", "c"], "ok": %v, "note": null}`,
			i, i, i%97, i%1000, i%2 == 0)
	}
	sb.WriteString(`], "total": `)
	fmt.Fprintf(&sb, "%d}", nrec)
	return sb.String()
}

func BenchmarkScanner(b *testing.B) {
	input := benchInput(200)
	b.SetBytes(int64(len(input)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		s := ojson.NewScanner(input)
		for s.Next() == nil {
		}
		if s.Err() != io.EOF {
			b.Fatal(s.Err())
		}
	}
}

func BenchmarkStream(b *testing.B) {
	input := benchInput(200)
	b.SetBytes(int64(len(input)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := ojson.NewStream(input).Parse(discard{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParse(b *testing.B) {
	input := benchInput(200)
	for _, bench := range []struct {
		name string
		opts *ast.Options
	}{
		{"Direct", nil},
		{"Pooled", &ast.Options{Pool: ast.NewPool()}},
		{"Lazy", &ast.Options{LazyDepth: 2}},
	} {
		b.Run(bench.name, func(b *testing.B) {
			b.SetBytes(int64(len(input)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				res, err := ast.Parse(input, bench.opts)
				if err != nil {
					b.Fatal(err)
				}
				if bench.opts != nil && bench.opts.Pool != nil {
					bench.opts.Pool.ReleaseTree(res.Root)
				}
			}
		})
	}
}

func BenchmarkEncodingJSON(b *testing.B) {
	// Baseline: the standard library decoding into native values.
	input := []byte(benchInput(200))
	b.SetBytes(int64(len(input)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var v any
		if err := json.Unmarshal(input, &v); err != nil {
			b.Fatal(err)
		}
	}
}

// discard is a Handler that ignores every event.
type discard struct{}

func (discard) BeginObject(ojson.Anchor) error { return nil }
func (discard) EndObject(ojson.Anchor) error   { return nil }
func (discard) BeginArray(ojson.Anchor) error  { return nil }
func (discard) EndArray(ojson.Anchor) error    { return nil }
func (discard) BeginMember(ojson.Anchor) error { return nil }
func (discard) EndMember(ojson.Anchor) error   { return nil }
func (discard) Value(ojson.Anchor) error       { return nil }
func (discard) EndOfInput(ojson.Anchor)        {}
