package codec

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/folio/internal/engine/editor"
	"github.com/dshills/folio/internal/engine/node"
)

// Option configures Export.
type Option func(*exportOptions)

type exportOptions struct {
	indent   string
	sortKeys bool
}

// WithIndent pretty-prints the output using indent for each level.
func WithIndent(indent string) Option {
	return func(o *exportOptions) {
		o.indent = indent
	}
}

// WithSortKeys sorts object keys in pretty-printed output.
func WithSortKeys() Option {
	return func(o *exportOptions) {
		o.sortKeys = true
	}
}

// Export serializes st using the classes of reg.
func Export(st *editor.State, reg *editor.Registry, opts ...Option) ([]byte, error) {
	var o exportOptions
	for _, opt := range opts {
		opt(&o)
	}

	out, err := exportState(st, reg)
	if err != nil {
		return nil, err
	}
	if o.indent == "" && !o.sortKeys {
		return out, nil
	}
	if o.indent == "" {
		o.indent = "  "
	}
	return pretty.PrettyOptions(out, &pretty.Options{
		Width:    80,
		Prefix:   "",
		Indent:   o.indent,
		SortKeys: o.sortKeys,
	}), nil
}

// ExportEditor serializes the current state of ed.
func ExportEditor(ed *editor.Editor, opts ...Option) ([]byte, error) {
	return Export(ed.State(), ed.Registry(), opts...)
}

// encoder hands nested editors back to exportState.
type encoder struct{}

// EncodeEditor implements editor.Encoder.
func (encoder) EncodeEditor(ed *editor.Editor) (json.RawMessage, error) {
	out, err := exportState(ed.State(), ed.Registry())
	if err != nil {
		return nil, err
	}
	return json.RawMessage(out), nil
}

func exportState(st *editor.State, reg *editor.Registry) ([]byte, error) {
	root, ok := st.Node(node.RootKey)
	if !ok {
		return nil, fmt.Errorf("%w: missing root", ErrUnknownType)
	}
	obj, err := exportNode(st, reg, root)
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes([]byte(`{}`), "root", obj)
}

func exportNode(st *editor.State, reg *editor.Registry, n node.Node) ([]byte, error) {
	class, ok := reg.Lookup(n.Type())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, n.Type())
	}
	v, err := class.Export(n, encoder{})
	if err != nil {
		return nil, fmt.Errorf("export %s %s: %w", n.Type(), n.Key(), err)
	}
	fields, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("export %s %s: %w", n.Type(), n.Key(), err)
	}
	parsed := gjson.ParseBytes(fields)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidExport, n.Type())
	}

	obj := []byte(`{}`)
	if obj, err = sjson.SetBytes(obj, "type", string(n.Type())); err != nil {
		return nil, err
	}
	if obj, err = sjson.SetBytes(obj, "version", class.Version); err != nil {
		return nil, err
	}
	parsed.ForEach(func(key, value gjson.Result) bool {
		if k := key.String(); k != "type" && k != "version" && k != "children" {
			obj, err = sjson.SetRawBytes(obj, escapePath(k), []byte(value.Raw))
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}

	if _, ok := n.(node.Element); !ok {
		return obj, nil
	}
	children := []byte(`[]`)
	for _, c := range st.Children(n.Key()) {
		co, err := exportNode(st, reg, c)
		if err != nil {
			return nil, err
		}
		if children, err = sjson.SetRawBytes(children, "-1", co); err != nil {
			return nil, err
		}
	}
	return sjson.SetRawBytes(obj, "children", children)
}

// escapePath quotes the sjson path metacharacters in a member name.
func escapePath(k string) string {
	var b []byte
	for i := 0; i < len(k); i++ {
		switch k[i] {
		case '.', '*', '?', '|', '#', '@', '\\', ':', '!', '=', '<', '>', '%':
			b = append(b, '\\')
		}
		b = append(b, k[i])
	}
	return string(b)
}
