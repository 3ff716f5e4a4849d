package codec

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/dshills/folio/internal/engine/editor"
	"github.com/dshills/folio/internal/engine/node"
)

// TagImport labels the updates performed by Import.
const TagImport = "import"

// Import replaces the document of ed with the serialized state in data.
// Transforms do not run during import and the selection is cleared.
//
// Bad content never fails the import: see Report. An error is returned
// only when ed rejects the update, e.g. because it is closed.
func Import(ed *editor.Editor, data []byte) (*Report, error) {
	report := newReport()
	if err := importInto(ed, parse(data, report), "", report); err != nil {
		return report, err
	}
	return report, nil
}

// NewEditor creates an editor holding the document in data.
func NewEditor(data []byte, opts ...editor.Option) (*editor.Editor, *Report, error) {
	ed := editor.New(opts...)
	report, err := Import(ed, data)
	if err != nil {
		ed.Close()
		return nil, report, err
	}
	return ed, report, nil
}

// parse returns the root object of data, or an empty result after
// recording the substitution in report.
func parse(data []byte, report *Report) gjson.Result {
	if !gjson.ValidBytes(data) {
		report.Substituted = true
		report.Reason = "input is not valid JSON"
		return gjson.Result{}
	}
	root := gjson.GetBytes(data, "root")
	if !root.IsObject() || len(root.Get("children").Array()) == 0 {
		report.Substituted = true
		report.Reason = "missing or empty root"
		return gjson.Result{}
	}
	return root
}

func importInto(ed *editor.Editor, root gjson.Result, path string, report *Report) error {
	im := &importer{ed: ed, report: report, log: ed.Logger()}
	if report.Substituted && path == "" {
		im.log.Warn("import substituted empty document", zap.String("reason", report.Reason))
	}
	return ed.Update(func(tx *editor.Txn) error {
		im.tx = tx
		if err := tx.Clear(node.RootKey); err != nil {
			return err
		}
		tx.SetSelection(nil)
		if !root.IsObject() {
			return nil
		}

		w, err := editor.WritableAs[*node.Root](tx, node.RootKey)
		if err != nil {
			return err
		}
		editor.ImportElement(root, &w.ElementBase)

		rootPath := joinPath(path, "root")
		for i, child := range root.Get("children").Array() {
			if err := im.node(node.RootKey, child, joinPath(rootPath, "children", strconv.Itoa(i))); err != nil {
				return err
			}
		}
		return nil
	}, editor.SkipTransforms(), editor.Tag(TagImport))
}

type importer struct {
	ed     *editor.Editor
	tx     *editor.Txn
	report *Report
	log    *zap.Logger
}

// node imports data as the last child of parent. Only errors from the
// transaction itself are returned; content problems go to the report.
func (im *importer) node(parent node.Key, data gjson.Result, path string) error {
	typ := node.Type(data.Get("type").String())
	class, ok := im.ed.Registry().Lookup(typ)
	if !ok {
		im.report.Unknown = append(im.report.Unknown, Issue{Path: path, Type: typ})
		im.log.Warn("skipping node of unknown type", zap.String("type", string(typ)), zap.String("path", path))
		return nil
	}
	if v := data.Get("version").Int(); v > int64(class.Version) {
		im.log.Debug("node version newer than class",
			zap.String("type", string(typ)),
			zap.Int64("version", v),
			zap.Int("class_version", class.Version))
	}

	n, err := class.Import(data, &decoder{owner: im.ed, report: im.report, path: path})
	if err != nil {
		im.reject(path, typ, err)
		return nil
	}
	if m := im.ed.Registry().Construct(n); m != n {
		im.report.Replaced[typ]++
		n = m
	}

	if err := im.tx.Append(parent, n); err != nil {
		if r, ok := n.(editor.Releaser); ok {
			r.Release()
		}
		if isContentError(err) {
			im.reject(path, typ, err)
			return nil
		}
		return err
	}
	im.report.Nodes++

	if _, ok := n.(node.Element); !ok {
		return nil
	}
	for i, child := range data.Get("children").Array() {
		if err := im.node(n.Key(), child, joinPath(path, "children", strconv.Itoa(i))); err != nil {
			return err
		}
	}
	return nil
}

func (im *importer) reject(path string, typ node.Type, err error) {
	im.report.Rejected = append(im.report.Rejected, Issue{Path: path, Type: typ, Err: err.Error()})
	im.log.Warn("rejected node on import",
		zap.String("type", string(typ)),
		zap.String("path", path),
		zap.Error(err))
}

// decoder imports nested editor states for composite classes.
type decoder struct {
	owner  *editor.Editor
	report *Report
	path   string
}

// DecodeEditor implements editor.Decoder. A missing or empty state gives
// an empty nested editor.
func (d *decoder) DecodeEditor(data gjson.Result, opts ...editor.Option) (*editor.Editor, error) {
	child := d.owner.NewNested(opts...)
	root := data.Get("root")
	if !root.IsObject() {
		root = gjson.Result{}
	}
	if err := importInto(child, root, d.path, d.report); err != nil {
		child.Close()
		return nil, fmt.Errorf("nested editor: %w", err)
	}
	return child, nil
}

// isContentError reports whether an attach failure stems from the
// imported content rather than from the transaction.
func isContentError(err error) bool {
	return errors.Is(err, editor.ErrNotAllowed) ||
		errors.Is(err, editor.ErrNotElement) ||
		errors.Is(err, editor.ErrRootOperation)
}

func joinPath(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += "."
		}
		out += p
	}
	return out
}
