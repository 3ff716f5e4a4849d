package app

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dshills/folio/internal/engine/codec"
	"github.com/dshills/folio/internal/engine/editor"
)

// Document is an open folio file and the editor holding it.
type Document struct {
	// Path is the absolute file path, empty for scratch documents.
	Path string

	// Name is the display name.
	Name string

	// Editor holds the document tree.
	Editor *editor.Editor

	// Report describes the import that produced the document.
	Report *codec.Report

	modified atomic.Bool
	detach   []func()
}

func newDocument(path string, ed *editor.Editor, report *codec.Report) *Document {
	name := "Untitled"
	if path != "" {
		name = filepath.Base(path)
	}
	doc := &Document{Path: path, Name: name, Editor: ed, Report: report}
	doc.detach = append(doc.detach, ed.RegisterUpdateListener(func(ev editor.UpdateEvent) {
		if !slices.Contains(ev.Tags, codec.TagImport) {
			doc.modified.Store(true)
		}
	}))
	return doc
}

// IsModified reports unsaved changes.
func (d *Document) IsModified() bool {
	return d.modified.Load()
}

// SetModified sets the modified flag.
func (d *Document) SetModified(modified bool) {
	d.modified.Store(modified)
}

// IsScratch reports whether the document has no file.
func (d *Document) IsScratch() bool {
	return d.Path == ""
}

// Export serializes the document.
func (d *Document) Export(opts ...codec.Option) ([]byte, error) {
	return codec.ExportEditor(d.Editor, opts...)
}

func (d *Document) close() {
	for _, fn := range slices.Backward(d.detach) {
		fn()
	}
	d.detach = nil
	d.Editor.Close()
}

// DocumentManager tracks open documents.
type DocumentManager struct {
	mu        sync.RWMutex
	documents map[string]*Document
	active    *Document
	order     []string
	counter   int
}

// NewDocumentManager creates an empty document manager.
func NewDocumentManager() *DocumentManager {
	return &DocumentManager{documents: make(map[string]*Document)}
}

// add registers doc under key and makes it active.
func (dm *DocumentManager) add(key string, doc *Document) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.documents[key] = doc
	dm.order = append(dm.order, key)
	dm.active = doc
}

// scratchKey returns a unique key and display name for a new scratch
// document.
func (dm *DocumentManager) scratchKey() (key, name string) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.counter++
	name = "Untitled"
	if dm.counter > 1 {
		name = fmt.Sprintf("Untitled-%d", dm.counter)
	}
	return fmt.Sprintf("scratch://%d", dm.counter), name
}

// remove forgets the document under key. The previously opened document
// becomes active when the active one is removed.
func (dm *DocumentManager) remove(key string) (*Document, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, ok := dm.documents[key]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	delete(dm.documents, key)
	dm.order = slices.DeleteFunc(dm.order, func(k string) bool { return k == key })

	if dm.active == doc {
		dm.active = nil
		if len(dm.order) > 0 {
			dm.active = dm.documents[dm.order[len(dm.order)-1]]
		}
	}
	return doc, nil
}

// keyOf returns the key doc is registered under.
func (dm *DocumentManager) keyOf(doc *Document) (string, bool) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	for k, d := range dm.documents {
		if d == doc {
			return k, true
		}
	}
	return "", false
}

// Active returns the active document.
func (dm *DocumentManager) Active() *Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.active
}

// setActive makes doc active.
func (dm *DocumentManager) setActive(doc *Document) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.active = doc
}

// Get returns a document by absolute path.
func (dm *DocumentManager) Get(path string) (*Document, bool) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	doc, ok := dm.documents[path]
	return doc, ok
}

// All returns the open documents in open order.
func (dm *DocumentManager) All() []*Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	docs := make([]*Document, 0, len(dm.order))
	for _, k := range dm.order {
		docs = append(docs, dm.documents[k])
	}
	return docs
}

// Count returns the number of open documents.
func (dm *DocumentManager) Count() int {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return len(dm.documents)
}

// DirtyDocuments returns the documents with unsaved changes.
func (dm *DocumentManager) DirtyDocuments() []*Document {
	var dirty []*Document
	for _, doc := range dm.All() {
		if doc.IsModified() {
			dirty = append(dirty, doc)
		}
	}
	return dirty
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
