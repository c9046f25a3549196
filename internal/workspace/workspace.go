package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pipe01/lexkit/css"
	"github.com/tliron/commonlog"
	"golang.org/x/exp/slices"
)

var log = commonlog.GetLogger("lexkit.workspace")

// Document is a loaded style sheet along with everything it imports.
type Document struct {
	// Path relative to the workspace root
	Path string

	Sheet  *css.StyleSheet
	Errors []*css.ParseError
	// Fatal is set when the sheet ended inside a construct. Sheet still holds
	// every statement parsed before that point.
	Fatal error

	Imports []*Document
}

type Workspace struct {
	rootPath string

	mu          sync.Mutex
	parsedFiles map[string]*Document
	requested   map[string]struct{}
}

func New(rootPath string) *Workspace {
	return &Workspace{
		rootPath:    rootPath,
		parsedFiles: make(map[string]*Document),
		requested:   make(map[string]struct{}),
	}
}

func (w *Workspace) LoadStyleSheet(relPath string) (*Document, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.load(relPath, nil, make(map[string]struct{}))
}

// LoadStyleSheetWithContents parses contents in place of the file at relPath,
// replacing any cached copy. Imports are still read from disk.
func (w *Workspace) LoadStyleSheetWithContents(relPath, contents string) (*Document, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.parsedFiles, w.fullPath(relPath))

	return w.load(relPath, &contents, make(map[string]struct{}))
}

// RequestedFiles returns the full path of every file loaded so far, including
// imports and files that could not be read.
func (w *Workspace) RequestedFiles() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make([]string, 0, len(w.requested))
	for f := range w.requested {
		files = append(files, f)
	}
	slices.Sort(files)

	return files
}

func (w *Workspace) fullPath(relPath string) string {
	return filepath.Join(w.rootPath, relPath)
}

func (w *Workspace) load(relPath string, contents *string, seen map[string]struct{}) (*Document, error) {
	fullPath := w.fullPath(relPath)

	if _, ok := seen[fullPath]; ok {
		return nil, fmt.Errorf("detected import cycle on %q", relPath)
	}

	seen[fullPath] = struct{}{}
	defer delete(seen, fullPath)

	w.requested[fullPath] = struct{}{}

	if doc, ok := w.parsedFiles[fullPath]; ok {
		return doc, nil
	}

	var p *css.Parser
	if contents != nil {
		p = css.NewParser(relPath, *contents)
	} else {
		p = css.NewFileParser(fullPath)
	}

	sheet, err := p.StyleSheet()
	if sheet == nil {
		// the file could not be opened
		return nil, err
	}

	doc := &Document{
		Path:   relPath,
		Sheet:  sheet,
		Errors: p.Errors(),
		Fatal:  err,
	}

	for _, stmt := range sheet.Statements {
		at, ok := stmt.(*css.AtRule)
		if !ok {
			continue
		}

		target, ok := at.Import()
		if !ok {
			continue
		}

		if strings.Contains(target, "://") || strings.HasPrefix(target, "//") {
			log.Debugf("skipping remote import %q in %s", target, relPath)
			continue
		}

		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(relPath), target)
		}

		imported, err := w.load(target, nil, seen)
		if err != nil {
			loc := at.At()
			return nil, fmt.Errorf("import at %s: %w", &loc, err)
		}

		doc.Imports = append(doc.Imports, imported)
	}

	w.parsedFiles[fullPath] = doc
	return doc, nil
}

// IsNotExist reports whether err was caused by a missing file.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
