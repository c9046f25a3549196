package main

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/pipe01/lexkit/css"
	lkerrors "github.com/pipe01/lexkit/errors"
	"github.com/pipe01/lexkit/internal/workspace"
	"github.com/pipe01/lexkit/markup"
	"github.com/pipe01/lexkit/token"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
	"golang.org/x/exp/slices"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "lexkit"

var version string = "0.0.1"
var handler protocol.Handler

var documents = map[string]string{}

var log = commonlog.GetLogger("lexkit.lsp")

func main() {
	// This increases logging verbosity (optional)
	commonlog.Configure(1, nil)

	protocol.SetTraceValue(protocol.TraceValueMessage)

	handler = protocol.Handler{
		Initialize:  initialize,
		Initialized: initialized,
		Shutdown:    shutdown,
		SetTrace:    setTrace,
		TextDocumentDidOpen: func(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
			documents[params.TextDocument.URI] = params.TextDocument.Text

			return handleDocument(context, params.TextDocument.URI)
		},
		TextDocumentDidChange: func(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
			for _, change := range params.ContentChanges {
				content, ok := documents[params.TextDocument.URI]
				if !ok {
					return nil
				}

				switch change := change.(type) {
				case protocol.TextDocumentContentChangeEventWhole:
					documents[params.TextDocument.URI] = change.Text

				case protocol.TextDocumentContentChangeEvent:
					startIndex, endIndex := change.Range.IndexesIn(content)
					documents[params.TextDocument.URI] = content[:startIndex] + change.Text + content[endIndex:]
				}
			}

			return handleDocument(context, params.TextDocument.URI)
		},
		TextDocumentDidClose: func(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
			delete(documents, params.TextDocument.URI)
			return nil
		},
		TextDocumentSemanticTokensFull: semanticTokensFull,
	}

	server := server.NewServer(&handler, lsName, false)

	server.RunStdio()
}

type documentKind int

const (
	kindUnknown documentKind = iota
	kindCSS
	kindHTML
	kindXML
)

func kindOf(path string) documentKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css":
		return kindCSS
	case ".html", ".htm":
		return kindHTML
	case ".xml", ".xhtml", ".svg", ".xsl", ".xsd":
		return kindXML
	}

	return kindUnknown
}

func documentPath(docURI string) (string, error) {
	url, err := url.Parse(docURI)
	if err != nil {
		return "", fmt.Errorf("parse document uri: %w", err)
	}
	if url.Scheme != "file" {
		return "", fmt.Errorf("invalid document uri scheme %q", url.Scheme)
	}

	return url.Path, nil
}

func handleDocument(context *glsp.Context, docURI string) error {
	filePath, err := documentPath(docURI)
	if err != nil {
		return err
	}

	contents, ok := documents[docURI]
	if !ok {
		return nil
	}

	var diag []protocol.Diagnostic

	switch kindOf(filePath) {
	case kindCSS:
		diag = styleSheetDiagnostics(filePath, contents)

	case kindHTML:
		tz := &markup.HTMLTokenizer{File: filePath, AutoBalanceTags: true}
		diag = markupDiagnostics(tz.GetTokens(contents))

	case kindXML:
		tz := &markup.XMLTokenizer{File: filePath}
		diag = markupDiagnostics(tz.GetTokens(contents))

	default:
		log.Debugf("ignoring unsupported document %s", docURI)
		return nil
	}

	context.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         docURI,
		Diagnostics: diag,
	})

	return nil
}

func styleSheetDiagnostics(filePath, contents string) []protocol.Diagnostic {
	diag := []protocol.Diagnostic{}

	ws := workspace.New(filepath.Dir(filePath))

	doc, err := ws.LoadStyleSheetWithContents(filepath.Base(filePath), contents)
	if err != nil {
		return append(diag, diagnostic(err, protocol.DiagnosticSeverityError))
	}

	for _, perr := range doc.Errors {
		diag = append(diag, diagnostic(perr, protocol.DiagnosticSeverityWarning))
	}

	if doc.Fatal != nil {
		diag = append(diag, diagnostic(doc.Fatal, protocol.DiagnosticSeverityError))
	}

	return diag
}

func markupDiagnostics(seq token.Sequence[markup.Kind]) []protocol.Diagnostic {
	diag := []protocol.Diagnostic{}

	if _, err := token.Collect(seq); err != nil {
		diag = append(diag, diagnostic(err, protocol.DiagnosticSeverityError))
	}

	return diag
}

func diagnostic(err error, severity protocol.DiagnosticSeverity) protocol.Diagnostic {
	d := protocol.Diagnostic{
		Severity: ptr(severity),
		Source:   ptr(lsName),
		Message:  lkerrors.Message(err),
	}

	if loc, ok := lkerrors.Locate(err); ok {
		d.Range = protocol.Range{
			Start: pos(loc),
			End:   pos(loc),
		}
	}

	return d
}

func initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := handler.CreateServerCapabilities()
	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: protocol.SemanticTokensLegend{
			TokenTypes: []string{
				"keyword",
				"property",
			},
		},
		Range: false,
		Full:  true,
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func shutdown(context *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func setTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

type semanticToken struct {
	loc       token.Location
	length    int
	tokenType protocol.UInteger
}

// semanticTokensFull highlights at-rule keywords and property names of style
// sheets.
func semanticTokensFull(context *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	content, ok := documents[params.TextDocument.URI]
	if !ok {
		return nil, fmt.Errorf("document %q not found", params.TextDocument.URI)
	}

	filePath, err := documentPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	if kindOf(filePath) != kindCSS {
		return &protocol.SemanticTokens{Data: []protocol.UInteger{}}, nil
	}

	// a partial tree is still worth highlighting
	sheet, _ := css.NewParser(filepath.Base(filePath), content).StyleSheet()

	found := collectSemanticTokens(nil, sheet.Statements)
	slices.SortFunc(found, func(a, b semanticToken) int {
		return a.loc.Offset - b.loc.Offset
	})

	tokens := make([]protocol.UInteger, 0, len(found)*5)

	var prevPos token.Location
	for _, tk := range found {
		var startDelta protocol.UInteger
		if tk.loc.Line == prevPos.Line {
			startDelta = uint32(tk.loc.Column - prevPos.Column)
		} else {
			startDelta = uint32(tk.loc.Column)
		}

		tokens = append(tokens,
			protocol.UInteger(tk.loc.Line-prevPos.Line),
			startDelta,
			protocol.UInteger(tk.length),
			tk.tokenType,
			0,
		)

		prevPos = tk.loc
	}

	return &protocol.SemanticTokens{
		Data: tokens,
	}, nil
}

func collectSemanticTokens(found []semanticToken, stmts []css.Statement) []semanticToken {
	for _, stmt := range stmts {
		switch stmt := stmt.(type) {
		case *css.RuleSet:
			found = appendDeclarations(found, stmt.Declarations)

		case *css.AtRule:
			found = append(found, semanticToken{
				loc:       stmt.At(),
				length:    len(stmt.Ident) + 1,
				tokenType: 0,
			})
			found = appendDeclarations(found, stmt.Declarations)
			found = collectSemanticTokens(found, stmt.Block)
		}
	}

	return found
}

func appendDeclarations(found []semanticToken, decls []*css.Declaration) []semanticToken {
	for _, d := range decls {
		found = append(found, semanticToken{
			loc:       d.At(),
			length:    len(d.Property),
			tokenType: 1,
		})
	}

	return found
}

func ptr[T any](v T) *T {
	return &v
}

func pos(l token.Location) protocol.Position {
	return protocol.Position{
		Line:      uint32(l.Line),
		Character: uint32(l.Column),
	}
}
