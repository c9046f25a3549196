package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pipe01/lexkit/internal/render"
	"github.com/pipe01/lexkit/internal/workspace"
	"github.com/pipe01/lexkit/markup"
	"github.com/pipe01/lexkit/token"
	"github.com/pipe01/lexkit/walker"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	_ "github.com/tliron/commonlog/simple"
)

var (
	mode        = kingpin.Flag("mode", "Input format, auto picks it from the file extension").Short('m').Default("auto").Enum("auto", "css", "html", "xml", "json")
	autoBalance = kingpin.Flag("auto-balance", "Close and drop unbalanced HTML tags").Default("true").Bool()
	whitespace  = kingpin.Flag("whitespace", "Emit whitespace-only HTML text as whitespace tokens").Bool()
	format      = kingpin.Flag("format", "Output for markup and json input, style sheets are always rendered").Short('f').Default("tokens").Enum("tokens", "render")
	pretty      = kingpin.Flag("pretty", "Pretty print rendered style sheets").Bool()
	cycles      = kingpin.Flag("cycles", "How the json walker handles graph cycles").Default("ignore").Enum("ignore", "reference", "max-depth")
	maxDepth    = kingpin.Flag("max-depth", "Maximum nesting depth when --cycles=max-depth").Default("100").Int()
	watch       = kingpin.Flag("watch", "Watch files for changes and process them again automatically").Short('w').Bool()
	jobs        = kingpin.Flag("jobs", "Number of files processed at the same time").Short('j').Default("4").Int()
	verbose     = kingpin.Flag("verbose", "Log debug messages").Short('v').Bool()
	files       = kingpin.Arg("files", "List of files to process").Required().ExistingFiles()

	rootDir string
)

var log = commonlog.GetLogger("lexkit")

func main() {
	kingpin.Parse()

	if *verbose {
		commonlog.Configure(2, nil)
	} else {
		commonlog.Configure(0, nil)
	}

	rootDir, _ = os.Getwd()

	if *watch {
		err := watchFiles()
		if err != nil {
			kingpin.Fatalf("failed to watch files: %s", err)
		}
	} else {
		err := processAll()
		if err != nil {
			kingpin.Fatalf("failed to process files: %s", err)
		}
	}
}

func processAll() error {
	ws := workspace.New(rootDir)
	outputs := make([]string, len(*files))

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*jobs)

	for i, fname := range *files {
		i, fname := i, fname

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			out, err := processFile(ws, fname)
			if err != nil {
				return fmt.Errorf("process file %q: %w", fname, err)
			}

			outputs[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, out := range outputs {
		fmt.Print(out)
	}

	return nil
}

func relPath(fname string) string {
	abs, err := filepath.Abs(fname)
	if err != nil {
		return fname
	}

	rel, err := filepath.Rel(rootDir, abs)
	if err != nil {
		return fname
	}

	return rel
}

func fileMode(fname string) string {
	if *mode != "auto" {
		return *mode
	}

	switch strings.ToLower(filepath.Ext(fname)) {
	case ".css":
		return "css"
	case ".html", ".htm":
		return "html"
	case ".json":
		return "json"
	}

	return "xml"
}

func processFile(ws *workspace.Workspace, fname string) (string, error) {
	var b strings.Builder

	switch m := fileMode(fname); m {
	case "css":
		doc, err := ws.LoadStyleSheet(relPath(fname))
		if err != nil {
			return "", err
		}

		for _, perr := range doc.Errors {
			log.Warningf("%s", perr)
		}
		if doc.Fatal != nil {
			return "", doc.Fatal
		}

		if err := render.StyleSheet(&b, doc.Sheet, render.Options{Pretty: *pretty}); err != nil {
			return "", fmt.Errorf("render style sheet: %w", err)
		}

	case "html", "xml":
		var (
			seq token.Sequence[markup.Kind]
			err error
		)

		if m == "html" {
			tz := &markup.HTMLTokenizer{AutoBalanceTags: *autoBalance, SplitWhitespace: *whitespace}
			seq, err = tz.GetFileTokens(fname)
		} else {
			seq, err = (&markup.XMLTokenizer{}).GetFileTokens(fname)
		}
		if err != nil {
			return "", err
		}

		tks, err := token.Collect(seq)
		if err != nil {
			return "", err
		}

		if *format == "render" {
			err = render.Markup(&b, tks, render.Options{HTML: m == "html"})
		} else {
			err = render.Tokens(&b, tks)
		}
		if err != nil {
			return "", fmt.Errorf("write output: %w", err)
		}

	case "json":
		tks, err := walkJSON(fname)
		if err != nil {
			return "", err
		}

		if err := render.Tokens(&b, tks); err != nil {
			return "", fmt.Errorf("write output: %w", err)
		}
	}

	return b.String(), nil
}

func walkJSON(fname string) ([]walker.Token, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	settings := walker.DefaultSettings()
	settings.MaxDepth = *maxDepth
	settings.GraphCycles, err = walker.ParseCycleType(*cycles)
	if err != nil {
		return nil, err
	}

	w, err := walker.New(settings)
	if err != nil {
		return nil, err
	}

	seq, err := w.GetTokens(v)
	if err != nil {
		return nil, err
	}

	return token.Collect(seq)
}

func watchFiles() error {
	watcher, err := NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	for _, f := range *files {
		err = watcher.WatchFile(f, f)
		if err != nil {
			return fmt.Errorf("watch file %q: %w", f, err)
		}

		watcher.fileModified(f)
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	log.Notice("watching files for changes...")

	<-ch
	return nil
}
