// Command cardscan identifies trading cards in photographs.
//
//	cardscan [flags] <image|dir>...
//
// Every image is rectified, its collector line read and looked up in the
// configured catalog. One line per image is printed to stdout; the exit
// status is 1 when any image failed and 2 on usage errors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"

	"card-rectifier/internal/config"
	"card-rectifier/internal/recognize"
	"card-rectifier/internal/rectify"
	"card-rectifier/internal/scan"
	"card-rectifier/internal/watch"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
)

// newRecognizer builds the text recognizer; tests replace it.
var newRecognizer = func(cfg *config.Config) recognize.Recognizer { return cfg.OpenRecognizer() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	workers  int
	watch    bool
	outDir   string
	template string
	debugDir string
	verbose  bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("cardscan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&opts.workers, "workers", 0, "Worker pool size (default GOMAXPROCS)")
	fs.BoolVar(&opts.watch, "watch", false, "Keep processing images dropped into the given directories")
	fs.StringVar(&opts.outDir, "out-dir", "", "Write each text region as PNG into this directory")
	fs.StringVar(&opts.template, "template", "", "YAML card template overriding the default geometry")
	fs.StringVar(&opts.debugDir, "debug-dir", "", "Write analysis overlays into this directory")
	fs.BoolVar(&opts.verbose, "verbose", false, "Print debug information")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: cardscan [options] image_files_or_dirs...\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(opts.template)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 2
	}
	if opts.debugDir != "" {
		cfg.Rectify.DebugDir = opts.debugDir
	}
	log := cfg.Logger(stderr, opts.verbose)

	rect, err := rectify.New(cfg.Rectify, log)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 2
	}
	lk, closeLookup, err := cfg.OpenLookup()
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 2
	}
	defer closeLookup()
	scanner := scan.New(rect, newRecognizer(cfg), lk, log)

	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			fmt.Fprintf(stderr, "ERROR: %v\n", err)
			return 2
		}
	}

	var dirs []string
	if opts.watch {
		if dirs = directories(fs.Args()); len(dirs) == 0 {
			fmt.Fprintf(stderr, "ERROR: --watch needs at least one directory\n")
			return 2
		}
	}

	exclude := []string{opts.outDir, cfg.Rectify.DebugDir}
	paths, err := scan.ExpandPaths(fs.Args(), exclude...)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 2
	}

	failed := false
	reports := scanner.Batch(ctx, paths, opts.workers)
	for i, rep := range reports {
		fmt.Fprintf(stdout, "[%d/%d] %s\n", i+1, len(reports), formatReport(rep))
		writeRegion(log, opts.outDir, rep)
		failed = failed || rep.Failed()
	}

	if opts.watch {
		if err := watchDirs(ctx, log, scanner, dirs, exclude, opts, stdout); err != nil {
			fmt.Fprintf(stderr, "ERROR: watch failed: %v\n", err)
			return 1
		}
	}

	if failed {
		return 1
	}
	return 0
}

// formatReport renders "<file>: <name> <price> <url>" or the failure.
func formatReport(rep *scan.Report) string {
	file := filepath.Base(rep.Source)
	switch {
	case rep.Failed():
		return fmt.Sprintf("%s: FAILED stage=%s: %v", file, rep.Stage, rep.Err)
	case rep.Card == nil:
		return fmt.Sprintf("%s: Not found N/A Link not found. (%s)", file, rep.Identifier)
	default:
		return fmt.Sprintf("%s: %s %s %s", file, rep.Card.Name, rep.Card.Price, rep.Card.URL)
	}
}

// writeRegion saves the text region of rep as <stem>-text.png in dir.
func writeRegion(log zerolog.Logger, dir string, rep *scan.Report) {
	if dir == "" || rep.Region == nil {
		return
	}
	stem := strings.TrimSuffix(filepath.Base(rep.Source), filepath.Ext(rep.Source))
	out := filepath.Join(dir, stem+"-text.png")
	if err := imaging.Save(rep.Region, out); err != nil {
		log.Warn().Err(err).Str("path", out).Msg("could not write text region")
		return
	}
	log.Debug().Str("path", out).Msg("wrote text region")
}

func directories(args []string) []string {
	var dirs []string
	for _, a := range args {
		if info, err := os.Stat(a); err == nil && info.IsDir() {
			dirs = append(dirs, a)
		}
	}
	return dirs
}

// watchDirs scans images dropped into dirs until ctx is done.
func watchDirs(ctx context.Context, log zerolog.Logger, scanner *scan.Scanner, dirs, exclude []string, opts options, stdout io.Writer) error {
	w := watch.New(log)
	w.Exclude = exclude
	files, err := w.Watch(ctx, dirs...)
	if err != nil {
		return err
	}

	workers := opts.workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	var (
		mu   sync.Mutex
		seen int
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range files {
				rep := scanner.ScanFile(ctx, path)
				writeRegion(log, opts.outDir, rep)
				mu.Lock()
				seen++
				fmt.Fprintf(stdout, "[%d] %s\n", seen, formatReport(rep))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
