package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	pomsky "github.com/pomsky-community/pomsky-go"
	"github.com/pomsky-community/pomsky-go/internal/ast"
	"github.com/pomsky-community/pomsky-go/internal/diag"
	"github.com/pomsky-community/pomsky-go/internal/feature"
	"github.com/pomsky-community/pomsky-go/internal/flavor"
	"github.com/pomsky-community/pomsky-go/internal/version"
)

var logger = log.New(os.Stderr, "", 0)

type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

type cliOptions struct {
	flavors   []flavor.Flavor
	paths     []string
	noNewline bool
	watch     bool
	printAST  bool
	parse     pomsky.ParseOptions
}

func main() {
	var (
		paths       pathList
		flavorName  string
		noNewline   bool
		featureList string
		watch       bool
		printAST    bool
		showVersion bool
	)
	flag.StringVar(&flavorName, "f", "pcre", "target regex `flavor`: pcre, js, java, dotnet, python, ruby, rust or all")
	flag.StringVar(&flavorName, "flavor", "pcre", "alias for -f")
	flag.Var(&paths, "path", "compile the pomsky `file` (may be repeated)")
	flag.BoolVar(&noNewline, "n", false, "don't print a trailing newline")
	flag.BoolVar(&noNewline, "no-new-line", false, "alias for -n")
	flag.StringVar(&featureList, "allowed-features", "", "comma-separated `list` of language features to allow")
	flag.BoolVar(&watch, "watch", false, "recompile -path inputs whenever they change")
	flag.BoolVar(&printAST, "print-ast", false, "pretty-print the parsed expression and exit")
	flag.BoolVar(&showVersion, "version", false, "print the version and exit")
	flag.Usage = printUsage
	flag.Parse()

	if showVersion {
		fmt.Println(version.Version())
		return
	}

	opts := cliOptions{
		paths:     paths,
		noNewline: noNewline,
		watch:     watch,
		printAST:  printAST,
	}

	if flavorName == "all" {
		opts.flavors = flavor.All
	} else {
		fl, ok := flavor.FromString(flavorName)
		if !ok {
			logger.Fatalf("unknown flavor %q", flavorName)
		}
		opts.flavors = []flavor.Flavor{fl}
	}

	if featureList != "" {
		allowed, unknown := feature.FromNames(featureList)
		if len(unknown) > 0 {
			logger.Fatalf("unknown features: %s", strings.Join(unknown, ", "))
		}
		opts.parse.AllowedFeatures = allowed
	}

	if err := run(opts); err != nil {
		logger.Fatal(err)
	}
}

func run(opts cliOptions) error {
	if opts.watch {
		if len(opts.paths) == 0 {
			return fmt.Errorf("-watch requires at least one -path")
		}
		return watchAndCompile(context.Background(), opts)
	}

	inputs, err := collectInputs(opts)
	if err != nil {
		return err
	}

	if opts.printAST {
		for _, in := range inputs {
			expr, diags := pomsky.Parse(in.source, opts.parse)
			reportDiagnostics(diags, in.source)
			if diag.HasErrors(diags) {
				return fmt.Errorf("cannot print the expression of %s", in.name)
			}
			ast.NewPrettyPrinter(os.Stdout, stdoutIsTTY()).PrettyPrint(expr)
		}
		return nil
	}

	jobs := makeJobs(inputs, opts.flavors)
	g := new(errgroup.Group)
	for i := range jobs {
		job := &jobs[i]
		g.Go(func() error {
			job.output, job.diags = pomsky.ParseAndCompile(job.source, pomsky.CompileOptions{
				ParseOptions: opts.parse,
				Flavor:       job.flavor,
			})
			return nil
		})
	}
	//nolint:errcheck
	g.Wait()

	failed := false
	for _, job := range jobs {
		reportDiagnostics(job.diags, job.source)
		if diag.HasErrors(job.diags) {
			failed = true
			continue
		}
		if len(jobs) > 1 {
			fmt.Fprintf(os.Stdout, "%s: ", job.label)
		}
		os.Stdout.WriteString(job.output)
		if !opts.noNewline || len(jobs) > 1 {
			os.Stdout.WriteString("\n")
		}
	}
	if failed {
		return fmt.Errorf("compilation failed")
	}
	return nil
}

type input struct {
	name   string
	source string
}

// collectInputs reads the expression sources in precedence order: the
// positional argument, then every -path file, then stdin.
func collectInputs(opts cliOptions) ([]input, error) {
	if flag.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one expression argument")
	}
	if flag.NArg() == 1 {
		if len(opts.paths) > 0 {
			return nil, fmt.Errorf("cannot combine an expression argument with -path")
		}
		return []input{{name: "input", source: flag.Arg(0)}}, nil
	}
	if len(opts.paths) > 0 {
		var inputs []input
		for _, path := range opts.paths {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("reading input: %w", err)
			}
			inputs = append(inputs, input{name: path, source: string(data)})
		}
		return inputs, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return []input{{name: "stdin", source: string(data)}}, nil
}

type job struct {
	label  string
	source string
	flavor flavor.Flavor
	output string
	diags  []diag.Diagnostic
}

func makeJobs(inputs []input, flavors []flavor.Flavor) []job {
	var jobs []job
	for _, in := range inputs {
		for _, fl := range flavors {
			label := fl.String()
			if len(inputs) > 1 {
				label = in.name + " " + label
			}
			jobs = append(jobs, job{label: label, source: in.source, flavor: fl})
		}
	}
	return jobs
}

func reportDiagnostics(diags []diag.Diagnostic, src string) {
	color := stderrIsTTY()
	for _, d := range diags {
		logger.Println(renderDiagnostic(d, src, color))
	}
}

func renderDiagnostic(d diag.Diagnostic, src string, color bool) string {
	out := d.Render(src)
	if !color {
		return out
	}
	code := "31"
	if d.Severity == diag.Warning {
		code = "33"
	}
	head := d.Severity.String()
	return "\x1b[" + code + "m" + head + "\x1b[0m" + strings.TrimPrefix(out, head)
}

func stderrIsTTY() bool { return isTTY(os.Stderr) }

func stdoutIsTTY() bool { return isTTY(os.Stdout) }

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// watchAndCompile recompiles each -path input on change. The watch is
// on the containing directories because editors replace files rather
// than write them in place.
func watchAndCompile(ctx context.Context, opts cliOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, path := range opts.paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolving path %s: %w", path, err)
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("adding %s to watch: %w", dir, err)
		}
	}

	recompile := func(path string) {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Printf("reading %s: %v", path, err)
			return
		}
		for _, fl := range opts.flavors {
			out, diags := pomsky.ParseAndCompile(string(data), pomsky.CompileOptions{
				ParseOptions: opts.parse,
				Flavor:       fl,
			})
			reportDiagnostics(diags, string(data))
			if diag.HasErrors(diags) {
				continue
			}
			if len(opts.flavors) > 1 {
				fmt.Fprintf(os.Stdout, "%s: ", fl)
			}
			fmt.Fprintln(os.Stdout, out)
		}
	}

	for path := range watched {
		recompile(path)
	}

	debounceEvents(ctx, 125*time.Millisecond, watcher, func(ev fsnotify.Event) {
		path := filepath.Clean(ev.Name)
		if !watched[path] {
			return
		}
		logger.Printf("change detected in %s, recompiling", path)
		recompile(path)
	})
	return nil
}

// debounceEvents folds the bursts of events a single save produces
// into one callback per file, interval after the last event.
func debounceEvents(ctx context.Context, interval time.Duration, watcher *fsnotify.Watcher, fn func(event fsnotify.Event)) {
	var mu sync.Mutex
	timers := make(map[string]*time.Timer)

	has := func(ev fsnotify.Event, op fsnotify.Op) bool {
		return ev.Op&op == op
	}

	for {
		select {
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Printf("file watch error: %v", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !has(ev, fsnotify.Create) && !has(ev, fsnotify.Write) && !has(ev, fsnotify.Rename) {
				continue
			}
			mu.Lock()
			t, ok := timers[ev.Name]
			mu.Unlock()
			if !ok {
				t = time.AfterFunc(math.MaxInt64, func() {
					fn(ev)
					mu.Lock()
					defer mu.Unlock()
					delete(timers, ev.Name)
				})
				t.Stop()

				mu.Lock()
				timers[ev.Name] = t
				mu.Unlock()
			}
			t.Reset(interval)
		case <-ctx.Done():
			return
		}
	}
}

func printUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Usage: pomsky [flags] [EXPRESSION]")
	fmt.Fprintln(out, "Compile a pomsky expression from the argument, -path files, or stdin.")
	fmt.Fprintln(out, "Flags:")
	flag.PrintDefaults()
}
