// Package main is the ragscope CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/ragscope/internal/cli"
	"github.com/hyperjump/ragscope/internal/config"
	"github.com/hyperjump/ragscope/internal/export"
	"github.com/hyperjump/ragscope/internal/extract"
	"github.com/hyperjump/ragscope/internal/inbox"
	"github.com/hyperjump/ragscope/internal/metrics"
	"github.com/hyperjump/ragscope/internal/models"
	"github.com/hyperjump/ragscope/internal/ragapi"
	"github.com/hyperjump/ragscope/internal/render"
	"github.com/hyperjump/ragscope/internal/server"
	"github.com/hyperjump/ragscope/internal/views"
	"github.com/hyperjump/ragscope/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/ragscope/config.yaml"

// errUsage means the command line was wrong; usage has already been printed.
var errUsage = errors.New("invalid usage")

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory wins if present, and a missing default file means
// built-in defaults. Returns the config and the path actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// run dispatches one subcommand. Output goes to stdout; diagnostics to stderr.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) < 1 {
		printUsage(os.Stderr)
		return errUsage
	}
	command, rest := args[0], args[1:]
	switch command {
	case "server":
		return runServer(ctx, rest)
	case "overview":
		return runOverview(ctx, rest, stdout)
	case "logs":
		return runLogs(ctx, rest, stdout)
	case "docs":
		return runDocs(ctx, rest, stdout)
	case "upload":
		return runUpload(ctx, rest, stdout)
	case "ask":
		return runAsk(ctx, rest, stdout)
	case "freshness":
		return runFreshness(ctx, rest, stdout)
	case "concepts":
		return runConcepts(ctx, rest, stdout)
	case "inbox":
		return runInbox(ctx, rest)
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "ragscope version %s\n", version)
		return nil
	case "help", "--help", "-h":
		printUsage(stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		return errUsage
	}
}

// globalFlags are accepted by every subcommand.
type globalFlags struct {
	configPath *string
	api        *string
	output     *string
	debug      *bool
}

func addGlobalFlags(fs *flag.FlagSet) *globalFlags {
	return &globalFlags{
		configPath: fs.String("config", defaultConfigPath, "config file path"),
		api:        fs.String("api", "", "RAG backend base URL (overrides $"+config.EnvBaseURL+" and the config file)"),
		output:     fs.String("output", "text", "output format: text, compact, or json"),
		debug:      fs.Bool("debug", false, "enable debug logging"),
	}
}

// app is what a subcommand needs once flags are parsed.
type app struct {
	cfg        *config.Config
	configPath string
	logger     *zap.Logger
	metrics    *metrics.Metrics
	client     *ragapi.Client
	format     cli.OutputFormat
}

func (g *globalFlags) open() (*app, error) {
	format, err := cli.ParseFormat(*g.output)
	if err != nil {
		return nil, err
	}
	cfg, resolved, err := loadConfig(*g.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.API.BaseURL = config.ResolveBaseURL(*g.api, cfg)
	debug := cfg.Debug || *g.debug
	logger, err := utils.NewLogger(debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	m := metrics.New()
	client, err := ragapi.New(cfg.API.BaseURL,
		ragapi.WithLogger(logger),
		ragapi.WithMetrics(m),
	)
	if err != nil {
		return nil, err
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.String("api", client.BaseURL()), zap.Bool("debug", debug))
	return &app{cfg: cfg, configPath: resolved, logger: logger, metrics: m, client: client, format: format}, nil
}

// argsReorder moves flags that follow positional arguments to the front so
// that flag.Parse sees them: "ragscope ask what is parsing --mode bm25".
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// joinArgs joins positional args so multi-word input works with or without quotes.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func parse(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(os.Stderr)
	// flag has already printed the problem and the defaults.
	if err := fs.Parse(argsReorder(args)); err != nil {
		return errUsage
	}
	return nil
}

func runServer(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	g := addGlobalFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	renderer, err := render.New()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	srv := server.NewServer(a.client, renderer, a.cfg, a.metrics, a.logger)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if len(a.cfg.Inbox.Directories) > 0 {
		in := newInbox(a, a.cfg.Inbox.Directories)
		eg.Go(func() error { return in.Run(egCtx) })
	}
	eg.Go(func() error {
		<-egCtx.Done()
		a.logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})
	return eg.Wait()
}

func runOverview(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("overview", flag.ContinueOnError)
	g := addGlobalFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	o := views.NewOverview(a.client, a.logger)
	h := views.NewHistory(a.client, a.logger)
	var eg errgroup.Group
	eg.Go(func() error { o.Load(ctx); return nil })
	eg.Go(func() error { h.Load(ctx); return nil })
	_ = eg.Wait()
	return cli.WriteOverview(stdout, o, h, a.format)
}

func runLogs(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	g := addGlobalFlags(fs)
	exportPath := fs.String("export", "", "write the full log to this .xlsx file instead of printing it")
	if err := parse(fs, args); err != nil {
		return err
	}
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	if *exportPath != "" {
		logs, err := a.client.Logs(ctx)
		if err != nil {
			return fmt.Errorf("fetch logs: %w", err)
		}
		f, err := os.Create(*exportPath)
		if err != nil {
			return err
		}
		if err := export.WriteLogsXLSX(f, logs); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Exported %d log entries to %s\n", len(logs), *exportPath)
		return nil
	}

	v := views.NewLogs(a.client, a.logger)
	v.Load(ctx)
	return cli.WriteLogs(stdout, v, a.format)
}

func runDocs(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("docs", flag.ContinueOnError)
	g := addGlobalFlags(fs)
	docID := fs.String("doc", "", "show details of one document")
	if err := parse(fs, args); err != nil {
		return err
	}
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	v := views.NewCorpus(a.client, a.logger)
	v.Load(ctx)
	if *docID != "" && !v.Select(*docID) {
		return fmt.Errorf("document %q not found", *docID)
	}
	return cli.WriteDocuments(stdout, v.Documents(), v.Selected(), a.format)
}

func runUpload(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	g := addGlobalFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ragscope upload [flags] <file.pdf>...")
		return errUsage
	}
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	v := views.NewCorpus(a.client, a.logger, views.WithPreflight(extract.Preflight))
	for _, path := range fs.Args() {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		name := filepath.Base(path)
		res, err := v.UploadFile(ctx, name, content)
		if err != nil {
			return err
		}
		if err := cli.WriteUpload(stdout, name, res, v.Documents(), a.format); err != nil {
			return err
		}
	}
	return nil
}

func runAsk(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	g := addGlobalFlags(fs)
	mode := fs.String("mode", "", "retrieval mode: "+strings.Join(models.Modes, ", ")+" (default from config)")
	topK := fs.Int("top-k", 0, fmt.Sprintf("chunks to retrieve, %d-%d (default from config)", models.MinTopK, models.MaxTopK))
	rerank := fs.Bool("rerank", true, "rerank retrieved chunks (default from config)")
	if err := parse(fs, args); err != nil {
		return err
	}
	question := joinArgs(fs.Args())
	if question == "" {
		fmt.Fprintln(os.Stderr, "Usage: ragscope ask [flags] <question>")
		return errUsage
	}
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	form := views.NewQuestionForm(a.client, a.logger, server.QuestionDefaults(a.cfg))
	form.SetQuestion(question)
	var setErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			setErr = errors.Join(setErr, form.SetMode(*mode))
		case "top-k":
			form.SetTopK(*topK)
		case "rerank":
			form.SetRerank(*rerank)
		}
	})
	if setErr != nil {
		return setErr
	}
	resp, err := form.Submit(ctx)
	if err != nil {
		return err
	}
	return cli.WriteAnswer(stdout, resp, a.format)
}

func runFreshness(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("freshness", flag.ContinueOnError)
	g := addGlobalFlags(fs)
	question := fs.String("question", "", "question to show (default: first listed)")
	if err := parse(fs, args); err != nil {
		return err
	}
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	v := views.NewFreshness(a.client, a.logger)
	defer v.Close()
	v.LoadSelecting(ctx, *question)
	return cli.WriteFreshness(stdout, v, a.format)
}

func runConcepts(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("concepts", flag.ContinueOnError)
	g := addGlobalFlags(fs)
	docID := fs.String("doc", "", "only concepts linked to this document node ID")
	if err := parse(fs, args); err != nil {
		return err
	}
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	v := views.NewConceptGraph(a.client, a.logger)
	v.Load(ctx)
	v.SetFilter(*docID)
	return cli.WriteConcepts(stdout, v, a.format)
}

func runInbox(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("inbox", flag.ContinueOnError)
	g := addGlobalFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	dirs := a.cfg.Inbox.Directories
	if fs.NArg() > 0 {
		dirs = nil
		for _, d := range fs.Args() {
			abs, err := filepath.Abs(d)
			if err != nil {
				return err
			}
			dirs = append(dirs, abs)
		}
	}
	if len(dirs) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: ragscope inbox [flags] <dir>... (or set inbox.directories in the config)")
		return errUsage
	}
	return newInbox(a, dirs).Run(ctx)
}

func newInbox(a *app, dirs []string) *inbox.Inbox {
	corpus := views.NewCorpus(a.client, a.logger, views.WithPreflight(extract.Preflight))
	return inbox.New(corpus, inbox.Options{
		Directories:      dirs,
		Extensions:       a.cfg.Inbox.Extensions,
		Recursive:        a.cfg.Inbox.RecursiveOrDefault(),
		UploadsPerSecond: a.cfg.Inbox.UploadsPerSecond,
		Metrics:          a.metrics,
		Logger:           a.logger,
	})
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `ragscope - Dashboard and CLI for a retrieval-augmented QA backend

Usage:
  ragscope server [flags]               Serve the dashboard
  ragscope overview [flags]             Show corpus and question stats
  ragscope logs [flags]                 Show the question log
  ragscope docs [flags]                 List corpus documents
  ragscope upload [flags] <file.pdf>... Upload PDFs to the corpus
  ragscope ask [flags] <question>       Ask a question
  ragscope freshness [flags]            Show how answers to a question changed
  ragscope concepts [flags]             Show the concept graph
  ragscope inbox [flags] [dir...]       Upload PDFs dropped into directories
  ragscope version                      Show version
  ragscope help                         Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/ragscope/config.yaml, or ./config.yaml if present)
  --api string       RAG backend base URL (default: $RAGSCOPE_API_BASE_URL, then config, then http://localhost:8000)
  --output string    Output format: text, compact, or json (default: text)
  --debug            Enable debug logging

Logs Flags:
  --export string    Write the full log to an .xlsx file

Docs Flags:
  --doc string       Show details of one document

Ask Flags:
  --mode string      Retrieval mode: bm25, dense, or hybrid
  --top-k int        Chunks to retrieve (1-10; out-of-range values are clamped)
  --rerank           Rerank retrieved chunks (use --rerank=false to disable)

Freshness Flags:
  --question string  Question to show (default: the first listed)

Concepts Flags:
  --doc string       Only concepts linked to this document

Examples:
  ragscope server
  ragscope ask what is semantic parsing
  ragscope ask --mode bm25 --top-k 3 "what is the pretrain and prompt era?"
  ragscope upload week1.pdf week2.pdf
  ragscope logs --export rag-logs.xlsx
  ragscope overview --output json`)
}
