package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tom-doerr/perplexity-search/common/logger"
	"github.com/tom-doerr/perplexity-search/core/config"
	"github.com/tom-doerr/perplexity-search/internal/chat"
	"github.com/tom-doerr/perplexity-search/internal/perplexity"
	"github.com/tom-doerr/perplexity-search/internal/search"
	"github.com/tom-doerr/perplexity-search/internal/terminal"
	"github.com/tom-doerr/perplexity-search/internal/transcript"
	"github.com/tom-doerr/perplexity-search/internal/update"
)

const version = "0.5.0"

func main() {
	apiKey := flag.String("api-key", "", "Perplexity API key (overrides PERPLEXITY_API_KEY)")
	model := flag.String("model", "", "model to use for search")
	noStream := flag.Bool("no-stream", false, "disable streaming output")
	citations := flag.Bool("citations", false, "append numbered citation references")
	logFile := flag.String("log-file", "", "append conversation to this JSON-lines file")
	markdownFile := flag.String("markdown-file", "", "append conversation to this markdown file")
	continueLog := flag.Bool("continue", false, "seed the conversation from the log file")
	debug := flag.Bool("debug", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("plexsearch " + version)
		return
	}

	logger.Setup(*debug)
	cfg := config.Load()

	// Flag beats environment.
	if *apiKey == "" {
		*apiKey = cfg.APIKey
	}
	if *model == "" {
		*model = cfg.Model
	}
	stream := !*noStream && !cfg.NoStream

	if latest := (&update.Checker{CurrentVersion: version}).CheckAndNotify(); latest != "" {
		fmt.Fprintln(os.Stderr, update.Notice(latest))
	}

	client, err := perplexity.NewClient(perplexity.Config{
		APIKey:   *apiKey,
		Endpoint: cfg.Endpoint,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	conv := chat.NewContext()
	if *continueLog && *logFile != "" {
		conv, err = seedContext(*logFile)
		if err != nil {
			slog.Warn("could not seed conversation from log, starting fresh", "path", *logFile, "error", err)
			conv = chat.NewContext()
		}
	}

	svc := search.NewService(client, conv,
		&transcript.Writer{LogPath: *logFile, MarkdownPath: *markdownFile},
		os.Stdout,
		search.Options{
			Model:         *model,
			Stream:        stream,
			ShowCitations: *citations,
			Format:        terminal.FormatAnswer,
		})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flag.NArg() == 0 {
		runInteractive(ctx, svc)
		return
	}

	query := strings.Join(flag.Args(), " ")
	runOnce(ctx, svc, query, stream)
}

func runOnce(ctx context.Context, svc *search.Service, query string, stream bool) {
	spinner := terminal.NewSpinner(os.Stdout)
	if !stream {
		spinner.Start("Searching...")
	}
	answer, err := svc.RunQuery(ctx, query)
	spinner.Stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if stream {
		fmt.Println()
	} else {
		fmt.Println(terminal.FormatAnswer(answer))
	}
}

func runInteractive(ctx context.Context, svc *search.Service) {
	if terminal.Interactive() {
		terminal.ClearScreen(os.Stdout)
	}
	fmt.Println("plexsearch " + version + " interactive mode (exit or quit to leave)")
	if err := svc.RunInteractive(ctx, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func seedContext(path string) (*chat.Context, error) {
	msgs, err := transcript.Replay(path)
	if err != nil {
		return nil, err
	}
	return chat.NewContextWith(msgs)
}
