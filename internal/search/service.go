// Package search owns the per-turn conversation loop: take a query, call the
// client, persist the transcript, grow the context, repeat.
package search

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tom-doerr/perplexity-search/internal/chat"
	"github.com/tom-doerr/perplexity-search/internal/perplexity"
	"github.com/tom-doerr/perplexity-search/internal/transcript"
)

// Searcher is the one-request client contract the orchestrator depends on.
// *perplexity.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, req perplexity.SearchRequest, emit func(string)) error
}

// Options are the per-session generation settings. Format, when set, styles
// a buffered answer before it is printed (streaming output is passed through
// untouched, chunk by chunk).
type Options struct {
	Model         string
	Stream        bool
	ShowCitations bool
	Format        func(string) string
}

// Service drives conversation turns. Output goes to the injected sink rather
// than any global console state.
type Service struct {
	client     Searcher
	conv       *chat.Context
	transcript *transcript.Writer
	out        io.Writer
	opts       Options
}

// NewService wires the orchestrator. transcriptWriter may have empty paths,
// which disables persistence.
func NewService(client Searcher, conv *chat.Context, tw *transcript.Writer, out io.Writer, opts Options) *Service {
	return &Service{client: client, conv: conv, transcript: tw, out: out, opts: opts}
}

// RunQuery performs one turn: search, stream chunks to the output sink, then
// record the exchange. Persistence failures are reported and swallowed; the
// in-memory context is updated either way. The accumulated answer is
// returned for callers that post-process buffered output.
func (s *Service) RunQuery(ctx context.Context, query string) (string, error) {
	req := perplexity.SearchRequest{
		Query:         query,
		Model:         s.opts.Model,
		Stream:        s.opts.Stream,
		ShowCitations: s.opts.ShowCitations,
		Context:       s.conv.Messages(),
	}

	var answer strings.Builder
	err := s.client.Search(ctx, req, func(chunk string) {
		answer.WriteString(chunk)
		if s.opts.Stream {
			fmt.Fprint(s.out, chunk)
		}
	})
	if err != nil {
		return "", err
	}

	s.conv.AppendTurn(query, answer.String())
	if perr := s.transcript.AppendTurn(query, answer.String()); perr != nil {
		fmt.Fprintf(s.out, "\nWarning: could not save transcript: %v\n", perr)
		slog.Warn("transcript write failed", "error", perr)
	}
	return answer.String(), nil
}

// RunInteractive runs the REPL until EOF, "exit"/"quit", or context
// cancellation. A single turn's failure is reported without ending the
// session.
func (s *Service) RunInteractive(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(s.out, "\n> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			return nil
		}

		answer, err := s.RunQuery(ctx, query)
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			continue
		}
		if !s.opts.Stream {
			if s.opts.Format != nil {
				answer = s.opts.Format(answer)
			}
			fmt.Fprintln(s.out, answer)
		} else {
			fmt.Fprintln(s.out)
		}
	}
}
