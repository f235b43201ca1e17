// Package transcript persists conversations as an append-only JSON-lines log
// and/or a markdown rendering. Both files are optional and independent;
// writes are best-effort and never rewrite earlier content.
package transcript

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tom-doerr/perplexity-search/common/id"
	"github.com/tom-doerr/perplexity-search/internal/chat"
)

// Record is one persisted message: a single JSON object on its own line,
// write-once.
type Record struct {
	ID      string    `json:"id"`
	Role    chat.Role `json:"role"`
	Content string    `json:"content"`
}

// Writer appends conversation turns to the configured files. An empty path
// disables that output. Files are opened and closed per write; no handle is
// held across turns.
type Writer struct {
	LogPath      string
	MarkdownPath string
}

// AppendTurn persists one completed exchange: two JSONL records and/or two
// markdown blocks. Errors are returned for the caller to report; the
// in-memory conversation must proceed regardless.
func (w *Writer) AppendTurn(userText, assistantText string) error {
	var errs []error
	if w.LogPath != "" {
		if err := w.appendLog(userText, assistantText); err != nil {
			errs = append(errs, fmt.Errorf("conversation log: %w", err))
		}
	}
	if w.MarkdownPath != "" {
		if err := w.appendMarkdown(userText, assistantText); err != nil {
			errs = append(errs, fmt.Errorf("markdown transcript: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (w *Writer) appendLog(userText, assistantText string) error {
	f, err := os.OpenFile(w.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	records := []Record{
		{ID: id.New(), Role: chat.RoleUser, Content: userText},
		{ID: id.New(), Role: chat.RoleAssistant, Content: assistantText},
	}
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) appendMarkdown(userText, assistantText string) error {
	f, err := os.OpenFile(w.MarkdownPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "**User**: %s\n\n**Assistant**: %s\n\n", userText, assistantText)
	return err
}

// Replay reads a JSONL conversation log back into messages, for seeding a
// context at session start. Blank lines are skipped; unknown fields are
// ignored.
func Replay(path string) ([]chat.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var msgs []chat.Message
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parse log line: %w", err)
		}
		msgs = append(msgs, chat.Message{Role: rec.Role, Content: rec.Content})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return msgs, nil
}
