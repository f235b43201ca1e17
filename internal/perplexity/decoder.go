package perplexity

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// completionBody is the non-streaming response document.
type completionBody struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

// streamEvent is one decoded line of a streaming response.
type streamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

// decodeBody handles a buffered (non-streaming) response: the full answer is
// emitted as a single chunk, with the references block appended when
// requested.
func decodeBody(r io.Reader, showCitations bool, emit func(string)) error {
	var body completionBody
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}

	var content string
	if len(body.Choices) > 0 {
		content = body.Choices[0].Message.Content
	}
	if showCitations && len(body.Citations) > 0 {
		content += formatCitations(body.Citations)
	}
	emit(content)
	return nil
}

// decodeStream consumes a server-sent-event style response line by line.
// Each non-empty line carries an optional "data: " prefix followed by a JSON
// object. Lines that fail to parse are skipped: providers are known to emit
// non-JSON keep-alive lines, so decoding stays best-effort. Content deltas
// are emitted as they arrive; the citation list is tracked last-write-wins
// and emitted as one final chunk after the stream ends.
func decodeStream(r io.Reader, showCitations bool, emit func(string)) error {
	var citations []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var event streamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			continue
		}
		if len(event.Choices) > 0 {
			if content := event.Choices[0].Delta.Content; content != "" {
				emit(content)
			}
		}
		if event.Citations != nil {
			citations = event.Citations
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}

	if showCitations && len(citations) > 0 {
		emit(formatCitations(citations))
	}
	return nil
}

// formatCitations renders the references block with 1-based sequential
// numbering. Duplicate URLs are dropped, first occurrence wins.
func formatCitations(citations []string) string {
	var b strings.Builder
	b.WriteString("\n\nReferences:")
	seen := make(map[string]bool, len(citations))
	n := 0
	for _, url := range citations {
		if seen[url] {
			continue
		}
		seen[url] = true
		n++
		fmt.Fprintf(&b, "\n[%d] %s", n, url)
	}
	return b.String()
}
