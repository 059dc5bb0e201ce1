// Package knowledge loads the static knowledge document and flattens it into
// the text block embedded in every system prompt.
package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	// DefaultText is used whenever the document cannot be read or parsed.
	DefaultText = "Консультант: Никифор Удалой. Связь: contact@example.com, LinkedIn, Twitter."

	// DefaultFile is the document name looked up next to the deployment.
	DefaultFile = "knowledge.json"

	entrySeparator = "\n\n"
)

// Source fetches the raw knowledge document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// entry is a question/answer pair. Either side may be missing.
type entry struct {
	Q json.RawMessage `json:"q"`
	A json.RawMessage `json:"a"`
}

// Load fetches and renders the document. It never fails: any error is logged
// and DefaultText is returned instead.
func Load(ctx context.Context, src Source) string {
	if src == nil {
		slog.WarnContext(ctx, "knowledge source not configured, using default text")
		return DefaultText
	}
	raw, err := src.Fetch(ctx)
	if err != nil {
		slog.WarnContext(ctx, "knowledge document unavailable, using default text", "source", src.String(), "err", err)
		return DefaultText
	}
	text, err := Render(raw)
	if err != nil {
		slog.WarnContext(ctx, "knowledge document malformed, using default text", "source", src.String(), "err", err)
		return DefaultText
	}
	slog.InfoContext(ctx, "knowledge loaded", "source", src.String(), "bytes", len(text))
	return text
}

// Render flattens a JSON array of strings and {q, a} objects. Strings are kept
// as-is, pairs become "q: a", and entries are joined by a blank line in
// document order.
func Render(raw []byte) (string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return "", fmt.Errorf("knowledge: decode document: %w", err)
	}
	if items == nil {
		return "", errors.New("knowledge: document is not an array")
	}

	parts := make([]string, 0, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			return "", fmt.Errorf("knowledge: entry %d is empty", i)
		}
		switch item[0] {
		case '"':
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return "", fmt.Errorf("knowledge: decode entry %d: %w", i, err)
			}
			parts = append(parts, s)
		case '{':
			var e entry
			if err := json.Unmarshal(item, &e); err != nil {
				return "", fmt.Errorf("knowledge: decode entry %d: %w", i, err)
			}
			parts = append(parts, scalarText(e.Q)+": "+scalarText(e.A))
		default:
			return "", fmt.Errorf("knowledge: entry %d is neither a string nor an object", i)
		}
	}
	return strings.Join(parts, entrySeparator), nil
}

func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
