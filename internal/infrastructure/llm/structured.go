package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"newsbrief/internal/ports"
)

var _ ports.StructuredCompleter = (*Client)(nil)

// StructuredCompletion runs the prompt and decodes the JSON payload embedded
// in the reply into out. Models often wrap JSON in markdown fences or
// surround it with prose; both are tolerated here so call sites don't grow
// their own parsing.
func (c *Client) StructuredCompletion(ctx context.Context, system, user string, out any) error {
	reply, err := c.Complete(ctx, system, user)
	if err != nil {
		return err
	}
	return decodeStructured(reply, out)
}

func decodeStructured(reply string, out any) error {
	payload := extractJSON(stripFences(reply))
	if payload == "" {
		return fmt.Errorf("reply contains no json payload")
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("decode structured reply: %w", err)
	}
	return nil
}

// stripFences removes a markdown code-fence wrapper (``` or ```json).
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// extractJSON slices the outermost JSON array or object out of free text.
func extractJSON(text string) string {
	objStart := strings.Index(text, "{")
	arrStart := strings.Index(text, "[")

	if arrStart != -1 && (objStart == -1 || arrStart < objStart) {
		end := strings.LastIndex(text, "]")
		if end > arrStart {
			return text[arrStart : end+1]
		}
		return ""
	}

	if objStart != -1 {
		end := strings.LastIndex(text, "}")
		if end > objStart {
			return text[objStart : end+1]
		}
	}
	return ""
}
