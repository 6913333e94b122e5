package session

import (
	"fmt"
	"strings"
)

// SerializeOptions bounds how much of each message survives into the
// serialized transcript. Truncation keeps request sizes bounded and surfaces
// the start of each message, which carries most of the signal.
type SerializeOptions struct {
	UserMessageLimit      int
	AssistantMessageLimit int
}

// Serialize renders a transcript as prompt-ready text: user and assistant
// text truncated per the options, tool invocations reduced to their names.
func Serialize(rec *Record, opts SerializeOptions) string {
	var sb strings.Builder
	for i := range rec.Entries {
		e := &rec.Entries[i]
		if e.Message == nil {
			continue
		}
		switch e.Type {
		case "user":
			for _, text := range e.Message.Content.TextParts() {
				sb.WriteString("[User]: ")
				sb.WriteString(truncate(text, opts.UserMessageLimit))
				sb.WriteByte('\n')
			}
		case "assistant":
			for _, b := range e.Message.Content.Blocks {
				switch b.Type {
				case "text":
					sb.WriteString("[Assistant]: ")
					sb.WriteString(truncate(b.Text, opts.AssistantMessageLimit))
					sb.WriteByte('\n')
				case "tool_use":
					name := b.Name
					if name == "" {
						name = "?"
					}
					fmt.Fprintf(&sb, "[Tool: %s]\n", name)
				}
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit]
}
