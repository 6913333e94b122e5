package session

import "encoding/json"

// Content is a message body that may appear on the wire as either a plain
// string or an array of typed blocks. Text holds the string form; Blocks
// holds the array form. Exactly one is populated.
type Content struct {
	Text   string
	Blocks []Block
}

// Block is one element of an array-form message body.
type Block struct {
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	Name      string         `json:"name,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	Content   BlockText      `json:"content,omitempty"`
	IsError   bool           `json:"is_error,omitempty"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
}

// UnmarshalJSON accepts both content encodings.
func (c *Content) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		return nil
	}
	var blocks []Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return err
	}
	c.Blocks = blocks
	return nil
}

// MarshalJSON preserves the original encoding shape.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.Blocks != nil {
		return json.Marshal(c.Blocks)
	}
	return json.Marshal(c.Text)
}

// TextParts returns all plain text carried by the content: the string form
// itself, or the text of every "text" block.
func (c Content) TextParts() []string {
	if c.Text != "" {
		return []string{c.Text}
	}
	var parts []string
	for _, b := range c.Blocks {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return parts
}

// BlockText is a tool_result payload that may be a string or a nested block
// array. Only the flattened text is retained.
type BlockText string

// UnmarshalJSON flattens either encoding to plain text.
func (t *BlockText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = BlockText(s)
		return nil
	}
	var blocks []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &blocks); err != nil {
		// Unknown shape; drop rather than fail the whole entry.
		*t = ""
		return nil
	}
	var out string
	for _, b := range blocks {
		if b.Type == "text" {
			if out != "" {
				out += "\n"
			}
			out += b.Text
		}
	}
	*t = BlockText(out)
	return nil
}
