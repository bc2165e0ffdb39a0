package transcript

import (
	"encoding/json"
)

// BlockKind tags the variant carried by a ContentBlock.
type BlockKind string

const (
	BlockText       BlockKind = "text"
	BlockToolUse    BlockKind = "tool_use"
	BlockToolResult BlockKind = "tool_result"
	BlockOther      BlockKind = "other"
)

// ContentBlock is one rendered unit of an assistant or user turn. Only
// the taxonomy spec names is given first-class fields; anything else
// decodes as BlockOther and is parsed but not rendered.
type ContentBlock struct {
	Kind BlockKind

	// BlockText
	Text string

	// BlockToolUse
	ToolName  string
	ToolInput string // pretty-printed JSON
	ToolUseID string

	// BlockToolResult
	ResultText string
	IsError    bool
}

// rawBlock mirrors the runtime's on-disk content-block shape closely
// enough to dispatch on "type" and pull out the fields each taxonomy
// member needs.
type rawBlock struct {
	Type    string          `json:"type"`
	Text    string          `json:"text"`
	Name    string          `json:"name"`
	ID      string          `json:"id"`
	Input   json.RawMessage `json:"input"`
	Content json.RawMessage `json:"content"`
	IsError bool            `json:"is_error"`
}

// decodeBlock parses one content-block element, returning the empty
// block and ok=false if it cannot even partially be understood.
func decodeBlock(data []byte) (ContentBlock, bool) {
	var raw rawBlock
	if err := json.Unmarshal(data, &raw); err != nil {
		return ContentBlock{}, false
	}

	switch raw.Type {
	case "text":
		return ContentBlock{Kind: BlockText, Text: raw.Text}, true
	case "tool_use":
		return ContentBlock{
			Kind:      BlockToolUse,
			ToolName:  raw.Name,
			ToolUseID: raw.ID,
			ToolInput: prettyPrintJSON(raw.Input),
		}, true
	case "tool_result":
		return ContentBlock{
			Kind:       BlockToolResult,
			ResultText: resultText(raw.Content),
			IsError:    raw.IsError,
		}, true
	default:
		return ContentBlock{Kind: BlockOther}, true
	}
}

// prettyPrintJSON re-indents raw for human-readable display, falling
// back to the raw bytes verbatim if they do not parse as JSON.
func prettyPrintJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf interface{}
	if err := json.Unmarshal(raw, &buf); err != nil {
		return string(raw)
	}
	pretty, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(pretty)
}

// resultText extracts the tool_result's displayable text. The runtime
// represents it either as a plain string or as an array of content
// blocks (rare, but tolerated); only the text blocks are concatenated.
func resultText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var blocks []rawBlock
	if err := json.Unmarshal(raw, &blocks); err == nil {
		text := ""
		for _, b := range blocks {
			if b.Type == "text" {
				text += b.Text
			}
		}
		return text
	}

	return string(raw)
}
