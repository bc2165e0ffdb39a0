// Package transcript reads the external runtime's append-only JSONL
// session transcripts for history rehydration: a bit-exact path
// encoding, a tolerant line-by-line decoder, and a content-block
// taxonomy that flattens into UI display messages.
package transcript

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
)

// Message is one stored line of a transcript, decoded into role,
// timestamp, and content-blocks.
type Message struct {
	Type      string
	UUID      string
	Timestamp string
	Blocks    []ContentBlock
}

// rawMessage mirrors one transcript line loosely enough to distinguish
// a string-content line from an array-content line.
type rawMessage struct {
	Type      string          `json:"type"`
	UUID      string          `json:"uuid"`
	Timestamp string          `json:"timestamp"`
	Message   rawMessageField `json:"message"`
}

type rawMessageField struct {
	Content json.RawMessage `json:"content"`
}

// Read loads every line of the transcript at path into an ordered
// sequence of Messages. A line that fails to parse is skipped, never
// aborting the load; a missing file yields an empty, non-error result,
// since "displayable but not resumable" only applies to the session id,
// not the transcript file itself.
func Read(path string) ([]Message, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	return ReadFrom(f)
}

// ReadFrom decodes transcript lines from r, applying the same
// skip-on-parse-failure tolerance as Read.
func ReadFrom(r io.Reader) ([]Message, error) {
	var messages []Message

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 8<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		msg, ok := decodeLine(line)
		if !ok {
			continue
		}
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return messages, err
	}

	return messages, nil
}

// decodeLine parses one transcript line into a Message, returning
// ok=false if the line cannot be understood at all.
func decodeLine(line []byte) (Message, bool) {
	var raw rawMessage
	if err := json.Unmarshal(line, &raw); err != nil {
		return Message{}, false
	}

	msg := Message{Type: raw.Type, UUID: raw.UUID, Timestamp: raw.Timestamp}

	content := raw.Message.Content
	if len(content) == 0 {
		return msg, true
	}

	// A plain string content is equivalent to a single text block.
	var asString string
	if err := json.Unmarshal(content, &asString); err == nil {
		if asString != "" {
			msg.Blocks = []ContentBlock{{Kind: BlockText, Text: asString}}
		}
		return msg, true
	}

	var asArray []json.RawMessage
	if err := json.Unmarshal(content, &asArray); err != nil {
		return msg, true
	}

	for _, elem := range asArray {
		block, ok := decodeBlock(elem)
		if !ok {
			continue
		}
		msg.Blocks = append(msg.Blocks, block)
	}
	return msg, true
}
