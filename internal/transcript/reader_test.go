package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFrom_DecodesTextAndToolBlocks(t *testing.T) {
	input := `{"type":"user","uuid":"u1","timestamp":"t1","message":{"content":"hi there"}}
{"type":"assistant","uuid":"u2","timestamp":"t2","message":{"content":[{"type":"text","text":"hello"},{"type":"tool_use","id":"tu1","name":"bash","input":{"command":"ls"}}]}}
`
	msgs, err := ReadFrom(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "user", msgs[0].Type)
	require.Len(t, msgs[0].Blocks, 1)
	assert.Equal(t, BlockText, msgs[0].Blocks[0].Kind)
	assert.Equal(t, "hi there", msgs[0].Blocks[0].Text)

	assert.Equal(t, "assistant", msgs[1].Type)
	require.Len(t, msgs[1].Blocks, 2)
	assert.Equal(t, BlockText, msgs[1].Blocks[0].Kind)
	assert.Equal(t, BlockToolUse, msgs[1].Blocks[1].Kind)
	assert.Equal(t, "bash", msgs[1].Blocks[1].ToolName)
}

func TestReadFrom_SkipsUnparseableLinesWithoutAborting(t *testing.T) {
	input := `{"type":"user","uuid":"u1","message":{"content":"ok"}}
not json at all
{"type":"user","uuid":"u2","message":{"content":"also ok"}}
`
	msgs, err := ReadFrom(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "u1", msgs[0].UUID)
	assert.Equal(t, "u2", msgs[1].UUID)
}

func TestReadFrom_SkipsBlankLines(t *testing.T) {
	input := "{\"type\":\"user\",\"uuid\":\"u1\",\"message\":{\"content\":\"ok\"}}\n\n\n"
	msgs, err := ReadFrom(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}

func TestReadFrom_EmptyStringContentYieldsNoBlocks(t *testing.T) {
	input := `{"type":"user","uuid":"u1","message":{"content":""}}` + "\n"
	msgs, err := ReadFrom(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Empty(t, msgs[0].Blocks)
}

func TestRead_MissingFileReturnsEmptyNotError(t *testing.T) {
	msgs, err := Read("/nonexistent/path/to/transcript.jsonl")
	require.NoError(t, err)
	assert.Nil(t, msgs)
}
