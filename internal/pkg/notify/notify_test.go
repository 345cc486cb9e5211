package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessageShortTextIsOneChunk(t *testing.T) {
	chunks := SplitMessage("hello", 100)
	assert.Equal(t, []string{"hello"}, chunks)
}

func TestSplitMessagePrefersCourseBoundaries(t *testing.T) {
	blockA := "📚 CSCI 101\n" + strings.Repeat("  • 1L: 10/20\n", 5)
	blockB := "📚 MATH 201\n" + strings.Repeat("  • 1L: 10/20\n", 5)
	text := blockA + "\n\n" + blockB

	chunks := SplitMessage(text, len(blockA)+10)

	require.Len(t, chunks, 2)
	assert.Contains(t, chunks[0], "CSCI 101")
	assert.NotContains(t, chunks[0], "MATH 201")
	assert.Contains(t, chunks[1], "MATH 201")
}

func TestSplitMessageRespectsLimit(t *testing.T) {
	text := strings.Repeat("course line\n\n", 200)

	chunks := SplitMessage(text, 100)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 100)
	}
}

func TestSplitMessageCountsRunesNotBytes(t *testing.T) {
	block := strings.Repeat("📊", 3) // 3 runes, 12 bytes
	text := block + "\n\n" + block + "\n\n" + block

	chunks := SplitMessage(text, 10)

	// Two blocks plus their separator fit in a 10-rune chunk even though
	// they span far more bytes.
	require.Len(t, chunks, 2)
	assert.Equal(t, block+"\n\n"+block, chunks[0])
	assert.Equal(t, block, chunks[1])
}

func TestSplitMessagePacksLinesByRuneCount(t *testing.T) {
	line := strings.Repeat("🔺", 4) // 4 runes, 16 bytes
	text := strings.Join([]string{line, line, line}, "\n")

	chunks := SplitMessage(text, 10)

	require.Len(t, chunks, 2)
	assert.Equal(t, line+"\n"+line, chunks[0])
	assert.Equal(t, line, chunks[1])
}

func TestSplitMessageHardSplitsOversizedLine(t *testing.T) {
	text := strings.Repeat("x", 250)

	chunks := SplitMessage(text, 100)

	require.GreaterOrEqual(t, len(chunks), 3)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 100)
	}
}

func TestConsoleNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewConsoleNotifier(&buf)

	require.NoError(t, n.Notify(context.Background(), "report text"))
	assert.Equal(t, "report text\n", buf.String())
}
