package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Notifier delivers a rendered report. The reporter treats a nil error as
// confirmed delivery and only then closes the reporting window, so
// implementations must not return nil unless the message actually went out.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// ConsoleNotifier writes reports to a writer instead of a chat transport.
// Used by report --no-telegram and by dry runs.
type ConsoleNotifier struct {
	Out io.Writer
}

// NewConsoleNotifier creates a ConsoleNotifier
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{Out: out}
}

// Notify implements Notifier
func (n *ConsoleNotifier) Notify(_ context.Context, text string) error {
	_, err := fmt.Fprintln(n.Out, text)
	return err
}

// SplitMessage breaks text into chunks no longer than limit runes, preferring
// blank-line (course) boundaries, then line boundaries, then a hard split.
func SplitMessage(text string, limit int) []string {
	if len([]rune(text)) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentRunes := 0

	flush := func() {
		if currentRunes > 0 {
			chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
			current.Reset()
			currentRunes = 0
		}
	}

	// All length accounting is in runes, matching the limit.
	for _, block := range strings.Split(text, "\n\n") {
		blockRunes := len([]rune(block))
		if blockRunes > limit {
			// Block alone exceeds the limit, fall back to line splitting.
			flush()
			for _, line := range strings.Split(block, "\n") {
				runes := []rune(line)
				for len(runes) > limit {
					chunks = append(chunks, string(runes[:limit]))
					runes = runes[limit:]
				}
				if currentRunes+len(runes)+1 > limit {
					flush()
				}
				current.WriteString(string(runes))
				current.WriteString("\n")
				currentRunes += len(runes) + 1
			}
			flush()
			continue
		}

		if currentRunes+blockRunes+2 > limit {
			flush()
		}
		current.WriteString(block)
		current.WriteString("\n\n")
		currentRunes += blockRunes + 2
	}
	flush()
	return chunks
}
