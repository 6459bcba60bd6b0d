package chat

import "strings"

// DefaultLanguage tags extracted blocks whose opening fence carries no
// language.
const DefaultLanguage = "plaintext"

const fence = "```"

type codeBlock struct {
	Language string
	Code     string
}

// extractCodeBlocks scans text for fenced code blocks. It is a two-state
// line scanner: outside a block, a line starting with ``` opens one and
// the rest of that line is the language tag; inside, a line that is
// exactly ``` closes it. An unterminated trailing block is dropped, no
// partial snippet is emitted.
func extractCodeBlocks(text string) []codeBlock {
	var (
		blocks   []codeBlock
		body     []string
		language string
		inside   bool
	)

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if !inside {
			if !strings.HasPrefix(trimmed, fence) {
				continue
			}
			language = strings.TrimSpace(strings.TrimPrefix(trimmed, fence))
			if language == "" {
				language = DefaultLanguage
			}
			inside = true
			body = body[:0]
			continue
		}

		if trimmed == fence {
			blocks = append(blocks, codeBlock{
				Language: language,
				Code:     strings.Join(body, "\n"),
			})
			inside = false
			continue
		}

		body = append(body, line)
	}

	return blocks
}
