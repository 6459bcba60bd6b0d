package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCodeBlocks(t *testing.T) {
	t.Run("tagged and untagged blocks", func(t *testing.T) {
		text := "First:\n```python\nprint(1)\n```\nSecond:\n```python\nprint(2)\n```\nAnd a plain one:\n```\necho hi\n```"

		blocks := extractCodeBlocks(text)
		require.Len(t, blocks, 3)

		assert.Equal(t, "python", blocks[0].Language)
		assert.Equal(t, "print(1)", blocks[0].Code)
		assert.Equal(t, "python", blocks[1].Language)
		assert.Equal(t, "print(2)", blocks[1].Code)
		assert.Equal(t, "plaintext", blocks[2].Language)
		assert.Equal(t, "echo hi", blocks[2].Code)
	})

	t.Run("multi-line body", func(t *testing.T) {
		text := "```go\nfunc fib(n int) int {\n\tif n < 2 {\n\t\treturn n\n\t}\n\treturn fib(n-1) + fib(n-2)\n}\n```"

		blocks := extractCodeBlocks(text)
		require.Len(t, blocks, 1)
		assert.Equal(t, "go", blocks[0].Language)
		assert.Equal(t, "func fib(n int) int {\n\tif n < 2 {\n\t\treturn n\n\t}\n\treturn fib(n-1) + fib(n-2)\n}", blocks[0].Code)
	})

	t.Run("no blocks", func(t *testing.T) {
		assert.Empty(t, extractCodeBlocks("just prose, nothing fenced"))
	})

	t.Run("unterminated trailing block is dropped", func(t *testing.T) {
		text := "```python\nprint(1)\n```\n```sh\nrm -rf build"

		blocks := extractCodeBlocks(text)
		require.Len(t, blocks, 1)
		assert.Equal(t, "python", blocks[0].Language)
	})

	t.Run("empty body", func(t *testing.T) {
		blocks := extractCodeBlocks("```json\n```")
		require.Len(t, blocks, 1)
		assert.Equal(t, "json", blocks[0].Language)
		assert.Equal(t, "", blocks[0].Code)
	})

	t.Run("indented fence still opens", func(t *testing.T) {
		blocks := extractCodeBlocks("  ```ruby\nputs 1\n  ```")
		require.Len(t, blocks, 1)
		assert.Equal(t, "ruby", blocks[0].Language)
		assert.Equal(t, "puts 1", blocks[0].Code)
	})
}
