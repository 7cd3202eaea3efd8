package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseModelOutput(t *testing.T) {
	t.Parallel()

	t.Run("extracts topics from fenced json block", func(t *testing.T) {
		t.Parallel()

		raw := "Recursion is a function calling itself.\n\n```json\n[\"Stacks\", \"Trees\"]\n```"
		answer, topics := ParseModelOutput(raw)

		assert.Equal(t, "Recursion is a function calling itself.", answer)
		assert.Equal(t, []string{"Stacks", "Trees"}, topics)
	})

	t.Run("prefers fenced block over bare array", func(t *testing.T) {
		t.Parallel()

		raw := "See [1] for details.\n\n```json\n[\"Graphs\"]\n```"
		answer, topics := ParseModelOutput(raw)

		assert.Equal(t, []string{"Graphs"}, topics)
		assert.Contains(t, answer, "See [1] for details.")
	})

	t.Run("falls back to bare array literal", func(t *testing.T) {
		t.Parallel()

		raw := "An interface is a contract.\n\n[\"Structs\", \"Methods\"]"
		answer, topics := ParseModelOutput(raw)

		assert.Equal(t, "An interface is a contract.", answer)
		assert.Equal(t, []string{"Structs", "Methods"}, topics)
	})

	t.Run("returns whole text when no array present", func(t *testing.T) {
		t.Parallel()

		raw := "Just an answer with no recommendations."
		answer, topics := ParseModelOutput(raw)

		assert.Equal(t, raw, answer)
		assert.Empty(t, topics)
	})

	t.Run("ignores invalid array syntax", func(t *testing.T) {
		t.Parallel()

		raw := "Sorting compares elements [not valid json here]"
		answer, topics := ParseModelOutput(raw)

		assert.Equal(t, raw, answer)
		assert.Empty(t, topics)
	})

	t.Run("strips trailing recommended lessons line", func(t *testing.T) {
		t.Parallel()

		raw := "Pointers hold addresses.\n\nRecommended lessons:\n```json\n[\"Memory\"]\n```"
		answer, topics := ParseModelOutput(raw)

		assert.Equal(t, "Pointers hold addresses.", answer)
		assert.Equal(t, []string{"Memory"}, topics)
	})

	t.Run("drops non-string and empty array elements", func(t *testing.T) {
		t.Parallel()

		raw := "Answer.\n\n```json\n[\"Valid\", 42, \"\", \"  \", \"Also valid\"]\n```"
		_, topics := ParseModelOutput(raw)

		assert.Equal(t, []string{"Valid", "Also valid"}, topics)
	})

	t.Run("trims whitespace from topics", func(t *testing.T) {
		t.Parallel()

		raw := "Answer.\n\n```json\n[\" Padded \"]\n```"
		_, topics := ParseModelOutput(raw)

		assert.Equal(t, []string{"Padded"}, topics)
	})

	t.Run("handles empty input", func(t *testing.T) {
		t.Parallel()

		answer, topics := ParseModelOutput("")
		assert.Equal(t, "", answer)
		assert.Empty(t, topics)
	})
}
