package cvgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseList(t *testing.T) {
	t.Parallel()

	t.Run("clean json array", func(t *testing.T) {
		t.Parallel()
		got := parseList(`["Led migration to Kubernetes", "Cut build times by 40%"]`)
		assert.Equal(t, []string{"Led migration to Kubernetes", "Cut build times by 40%"}, got)
	})

	t.Run("array buried in prose", func(t *testing.T) {
		t.Parallel()
		got := parseList("Here are the bullet points you asked for:\n[\"Shipped the billing service\", \"Mentored two juniors\"]\nLet me know if you need more.")
		assert.Equal(t, []string{"Shipped the billing service", "Mentored two juniors"}, got)
	})

	t.Run("array in markdown fence", func(t *testing.T) {
		t.Parallel()
		got := parseList("```json\n[\"Python\", \"Go\"]\n```")
		assert.Equal(t, []string{"Python", "Go"}, got)
	})

	t.Run("multiline json array", func(t *testing.T) {
		t.Parallel()
		got := parseList("[\n  \"First point\",\n  \"Second point\"\n]")
		assert.Equal(t, []string{"First point", "Second point"}, got)
	})

	t.Run("bulleted plain text", func(t *testing.T) {
		t.Parallel()
		got := parseList("- Python\n- Go\n")
		assert.Equal(t, []string{"Python", "Go"}, got)
	})

	t.Run("quoted lines with trailing commas", func(t *testing.T) {
		t.Parallel()
		got := parseList("\"Team leadership\",\n\"Stakeholder management\",\n")
		assert.Equal(t, []string{"Team leadership", "Stakeholder management"}, got)
	})

	t.Run("headings and blanks dropped", func(t *testing.T) {
		t.Parallel()
		got := parseList("# Skills\n\n- Rust\n\n# Done\n")
		assert.Equal(t, []string{"Rust"}, got)
	})

	t.Run("star and unicode bullets", func(t *testing.T) {
		t.Parallel()
		got := parseList("* Kubernetes\n• Terraform\n")
		assert.Equal(t, []string{"Kubernetes", "Terraform"}, got)
	})

	t.Run("empty content yields empty list", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, parseList(""))
		assert.Empty(t, parseList("\n\n  \n"))
	})

	t.Run("never returns nil", func(t *testing.T) {
		t.Parallel()
		assert.NotNil(t, parseList(""))
	})
}
