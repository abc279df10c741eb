package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	out, err := ToHTML("## Units\n\n- Infection control\n- **Manual handling**\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<h2 id="units">Units</h2>`)
	assert.Contains(t, out, "<li>Infection control</li>")
	assert.Contains(t, out, "<strong>Manual handling</strong>")
}

func TestToHTMLTables(t *testing.T) {
	out, err := ToHTML("| Day | Time |\n|---|---|\n| Mon | 9am |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>Mon</td>")
}

func TestToHTMLDropsRawHTML(t *testing.T) {
	out, err := ToHTML("Hello <script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}

func TestToHTMLEmpty(t *testing.T) {
	out, err := ToHTML("")
	require.NoError(t, err)
	assert.Empty(t, out)
}
