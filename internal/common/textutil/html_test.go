package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "  Reaches   new markets ", "Reaches new markets"},
		{"tags", "<p>Reaches <strong>new</strong> markets</p>", "Reaches new markets"},
		{"entities", "R&amp;D &nbsp;team &lt;3", "R&D team <3"},
		{"block boundaries", "<ul><li>Go</li><li>SQL</li></ul>", "Go SQL"},
		{"line breaks", "first<br/>second", "first second"},
		{"script dropped", "<p>ok</p><script>alert('x')</script>", "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "Marketing...", Truncate("Marketing Manager", 12))
	assert.Equal(t, "", Truncate("x", 0))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}
