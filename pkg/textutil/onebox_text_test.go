package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Hi there,\n\nThanks!", "Hi there,\n\nThanks!"},
		{
			"html paragraphs",
			`<html><head><style>p{color:red}</style></head><body><p>I'm very interested.</p><p>Send pricing<br>please</p></body></html>`,
			"I'm very interested.\nSend pricing\nplease",
		},
		{"script removed", `<div>Hello<script>alert(1)</script></div>`, "Hello"},
		{"entities decoded", `<p>Tom &amp; Jerry</p>`, "Tom & Jerry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, LooksLikeHTML("<P>hi</P>"))
	assert.False(t, LooksLikeHTML("a < b and c > d"))
}

func TestSqueeze(t *testing.T) {
	assert.Equal(t, "a b\n\nc", Squeeze("  a \t b \n\n\n\n c  "))
}
