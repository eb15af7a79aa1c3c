package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivebak/internal/domain"
)

func TestPrompt_LineMode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "yes", input: "yes\n", want: true},
		{name: "lower y", input: "y\n", want: true},
		{name: "upper Y", input: "Y\n", want: true},
		{name: "yep without newline", input: "yep", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "empty line", input: "\n", want: false},
		{name: "leading space", input: " y\n", want: false},
		{name: "eof", input: "", want: false},
		{name: "windows newline", input: "y\r\n", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompt(strings.NewReader(tt.input), &out)
			require.False(t, p.interactive)

			got, err := p.Confirm(context.Background(), domain.RunSummary{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, Question+" ", out.String())
		})
	}
}

func TestPrompt_OnlyFirstLineIsRead(t *testing.T) {
	p := NewPrompt(strings.NewReader("n\ny\n"), &bytes.Buffer{})

	got, err := p.Confirm(context.Background(), domain.RunSummary{})
	require.NoError(t, err)
	assert.False(t, got)
}
