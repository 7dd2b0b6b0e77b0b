package notifier

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	msg := StructuredMessage{
		Icon:  "✅",
		Title: "DOGS trade complete",
		Sections: []MessageSection{{
			Title: "fills",
			Lines: []string{"entry: 100000", "", "exit: 105000"},
		}},
		Footer:    "signal 7",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	body := msg.RenderMarkdown()
	assert.Contains(t, body, "✅ DOGS trade complete")
	assert.Contains(t, body, "- entry: 100000")
	assert.Contains(t, body, "signal 7")
	assert.Contains(t, body, "2026-03-01")
	// Blank lines inside sections are dropped.
	assert.NotContains(t, body, "- \n")
}

func TestRenderMarkdownTrimsOversize(t *testing.T) {
	msg := StructuredMessage{
		Title: "big",
		Sections: []MessageSection{{
			Lines: []string{strings.Repeat("x", 5000)},
		}},
	}
	body := msg.RenderMarkdown()
	assert.LessOrEqual(t, len(body), maxStructuredMessageLen+3)
}
