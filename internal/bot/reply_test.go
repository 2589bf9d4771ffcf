package bot

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/latexbot/internal/types"
)

func TestReply(t *testing.T) {
	edit := Reply(&types.Result{Success: true})
	assert.Equal(t, "Done.", *edit.Content)
	assert.Empty(t, edit.Files)

	edit = Reply(&types.Result{Success: true, Attachments: []types.Attachment{{Name: "plot.png", ContentType: "image/png"}}})
	assert.Equal(t, "", *edit.Content)
	require.Len(t, edit.Files, 1)
	assert.Equal(t, "plot.png", edit.Files[0].Name)
	assert.Equal(t, "image/png", edit.Files[0].ContentType)

	msg := "Error: bad"
	edit = Reply(&types.Result{Text: "ignored", Error: &msg})
	assert.Equal(t, "Error: bad", *edit.Content)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))

	out := Truncate(strings.Repeat("é", 30), 10)
	assert.Equal(t, 10, utf8.RuneCountInString(out))
	assert.True(t, strings.HasSuffix(out, "…"))

	out = Truncate("Result:\n```\n"+strings.Repeat("1 ", 50), 30)
	assert.Equal(t, 30, utf8.RuneCountInString(out))
	assert.Equal(t, 2, strings.Count(out, "```"))
}

func TestMessageFor(t *testing.T) {
	assert.Equal(t, "Unknown command.", messageFor(discordgo.EnglishUS, msgUnknownCommand))
	assert.Equal(t, "未知的指令。", messageFor(discordgo.ChineseTW, msgUnknownCommand))
	assert.Equal(t, "Unknown command.", messageFor(discordgo.French, msgUnknownCommand))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, 1, waitSeconds(0))
	assert.Equal(t, 3, waitSeconds(2100*time.Millisecond))
	assert.Equal(t, "latex", imageKind("latex.png"))
	assert.Equal(t, "spectrum", imageKind("spectrum.png"))
}
