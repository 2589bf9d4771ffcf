package bot

import (
	"bytes"
	"math"
	"path"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/GriffinCanCode/latexbot/internal/types"
)

// MaxContent is Discord's message length limit in characters
const MaxContent = 2000

const ellipsis = "…"

type message int

const (
	msgUnknownCommand message = iota
	msgRateLimited
	msgDone
)

var messages = map[discordgo.Locale]map[message]string{
	discordgo.EnglishUS: {
		msgUnknownCommand: "Unknown command.",
		msgRateLimited:    "You're sending commands too quickly. Try again in %ds.",
		msgDone:           "Done.",
	},
	discordgo.ChineseTW: {
		msgUnknownCommand: "未知的指令。",
		msgRateLimited:    "指令送出太頻繁，請在 %d 秒後再試。",
		msgDone:           "完成。",
	},
}

// messageFor returns the message in the user's locale, falling back to
// English.
func messageFor(locale discordgo.Locale, m message) string {
	if msgs, ok := messages[locale]; ok {
		return msgs[m]
	}
	return messages[discordgo.EnglishUS][m]
}

// Reply builds the edit for a deferred response from a tool result.
func Reply(result *types.Result) *discordgo.WebhookEdit {
	content := Truncate(result.Message(), MaxContent)
	if content == "" && len(result.Attachments) == 0 {
		content = messages[discordgo.EnglishUS][msgDone]
	}
	edit := &discordgo.WebhookEdit{Content: &content}
	for _, a := range result.Attachments {
		edit.Files = append(edit.Files, &discordgo.File{
			Name:        a.Name,
			ContentType: a.ContentType,
			Reader:      bytes.NewReader(a.Data),
		})
	}
	return edit
}

// Truncate shortens s to at most limit runes, marking the cut.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := string(runes[:limit-len([]rune(ellipsis))])
	// an unclosed code block swallows the rest of the message
	if strings.Count(cut, "```")%2 == 1 {
		cut = string([]rune(cut)[:len([]rune(cut))-3]) + "```"
	}
	return cut + ellipsis
}

func waitSeconds(d time.Duration) int {
	return max(1, int(math.Ceil(d.Seconds())))
}

func imageKind(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}
