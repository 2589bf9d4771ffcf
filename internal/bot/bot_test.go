package bot

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/latexbot/internal/infrastructure/config"
	"github.com/GriffinCanCode/latexbot/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/latexbot/internal/types"
)

type fakeRest struct {
	mu        sync.Mutex
	responses []*discordgo.InteractionResponse
	edits     []*discordgo.WebhookEdit
	overwrite []*discordgo.ApplicationCommand
	guild     string
	err       error
}

func (f *fakeRest) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return f.err
}

func (f *fakeRest) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, edit)
	return &discordgo.Message{}, f.err
}

func (f *fakeRest) ApplicationCommandBulkOverwrite(_ string, guildID string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overwrite, f.guild = commands, guildID
	return commands, f.err
}

type fakeExecutor struct {
	calls  []string
	params map[string]interface{}
	appCtx *types.Context
	result *types.Result
	err    error
	delay  time.Duration
}

func (f *fakeExecutor) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	f.calls = append(f.calls, toolID)
	f.params, f.appCtx = params, appCtx
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.result, f.err
}

func newTestBot(t *testing.T, exec Executor, cfg config.DiscordConfig) (*Bot, *fakeRest, *monitoring.Metrics) {
	t.Helper()
	if cfg.UserRate == 0 {
		cfg.UserRate, cfg.UserBurst = 100, 100
	}
	rest := &fakeRest{}
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	b, err := newBot(rest, Options{Config: cfg, Executor: exec, Metrics: metrics, Logger: zap.NewNop()})
	require.NoError(t, err)
	return b, rest, metrics
}

func command(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: "g1",
		Locale:  discordgo.EnglishUS,
		Member:  &discordgo.Member{User: &discordgo.User{ID: "u1"}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: options,
		},
	}
}

func option(name string, value interface{}) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Value: value}
}

func TestHandleSuccess(t *testing.T) {
	exec := &fakeExecutor{result: &types.Result{
		Success:     true,
		Text:        "Solution: [-2, 2]",
		Attachments: []types.Attachment{{Name: "latex.png", ContentType: "image/png", Data: []byte("png")}},
	}}
	b, rest, metrics := newTestBot(t, exec, config.DiscordConfig{})

	b.Handle(context.Background(), command("solve", option("equation", "x**2 - 4 = 0")))

	assert.Equal(t, []string{"math.solve"}, exec.calls)
	assert.Equal(t, map[string]interface{}{"equation": "x**2 - 4 = 0"}, exec.params)
	assert.Equal(t, Source, exec.appCtx.Source)
	assert.Equal(t, "u1", *exec.appCtx.UserID)
	assert.Equal(t, "g1", *exec.appCtx.GuildID)
	assert.Regexp(t, `^req_[0-9A-Z]{26}$`, exec.appCtx.RequestID)

	require.Len(t, rest.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, rest.responses[0].Type)
	require.Len(t, rest.edits, 1)
	assert.Equal(t, "Solution: [-2, 2]", *rest.edits[0].Content)
	require.Len(t, rest.edits[0].Files, 1)
	data, err := io.ReadAll(rest.edits[0].Files[0].Reader)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	assert.Equal(t, 1, int(metrics.Snapshot().Commands))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ImagesRendered.WithLabelValues("latex")))
}

func TestHandleFailureIsShown(t *testing.T) {
	msg := "Error: parse error: unexpected character '?' at 3"
	exec := &fakeExecutor{result: &types.Result{Error: &msg}}
	b, rest, metrics := newTestBot(t, exec, config.DiscordConfig{})

	b.Handle(context.Background(), command("symbolic", option("expression", "x ?"), option("operation", "simplify")))

	require.Len(t, rest.edits, 1)
	assert.Equal(t, msg, *rest.edits[0].Content)
	assert.Equal(t, 1, int(metrics.Snapshot().Failures))
}

func TestHandleTimeout(t *testing.T) {
	exec := &fakeExecutor{delay: time.Second}
	b, rest, _ := newTestBot(t, exec, config.DiscordConfig{CommandTimeout: 20 * time.Millisecond})

	b.Handle(context.Background(), command("plot", option("equation", "x"), option("x_min", -1.0)))

	require.Len(t, rest.edits, 1)
	assert.Contains(t, *rest.edits[0].Content, "took longer than 20ms")
	assert.Equal(t, -1.0, exec.params["x_min"])
}

func TestHandleRateLimited(t *testing.T) {
	exec := &fakeExecutor{result: &types.Result{Success: true, Text: "ok"}}
	b, rest, metrics := newTestBot(t, exec, config.DiscordConfig{UserRate: 0.01, UserBurst: 1})

	b.Handle(context.Background(), command("solve", option("equation", "x = 1")))
	i := command("solve", option("equation", "x = 2"))
	i.Locale = discordgo.ChineseTW
	b.Handle(context.Background(), i)

	assert.Len(t, exec.calls, 1)
	require.Len(t, rest.responses, 2)
	limited := rest.responses[1]
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, limited.Type)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, limited.Data.Flags)
	assert.Contains(t, limited.Data.Content, "秒後再試")
	assert.Equal(t, 1, int(metrics.Snapshot().RateLimited))
}

func TestHandleUnknownCommand(t *testing.T) {
	exec := &fakeExecutor{}
	b, rest, _ := newTestBot(t, exec, config.DiscordConfig{})

	b.Handle(context.Background(), command("nope"))

	assert.Empty(t, exec.calls)
	require.Len(t, rest.responses, 1)
	assert.Equal(t, "Unknown command.", rest.responses[0].Data.Content)
}

func TestHandleIgnoresOtherInteractions(t *testing.T) {
	exec := &fakeExecutor{}
	b, rest, _ := newTestBot(t, exec, config.DiscordConfig{})

	b.Handle(context.Background(), &discordgo.Interaction{Type: discordgo.InteractionPing})

	assert.Empty(t, exec.calls)
	assert.Empty(t, rest.responses)
}

func TestHandleAfterClose(t *testing.T) {
	exec := &fakeExecutor{result: &types.Result{Success: true, Text: "ok"}}
	b, rest, _ := newTestBot(t, exec, config.DiscordConfig{})

	require.NoError(t, b.Close(context.Background()))
	b.Handle(context.Background(), command("solve", option("equation", "x = 1")))

	assert.Empty(t, exec.calls)
	assert.Empty(t, rest.responses)
}

func TestCloseWaitsForRunningCommands(t *testing.T) {
	exec := &fakeExecutor{result: &types.Result{Success: true, Text: "ok"}, delay: 50 * time.Millisecond}
	b, rest, _ := newTestBot(t, exec, config.DiscordConfig{})

	go b.Handle(context.Background(), command("solve", option("equation", "x = 1")))
	require.Eventually(t, func() bool {
		rest.mu.Lock()
		defer rest.mu.Unlock()
		return len(rest.responses) == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, b.Close(context.Background()))
	rest.mu.Lock()
	defer rest.mu.Unlock()
	assert.Len(t, rest.edits, 1, "Close returned before the running command replied")
}

func TestRegister(t *testing.T) {
	b, rest, _ := newTestBot(t, &fakeExecutor{}, config.DiscordConfig{GuildID: "g42"})

	require.NoError(t, b.Register(context.Background(), "app"))
	assert.Equal(t, "g42", rest.guild)
	assert.Len(t, rest.overwrite, 7)
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	b, rest, _ := newTestBot(t, &fakeExecutor{}, config.DiscordConfig{})
	rest.err = &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusBadGateway}}

	for range 5 {
		assert.Error(t, b.Register(context.Background(), "app"))
	}
	err := b.Register(context.Background(), "app")
	assert.Contains(t, err.Error(), "circuit breaker is open")
}

func TestRestSucceeded(t *testing.T) {
	status := func(code int) error {
		return &discordgo.RESTError{Response: &http.Response{StatusCode: code}}
	}
	assert.True(t, restSucceeded(nil))
	assert.True(t, restSucceeded(status(http.StatusBadRequest)))
	assert.True(t, restSucceeded(status(http.StatusNotFound)))
	assert.False(t, restSucceeded(status(http.StatusTooManyRequests)))
	assert.False(t, restSucceeded(status(http.StatusInternalServerError)))
	assert.False(t, restSucceeded(errors.New("connection reset")))
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}
