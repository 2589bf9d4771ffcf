package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/latexbot/internal/infrastructure/config"
	"github.com/GriffinCanCode/latexbot/internal/infrastructure/logging"
	"github.com/GriffinCanCode/latexbot/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/latexbot/internal/infrastructure/ratelimit"
	"github.com/GriffinCanCode/latexbot/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/latexbot/internal/shared/id"
	"github.com/GriffinCanCode/latexbot/internal/types"
)

// Source labels metrics and tool contexts for slash commands
const Source = "discord"

const (
	restTimeout = 15 * time.Second
	// idle users are forgotten by the per-user limiter after this long
	limiterIdle = 30 * time.Minute
)

// Executor runs a tool by ID. *service.Registry implements it.
type Executor interface {
	Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error)
}

// restClient is the part of *discordgo.Session the bot calls
type restClient interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Options configures a Bot
type Options struct {
	Config   config.DiscordConfig
	Catalog  *Catalog
	Executor Executor
	Metrics  *monitoring.Metrics
	Logger   *zap.Logger
}

// Bot serves slash commands over a Discord gateway session.
type Bot struct {
	session *discordgo.Session
	rest    restClient
	exec    Executor
	catalog *Catalog
	limiter *ratelimit.Keyed
	breaker *resilience.Breaker
	metrics *monitoring.Metrics
	ids     *id.Generator
	guildID string
	timeout time.Duration
	logger  *zap.Logger

	mu       sync.Mutex
	closing  bool
	inflight sync.WaitGroup
}

// New creates a bot with its own gateway session. Call Open to connect.
func New(opts Options) (*Bot, error) {
	if opts.Config.Token == "" {
		return nil, errors.New("discord token is required")
	}
	session, err := discordgo.New("Bot " + opts.Config.Token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	session.Client = newHTTPClient(opts.Logger)
	session.Identify.Intents = discordgo.IntentsGuilds

	b, err := newBot(session, opts)
	if err != nil {
		return nil, err
	}
	b.session = session

	session.AddHandler(b.onReady)
	session.AddHandler(b.onConnect)
	session.AddHandler(b.onDisconnect)
	session.AddHandler(b.onInteraction)
	return b, nil
}

func newBot(rest restClient, opts Options) (*Bot, error) {
	if opts.Executor == nil || opts.Metrics == nil {
		return nil, errors.New("bot needs an executor and metrics")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog := opts.Catalog
	if catalog == nil {
		var err error
		if catalog, err = LoadCatalog(); err != nil {
			return nil, err
		}
	}
	timeout := opts.Config.CommandTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	b := &Bot{
		rest:    rest,
		exec:    opts.Executor,
		catalog: catalog,
		limiter: ratelimit.NewKeyed(opts.Config.UserRate, opts.Config.UserBurst, limiterIdle),
		metrics: opts.Metrics,
		ids:     id.NewGenerator(),
		guildID: opts.Config.GuildID,
		timeout: timeout,
		logger:  logger,
	}
	b.breaker = resilience.New("discord", resilience.Settings{
		Timeout:      opts.Config.BreakerTimeout,
		IsSuccessful: restSucceeded,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
			b.metrics.SetBreakerState(name, int(to))
		},
	})
	return b, nil
}

// Open connects to the gateway. Commands are registered once it is ready.
func (b *Bot) Open() error {
	if b.session == nil {
		return errors.New("bot has no session")
	}
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	return nil
}

// Close disconnects and waits for in-flight commands until ctx is done.
func (b *Bot) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closing = true
	b.mu.Unlock()

	var err error
	if b.session != nil {
		err = b.session.Close()
	}
	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		b.logger.Warn("commands still running at shutdown")
	}
	b.metrics.SetGatewayConnected(false)
	return err
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("gateway ready",
		zap.String("user", r.User.Username),
		zap.Int("guilds", len(r.Guilds)))

	ctx, cancel := context.WithTimeout(context.Background(), restTimeout)
	defer cancel()
	if err := b.Register(ctx, r.User.ID); err != nil {
		b.logger.Error("command registration failed", zap.Error(err))
	}
}

func (b *Bot) onConnect(_ *discordgo.Session, _ *discordgo.Connect) {
	b.metrics.SetGatewayConnected(true)
}

func (b *Bot) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	b.logger.Warn("gateway disconnected")
	b.metrics.SetGatewayConnected(false)
}

func (b *Bot) onInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	b.Handle(context.Background(), i.Interaction)
}

// Register overwrites the application's commands with the catalog, on the
// configured guild or globally.
func (b *Bot) Register(ctx context.Context, appID string) error {
	commands := b.catalog.ApplicationCommands()
	created, err := resilience.Do(ctx, b.breaker, func(ctx context.Context) ([]*discordgo.ApplicationCommand, error) {
		return b.rest.ApplicationCommandBulkOverwrite(appID, b.guildID, commands, discordgo.WithContext(ctx))
	})
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	b.logger.Info("commands registered",
		zap.Int("count", len(created)),
		zap.String("guild", b.guildID))
	return nil
}

// Handle answers one interaction: it defers, runs the command's tool and
// edits the deferred reply with the result.
func (b *Bot) Handle(ctx context.Context, i *discordgo.Interaction) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if !b.begin() {
		b.logger.Debug("interaction dropped, bot is closing")
		return
	}
	defer b.inflight.Done()

	data := i.ApplicationCommandData()
	user := userID(i)
	logger := b.logger.With(zap.String("command", data.Name), zap.String("user", user))

	cmd, ok := b.catalog.Lookup(data.Name)
	if !ok {
		logger.Warn("unknown command")
		b.respondEphemeral(ctx, i, messageFor(i.Locale, msgUnknownCommand), logger)
		return
	}

	if ok, wait := b.limiter.Reserve(user); !ok {
		b.metrics.RecordRateLimited(Source)
		logger.Debug("rate limited", zap.Duration("wait", wait))
		b.respondEphemeral(ctx, i, fmt.Sprintf(messageFor(i.Locale, msgRateLimited), waitSeconds(wait)), logger)
		return
	}

	timer := monitoring.NewTimer(b.metrics, Source, cmd.Name)
	if err := b.deferReply(ctx, i); err != nil {
		logger.Error("defer failed", zap.Error(err))
		timer.Stop(false)
		return
	}

	requestID := b.ids.GenerateWithPrefix(id.RequestPrefix)
	logger = logger.With(zap.String("request_id", requestID))
	result := b.run(ctx, cmd, data.Options, &types.Context{
		RequestID: requestID,
		Source:    Source,
		UserID:    &user,
		GuildID:   guildID(i),
	}, logger)

	duration := timer.Stop(result.Success)
	logger.Info("command finished",
		zap.Bool("success", result.Success),
		zap.Duration("duration", duration))

	if err := b.editReply(ctx, i, result); err != nil {
		logger.Error("reply failed", zap.Error(err))
	}
}

// run executes cmd's tool under the command timeout.
// begin counts a command as in flight unless Close has started.
func (b *Bot) begin() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closing {
		return false
	}
	b.inflight.Add(1)
	return true
}

func (b *Bot) run(ctx context.Context, cmd *Command, options []*discordgo.ApplicationCommandInteractionDataOption, appCtx *types.Context, logger *zap.Logger) *types.Result {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	result, err := b.exec.Execute(ctx, cmd.Tool, Params(options), appCtx)
	if err != nil {
		kind := "tool"
		if errors.Is(err, context.DeadlineExceeded) {
			kind = "timeout"
			msg := fmt.Sprintf("Error: %s took longer than %s", cmd.Name, b.timeout)
			result = &types.Result{Error: &msg}
		}
		b.metrics.RecordCommandError(cmd.Name, kind)
		logger.Warn("tool error", zap.String("tool", cmd.Tool), zap.Error(err))
	}
	if result == nil {
		msg := "Error: no result"
		result = &types.Result{Error: &msg}
	}
	return result
}

func (b *Bot) deferReply(ctx context.Context, i *discordgo.Interaction) error {
	return b.call(ctx, func(ctx context.Context) error {
		return b.rest.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		}, discordgo.WithContext(ctx))
	})
}

func (b *Bot) editReply(ctx context.Context, i *discordgo.Interaction, result *types.Result) error {
	edit := Reply(result)
	for _, a := range result.Attachments {
		b.metrics.RecordImage(imageKind(a.Name), len(a.Data))
	}
	return b.call(ctx, func(ctx context.Context) error {
		_, err := b.rest.InteractionResponseEdit(i, edit, discordgo.WithContext(ctx))
		return err
	})
}

func (b *Bot) respondEphemeral(ctx context.Context, i *discordgo.Interaction, content string, logger *zap.Logger) {
	err := b.call(ctx, func(ctx context.Context) error {
		return b.rest.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		}, discordgo.WithContext(ctx))
	})
	if err != nil {
		logger.Error("respond failed", zap.Error(err))
	}
}

// call runs one REST request through the breaker with its own deadline.
func (b *Bot) call(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restTimeout)
	defer cancel()
	return b.breaker.Execute(ctx, fn)
}

// restSucceeded treats client errors as answers from a healthy API.
func restSucceeded(err error) bool {
	if err == nil {
		return true
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		code := rest.Response.StatusCode
		return code < http.StatusInternalServerError && code != http.StatusTooManyRequests
	}
	return false
}

// newHTTPClient retries connection failures and 5xx responses. Discord's 429
// handling is left to discordgo, which reads the rate limit headers.
func newHTTPClient(logger *zap.Logger) *http.Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := retryablehttp.NewClient()
	c.Logger = logging.NewLeveled(logger.Named("http"))
	c.RetryMax = 3
	c.RetryWaitMin = 250 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	c.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	hc := c.StandardClient()
	hc.Timeout = restTimeout
	return hc
}

func userID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return "unknown"
}

func guildID(i *discordgo.Interaction) *string {
	if i.GuildID == "" {
		return nil
	}
	g := i.GuildID
	return &g
}
