package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"

	"github.com/hiveguard/hiveguard/internal/database"
	"github.com/hiveguard/hiveguard/internal/raid"
	"github.com/hiveguard/hiveguard/internal/redis"
	"github.com/hiveguard/hiveguard/internal/setup/config"
	"github.com/hiveguard/hiveguard/internal/stats"
)

// Bot owns the Discord gateway connection for one shard and the raid pipeline
// behind it. Partner bot reports arrive as guild messages, get parsed into
// raid signals, and are routed to the shard owning the target guild.
type Bot struct {
	cfg      *config.Config
	client   bot.Client
	router   *raid.Router
	channel  *raid.SignalChannel
	registry *raid.Registry
	logger   *zap.Logger

	listenCancel context.CancelFunc
}

// New wires the raid pipeline and configures the Discord client for this
// shard with the gateway intents and event listeners it needs.
func New(
	cfg *config.Config,
	db database.Client,
	redisManager *redis.Manager,
	logger *zap.Logger,
) (*Bot, error) {
	credentials, err := BuildCredentials(cfg.Discord.Token, cfg.Discord.CredentialTokens, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build ban credentials: %w", err)
	}

	selfID := credentials[0].UserID

	signalClient, err := redisManager.GetClient(redis.SignalDBIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to get signal Redis client: %w", err)
	}

	statsClient, err := redisManager.GetClient(redis.StatsDBIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats Redis client: %w", err)
	}

	b := &Bot{
		cfg:      cfg,
		registry: raid.NewRegistry(),
		logger:   logger,
	}

	// Configure Discord client with required gateway intents and event handlers
	client, err := disgo.New(cfg.Discord.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMembers,
				gateway.IntentGuildMessages,
				gateway.IntentMessageContent,
			),
			gateway.WithShardID(cfg.Discord.ShardID),
			gateway.WithShardCount(cfg.Discord.ShardCount),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnGuildMessageCreate: b.handleGuildMessage,
			OnGuildMemberLeave:   b.handleMemberLeave,
		}),
	)
	if err != nil {
		return nil, err
	}

	b.client = client

	gate := raid.NewGate(
		NewGuildAccessor(client, selfID),
		db.Model().ActionLog(),
		logger,
	)
	fetcher := raid.NewLogFetcher(
		time.Duration(cfg.Raid.FetchTimeout)*time.Millisecond, logger)
	executor := raid.NewExecutor(NewMemberLister(client), logger)
	reporter := raid.NewReporter(
		NewMessageSender(client),
		raid.NewHasteUploader(cfg.Raid.HastebinURL,
			time.Duration(cfg.Raid.UploadTimeout)*time.Millisecond),
		db.Model().RaidLog(),
		snowflake.ID(cfg.Discord.GlobalLogChannelID),
		logger,
	)
	pipeline := raid.NewPipeline(
		gate, fetcher, executor, reporter,
		raid.NewPool(credentials, logger),
		b.registry,
		stats.NewClient(statsClient, logger),
		logger,
	)

	b.channel = raid.NewSignalChannel(signalClient, logger)
	b.router = raid.NewRouter(
		raid.Topology{ShardCount: cfg.Discord.ShardCount},
		cfg.Discord.ShardID,
		b.channel,
		pipeline.Handle,
		logger,
	)

	return b, nil
}

// Start opens the gateway connection and begins consuming cross-shard raid
// signals addressed to this shard.
func (b *Bot) Start(ctx context.Context) error {
	listenCtx, cancel := context.WithCancel(context.Background())
	b.listenCancel = cancel

	go func() {
		err := b.channel.Listen(listenCtx, b.cfg.Discord.ShardID, b.router.Route)
		if err != nil && listenCtx.Err() == nil {
			b.logger.Error("Signal channel listener stopped", zap.Error(err))
		}
	}()

	if err := b.client.OpenGateway(ctx); err != nil {
		cancel()
		return fmt.Errorf("failed to open gateway: %w", err)
	}

	b.logger.Info("Gateway connection established",
		zap.Int("shardID", b.cfg.Discord.ShardID),
		zap.Int("shardCount", b.cfg.Discord.ShardCount))

	return nil
}

// Close stops the signal listener and gracefully closes the Discord gateway
// connection.
func (b *Bot) Close(ctx context.Context) {
	if b.listenCancel != nil {
		b.listenCancel()
	}

	b.client.Close(ctx)
	b.logger.Info("Gateway connection closed")
}

// handleGuildMessage inspects guild messages for partner bot raid reports.
// Anything not from the partner account is ignored immediately.
func (b *Bot) handleGuildMessage(event *events.GuildMessageCreate) {
	if uint64(event.Message.Author.ID) != b.cfg.Discord.PartnerBotID {
		return
	}

	signal, ok := raid.ParseSignal(reportText(event))
	if !ok {
		return
	}

	b.logger.Info("Raid signal detected",
		zap.Uint64("guildID", uint64(signal.GuildID)),
		zap.String("logURL", signal.LogURL))

	b.router.Route(context.Background(), signal)
}

// handleMemberLeave keeps active sweep snapshots in step with departures so
// users who already left are not banned.
func (b *Bot) handleMemberLeave(event *events.GuildMemberLeave) {
	b.registry.NotifyLeave(event.GuildID, event.User.ID)
}

// reportText gathers every text surface of a report message. The partner bot
// has shipped its reports both as plain content and inside embeds.
func reportText(event *events.GuildMessageCreate) string {
	text := event.Message.Content

	for _, embed := range event.Message.Embeds {
		if embed.Description != "" {
			text += "\n" + embed.Description
		}
	}

	return text
}
