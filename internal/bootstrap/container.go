package bootstrap

import (
	"time"

	"support-chat-be/internal/config"
	"support-chat-be/internal/controller"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/repository/unitofwork"
	"support-chat-be/internal/service"
	"support-chat-be/pkg/llm"
	"support-chat-be/pkg/llm/groq"
	pktNats "support-chat-be/pkg/nats"
	"support-chat-be/pkg/ratelimit"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	UserController        controller.IUserController
	ChatSessionController controller.IChatSessionController
	MessageController     controller.IMessageController
	ChatController        controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Infrastructure
	DB          *gorm.DB
	Logger      logger.ILogger
	RedisClient *redis.Client // nil when REDIS_URL is empty

	pubSub    *gochannel.GoChannel
	natsRelay *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)

	// 3. Reply generation. Without a key every turn gets the placeholder reply.
	// The provider owns the connection; sampling settings travel with each request.
	var provider llm.LLMProvider
	if cfg.Ai.GroqAPIKey != "" {
		provider = groq.NewGroqProvider(groq.Config{
			APIKey:  cfg.Ai.GroqAPIKey,
			BaseURL: cfg.Ai.GroqBaseURL,
			Timeout: time.Duration(cfg.Ai.TimeoutSeconds) * time.Second,
		})
		sysLogger.Info("BOOTSTRAP", "Using Groq reply provider", map[string]interface{}{
			"model": cfg.Ai.LLMModel,
		})
	} else {
		sysLogger.Warn("BOOTSTRAP", "GROQ_API_KEY not set, replies will be placeholders", nil)
	}
	replyGenerator := service.NewReplyGenerator(provider, sysLogger,
		llm.WithModel(cfg.Ai.LLMModel),
		llm.WithTemperature(cfg.Ai.Temperature),
		llm.WithMaxTokens(cfg.Ai.MaxTokens),
	)

	// 4. Infrastructure
	// NATS relay is optional; keep the interface nil rather than a nil pointer.
	var relay service.EventRelay
	var natsPub *pktNats.Publisher
	if cfg.Events.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.Events.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher", map[string]interface{}{
				"error": err,
			})
		} else {
			natsPub = pub
			relay = pub
		}
	}

	var rdb *redis.Client
	if cfg.RateLimit.RedisURL != "" {
		rdb = ratelimit.NewRedisClient(cfg.RateLimit.RedisURL)
	}

	publisherService := service.NewPublisherService(cfg.Events.Topic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.Events.Topic, relay, sysLogger)

	// 5. Services
	userService := service.NewUserService(uowFactory)
	sessionService := service.NewChatSessionService(uowFactory)
	messageService := service.NewMessageService(uowFactory)
	chatService := service.NewChatService(uowFactory, replyGenerator, publisherService, sysLogger)

	// 6. Controllers
	return &Container{
		UserController:        controller.NewUserController(userService),
		ChatSessionController: controller.NewChatSessionController(sessionService, messageService),
		MessageController:     controller.NewMessageController(messageService),
		ChatController:        controller.NewChatController(chatService),

		ConsumerService: consumerService,

		DB:          db,
		Logger:      sysLogger,
		RedisClient: rdb,

		pubSub:    pubSub,
		natsRelay: natsPub,
	}
}

// Close releases the event bus and outbound connections. The database is
// closed by the caller that opened it.
func (c *Container) Close() {
	if err := c.pubSub.Close(); err != nil {
		c.Logger.Warn("BOOTSTRAP", "Failed to close event bus", map[string]interface{}{"error": err})
	}
	if c.natsRelay != nil {
		c.natsRelay.Close()
	}
	if c.RedisClient != nil {
		_ = c.RedisClient.Close()
	}
}
