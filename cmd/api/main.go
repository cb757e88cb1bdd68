package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	v1 "servihub/cmd/api/router/v1"
	cacheadapter "servihub/internal/infrastructure/cache/adapter"
	cacheport "servihub/internal/infrastructure/cache/port"
	"servihub/internal/infrastructure/database"
	queueadapter "servihub/internal/infrastructure/queue/adapter"
	qport "servihub/internal/infrastructure/queue/port"
	"servihub/internal/infrastructure/realtime"
	gwcontroller "servihub/internal/pkg/gateway/presentation/controller"
	"servihub/internal/pkg/messaging/application/task"
	msgusecase "servihub/internal/pkg/messaging/application/usecase"
	msgadapter "servihub/internal/pkg/messaging/persistence/repository/adapter"
	supusecase "servihub/internal/pkg/support/application/usecase"
	supadapter "servihub/internal/pkg/support/persistence/repository/adapter"
	supporthttp "servihub/internal/pkg/support/presentation/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}
	logger := log.With().Str("service", "servihub").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Durable store: authoritative for messages, unread counts and tickets.
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	pool, err := database.NewPoolFromEnv(connectCtx)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()

	// Redis backs the conversation-list snapshot cache and the asynq queue.
	// Without it the service still runs: snapshots are skipped and read-marking
	// happens synchronously.
	var (
		cache       cacheport.Cache
		queueClient qport.Client
	)
	if os.Getenv("REDIS_URL") != "" {
		redisCache, err := cacheadapter.NewRedisAdapter()
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to redis")
		}
		defer redisCache.Close()
		cache = redisCache

		asynqClient, err := queueadapter.NewAsynqClientFromEnv()
		if err != nil {
			logger.Fatal().Err(err).Msg("create queue client")
		}
		defer asynqClient.Close()
		queueClient = asynqClient
	} else {
		logger.Warn().Msg("REDIS_URL not set; running without snapshot cache and background read-marking")
	}

	registry := realtime.NewRegistry()
	defer registry.Close()
	relay := realtime.NewRelay(registry, logger)

	msgRepo := msgadapter.NewPgMessageRepository(pool)
	ticketRepo := supadapter.NewPgTicketRepository(pool)

	agg := msgusecase.NewConversationAggregator(msgRepo, queueClient, cache, relay, logger)
	listUC := msgusecase.NewListConversationsUseCase(msgRepo, cache, agg, logger)
	historyUC := msgusecase.NewGetHistoryUseCase(msgRepo, agg)

	createTicketUC := supusecase.NewCreateTicketUseCase(ticketRepo, relay)
	claimTicketUC := supusecase.NewClaimTicketUseCase(ticketRepo, relay)
	sendTicketMsgUC := supusecase.NewSendTicketMessageUseCase(ticketRepo, relay)
	closeTicketUC := supusecase.NewCloseTicketUseCase(ticketRepo, relay)

	if queueClient != nil {
		queueServer, err := queueadapter.NewAsynqServer()
		if err != nil {
			logger.Fatal().Err(err).Msg("create queue server")
		}
		task.RegisterMarkReadTask(queueServer, msgRepo)
		go func() {
			if err := queueServer.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("queue server stopped")
			}
		}()
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "connections": registry.Count()})
	})

	socketCtl := gwcontroller.NewSocketController(registry, agg, createTicketUC, claimTicketUC, sendTicketMsgUC, closeTicketUC, logger)

	v1.RegisterRoutes(r, agg, listUC, historyUC, supporthttp.Deps{
		Create:      createTicketUC,
		Claim:       claimTicketUC,
		SendMessage: sendTicketMsgUC,
		Close:       closeTicketUC,
		ListOpen:    supusecase.NewListOpenTicketsUseCase(ticketRepo),
		GetMessages: supusecase.NewGetTicketMessagesUseCase(ticketRepo),
	}, socketCtl)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
