package main

import (
	"context"
	"log"

	"raffle-service/config"
	"raffle-service/internal/cache"
	"raffle-service/internal/database"
	"raffle-service/internal/handler"
	"raffle-service/internal/queue"
	"raffle-service/internal/repository"
	"raffle-service/internal/service"
	"raffle-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(context.Background(), pool); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	raffleRepo := repository.NewRaffleRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	gate := cache.NewRafflePurchaseGate(rdb)

	paymentQueue, err := queue.NewRedisStreamPaymentQueue(rdb, "", nil)
	if err != nil {
		log.Fatalf("Failed to initialize payment queue: %v", err)
	}

	raffleService := service.NewRaffleService(raffleRepo, ticketRepo, gate)
	purchaseService := service.NewPurchaseService(pool, raffleRepo, ticketRepo, gate)
	drawService := service.NewDrawService(pool, raffleRepo, ticketRepo)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	paymentWorker := worker.NewPaymentWorker(purchaseService, paymentQueue)
	if err := paymentWorker.Start(workerCtx); err != nil {
		log.Fatalf("Failed to start payment worker: %v", err)
	}

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	handler.NewRaffleHandler(raffleService).RegisterRoutes(router)
	handler.NewTicketHandler(raffleService, purchaseService).RegisterRoutes(router)
	handler.NewDrawHandler(raffleService, drawService).RegisterRoutes(router)
	handler.NewPaymentHandler(raffleService, paymentQueue).RegisterRoutes(router)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
