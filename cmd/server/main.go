package main

import (
	"log"

	"github.com/curlben/msuas-server/internal/call"
	"github.com/curlben/msuas-server/internal/chat"
	"github.com/curlben/msuas-server/internal/config"
	"github.com/curlben/msuas-server/internal/db"
	"github.com/curlben/msuas-server/internal/httpapi"
	"github.com/curlben/msuas-server/internal/store/rabbitmq"
	"github.com/curlben/msuas-server/internal/store/redisstore"
	"github.com/curlben/msuas-server/internal/supervision"
	"github.com/curlben/msuas-server/internal/ws"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	db.Migrate(gdb)

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer rds.Close()

	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Fatalf("rabbit publisher: %v", err)
	}
	defer pub.Close()

	registry := ws.NewRegistry()

	supervisions := supervision.NewRepo(gdb)
	chatSvc := chat.NewService(chat.NewRepo(gdb), supervisions, registry)
	callSvc := call.NewService(call.NewRepo(gdb), supervisions, registry)

	wsRouter := ws.NewRouter(registry, chatSvc, callSvc, rds)
	wsSrv := ws.NewServer(registry, wsRouter, cfg.JWTSecret)

	r := httpapi.NewRouter(gdb, cfg, chatSvc, callSvc, wsSrv, pub, rds)

	log.Printf("server listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
