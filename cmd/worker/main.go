package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"

	"github.com/curlben/msuas-server/internal/config"
	"github.com/curlben/msuas-server/internal/db"
	"github.com/curlben/msuas-server/internal/email"
	"github.com/curlben/msuas-server/internal/models"
	"github.com/curlben/msuas-server/internal/store/rabbitmq"
)

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)

	smtpCfg := email.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	if err := rabbitmq.DeclareQueues(ch, cfg.RabbitQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	concurrency := workerConcurrency()

	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				var m rabbitmq.DateRangeMessage
				if err := json.Unmarshal(d.Body, &m); err != nil || m.StartDate.IsZero() || m.EndDate.IsZero() {
					log.Printf("worker=%d bad message: %v", workerID, err)
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				if err := notifyDateRange(ctx, gdb, smtpCfg, m); err != nil {
					log.Printf("worker=%d range %s..%s failed cost=%s err=%v",
						workerID, m.StartDate.Format("2006-01-02"), m.EndDate.Format("2006-01-02"), time.Since(start), err)
					_ = d.Nack(false, false)
					continue
				}

				if err := d.Ack(false); err != nil {
					log.Printf("worker=%d ack failed err=%v", workerID, err)
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			jobs <- d
		}
	}
}

// notifyDateRange mails every registered user about a newly published
// supervision window. Individual send failures are logged, not fatal,
// so one bad address cannot poison the whole batch.
func notifyDateRange(ctx context.Context, gdb *gorm.DB, smtpCfg email.SMTPConfig, m rabbitmq.DateRangeMessage) error {
	var users []models.User
	if err := gdb.WithContext(ctx).Where("email <> ''").Find(&users).Error; err != nil {
		return err
	}

	var failed int
	for _, u := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := email.SendSupervisionDateNotification(smtpCfg, u.Email, m.StartDate, m.EndDate); err != nil {
			log.Printf("notify %s: %v", u.Email, err)
			failed++
		}
	}
	log.Printf("date range notified, total=%d failed=%d", len(users), failed)
	return nil
}
