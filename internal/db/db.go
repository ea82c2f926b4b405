package db

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/curlben/msuas-server/internal/call"
	"github.com/curlben/msuas-server/internal/chat"
	"github.com/curlben/msuas-server/internal/models"
	"github.com/curlben/msuas-server/internal/report"
	"github.com/curlben/msuas-server/internal/supervision"
)

func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	return gdb
}

func Migrate(gdb *gorm.DB) {
	if err := gdb.AutoMigrate(
		&models.Course{},
		&models.Level{},
		&models.Fee{},
		&models.User{},
		&models.Internship{},
		&models.SupervisionDate{},
		&supervision.Supervision{},
		&chat.Chat{},
		&chat.Message{},
		&call.Call{},
		&report.Report{},
	); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
}
