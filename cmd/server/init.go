package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"wa_agent/config"
	"wa_agent/internal/database"
	"wa_agent/internal/global"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.Accounts = "accounts"
	global.MongoDB_ColNames.Conversations = "conversations"
	global.MongoDB_ColNames.Messages = "messages"
	global.MongoDB_ColNames.BillingSubscriptions = "billing_subscriptions"
	global.MongoDB_ColNames.BillingWallets = "billing_wallets"
	global.MongoDB_ColNames.BillingPackages = "billing_packages"
	global.MongoDB_ColNames.AIUsageLogs = "ai_usage_logs"
	global.MongoDB_ColNames.WebhookLogs = "webhook_logs"

	logrus.Info("Initialized collection names")
}

// Hàm khởi tạo validator (dùng global.InitValidator để đăng ký custom validators: no_xss, exists, phone_digits)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.ServerConfig = config.NewConfig()
	if global.ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối database và các index
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	db := global.MongoDB_Session.Database(global.ServerConfig.MongoDB_DBName)
	if err := database.CreateIndexes(context.TODO(), db); err != nil {
		logrus.Fatalf("Failed to create indexes: %v", err)
	}
	logrus.Info("Ensured database indexes")
}
