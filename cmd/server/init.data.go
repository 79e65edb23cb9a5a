package main

import (
	"context"

	billingmodels "wa_agent/internal/api/billing/models"
	billingsvc "wa_agent/internal/api/billing/service"
	"wa_agent/internal/logger"
)

// defaultPackages là danh sách gói cước mặc định, seed idempotent theo tên gói
var defaultPackages = []billingmodels.Package{
	{
		Name:          "free",
		Description:   "Gói dùng thử, giới hạn tin nhắn AI mỗi tháng",
		Price:         0,
		MessagesLimit: 100,
		ContextLimit:  5,
		AccountsLimit: 1,
		DurationDays:  30,
		IsActive:      true,
	},
	{
		Name:          "starter",
		Description:   "Gói cơ bản cho shop nhỏ",
		Price:         99000,
		MessagesLimit: 2000,
		ContextLimit:  10,
		AccountsLimit: 2,
		DurationDays:  30,
		IsActive:      true,
	},
	{
		Name:          "business",
		Description:   "Gói cho doanh nghiệp, nhiều agent đồng thời",
		Price:         499000,
		MessagesLimit: 20000,
		ContextLimit:  20,
		AccountsLimit: 10,
		DurationDays:  30,
		IsActive:      true,
	},
}

func InitDefaultData() {
	log := logger.GetAppLogger()
	log.Info("🔄 [INIT] Starting InitDefaultData...")

	packageService, err := billingsvc.NewPackageService()
	if err != nil {
		log.Fatalf("Failed to initialize package service: %v", err)
	}

	// Seed các gói cước mặc định (upsert theo name, chạy lặp lại không tạo bản ghi trùng)
	for _, pkg := range defaultPackages {
		seeded, err := packageService.SeedDefault(context.TODO(), pkg)
		if err != nil {
			log.WithError(err).Errorf("❌ [INIT] Failed to seed package %s", pkg.Name)
			continue
		}
		log.Infof("✅ [INIT] Package %s ready (ID: %s)", seeded.Name, seeded.ID.Hex())
	}

	log.Info("✅ [INIT] InitDefaultData completed")
}
