package worker

import (
	"context"
	"time"

	webhooksvc "wa_agent/internal/api/webhook/service"
	"wa_agent/internal/logger"
)

// WebhookLogCleanupWorker worker dọn webhook log cũ để collection audit
// không phình vô hạn
type WebhookLogCleanupWorker struct {
	webhookLogService *webhooksvc.WebhookLogService
	interval          time.Duration // Khoảng thời gian giữa các lần chạy
	retention         time.Duration // Giữ log trong khoảng thời gian này
}

// NewWebhookLogCleanupWorker tạo mới WebhookLogCleanupWorker
// Tham số:
//   - interval: Khoảng thời gian giữa các lần chạy (mặc định: 6 giờ)
//   - retention: Thời gian giữ log (mặc định: 30 ngày)
func NewWebhookLogCleanupWorker(interval, retention time.Duration) (*WebhookLogCleanupWorker, error) {
	webhookLogService, err := webhooksvc.NewWebhookLogService()
	if err != nil {
		return nil, err
	}
	if interval < time.Hour {
		interval = 6 * time.Hour
	}
	if retention < 24*time.Hour {
		retention = 30 * 24 * time.Hour
	}
	return &WebhookLogCleanupWorker{
		webhookLogService: webhookLogService,
		interval:          interval,
		retention:         retention,
	}, nil
}

// Start chạy worker trong vòng lặp cho đến khi context bị cancel
func (w *WebhookLogCleanupWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval":  w.interval.String(),
		"retention": w.retention.String(),
	}).Info("🧹 [WEBHOOK_CLEANUP] Starting Webhook Log Cleanup Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("🧹 [WEBHOOK_CLEANUP] Webhook Log Cleanup Worker stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🧹 [WEBHOOK_CLEANUP] Panic khi dọn webhook log, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()

				prunedCount, err := w.webhookLogService.PruneOlderThan(ctx, w.retention)
				if err != nil {
					log.WithError(err).Error("🧹 [WEBHOOK_CLEANUP] Failed to prune webhook logs")
					return
				}

				if prunedCount > 0 {
					log.WithField("prunedCount", prunedCount).Info("🧹 [WEBHOOK_CLEANUP] Pruned old webhook logs")
				}
			}()
		}
	}
}
