// Package worker - SubscriptionExpiryWorker đánh dấu các subscription quá hạn
// là expired theo chu kỳ. Query subscription đang hoạt động luôn lọc thêm theo
// endAt nên tính đúng đắn không phụ thuộc thời điểm worker chạy; status lưu
// trong DB chỉ là cache của trạng thái suy ra từ thời gian.
package worker

import (
	"context"
	"time"

	billingsvc "wa_agent/internal/api/billing/service"
	"wa_agent/internal/logger"
)

// SubscriptionExpiryWorker worker đánh dấu subscription hết hạn định kỳ
type SubscriptionExpiryWorker struct {
	subscriptionService *billingsvc.SubscriptionService
	interval            time.Duration // Khoảng thời gian giữa các lần chạy
}

// NewSubscriptionExpiryWorker tạo mới SubscriptionExpiryWorker
// Tham số:
//   - interval: Khoảng thời gian giữa các lần chạy (mặc định: 10 phút)
func NewSubscriptionExpiryWorker(interval time.Duration) (*SubscriptionExpiryWorker, error) {
	subscriptionService, err := billingsvc.NewSubscriptionService()
	if err != nil {
		return nil, err
	}
	if interval < time.Minute {
		interval = 10 * time.Minute
	}
	return &SubscriptionExpiryWorker{
		subscriptionService: subscriptionService,
		interval:            interval,
	}, nil
}

// Start chạy worker trong vòng lặp cho đến khi context bị cancel
func (w *SubscriptionExpiryWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithField("interval", w.interval.String()).Info("⏰ [SUBSCRIPTION_EXPIRY] Starting Subscription Expiry Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("⏰ [SUBSCRIPTION_EXPIRY] Subscription Expiry Worker stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("⏰ [SUBSCRIPTION_EXPIRY] Panic khi đánh dấu subscription hết hạn, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()

				expiredCount, err := w.subscriptionService.ExpireOverdue(ctx)
				if err != nil {
					log.WithError(err).Error("⏰ [SUBSCRIPTION_EXPIRY] Failed to expire overdue subscriptions")
					return
				}

				if expiredCount > 0 {
					log.WithField("expiredCount", expiredCount).Info("⏰ [SUBSCRIPTION_EXPIRY] Marked overdue subscriptions as expired")
				}
				// expiredCount = 0 thì không log (giảm log noise)
			}()
		}
	}
}
