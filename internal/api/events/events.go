// Package events cung cấp cơ chế event trung tâm khi dữ liệu thay đổi qua CRUD.
// Các service CRUD không cần override từng method: BaseServiceMongoImpl tự động phát event.
// Logic phản ứng (cảnh báo quota, audit, ...) đăng ký qua OnDataChanged / OnMessageProcessed.
package events

import (
	"context"
	"sync"
)

// OpInsert, OpUpdate, OpUpsert, OpDelete là các loại thao tác CRUD.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// DataChangeEvent mô tả sự kiện thay đổi dữ liệu.
// Document là bản ghi sau khi thay đổi (nil nếu delete).
type DataChangeEvent struct {
	CollectionName string
	Operation      string
	Document       interface{}
}

// DataChangeHandler xử lý sự kiện thay đổi dữ liệu.
type DataChangeHandler func(ctx context.Context, e DataChangeEvent)

// MessageProcessedEvent mô tả kết quả xử lý một tin nhắn inbound qua pipeline.
// Phát sau khi pipeline chạy xong (kể cả khi thất bại) để audit log và cảnh báo quota
// không nằm trên đường xử lý chính.
type MessageProcessedEvent struct {
	SessionID      string
	ConversationID string
	CorrelationID  string
	Status         string // completed | failed
	BillingMode    string // subscription | wallet | none
	TokensUsed     int64
	Cost           int64
	QuotaRemaining int64 // -1 nếu không áp dụng (wallet hoặc failed)
	QuotaLimit     int64 // -1 nếu không áp dụng
	FailReason     string
}

// MessageProcessedHandler xử lý sự kiện tin nhắn đã qua pipeline.
type MessageProcessedHandler func(ctx context.Context, e MessageProcessedEvent)

var (
	handlersMu        sync.RWMutex
	dataHandlers      []DataChangeHandler
	processedHandlers []MessageProcessedHandler
)

// OnDataChanged đăng ký handler. Gọi khi init.
func OnDataChanged(h DataChangeHandler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	dataHandlers = append(dataHandlers, h)
}

// OnMessageProcessed đăng ký handler cho sự kiện pipeline hoàn tất.
func OnMessageProcessed(h MessageProcessedHandler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	processedHandlers = append(processedHandlers, h)
}

// EmitDataChanged phát sự kiện. Gọi từ BaseServiceMongoImpl sau mỗi CRUD thành công.
// Mỗi handler chạy trong goroutine riêng, panic được recover để không ảnh hưởng handler khác.
func EmitDataChanged(ctx context.Context, e DataChangeEvent) {
	handlersMu.RLock()
	list := make([]DataChangeHandler, len(dataHandlers))
	copy(list, dataHandlers)
	handlersMu.RUnlock()

	for _, h := range list {
		go func(fn DataChangeHandler) {
			defer func() {
				if r := recover(); r != nil {
					// Log panic nhưng không làm sập app
					// Logger có thể chưa init khi event chạy sớm
					_ = r
				}
			}()
			fn(ctx, e)
		}(h)
	}
}

// EmitMessageProcessed phát sự kiện pipeline hoàn tất. Gọi từ orchestrator.
func EmitMessageProcessed(ctx context.Context, e MessageProcessedEvent) {
	handlersMu.RLock()
	list := make([]MessageProcessedHandler, len(processedHandlers))
	copy(list, processedHandlers)
	handlersMu.RUnlock()

	for _, h := range list {
		go func(fn MessageProcessedHandler) {
			defer func() {
				if r := recover(); r != nil {
					_ = r
				}
			}()
			fn(ctx, e)
		}(h)
	}
}

// ResetForTest xóa toàn bộ handler đã đăng ký (chỉ dùng trong test).
func ResetForTest() {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	dataHandlers = nil
	processedHandlers = nil
}
