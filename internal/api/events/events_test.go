package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Handler chạy trong goroutine riêng nên test nhận kết quả qua channel có timeout.
func waitEvent[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("handler không được gọi trong thời gian chờ")
		var zero T
		return zero
	}
}

func TestEmitMessageProcessed_GoiTatCaHandler(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	first := make(chan MessageProcessedEvent, 1)
	second := make(chan MessageProcessedEvent, 1)
	OnMessageProcessed(func(ctx context.Context, e MessageProcessedEvent) { first <- e })
	OnMessageProcessed(func(ctx context.Context, e MessageProcessedEvent) { second <- e })

	sent := MessageProcessedEvent{
		SessionID:   "session-1",
		Status:      "completed",
		BillingMode: "subscription",
		TokensUsed:  40,
	}
	EmitMessageProcessed(context.Background(), sent)

	got := waitEvent(t, first)
	assert.Equal(t, sent, got)
	got = waitEvent(t, second)
	assert.Equal(t, sent, got)
}

func TestEmitDataChanged_HandlerPanicKhongLanSangHandlerKhac(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	received := make(chan DataChangeEvent, 1)
	OnDataChanged(func(ctx context.Context, e DataChangeEvent) { panic("hỏng") })
	OnDataChanged(func(ctx context.Context, e DataChangeEvent) { received <- e })

	EmitDataChanged(context.Background(), DataChangeEvent{
		CollectionName: "messages",
		Operation:      OpInsert,
	})

	got := waitEvent(t, received)
	require.Equal(t, "messages", got.CollectionName)
	assert.Equal(t, OpInsert, got.Operation)
}

func TestResetForTest_XoaHetHandlerDaDangKy(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	received := make(chan MessageProcessedEvent, 1)
	OnMessageProcessed(func(ctx context.Context, e MessageProcessedEvent) { received <- e })

	ResetForTest()
	EmitMessageProcessed(context.Background(), MessageProcessedEvent{SessionID: "session-1"})

	select {
	case <-received:
		t.Fatal("handler vẫn được gọi sau khi reset")
	case <-time.After(100 * time.Millisecond):
	}
}
