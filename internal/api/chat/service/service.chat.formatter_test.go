package chatsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	aimodels "wa_agent/internal/api/ai/models"
	chatmodels "wa_agent/internal/api/chat/models"
)

type fakeOutgoingStore struct {
	calls      int
	lastBody   string
	lastTokens int
	lastCost   int64
	err        error
}

func (f *fakeOutgoingStore) StoreOutgoingMessage(ctx context.Context, conversationID primitive.ObjectID, body string, tokens int, cost int64) (*chatmodels.Message, error) {
	f.calls++
	f.lastBody = body
	f.lastTokens = tokens
	f.lastCost = cost
	return &chatmodels.Message{ID: primitive.NewObjectID()}, f.err
}

type fakeToucher struct {
	calls int
}

func (f *fakeToucher) TouchLastMessage(ctx context.Context, conversationID primitive.ObjectID) error {
	f.calls++
	return nil
}

func TestFormatAndStoreResponse_LuuDungMotTinDi(t *testing.T) {
	store := &fakeOutgoingStore{}
	toucher := &fakeToucher{}
	formatter := NewResponseFormatter(store, toucher, "Xin lỗi, hệ thống đang bận.")

	reply, ok := formatter.FormatAndStoreResponse(context.Background(), primitive.NewObjectID(), &aimodels.AiResponse{
		Content: "Dạ vâng ạ!",
		Tokens:  50,
		Cost:    1,
	})

	assert.True(t, ok)
	assert.Equal(t, "Dạ vâng ạ!", reply)
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 50, store.lastTokens)
	assert.Equal(t, int64(1), store.lastCost)
	assert.Equal(t, 1, toucher.calls)
}

func TestFormatAndStoreResponse_AiNilDungFallback(t *testing.T) {
	store := &fakeOutgoingStore{}
	formatter := NewResponseFormatter(store, &fakeToucher{}, "Xin lỗi, hệ thống đang bận.")

	reply, ok := formatter.FormatAndStoreResponse(context.Background(), primitive.NewObjectID(), nil)

	assert.False(t, ok)
	assert.Equal(t, "Xin lỗi, hệ thống đang bận.", reply)
	// Không có phản hồi AI thì không lưu tin đi
	assert.Equal(t, 0, store.calls)
}

func TestFormatAndStoreResponse_LoiLuuVanTraReply(t *testing.T) {
	store := &fakeOutgoingStore{err: errors.New("mongo down")}
	formatter := NewResponseFormatter(store, &fakeToucher{}, "fallback")

	reply, ok := formatter.FormatAndStoreResponse(context.Background(), primitive.NewObjectID(), &aimodels.AiResponse{Content: "nội dung"})

	assert.True(t, ok)
	assert.Equal(t, "nội dung", reply)
}

func TestFormatWebhookResponse(t *testing.T) {
	t.Run("thành công", func(t *testing.T) {
		payload := FormatWebhookResponse(&ProcessResult{Processed: true, Reply: "xin chào"}, nil)
		assert.True(t, payload.Success)
		assert.True(t, payload.Processed)
		assert.Equal(t, "xin chào", payload.Reply)
		assert.Empty(t, payload.Error)
	})

	t.Run("lỗi xử lý", func(t *testing.T) {
		payload := FormatWebhookResponse(nil, errors.New("account not found"))
		assert.False(t, payload.Success)
		assert.False(t, payload.Processed)
		assert.Equal(t, "account not found", payload.Error)
	})
}
