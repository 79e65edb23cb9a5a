package database

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	billingmodels "wa_agent/internal/api/billing/models"
	"wa_agent/internal/global"
)

func testColNames() global.MongoDB_CollectionName {
	return global.MongoDB_CollectionName{
		Accounts:             "accounts",
		Conversations:        "conversations",
		Messages:             "messages",
		BillingSubscriptions: "billing_subscriptions",
		BillingWallets:       "billing_wallets",
		BillingPackages:      "billing_packages",
		AIUsageLogs:          "ai_usage_logs",
		WebhookLogs:          "webhook_logs",
	}
}

// bsonFieldSet thu thập bson tag của một model để đối chiếu với key của index
func bsonFieldSet(t *testing.T, model interface{}) map[string]bool {
	t.Helper()
	fields := map[string]bool{}
	modelType := reflect.TypeOf(model)
	for i := 0; i < modelType.NumField(); i++ {
		tag := modelType.Field(i).Tag.Get("bson")
		if tag == "" || tag == "-" {
			continue
		}
		fields[strings.Split(tag, ",")[0]] = true
	}
	return fields
}

func indexByName(t *testing.T, models []mongo.IndexModel, name string) mongo.IndexModel {
	t.Helper()
	for _, model := range models {
		if model.Options != nil && model.Options.Name != nil && *model.Options.Name == name {
			return model
		}
	}
	t.Fatalf("không tìm thấy index %s", name)
	return mongo.IndexModel{}
}

// Index cho worker quét subscription hết hạn phải dùng đúng bson field endAt
// của model, lệch tên thì ExpireOverdue vẫn chạy nhưng thành collection scan.
func TestIndexModels_SubscriptionExpiryScanDungTenTruong(t *testing.T) {
	names := testColNames()
	specs := indexModels(names)

	scan := indexByName(t, specs[names.BillingSubscriptions], "subscription_status_end")
	require.Equal(t, bson.D{
		{Key: "status", Value: 1},
		{Key: "endAt", Value: 1},
	}, scan.Keys)
}

func TestIndexModels_KeyKhopBsonTagCuaModel(t *testing.T) {
	names := testColNames()
	specs := indexModels(names)
	subscriptionFields := bsonFieldSet(t, billingmodels.Subscription{})

	for _, model := range specs[names.BillingSubscriptions] {
		keys, ok := model.Keys.(bson.D)
		require.True(t, ok)
		for _, key := range keys {
			assert.True(t, subscriptionFields[key.Key],
				"key %q không phải bson field của Subscription", key.Key)
		}
	}
}

func TestIndexModels_TenIndexKhongTrung(t *testing.T) {
	specs := indexModels(testColNames())

	seen := map[string]bool{}
	for _, models := range specs {
		for _, model := range models {
			require.NotNil(t, model.Options)
			require.NotNil(t, model.Options.Name)
			assert.False(t, seen[*model.Options.Name], "index %s bị khai báo hai lần", *model.Options.Name)
			seen[*model.Options.Name] = true
		}
	}
}
