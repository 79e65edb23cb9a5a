package utility

import (
	"go.mongodb.org/mongo-driver/bson"
)

// ToMap chuyển đổi một struct sang map[string]interface{} thông qua bson marshal.
// Dùng cho các update operation cần map thay vì struct.
func ToMap(input interface{}) (map[string]interface{}, error) {
	data, err := bson.Marshal(input)
	if err != nil {
		return nil, err
	}

	var result map[string]interface{}
	if err := bson.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return result, nil
}
