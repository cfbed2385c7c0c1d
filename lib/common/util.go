package common

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
)

func GenerateUUID() string {
	return uuid.New().String()
}

func GetENVValue(key, defaultValue string) (v string) {
	var found bool
	if v, found = os.LookupEnv(key); !found {
		return defaultValue
	}

	return
}

func EncodeJSONValue(o interface{}) ([]byte, error) {
	return json.Marshal(o)
}

func DecodeJSONValue(b []byte, v interface{}) error {
	return json.Unmarshal(b, v)
}

func JSONMarshalIndent(o interface{}) ([]byte, error) {
	return json.MarshalIndent(o, "", "  ")
}

func InStringArray(a []string, s string) (index int, found bool) {
	var h string
	for index, h = range a {
		found = h == s
		if found {
			return
		}
	}

	index = -1
	return
}

func IsExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func IsNotExists(path string) bool {
	_, err := os.Stat(path)
	return os.IsNotExist(err)
}
