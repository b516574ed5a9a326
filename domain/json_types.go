package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONObject is a free-form JSON object persisted as TEXT.
type JSONObject map[string]interface{}

func (t JSONObject) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (t *JSONObject) Scan(v interface{}) error {
	if v == nil {
		*t = nil
		return nil
	}
	jsonString, err := scanJSONString(v)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(jsonString), t)
}

// JSONList is a free-form JSON array of objects persisted as TEXT.
type JSONList []map[string]interface{}

func (t JSONList) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (t *JSONList) Scan(v interface{}) error {
	if v == nil {
		*t = nil
		return nil
	}
	jsonString, err := scanJSONString(v)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(jsonString), t)
}

func scanJSONString(v interface{}) (string, error) {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return "", fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return jsonString, nil
}
