package utils

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// UnmarshalJson converts a message payload into T. Payloads decoded from the
// wire are generic maps and go through json, raw json is decoded as is.
func UnmarshalJson[T any](v any) (T, error) {
	var result T
	switch v := v.(type) {
	case nil:
		return result, errors.New("empty payload")
	case T:
		return v, nil
	case jsoniter.RawMessage:
		if err := jsoniter.Unmarshal(v, &result); err != nil {
			return result, errors.WithMessage(err, "unmarshal json")
		}
		return result, nil
	}
	data, err := jsoniter.Marshal(v)
	if err != nil {
		return result, errors.WithMessage(err, "marshal json")
	}
	if err := jsoniter.Unmarshal(data, &result); err != nil {
		return result, errors.WithMessage(err, "unmarshal json")
	}
	return result, nil
}
