package transition

import (
	"fmt"

	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// DecodePayload returns the action payload as T.
// In-process actions already hold a T; actions decoded from the wire hold
// generic JSON values and are converted field by field using json tags.
func DecodePayload[T any](action domain.Action) (T, error) {
	if v, ok := action.Payload.(T); ok {
		return v, nil
	}
	if p, ok := action.Payload.(*T); ok && p != nil {
		return *p, nil
	}

	var out T
	if err := Decode(action.Payload, &out); err != nil {
		return out, fmt.Errorf("failed to decode payload of %s: %w", action.Type(), err)
	}
	return out, nil
}

// Decode converts generic values (maps from JSON or YAML) into target.
func Decode(input any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
