package gcs

import (
	"encoding/json"
	"iter"
)

// DataView is any response wrapper exposing a resolved data view.
type DataView interface {
	Data() interface{}
}

// ItemsView is any response wrapper exposing an item sequence.
type ItemsView interface {
	Items() iter.Seq[interface{}]
}

// DecodeData re-encodes the resolved data view and unmarshals it into T.
// It is the bridge from the dynamic envelope world back into typed documents
// (e.g. CollectionDocument) when key-by-key access is not enough.
func DecodeData[T any](view DataView) (T, error) {
	var out T
	raw, err := json.Marshal(view.Data())
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

// DecodeItems decodes every element of the response's item sequence into T.
// Unlike unpacking, this is strict: one malformed element fails the whole
// decode.
func DecodeItems[T any](view ItemsView) ([]T, error) {
	var out []T
	for item := range view.Items() {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		var one T
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, err
		}
		out = append(out, one)
	}
	return out, nil
}
