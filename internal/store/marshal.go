package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/uisync/internal/state"
)

// marshalSnapshot converts a snapshot to canonical JSON TEXT for storage.
func marshalSnapshot(s state.Snapshot) (string, error) {
	data, err := state.MarshalCanonical(state.SnapshotValue(s))
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(data), nil
}

// marshalEffect converts an effect to canonical JSON TEXT for storage.
func marshalEffect(e state.Effect) (string, error) {
	data, err := state.MarshalCanonical(state.EffectValue(e))
	if err != nil {
		return "", fmt.Errorf("marshal effect: %w", err)
	}
	return string(data), nil
}

// marshalNames stores a route name list as a canonical JSON array.
func marshalNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	data, err := state.MarshalCanonical(names)
	if err != nil {
		return "", fmt.Errorf("marshal names: %w", err)
	}
	return string(data), nil
}

// unmarshalSnapshot parses stored JSON back into a snapshot.
// Numbers decode as json.Number so integer params keep their precision
// and re-canonicalize to the same bytes.
func unmarshalSnapshot(data string) (state.Snapshot, error) {
	var s state.Snapshot
	if err := decodeJSON(data, &s); err != nil {
		return state.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return s, nil
}

func unmarshalEffect(data string) (state.Effect, error) {
	var e state.Effect
	if err := decodeJSON(data, &e); err != nil {
		return state.Effect{}, fmt.Errorf("unmarshal effect: %w", err)
	}
	return e, nil
}

func unmarshalNames(data string) ([]string, error) {
	names := []string{}
	if data == "" {
		return names, nil
	}
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("unmarshal names: %w", err)
	}
	return names, nil
}

func decodeJSON(data string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	return dec.Decode(v)
}
