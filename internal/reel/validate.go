package reel

import (
	"encoding/json"
	"fmt"
)

const (
	hookCount    = 6
	hashtagCount = 8
	maxBeats     = 8
)

// ParsePackage parses candidate JSON and checks it against the package
// contract: required keys, primitive types, and exact cardinalities.
// Non-conformant results are rejected outright, never truncated or padded.
// Content itself (dates, quotes) is not verified here.
func ParsePackage(candidate string) (*Package, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return nil, fmt.Errorf("parse package: %w", err)
	}

	pkg := &Package{}

	for _, f := range []struct {
		key string
		dst *string
	}{
		{"topic", &pkg.Topic},
		{"mode", &pkg.Mode},
		{"language", &pkg.Language},
		{"tone", &pkg.Tone},
		{"goal", &pkg.Goal},
		{"caption", &pkg.Caption},
		{"cta", &pkg.CTA},
	} {
		s, err := stringField(fields, f.key)
		if err != nil {
			return nil, err
		}
		*f.dst = s
	}

	raw, ok := fields["length_seconds"]
	if !ok {
		return nil, fmt.Errorf("missing key %q", "length_seconds")
	}
	if err := json.Unmarshal(raw, &pkg.LengthSeconds); err != nil {
		return nil, fmt.Errorf("key %q: expected number", "length_seconds")
	}
	if !validLengths[pkg.LengthSeconds] {
		return nil, fmt.Errorf("length_seconds: %d is not one of 30/45/60", pkg.LengthSeconds)
	}

	hooks, err := stringListField(fields, "hooks")
	if err != nil {
		return nil, err
	}
	if len(hooks) != hookCount {
		return nil, fmt.Errorf("hooks: expected exactly %d, got %d", hookCount, len(hooks))
	}
	pkg.Hooks = hooks

	hashtags, err := stringListField(fields, "hashtags")
	if err != nil {
		return nil, err
	}
	if len(hashtags) != hashtagCount {
		return nil, fmt.Errorf("hashtags: expected exactly %d, got %d", hashtagCount, len(hashtags))
	}
	pkg.Hashtags = hashtags

	beats, err := beatsField(fields)
	if err != nil {
		return nil, err
	}
	pkg.ScriptBeats = beats

	return pkg, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("missing key %q", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("key %q: expected string", key)
	}
	return s, nil
}

func stringListField(fields map[string]json.RawMessage, key string) ([]string, error) {
	raw, ok := fields[key]
	if !ok {
		return nil, fmt.Errorf("missing key %q", key)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("key %q: expected array of strings", key)
	}
	return list, nil
}

func beatsField(fields map[string]json.RawMessage) ([]Beat, error) {
	raw, ok := fields["script_beats"]
	if !ok {
		return nil, fmt.Errorf("missing key %q", "script_beats")
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("key %q: expected array of beat objects", "script_beats")
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("script_beats: empty")
	}
	if len(items) > maxBeats {
		return nil, fmt.Errorf("script_beats: expected at most %d, got %d", maxBeats, len(items))
	}

	beats := make([]Beat, len(items))
	for i, item := range items {
		for _, f := range []struct {
			key string
			dst *string
		}{
			{"t", &beats[i].Timestamp},
			{"visual", &beats[i].Visual},
			{"voiceover", &beats[i].Voiceover},
			{"on_screen_text", &beats[i].OnScreenText},
		} {
			s, err := stringField(item, f.key)
			if err != nil {
				return nil, fmt.Errorf("script_beats[%d]: %w", i, err)
			}
			*f.dst = s
		}
	}

	return beats, nil
}
