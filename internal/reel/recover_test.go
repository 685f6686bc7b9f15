package reel

import (
	"errors"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "pureJSON",
			input: `{"a":1}`,
			want:  `{"a":1}`,
		},
		{
			name:  "fencedWithTag",
			input: "```json\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "fencedWithoutTag",
			input: "```\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "fencedUppercaseTag",
			input: "```JSON\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "surroundingProse",
			input: `Sure! {"a":1} Hope that helps.`,
			want:  `{"a":1}`,
		},
		{
			name:  "leadingAndTrailingWhitespace",
			input: "  \n```json\n{\"a\": 1}\n```  \n",
			want:  `{"a": 1}`,
		},
		{
			name:  "nestedObjects",
			input: `Here you go: {"a":{"b":2}} done`,
			want:  `{"a":{"b":2}}`,
		},
		{
			name:    "noBraces",
			input:   "I cannot produce JSON for that topic.",
			wantErr: true,
		},
		{
			name:    "invertedBraces",
			input:   "} nothing here {",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrNoJSON) {
					t.Errorf("error = %v, want ErrNoJSON", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSONIdempotent(t *testing.T) {
	inputs := []string{
		"```json\n{\"a\":1}\n```",
		`Sure! {"a":1} Hope that helps.`,
		`{"topic":"x","nested":{"b":[1,2]}}`,
	}

	for _, input := range inputs {
		first, err := ExtractJSON(input)
		if err != nil {
			t.Fatalf("first pass failed for %q: %v", input, err)
		}
		second, err := ExtractJSON(first)
		if err != nil {
			t.Fatalf("second pass failed for %q: %v", first, err)
		}
		if second != first {
			t.Errorf("second pass changed output: %q -> %q", first, second)
		}
	}
}
