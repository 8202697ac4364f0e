package hydrate

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

type preferences struct {
	Theme   string         `json:"theme"`
	Volume  int            `json:"volume"`
	Enabled bool           `json:"enabled"`
	Tags    []string       `json:"tags"`
	Extra   map[string]any `json:"extra,omitempty"`
}

func TestDecoderCases(t *testing.T) {
	cases := []struct {
		name    string
		opts    []Option[preferences]
		payload map[string]any
		want    preferences
		wantErr string
	}{
		{
			name: "maps json tags",
			payload: map[string]any{
				"theme":   "dark",
				"volume":  int64(7),
				"enabled": true,
				"tags":    []any{"a", "b"},
			},
			want: preferences{Theme: "dark", Volume: 7, Enabled: true, Tags: []string{"a", "b"}},
		},
		{
			name:    "nil payload decodes to zero value",
			payload: nil,
			want:    preferences{},
		},
		{
			name:    "unknown keys ignored by default",
			payload: map[string]any{"theme": "light", "legacy": 1},
			want:    preferences{Theme: "light"},
		},
		{
			name:    "strict rejects unknown keys",
			opts:    []Option[preferences]{WithStrict[preferences]()},
			payload: map[string]any{"theme": "light", "legacy": 1},
			wantErr: "unknown field",
		},
		{
			name:    "type mismatch reports the entry",
			payload: map[string]any{"volume": "loud"},
			wantErr: "hydrate: decode store_state_prefs:1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decoder := NewDecoder(tc.opts...)
			got, err := decoder.Decode(Context{Store: "prefs", Key: "store_state_prefs:1"}, tc.payload)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(tc.want, got) {
				t.Fatalf("decoded mismatch:\nwant: %#v\n got: %#v", tc.want, got)
			}
		})
	}
}

func TestDecodeDoesNotMutatePayload(t *testing.T) {
	payload := map[string]any{"tags": []any{"x"}}
	if _, err := NewDecoder[preferences]().Decode(Context{}, payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	tags := payload["tags"].([]any)
	if len(tags) != 1 || tags[0] != "x" {
		t.Fatalf("payload mutated: %#v", payload)
	}
}

func TestFlattenKeepsNumbersExact(t *testing.T) {
	out, err := Flatten(preferences{Theme: "dark", Volume: 3})
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if out["volume"] != json.Number("3") {
		t.Fatalf("expected json.Number 3, got %#v", out["volume"])
	}
	if _, ok := out["extra"]; ok {
		t.Fatalf("omitempty field should be absent: %#v", out)
	}
}

func TestFlattenRejectsNonObjects(t *testing.T) {
	if _, err := Flatten([]int{1, 2}); err == nil {
		t.Fatalf("expected error for list input")
	}
	if _, err := Flatten(nil); err == nil {
		t.Fatalf("expected error for nil input")
	}
}
