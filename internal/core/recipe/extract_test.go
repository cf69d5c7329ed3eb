package recipe

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		wantOK bool
		check  func(t *testing.T, m map[string]interface{})
	}{
		{
			name:   "bare object",
			text:   `{"is_recipe": true, "name": "Toast"}`,
			wantOK: true,
			check: func(t *testing.T, m map[string]interface{}) {
				if m["name"] != "Toast" {
					t.Errorf("name = %v, want Toast", m["name"])
				}
			},
		},
		{
			name:   "fenced json block",
			text:   "```json\n{\"is_recipe\": false, \"text\": \"hi\"}\n```",
			wantOK: true,
			check: func(t *testing.T, m map[string]interface{}) {
				if m["text"] != "hi" {
					t.Errorf("text = %v, want hi", m["text"])
				}
			},
		},
		{
			name:   "prose around object",
			text:   "Sure! Here is your recipe:\n```json\n{\"name\": \"Soup\"}\n```\nEnjoy!",
			wantOK: true,
			check: func(t *testing.T, m map[string]interface{}) {
				if m["name"] != "Soup" {
					t.Errorf("name = %v, want Soup", m["name"])
				}
			},
		},
		{
			name:   "nested braces survive greedy slice",
			text:   `prefix {"outer": {"inner": 1}} suffix`,
			wantOK: true,
			check: func(t *testing.T, m map[string]interface{}) {
				if _, ok := m["outer"].(map[string]interface{}); !ok {
					t.Errorf("outer = %v, want object", m["outer"])
				}
			},
		},
		{
			name:   "plain prose",
			text:   "I cannot help with that.",
			wantOK: false,
		},
		{
			name:   "empty input",
			text:   "",
			wantOK: false,
		},
		{
			name:   "braces but not json",
			text:   "set {x} to {y}",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := ExtractJSON(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ExtractJSON(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if tt.check != nil {
				tt.check(t, m)
			}
		})
	}
}

func TestCleanModelText(t *testing.T) {
	got := cleanModelText("```json\n{\"a\": 1}\n```")
	want := `{"a": 1}`
	if got != want {
		t.Errorf("cleanModelText = %q, want %q", got, want)
	}
}
