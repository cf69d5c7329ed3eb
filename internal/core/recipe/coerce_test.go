package recipe

import (
	"reflect"
	"testing"
)

func TestCoerceStrings(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  []string
	}{
		{
			name:  "string slice passes through",
			value: []string{" a ", "b"},
			want:  []string{" a ", "b"},
		},
		{
			name:  "interface slice stringified",
			value: []interface{}{"a", "b"},
			want:  []string{"a", "b"},
		},
		{
			name:  "json array string",
			value: `["Boil water", "Add salt"]`,
			want:  []string{"Boil water", "Add salt"},
		},
		{
			name:  "double pipe delimiter",
			value: "Boil water||Add salt||Serve",
			want:  []string{"Boil water", "Add salt", "Serve"},
		},
		{
			name:  "double pipe wins over comma",
			value: "a||b,c",
			want:  []string{"a", "b,c"},
		},
		{
			name:  "literal backslash n",
			value: `Boil water\nAdd salt`,
			want:  []string{"Boil water", "Add salt"},
		},
		{
			name:  "real newline",
			value: "Boil water\nAdd salt",
			want:  []string{"Boil water", "Add salt"},
		},
		{
			name:  "comma without period splits",
			value: "flour, eggs, milk",
			want:  []string{"flour", "eggs", "milk"},
		},
		{
			name:  "period suppresses comma split",
			value: "1 cup flour, sifted.",
			want:  []string{"1 cup flour, sifted."},
		},
		{
			name:  "plain string single element",
			value: "just one thing",
			want:  []string{"just one thing"},
		},
		{
			name:  "blank segments dropped",
			value: "a|| ||b",
			want:  []string{"a", "b"},
		},
		{
			name:  "empty string falls back",
			value: "",
			want:  []string{},
		},
		{
			name:  "nil falls back",
			value: nil,
			want:  []string{},
		},
		{
			name:  "number falls back",
			value: 42,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceStrings(tt.value)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CoerceStrings(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestCoerceStringsIdempotent(t *testing.T) {
	once := CoerceStrings("Boil water||Add salt")
	twice := CoerceStrings(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("coercing an already-coerced value changed it: %v -> %v", once, twice)
	}
}

func TestCoerceStringsOrFallback(t *testing.T) {
	fallback := []string{"default"}
	got := CoerceStringsOr(map[string]interface{}{}, fallback)
	if !reflect.DeepEqual(got, fallback) {
		t.Errorf("CoerceStringsOr = %v, want fallback %v", got, fallback)
	}
}
