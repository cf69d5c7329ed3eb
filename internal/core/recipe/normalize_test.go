package recipe

import (
	"reflect"
	"testing"
)

func TestNormalizeRecipe(t *testing.T) {
	raw := "```json\n" +
		`{"is_recipe": true, "name": "Salted Water", "time": "5 min",
		  "tags": "Vegan,Easy",
		  "ingredients": "Water||Salt",
		  "steps": "Boil.||Add salt."}` +
		"\n```"

	p := Normalize(raw)
	if p.Kind != PayloadRecipe {
		t.Fatalf("Kind = %v, want %v", p.Kind, PayloadRecipe)
	}
	if p.Recipe.Title != "Salted Water" {
		t.Errorf("Title = %q", p.Recipe.Title)
	}
	if p.Recipe.Time != "5 min" {
		t.Errorf("Time = %q", p.Recipe.Time)
	}
	if want := []string{"Vegan", "Easy"}; !reflect.DeepEqual(p.Recipe.Tags, want) {
		t.Errorf("Tags = %v, want %v", p.Recipe.Tags, want)
	}
	if want := []string{"Water", "Salt"}; !reflect.DeepEqual(p.Recipe.Ingredients, want) {
		t.Errorf("Ingredients = %v, want %v", p.Recipe.Ingredients, want)
	}
	if want := []string{"Boil.", "Add salt."}; !reflect.DeepEqual(p.Recipe.Steps, want) {
		t.Errorf("Steps = %v, want %v", p.Recipe.Steps, want)
	}
}

func TestNormalizeRecipeArrayFields(t *testing.T) {
	raw := `{"is_recipe": true, "name": "Toast",
	         "tags": ["Quick"], "ingredients": ["Bread"], "steps": ["Toast the bread"]}`

	p := Normalize(raw)
	if p.Kind != PayloadRecipe {
		t.Fatalf("Kind = %v, want %v", p.Kind, PayloadRecipe)
	}
	if want := []string{"Toast the bread"}; !reflect.DeepEqual(p.Recipe.Steps, want) {
		t.Errorf("Steps = %v, want %v", p.Recipe.Steps, want)
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "explicit text payload",
			raw:  `{"is_recipe": false, "text": "What cuisine do you like?"}`,
			want: "What cuisine do you like?",
		},
		{
			name: "message field fallback",
			raw:  `{"is_recipe": false, "message": "Tell me more."}`,
			want: "Tell me more.",
		},
		{
			name: "plain prose passes through",
			raw:  "I'm not sure what you mean.",
			want: "I'm not sure what you mean.",
		},
		{
			name: "missing is_recipe treated as text",
			raw:  `{"name": "Soup", "ingredients": ["water"]}`,
			want: `{"name": "Soup", "ingredients": ["water"]}`,
		},
		{
			name: "object with no usable text returns raw",
			raw:  `{"is_recipe": false}`,
			want: `{"is_recipe": false}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Normalize(tt.raw)
			if p.Kind != PayloadText {
				t.Fatalf("Kind = %v, want %v", p.Kind, PayloadText)
			}
			if p.Text != tt.want {
				t.Errorf("Text = %q, want %q", p.Text, tt.want)
			}
		})
	}
}

func TestNormalizeStringTrueFlag(t *testing.T) {
	raw := `{"is_recipe": "true", "name": "Tea", "ingredients": ["water"], "steps": ["steep"]}`
	p := Normalize(raw)
	if p.Kind != PayloadRecipe {
		t.Fatalf("Kind = %v, want %v", p.Kind, PayloadRecipe)
	}
}
