package matcher

import (
	"reflect"
	"testing"

	"meal-matcher/internal/core/catalog"
)

func TestFitness(t *testing.T) {
	tests := []struct {
		name   string
		recipe catalog.Recipe
		inv    Inventory
		want   float64
	}{
		{"all present", riceChicken(), Inventory{"rice": 2, "chicken": 1}, 1},
		{"half present", riceChicken(), Inventory{"chicken": 1}, 0.5},
		{"none present", riceChicken(), Inventory{"beef": 1}, 0},
		{"empty recipe", catalog.Recipe{Name: "Air"}, Inventory{"rice": 1}, 0},
		{"empty inventory", riceChicken(), Inventory{}, 0},
		{
			"duplicate components count once",
			recipe("Double", 1, nil, []string{"rice", "rice", "salt"}, 1, 1, 1),
			Inventory{"rice": 5},
			1.0 / 3.0,
		},
		{
			"case and whitespace insensitive",
			recipe("Mixed", 1, nil, []string{" Rice ", "CHICKEN"}, 1, 1),
			Inventory{"rice": 1, "chicken": 1},
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fitness(tt.recipe, tt.inv)
			if got != tt.want {
				t.Errorf("Fitness = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("Fitness out of range: %v", got)
			}
		})
	}
}

func TestMissingComponents(t *testing.T) {
	r := recipe("Stew", 1, nil, []string{"beef", "potato", "beef", "Carrot"}, 1, 1, 1, 1)

	got := MissingComponents(r, Inventory{"potato": 1})
	want := []string{"beef", "carrot"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MissingComponents = %v, want %v", got, want)
	}

	if got := MissingComponents(r, Inventory{"beef": 1, "potato": 1, "carrot": 1}); len(got) != 0 {
		t.Errorf("expected nothing missing, got %v", got)
	}
}

func TestNormalizeInventory(t *testing.T) {
	got := NormalizeInventory(map[string]float64{
		" Rice":  1,
		"rice":   2,
		`"Salt"`: 0.5,
		"   ":    3,
	})

	want := Inventory{"rice": 3, "salt": 0.5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeInventory = %v, want %v", got, want)
	}
}
