package matcher

import (
	"context"
	"math"
	"testing"

	"meal-matcher/internal/core/catalog"
)

func TestAdjust_WorkedExamples(t *testing.T) {
	t.Run("full inventory", func(t *testing.T) {
		inv := Inventory{"rice": 2, "chicken": 1}
		adj := Adjust(riceChicken(), inv, 1, nil, nil)
		if !adj.Feasible() {
			t.Fatalf("expected feasible, got %q", adj.Reason)
		}
		if adj.Recipe.Scale != 1 || adj.Recipe.NumPeople != 1 {
			t.Errorf("scale=%v people=%d, want 1 and 1", adj.Recipe.Scale, adj.Recipe.NumPeople)
		}
		if got := Fitness(adj.Recipe.recipe(), inv); got != 1 {
			t.Errorf("fitness = %v, want 1", got)
		}
		if adj.Recipe.ExcessComponents["rice"] != 1 {
			t.Errorf("rice excess = %v, want 1", adj.Recipe.ExcessComponents["rice"])
		}
		if _, ok := adj.Recipe.ExcessComponents["chicken"]; ok {
			t.Errorf("chicken fully used, should not be excess")
		}
	})

	t.Run("unscored ingredient", func(t *testing.T) {
		adj := Adjust(riceChicken(), Inventory{"chicken": 1}, 1, nil, nil)
		if !adj.Feasible() {
			t.Fatalf("expected feasible, got %q", adj.Reason)
		}
		if adj.Recipe.Scale != 1 {
			t.Errorf("scale = %v, want 1", adj.Recipe.Scale)
		}
	})

	t.Run("too few servings", func(t *testing.T) {
		adj := Adjust(riceChicken(), Inventory{"rice": 2, "chicken": 1}, 2, nil, nil)
		if adj.Reason != ReasonInsufficientServings {
			t.Fatalf("reason = %q, want %q", adj.Reason, ReasonInsufficientServings)
		}
	})
}

func TestAdjust_Infeasible(t *testing.T) {
	tests := []struct {
		name    string
		recipe  catalog.Recipe
		inv     Inventory
		target  int
		maxTime *int
		used    map[string]float64
		want    InfeasibleReason
	}{
		{
			name:   "missing primary",
			recipe: riceChicken(),
			inv:    Inventory{"rice": 10},
			target: 1,
			want:   ReasonMissingPrimary,
		},
		{
			name:    "over time",
			recipe:  withDuration(riceChicken(), 30),
			inv:     Inventory{"rice": 2, "chicken": 1},
			target:  1,
			maxTime: catalog.Int(20),
			want:    ReasonOverTime,
		},
		{
			name:   "used up by earlier steps",
			recipe: riceChicken(),
			inv:    Inventory{"rice": 2, "chicken": 1},
			target: 1,
			used:   map[string]float64{"chicken": 0.5},
			want:   ReasonInsufficientServings,
		},
		{
			name:   "no quantity overlaps inventory",
			recipe: recipe("Plain", 4, nil, []string{"flour"}, 1),
			inv:    Inventory{"sugar": 1},
			target: 1,
			want:   ReasonInsufficientServings,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj := Adjust(tt.recipe, tt.inv, tt.target, tt.maxTime, tt.used)
			if adj.Feasible() {
				t.Fatalf("expected infeasible, got %+v", adj.Recipe)
			}
			if adj.Reason != tt.want {
				t.Errorf("reason = %q, want %q", adj.Reason, tt.want)
			}
		})
	}
}

func TestAdjust_TimeLimit(t *testing.T) {
	inv := Inventory{"rice": 2, "chicken": 1}

	if adj := Adjust(withDuration(riceChicken(), 20), inv, 1, catalog.Int(20), nil); !adj.Feasible() {
		t.Errorf("duration equal to limit should be feasible, got %q", adj.Reason)
	}
	if adj := Adjust(riceChicken(), inv, 1, catalog.Int(0), nil); !adj.Feasible() {
		t.Errorf("absent duration is unconstrained, got %q", adj.Reason)
	}
}

func TestAdjust_ScalesQuantities(t *testing.T) {
	r := recipe("Pilaf", 2, []string{"rice"}, []string{"rice", "chicken", "salt"}, 2, 1, -1)
	inv := Inventory{"rice": 4, "chicken": 3, "salt": 1}

	adj := Adjust(r, inv, 1, nil, nil)
	if !adj.Feasible() {
		t.Fatalf("expected feasible, got %q", adj.Reason)
	}

	got := adj.Recipe
	if got.Scale != 2 || got.NumPeople != 4 {
		t.Fatalf("scale=%v people=%d, want 2 and 4", got.Scale, got.NumPeople)
	}
	if *got.Quantities[0] != 4 || *got.Quantities[1] != 2 {
		t.Errorf("quantities = %v, %v", *got.Quantities[0], *got.Quantities[1])
	}
	if got.Quantities[2] != nil {
		t.Errorf("absent quantity should stay absent")
	}
	if got.ExcessComponents["chicken"] != 1 {
		t.Errorf("chicken excess = %v, want 1", got.ExcessComponents["chicken"])
	}
	if _, ok := got.ExcessComponents["salt"]; ok {
		t.Errorf("component without quantity should not report excess")
	}

	// 原始食譜不受影響
	if *r.Quantities[0] != 2 {
		t.Errorf("input recipe mutated: %v", *r.Quantities[0])
	}
}

func TestAdjust_ZeroQuantityIgnored(t *testing.T) {
	r := recipe("Garnish", 1, nil, []string{"parsley", "lemon"}, 0, 1)
	adj := Adjust(r, Inventory{"parsley": 0, "lemon": 3}, 1, nil, nil)
	if !adj.Feasible() || adj.Recipe.Scale != 3 {
		t.Fatalf("zero quantity should not constrain scale, got %+v reason %q", adj.Recipe, adj.Reason)
	}
}

func TestAdjust_Monotonic(t *testing.T) {
	r := recipe("Pilaf", 3, []string{"rice"}, []string{"rice", "chicken"}, 2, 1)

	prevScale, prevPeople := -1.0, -1
	for chicken := 0.0; chicken <= 10; chicken += 0.5 {
		adj := Adjust(r, Inventory{"rice": 6, "chicken": chicken}, 0, nil, nil)
		if !adj.Feasible() {
			t.Fatalf("target 0 should always be feasible, got %q", adj.Reason)
		}
		if adj.Recipe.Scale < prevScale || adj.Recipe.NumPeople < prevPeople {
			t.Fatalf("scale decreased at chicken=%v: %v < %v", chicken, adj.Recipe.Scale, prevScale)
		}
		prevScale, prevPeople = adj.Recipe.Scale, adj.Recipe.NumPeople
	}
	if prevScale != 3 {
		t.Errorf("scale should cap at rice limit 3, got %v", prevScale)
	}
}

func TestAdjust_MonotonicHugeInventory(t *testing.T) {
	prevPeople := 0
	for _, q := range []float64{1e6, 1e18, 1e19, 1e300} {
		inv := Inventory{"rice": 2 * q, "chicken": q}
		adj := Adjust(riceChicken(), inv, 1, nil, nil)
		if !adj.Feasible() {
			t.Fatalf("q=%g: expected feasible, got %q", q, adj.Reason)
		}
		if adj.Recipe.NumPeople < prevPeople {
			t.Fatalf("q=%g: people decreased %d < %d", q, adj.Recipe.NumPeople, prevPeople)
		}
		prevPeople = adj.Recipe.NumPeople

		out := Search(context.Background(), catalog.New([]catalog.Recipe{riceChicken()}), Request{Components: inv, NumPeople: 1}, SearchLimits{})
		if len(out.Combinations) != 1 {
			t.Errorf("q=%g: combinations = %d, want 1", q, len(out.Combinations))
		}
	}
	if prevPeople != math.MaxInt {
		t.Errorf("people should saturate at MaxInt, got %d", prevPeople)
	}
}
