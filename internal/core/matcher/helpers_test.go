package matcher

import "meal-matcher/internal/core/catalog"

// recipe 建立測試用食譜；quantities 以 -1 表示未標示
func recipe(name string, people int, primary []string, components []string, quantities ...float64) catalog.Recipe {
	r := catalog.Recipe{
		Name:              name,
		Components:        components,
		PrimaryComponents: primary,
		NumPeople:         catalog.Int(people),
	}
	for _, q := range quantities {
		if q < 0 {
			r.Quantities = append(r.Quantities, nil)
			continue
		}
		r.Quantities = append(r.Quantities, catalog.Float(q))
	}
	return r
}

func withDuration(r catalog.Recipe, minutes int) catalog.Recipe {
	r.Duration = catalog.Int(minutes)
	return r
}

func riceChicken() catalog.Recipe {
	return recipe("Rice and Chicken", 1, []string{"chicken"}, []string{"rice", "chicken"}, 1, 1)
}
