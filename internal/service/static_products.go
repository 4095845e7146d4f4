package service

import (
	"strings"

	"calzado-imperial/internal/domain"

	"github.com/shopspring/decimal"
)

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func optionalPrice(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func rating(v float64) *float64 { return &v }

func reviews(v int) *int { return &v }

// StaticProducts returns the fixed catalog served when the store is
// unconfigured or unavailable. Every call returns a fresh copy.
func StaticProducts() []domain.Product {
	return []domain.Product{
		{
			ID:            "1",
			Name:          "Air Max 90",
			Brand:         "Nike",
			Price:         price(480),
			OriginalPrice: optionalPrice(590),
			Image:         "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=400&h=400&fit=crop",
			Description:   "Zapatillas clásicas con tecnología Air Max para máximo confort. Perfectas para running y uso diario.",
			Category:      "Running",
			Sizes:         []string{"38", "39", "40", "41", "42", "43", "44"},
			Colors:        []string{"Negro", "Blanco", "Rojo"},
			Stock:         15,
			Rating:        rating(4.5),
			Reviews:       reviews(120),
			Featured:      true,
		},
		{
			ID:          "2",
			Name:        "Ultraboost 22",
			Brand:       "Adidas",
			Price:       price(665),
			Image:       "https://images.unsplash.com/photo-1605348532760-6753d2c43329?w=400&h=400&fit=crop",
			Description: "Zapatillas de running con tecnología Boost para máxima energía y amortiguación.",
			Category:    "Running",
			Sizes:       []string{"38", "39", "40", "41", "42", "43"},
			Colors:      []string{"Negro", "Blanco", "Azul"},
			Stock:       20,
			Rating:      rating(4.8),
			Reviews:     reviews(85),
			Featured:    true,
		},
		{
			ID:            "3",
			Name:          "Chuck Taylor All Star",
			Brand:         "Converse",
			Price:         price(220),
			OriginalPrice: optionalPrice(260),
			Image:         "https://images.unsplash.com/photo-1460353581641-37baddab0fa2?w=400&h=400&fit=crop",
			Description:   "Zapatillas clásicas y versátiles, perfectas para el día a día. Diseño icónico que nunca pasa de moda.",
			Category:      "Casual",
			Sizes:         []string{"36", "37", "38", "39", "40", "41", "42", "43"},
			Colors:        []string{"Negro", "Blanco", "Rojo", "Azul"},
			Stock:         30,
			Rating:        rating(4.3),
			Reviews:       reviews(200),
		},
		{
			ID:          "4",
			Name:        "Old Skool",
			Brand:       "Vans",
			Price:       price(260),
			Image:       "https://images.unsplash.com/photo-1525966222134-fcfa99b8ae77?w=400&h=400&fit=crop",
			Description: "Zapatillas skate icónicas con estilo atemporal. Ideal para skateboarding y estilo urbano.",
			Category:    "Skate",
			Sizes:       []string{"38", "39", "40", "41", "42", "43", "44"},
			Colors:      []string{"Negro", "Blanco", "Azul"},
			Stock:       25,
			Rating:      rating(4.6),
			Reviews:     reviews(150),
		},
		{
			ID:            "5",
			Name:          "Classic Leather",
			Brand:         "Reebok",
			Price:         price(295),
			OriginalPrice: optionalPrice(370),
			Image:         "https://images.unsplash.com/photo-1595950653106-6c9ebd614d3a?w=400&h=400&fit=crop",
			Description:   "Zapatillas retro con diseño clásico y materiales premium. Comodidad y estilo en cada paso.",
			Category:      "Casual",
			Sizes:         []string{"38", "39", "40", "41", "42", "43"},
			Colors:        []string{"Negro", "Blanco", "Beige"},
			Stock:         18,
			Rating:        rating(4.4),
			Reviews:       reviews(95),
		},
		{
			ID:          "6",
			Name:        "New Balance 550",
			Brand:       "New Balance",
			Price:       price(330),
			Image:       "https://images.unsplash.com/photo-1600185365483-26d7a4cc7519?w=400&h=400&fit=crop",
			Description: "Zapatillas con estilo vintage y máximo confort. Perfectas para caminar y uso casual.",
			Category:    "Casual",
			Sizes:       []string{"38", "39", "40", "41", "42", "43", "44"},
			Colors:      []string{"Blanco", "Gris", "Negro"},
			Stock:       22,
			Rating:      rating(4.7),
			Reviews:     reviews(110),
			Featured:    true,
		},
		{
			ID:            "7",
			Name:          "Air Force 1",
			Brand:         "Nike",
			Price:         price(420),
			OriginalPrice: optionalPrice(480),
			Image:         "https://images.unsplash.com/photo-1606107557195-0e29a4b5b4aa?w=400&h=400&fit=crop",
			Description:   "Las clásicas Air Force 1, el modelo más icónico de Nike. Estilo urbano y comodidad.",
			Category:      "Casual",
			Sizes:         []string{"38", "39", "40", "41", "42", "43", "44"},
			Colors:        []string{"Blanco", "Negro", "Gris"},
			Stock:         28,
			Rating:        rating(4.6),
			Reviews:       reviews(180),
			Featured:      true,
		},
		{
			ID:          "8",
			Name:        "Stan Smith",
			Brand:       "Adidas",
			Price:       price(280),
			Image:       "https://images.unsplash.com/photo-1544966503-7d97ce18f71a?w=400&h=400&fit=crop",
			Description: "Zapatillas minimalistas y elegantes. Diseño clásico que combina con todo.",
			Category:    "Casual",
			Sizes:       []string{"36", "37", "38", "39", "40", "41", "42", "43"},
			Colors:      []string{"Blanco", "Verde", "Negro"},
			Stock:       35,
			Rating:      rating(4.5),
			Reviews:     reviews(145),
		},
	}
}

func filterProducts(products []domain.Product, keep func(domain.Product) bool) []domain.Product {
	out := []domain.Product{}
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func staticFeatured() []domain.Product {
	return filterProducts(StaticProducts(), func(p domain.Product) bool { return p.Featured })
}

func staticByCategory(category string) []domain.Product {
	return filterProducts(StaticProducts(), func(p domain.Product) bool { return p.Category == category })
}

func staticSearch(query string) []domain.Product {
	q := strings.ToLower(query)
	return filterProducts(StaticProducts(), func(p domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Brand), q) ||
			strings.Contains(strings.ToLower(p.Description), q)
	})
}

func staticByID(id string) *domain.Product {
	for _, p := range StaticProducts() {
		if p.ID == id {
			return &p
		}
	}
	return nil
}
