package wizard

import (
	"fmt"
)

// Section is one design section of the project configurator.
type Section struct {
	Key              string
	Label            string
	BasePrice        int64
	SurchargePercent float64
}

type PricingConfig struct {
	Sections              []Section
	AttractionPrice       int64
	MaxAttractions        int
	PoolTypeCoefficients  map[string]float64
	PlacementCoefficients map[string]float64
}

func DefaultPricing() PricingConfig {
	return PricingConfig{
		Sections: []Section{
			{Key: "technology", Label: "Технология", BasePrice: 120_000, SurchargePercent: 15},
			{Key: "architecture", Label: "Архитектура", BasePrice: 90_000, SurchargePercent: 10},
			{Key: "electric", Label: "Электрика", BasePrice: 80_000, SurchargePercent: 12},
			{Key: "automation", Label: "Автоматизация", BasePrice: 70_000, SurchargePercent: 15},
			{Key: "constructive", Label: "Конструктив", BasePrice: 100_000, SurchargePercent: 8},
		},
		AttractionPrice: 25_000,
		MaxAttractions:  5,
		PoolTypeCoefficients: map[string]float64{
			PoolTypePrivate: 1.0,
			PoolTypePublic:  1.4,
		},
		PlacementCoefficients: map[string]float64{
			PlacementIndoor:  1.2,
			PlacementOutdoor: 1.0,
		},
	}
}

func (p PricingConfig) Section(key string) (Section, bool) {
	for _, s := range p.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

type QuoteRequest struct {
	Sections    []string
	PoolType    string
	Placement   string
	Attractions int
}

type SectionQuote struct {
	Section
	Surcharge float64
	Total     float64
}

type QuoteResult struct {
	Sections             []SectionQuote
	Attractions          int
	AttractionPrice      int64
	AttractionsTotal     int64
	Subtotal             float64
	PoolTypeCoefficient  float64
	PlacementCoefficient float64
	// Total is truncated to whole roubles once, after all coefficients.
	Total int64
}

// CalculateQuote prices the selected sections and attractions and applies the
// pool type and placement coefficients.
func CalculateQuote(cfg PricingConfig, req QuoteRequest) (QuoteResult, error) {
	const operation = "wizard.CalculateQuote"

	if len(req.Sections) == 0 {
		return QuoteResult{}, fmt.Errorf("%s: %w", operation, ErrSelectionRequired)
	}
	typeK, ok := cfg.PoolTypeCoefficients[req.PoolType]
	if !ok {
		return QuoteResult{}, fmt.Errorf("%s: unknown pool type %q", operation, req.PoolType)
	}
	placeK, ok := cfg.PlacementCoefficients[req.Placement]
	if !ok {
		return QuoteResult{}, fmt.Errorf("%s: unknown placement %q", operation, req.Placement)
	}

	res := QuoteResult{
		Attractions:          clamp(req.Attractions, 0, cfg.MaxAttractions),
		AttractionPrice:      cfg.AttractionPrice,
		PoolTypeCoefficient:  typeK,
		PlacementCoefficient: placeK,
	}

	var total float64
	for _, key := range req.Sections {
		section, ok := cfg.Section(key)
		if !ok {
			return QuoteResult{}, fmt.Errorf("%s: unknown section %q", operation, key)
		}
		base := float64(section.BasePrice)
		surcharge := base * section.SurchargePercent / 100
		sq := SectionQuote{Section: section, Surcharge: surcharge, Total: base + surcharge}
		res.Sections = append(res.Sections, sq)
		total += sq.Total
	}

	res.AttractionsTotal = int64(res.Attractions) * cfg.AttractionPrice
	total += float64(res.AttractionsTotal)
	res.Subtotal = total

	total = total * typeK
	total = total * placeK
	res.Total = int64(total)
	return res, nil
}

// AttractionCounter holds the number of attractions, clamped to [0, Max].
type AttractionCounter struct {
	Count int `json:"count"`
	Max   int `json:"max"`
}

func NewAttractionCounter(limit int) AttractionCounter {
	return AttractionCounter{Max: limit}
}

// Increment returns false when the counter is already at Max.
func (c *AttractionCounter) Increment() bool {
	if c.Count >= c.Max {
		return false
	}
	c.Count++
	return true
}

// Decrement returns false when the counter is already at zero.
func (c *AttractionCounter) Decrement() bool {
	if c.Count <= 0 {
		return false
	}
	c.Count--
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
