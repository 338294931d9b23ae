package intent

import (
	"strconv"
	"strings"
)

// unitTable holds the fixed conversion categories. Every non-temperature
// category converts through a base unit (meter, gram, byte, second); data
// units are binary (1024). Temperature is matched here but converted with
// dedicated formulas in the evaluator.
type unitTable struct {
	categories map[string]map[string]float64
}

func defaultUnits() *unitTable {
	return &unitTable{categories: map[string]map[string]float64{
		"length": {
			"km": 1000, "m": 1, "cm": 0.01, "mm": 0.001,
			"mi": 1609.344, "ft": 0.3048, "in": 0.0254,
		},
		"weight": {
			"kg": 1000, "g": 1, "mg": 0.001,
			"lb": 453.592, "oz": 28.3495,
		},
		"data": {
			"TB": 1024 * 1024 * 1024 * 1024, "GB": 1024 * 1024 * 1024,
			"MB": 1024 * 1024, "KB": 1024, "B": 1,
		},
		"time": {
			"d": 86400, "h": 3600, "min": 60, "s": 1, "ms": 0.001,
		},
	}}
}

// temperatureUnits accepts both the bare and degree-glyph spellings.
var temperatureUnits = map[string]string{
	"C": "C", "°C": "C",
	"F": "F", "°F": "F",
	"K": "K",
}

var defaultTable = defaultUnits()

// ConversionRates returns the base-unit rates for two units of a category.
// The evaluator computes value * fromRate / toRate.
func ConversionRates(category, from, to string) (fromRate, toRate float64, ok bool) {
	rates, found := defaultTable.categories[category]
	if !found {
		return 0, 0, false
	}
	fromRate, okF := rates[from]
	toRate, okT := rates[to]
	return fromRate, toRate, okF && okT
}

// parse recognizes "<value><unit> ... to <unit>" where both units share a
// category. The value may be glued to the unit ("100km to mi").
func (t *unitTable) parse(s string) (Intent, bool) {
	parts := strings.Fields(s)
	if len(parts) < 3 || !strings.EqualFold(parts[len(parts)-2], "to") {
		return Intent{}, false
	}

	toUnit := parts[len(parts)-1]

	value, fromUnit, ok := splitValueUnit(parts[0])
	if !ok {
		// "1 km to mi" form: bare number then unit token
		if len(parts) < 4 {
			return Intent{}, false
		}
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return Intent{}, false
		}
		value, fromUnit = v, parts[1]
	}

	if from, okF := temperatureUnits[fromUnit]; okF {
		if to, okT := temperatureUnits[toUnit]; okT {
			return Intent{
				Type: UnitConvert, Value: value,
				FromUnit: from, ToUnit: to, Category: "temperature",
			}, true
		}
		return Intent{}, false
	}

	for category, rates := range t.categories {
		_, okF := rates[fromUnit]
		_, okT := rates[toUnit]
		if okF && okT {
			return Intent{
				Type: UnitConvert, Value: value,
				FromUnit: fromUnit, ToUnit: toUnit, Category: category,
			}, true
		}
	}
	return Intent{}, false
}

// splitValueUnit splits "100km" into (100, "km"). The numeric prefix is the
// longest run of digits, dots and a leading minus; the remainder must be a
// non-empty unit token.
func splitValueUnit(s string) (float64, string, bool) {
	numEnd := 0
	for i, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || (r == '-' && i == 0) {
			numEnd = i + 1
		} else {
			break
		}
	}
	if numEnd == 0 || numEnd == len(s) {
		return 0, "", false
	}
	v, err := strconv.ParseFloat(s[:numEnd], 64)
	if err != nil {
		return 0, "", false
	}
	return v, s[numEnd:], true
}
