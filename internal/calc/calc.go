// Package calc evaluates Math and UnitConvert intents.
//
// Evaluation is total on input syntax: malformed expressions come back as an
// error string ("Math error: ..."), never as a Go error the caller must
// branch on. Infix parsing is delegated to govaluate with the named unary
// functions registered as expression functions.
package calc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/tomhartill/omnidex/internal/intent"
)

// exprFuncs are the unary functions accepted inside math expressions.
var exprFuncs = map[string]govaluate.ExpressionFunction{
	"sin":  unary(math.Sin),
	"cos":  unary(math.Cos),
	"tan":  unary(math.Tan),
	"sqrt": unary(math.Sqrt),
	"log":  unary(math.Log10),
	"ln":   unary(math.Log),
	"abs":  unary(math.Abs),
}

func unary(f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		v, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", args[0])
		}
		return f(v), nil
	}
}

// Evaluate resolves a Math or UnitConvert intent to a display string.
// The second return is an error string for the result row; it is never a
// hard failure.
func Evaluate(in intent.Intent) (string, string) {
	switch in.Type {
	case intent.Math:
		v, err := evalMath(in.Text)
		if err != nil {
			return "", "Math error: " + err.Error()
		}
		return Format(v), ""
	case intent.UnitConvert:
		v, err := convert(in)
		if err != nil {
			return "", err.Error()
		}
		return Format(v), ""
	default:
		return "", "not a calculator intent"
	}
}

func evalMath(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, fmt.Errorf("empty expression")
	}
	// govaluate reserves ^ for bitwise xor; the launcher grammar means
	// exponentiation.
	s = strings.ReplaceAll(s, "^", "**")

	expr, err := govaluate.NewEvaluableExpressionWithFunctions(s, exprFuncs)
	if err != nil {
		return 0, err
	}
	out, err := expr.Evaluate(nil)
	if err != nil {
		return 0, err
	}
	v, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("expression is not numeric")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("result is not finite")
	}
	return v, nil
}

func convert(in intent.Intent) (float64, error) {
	if in.Category == "temperature" {
		return convertTemperature(in.Value, in.FromUnit, in.ToUnit)
	}
	fromRate, toRate, ok := intent.ConversionRates(in.Category, in.FromUnit, in.ToUnit)
	if !ok {
		return 0, fmt.Errorf("Cannot convert from %s to %s", in.FromUnit, in.ToUnit)
	}
	return in.Value * fromRate / toRate, nil
}

func convertTemperature(v float64, from, to string) (float64, error) {
	switch from + to {
	case "CC", "FF", "KK":
		return v, nil
	case "CF":
		return v*9/5 + 32, nil
	case "FC":
		return (v - 32) * 5 / 9, nil
	case "CK":
		return v + 273.15, nil
	case "KC":
		return v - 273.15, nil
	case "FK":
		return (v-32)*5/9 + 273.15, nil
	case "KF":
		return (v-273.15)*9/5 + 32, nil
	}
	return 0, fmt.Errorf("Cannot convert from %s to %s", from, to)
}

// Format renders a numeric result: integer form when within 1e-4 of an
// integer, scientific notation with 4 fractional digits outside
// [1e-3, 1000], otherwise 6 fractional digits with trailing zeros trimmed.
func Format(v float64) string {
	if math.Abs(v-math.Round(v)) < 1e-4 {
		return strconv.FormatInt(int64(math.Round(v)), 10)
	}
	if math.Abs(v) > 1000 || math.Abs(v) < 1e-3 {
		return strconv.FormatFloat(v, 'e', 4, 64)
	}
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
