package ipify

import (
	"math"
	"strconv"
	"strings"
)

// displayText renders a decoded JSON value the way a browser stringifies it
// inside a template literal: null is "null", arrays join their elements
// with commas and objects collapse to "[object Object]".
func displayText(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return numberText(v)
	case []any:
		parts := make([]string, len(v))
		for i, elem := range v {
			// Null elements join as empty strings.
			if elem != nil {
				parts[i] = displayText(elem)
			}
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

// numberText uses plain notation between 1e-6 and 1e21 and exponent
// notation without zero padding outside it.
func numberText(f float64) string {
	abs := math.Abs(f)
	if f == 0 {
		return "0"
	}
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	n, err := strconv.Atoi(exp)
	if err != nil {
		return s
	}
	if n > 0 {
		return mantissa + "e+" + strconv.Itoa(n)
	}
	return mantissa + "e" + strconv.Itoa(n)
}
