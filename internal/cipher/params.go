package cipher

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/RowanDark/cryptolab/internal/errdefs"
)

// intParam reads an integer parameter. JSON numbers arrive as float64 and
// must be integral; numeric strings are accepted too.
func intParam(params map[string]interface{}, name string, def int) (int, error) {
	raw, ok := params[name]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, errdefs.Invalid(name, fmt.Sprintf("must be an integer, got %v", v))
		}
		// float64(math.MaxInt) rounds up to 2^63, hence >=.
		if v >= float64(math.MaxInt) || v < float64(math.MinInt) {
			return 0, errdefs.Invalid(name, fmt.Sprintf("out of range, got %v", v))
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, errdefs.Invalid(name, fmt.Sprintf("must be an integer, got %q", v))
		}
		return n, nil
	default:
		return 0, errdefs.Invalid(name, fmt.Sprintf("unsupported type %T", raw))
	}
}

func stringParam(params map[string]interface{}, name, def string) (string, error) {
	raw, ok := params[name]
	if !ok || raw == nil {
		return def, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", errdefs.Invalid(name, fmt.Sprintf("must be a string, got %T", raw))
	}
	return s, nil
}
