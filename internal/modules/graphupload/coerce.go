package graphupload

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/graphadmin-backend/internal/domain"
)

var errNotCoercible = errors.New("not coercible")

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Coerce converts v toward the declared type t. A nil value coerces to nil. The returned warning
// code is non-empty when the conversion succeeded lossily. Types outside the enumeration pass v
// through unchanged.
func Coerce(v any, t domain.PropertyType) (any, domain.WarningCode, error) {
	if v == nil {
		return nil, "", nil
	}
	switch t {
	case domain.PropertyTypeString:
		return toString(v)
	case domain.PropertyTypeNumber:
		n, err := toNumber(v)
		return n, "", err
	case domain.PropertyTypeBoolean:
		b, err := toBool(v)
		return b, "", err
	case domain.PropertyTypeDate:
		d, err := toDate(v)
		return d, "", err
	case domain.PropertyTypeArray:
		a, err := toArray(v)
		return a, "", err
	case domain.PropertyTypeObject:
		o, err := toObject(v)
		return o, "", err
	default:
		return v, "", nil
	}
}

func toString(v any) (any, domain.WarningCode, error) {
	switch x := v.(type) {
	case string:
		return x, "", nil
	case json.Number:
		return x.String(), "", nil
	case bool:
		return strconv.FormatBool(x), "", nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), "", nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), "", nil
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), "", nil
	}
	if i, ok := asInt64(v); ok {
		return strconv.FormatInt(i, 10), "", nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", errNotCoercible, err)
	}
	return string(raw), domain.WarningStringified, nil
}

func toNumber(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		return parseNumber(x.String())
	case string:
		return parseNumber(x)
	case float32:
		return normalizeFloat(float64(x))
	case float64:
		return normalizeFloat(x)
	}
	if i, ok := asInt64(v); ok {
		return i, nil
	}
	return nil, errNotCoercible
}

func parseNumber(s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errNotCoercible
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errNotCoercible
	}
	return normalizeFloat(f)
}

// normalizeFloat keeps integral values as int64 so graph stores receive integers for ids and
// epoch timestamps.
func normalizeFloat(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errNotCoercible
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f), nil
	}
	return f, nil
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "1":
			return true, nil
		case "false", "no", "0":
			return false, nil
		}
		return false, errNotCoercible
	}
	n, err := toNumber(v)
	if err != nil {
		return false, errNotCoercible
	}
	switch n {
	case int64(1):
		return true, nil
	case int64(0):
		return false, nil
	}
	return false, errNotCoercible
}

func toDate(v any) (string, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC().Format(time.RFC3339Nano), nil
			}
		}
		return "", errNotCoercible
	}
	n, err := toNumber(v)
	if err != nil {
		return "", errNotCoercible
	}
	ms, ok := n.(int64)
	if !ok {
		return "", errNotCoercible
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339Nano), nil
}

func toArray(v any) ([]any, error) {
	switch x := v.(type) {
	case []any:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		if !strings.HasPrefix(s, "[") {
			return nil, errNotCoercible
		}
		var out []any
		if err := decodeJSON(s, &out); err != nil {
			return nil, errNotCoercible
		}
		return out, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}
	return nil, errNotCoercible
}

func toObject(v any) (map[string]any, error) {
	switch x := v.(type) {
	case map[string]any:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		if !strings.HasPrefix(s, "{") {
			return nil, errNotCoercible
		}
		var out map[string]any
		if err := decodeJSON(s, &out); err != nil {
			return nil, errNotCoercible
		}
		return out, nil
	}
	return nil, errNotCoercible
}

func decodeJSON(s string, dst any) error {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	return dec.Decode(dst)
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint:
		if uint64(x) <= math.MaxInt64 {
			return int64(x), true
		}
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x), true
		}
	}
	return 0, false
}
