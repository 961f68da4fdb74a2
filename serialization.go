package pagedriver

import (
	"fmt"
	"math"
	"sort"
	"time"
)

const maxSerializationDepth = 100

// serializeArgument lifts an evaluate argument into the protocol value
// envelope. Handles are moved into a side list and referenced by index.
func serializeArgument(arg interface{}) (map[string]interface{}, error) {
	handles := []interface{}{}
	value, err := serializeValue(arg, &handles, 0)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"value": value, "handles": handles}, nil
}

func serializeValue(value interface{}, handles *[]interface{}, depth int) (interface{}, error) {
	if depth > maxSerializationDepth {
		return nil, &Error{Name: "Error", Message: "Maximum argument depth exceeded"}
	}
	if h, ok := value.(hasChannel); ok {
		index := len(*handles)
		*handles = append(*handles, map[string]interface{}{"guid": h.channel().guid})
		return map[string]interface{}{"h": index}, nil
	}
	switch v := value.(type) {
	case nil:
		return map[string]interface{}{"v": "undefined"}, nil
	case float64:
		switch {
		case math.IsInf(v, 1):
			return map[string]interface{}{"v": "Infinity"}, nil
		case math.IsInf(v, -1):
			return map[string]interface{}{"v": "-Infinity"}, nil
		case math.IsNaN(v):
			return map[string]interface{}{"v": "NaN"}, nil
		case v == 0 && math.Signbit(v):
			return map[string]interface{}{"v": "-0"}, nil
		}
		return map[string]interface{}{"n": v}, nil
	case float32:
		return serializeValue(float64(v), handles, depth)
	case int:
		return map[string]interface{}{"n": v}, nil
	case int32:
		return map[string]interface{}{"n": v}, nil
	case int64:
		return map[string]interface{}{"n": v}, nil
	case bool:
		return map[string]interface{}{"b": v}, nil
	case string:
		return map[string]interface{}{"s": v}, nil
	case time.Time:
		return map[string]interface{}{"d": v.UTC().Format("2006-01-02T15:04:05.000Z")}, nil
	case []interface{}:
		list := make([]interface{}, 0, len(v))
		for _, item := range v {
			serialized, err := serializeValue(item, handles, depth+1)
			if err != nil {
				return nil, err
			}
			list = append(list, serialized)
		}
		return map[string]interface{}{"a": list}, nil
	case map[string]interface{}:
		pairs := make([]interface{}, 0, len(v))
		for _, key := range sortedKeys(v) {
			serialized, err := serializeValue(v[key], handles, depth+1)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, map[string]interface{}{"k": key, "v": serialized})
		}
		return map[string]interface{}{"o": pairs}, nil
	default:
		return nil, &Error{Name: "Error", Message: fmt.Sprintf("Unsupported argument type %T", value)}
	}
}

// parseResult decodes a protocol value envelope back into Go values. Numbers
// come back as float64, objects as map[string]interface{}.
func parseResult(result interface{}) interface{} {
	return parseValue(result)
}

func parseValue(value interface{}) interface{} {
	v, ok := value.(map[string]interface{})
	if !ok {
		return value
	}
	if special, ok := v["v"]; ok {
		switch special {
		case "Infinity":
			return math.Inf(1)
		case "-Infinity":
			return math.Inf(-1)
		case "-0":
			return math.Copysign(0, -1)
		case "NaN":
			return math.NaN()
		case "undefined", "null":
			return nil
		}
		return special
	}
	if list, ok := v["a"].([]interface{}); ok {
		parsed := make([]interface{}, 0, len(list))
		for _, item := range list {
			parsed = append(parsed, parseValue(item))
		}
		return parsed
	}
	if date, ok := v["d"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, date); err == nil {
			return t
		}
		return date
	}
	if pairs, ok := v["o"].([]interface{}); ok {
		parsed := make(map[string]interface{}, len(pairs))
		for _, item := range pairs {
			pair, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			key, _ := pair["k"].(string)
			parsed[key] = parseValue(pair["v"])
		}
		return parsed
	}
	if n, ok := v["n"]; ok {
		return n
	}
	if s, ok := v["s"]; ok {
		return s
	}
	if b, ok := v["b"]; ok {
		return b
	}
	return value
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
