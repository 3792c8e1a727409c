package docstore

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// matches evaluates the subset of the MongoDB query language the services use:
// field equality, $or/$and, comparison operators, $in/$nin, $exists and $regex.
func matches(doc Document, filter Filter) bool {
	for key, cond := range filter {
		switch key {
		case "$or":
			subs := subFilters(cond)
			ok := false
			for _, sub := range subs {
				if matches(doc, sub) {
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
		case "$and":
			for _, sub := range subFilters(cond) {
				if !matches(doc, sub) {
					return false
				}
			}
		default:
			v, present := doc[key]
			if !matchCondition(v, present, cond) {
				return false
			}
		}
	}
	return true
}

func subFilters(cond interface{}) []Filter {
	var items []interface{}
	switch c := cond.(type) {
	case bson.A:
		items = c
	case []interface{}:
		items = c
	case []Filter:
		return c
	case []map[string]interface{}:
		out := make([]Filter, 0, len(c))
		for _, m := range c {
			out = append(out, Filter(m))
		}
		return out
	}

	out := make([]Filter, 0, len(items))
	for _, it := range items {
		if f, ok := asFilter(it); ok {
			out = append(out, f)
		}
	}
	return out
}

func asFilter(v interface{}) (Filter, bool) {
	switch m := v.(type) {
	case Filter:
		return m, true
	case map[string]interface{}:
		return Filter(m), true
	}
	return nil, false
}

func matchCondition(v interface{}, present bool, cond interface{}) bool {
	if re, ok := cond.(primitive.Regex); ok {
		return present && regexMatch(v, re.Pattern, re.Options)
	}

	ops, ok := asFilter(cond)
	if !ok || !isOperatorMap(ops) {
		return present && equalValues(v, cond)
	}

	for op, arg := range ops {
		switch op {
		case "$eq":
			if !present || !equalValues(v, arg) {
				return false
			}
		case "$ne":
			if present && equalValues(v, arg) {
				return false
			}
		case "$gt":
			if !present || compareValues(v, arg) <= 0 {
				return false
			}
		case "$gte":
			if !present || compareValues(v, arg) < 0 {
				return false
			}
		case "$lt":
			if !present || compareValues(v, arg) >= 0 {
				return false
			}
		case "$lte":
			if !present || compareValues(v, arg) > 0 {
				return false
			}
		case "$in":
			if !present || !inValues(v, arg) {
				return false
			}
		case "$nin":
			if present && inValues(v, arg) {
				return false
			}
		case "$exists":
			want, _ := arg.(bool)
			if present != want {
				return false
			}
		case "$regex":
			pattern := ""
			switch p := arg.(type) {
			case string:
				pattern = p
			case primitive.Regex:
				pattern = p.Pattern
			}
			options, _ := ops["$options"].(string)
			if !present || !regexMatch(v, pattern, options) {
				return false
			}
		case "$options":
		default:
			return false
		}
	}
	return true
}

func isOperatorMap(m Filter) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return true
}

func regexMatch(v interface{}, pattern, options string) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	if strings.Contains(options, "i") {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

func inValues(v interface{}, arg interface{}) bool {
	rv := reflect.ValueOf(arg)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if equalValues(v, rv.Index(i).Interface()) {
			return true
		}
	}
	return false
}

func equalValues(a, b interface{}) bool {
	na, nb := normalize(a), normalize(b)
	switch x := na.(type) {
	case float64:
		y, ok := nb.(float64)
		return ok && x == y
	case time.Time:
		y, ok := nb.(time.Time)
		return ok && x.Equal(y)
	}
	return reflect.DeepEqual(na, nb)
}

// compareValues orders numbers, strings and times. Missing or mismatched
// values sort first.
func compareValues(a, b interface{}) int {
	na, nb := normalize(a), normalize(b)
	switch x := na.(type) {
	case float64:
		if y, ok := nb.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case string:
		if y, ok := nb.(string); ok {
			return strings.Compare(x, y)
		}
	case time.Time:
		if y, ok := nb.(time.Time); ok {
			return x.Compare(y)
		}
	}
	switch {
	case na == nil && nb == nil:
		return 0
	case na == nil:
		return -1
	case nb == nil:
		return 1
	}
	return 0
}

func normalize(v interface{}) interface{} {
	if f, ok := toFloat(v); ok {
		return f
	}
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC()
	}
	return v
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
