// Package validate provides struct-tag validation.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required            field must be present (non-nil pointer) and non-zero
//	nullable            if absent/empty, skip all remaining rules for this field
//	url                 absolute http(s) URL
//	numeric             any number
//	integer             whole number
//	min=N               string: min char length | number: min value
//	max=N               string: max char length | number: max value
//	gte=N               number >= N
//	lte=N               number <= N
//	between=min,max     number or string length between min and max (inclusive)
//
// Pointer fields are dereferenced before rules apply; a nil pointer counts
// as absent, so optional fields can distinguish "not supplied" from a zero
// value. Nested structs (and pointers to them) are validated recursively,
// with field names joined by dots ("stats.hp").
//
// Example:
//
//	type Input struct {
//	    Name   *string `json:"name"   validate:"required,min=1,max=50"`
//	    Sprite *string `json:"sprite" validate:"nullable,url"`
//	    Stats  *Stats  `json:"stats"`
//	}
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns a map of fieldName → error message; empty map means no errors.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	validateInto("", v, errs)
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// Details flattens an error map into a deterministic list of messages,
// one per violated field.
func Details(errs map[string]string) []string {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := make([]string, 0, len(errs))
	for _, f := range fields {
		out = append(out, errs[f])
	}
	return out
}

func validateInto(prefix string, v interface{}, errs map[string]string) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		value := rv.Field(i)
		name := joinName(prefix, jsonFieldName(field))
		tag := field.Tag.Get("validate")

		// Recurse into nested structs that carry no rules of their own.
		if tag == "" {
			if isStructLike(value) {
				validateInto(name, value.Interface(), errs)
			}
			continue
		}

		rules := splitRules(tag)

		present := !isAbsent(value)
		deref := indirect(value)

		if hasRule(rules, "nullable") && (!present || isEmpty(deref)) {
			continue
		}

		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if msg := applyRule(rule, name, present, deref); msg != "" {
				errs[name] = msg
				break // first failing rule per field
			}
		}
	}
}

func applyRule(rule, field string, present bool, v reflect.Value) string {
	raw := stringValue(v)
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "required":
		if !present || requiredEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}

	case "url":
		u, err := url.ParseRequestURI(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Sprintf("The %s must be a valid URL.", field)
		}

	case "numeric":
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return fmt.Sprintf("The %s field must be a number.", field)
		}

	case "integer":
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return fmt.Sprintf("The %s field must be an integer.", field)
		}

	case "min":
		n := mustParseFloat(param)
		if isNumericKind(v) {
			if toFloat(v) < n {
				return fmt.Sprintf("The %s must be at least %s.", field, param)
			}
		} else {
			if float64(len([]rune(raw))) < n {
				return fmt.Sprintf("The %s must be at least %s characters.", field, param)
			}
		}

	case "max":
		n := mustParseFloat(param)
		if isNumericKind(v) {
			if toFloat(v) > n {
				return fmt.Sprintf("The %s must not be greater than %s.", field, param)
			}
		} else {
			if float64(len([]rune(raw))) > n {
				return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
			}
		}

	case "gte":
		n := mustParseFloat(param)
		if toFloat(v) < n {
			return fmt.Sprintf("The %s must be at least %s.", field, param)
		}

	case "lte":
		n := mustParseFloat(param)
		if toFloat(v) > n {
			return fmt.Sprintf("The %s must not be greater than %s.", field, param)
		}

	case "between":
		lo, hi, ok := strings.Cut(param, ",")
		if !ok {
			return ""
		}
		low, high := mustParseFloat(lo), mustParseFloat(hi)
		var n float64
		if isNumericKind(v) {
			n = toFloat(v)
		} else {
			n = float64(len([]rune(raw)))
		}
		if n < low || n > high {
			return fmt.Sprintf("The %s must be between %s and %s.", field, lo, hi)
		}
	}

	return ""
}

// ─── Reflection helpers ───────────────────────────────────────────────────────

// isAbsent reports whether a field was not supplied at all (nil pointer).
func isAbsent(v reflect.Value) bool {
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// indirect dereferences pointers; nil pointers yield the zero value of the
// element type so rules still have something to inspect.
func indirect(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Zero(v.Type().Elem())
		}
		return v.Elem()
	}
	return v
}

func isStructLike(v reflect.Value) bool {
	if v.Kind() == reflect.Ptr {
		return !v.IsNil() && v.Elem().Kind() == reflect.Struct
	}
	return v.Kind() == reflect.Struct
}

// requiredEmpty is the emptiness half of the required rule. Only strings,
// slices and maps can be present-but-empty; a supplied number is valid at
// any value, zero included.
func requiredEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Map:
		return isEmpty(v)
	case reflect.Invalid:
		return true
	default:
		return false
	}
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	case reflect.Invalid:
		return true
	default:
		return v.IsZero()
	}
}

func isNumericKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	default:
		return 0
	}
}

func stringValue(v reflect.Value) string {
	if v.Kind() == reflect.Invalid {
		return ""
	}
	return fmt.Sprintf("%v", v.Interface())
}

func mustParseFloat(s string) float64 {
	n, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return n
}

func splitRules(tag string) []string {
	parts := strings.Split(tag, ",")
	rules := make([]string, 0, len(parts))
	for i := 0; i < len(parts); i++ {
		p := strings.TrimSpace(parts[i])
		if p == "" {
			continue
		}
		// Re-join "between=0,255" which the comma split tore apart.
		if strings.HasPrefix(p, "between=") && i+1 < len(parts) {
			p = p + "," + strings.TrimSpace(parts[i+1])
			i++
		}
		rules = append(rules, p)
	}
	return rules
}

func hasRule(rules []string, name string) bool {
	for _, r := range rules {
		if r == name || strings.HasPrefix(r, name+"=") {
			return true
		}
	}
	return false
}

func jsonFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return strings.ToLower(f.Name)
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return strings.ToLower(f.Name)
	}
	return name
}

func joinName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
