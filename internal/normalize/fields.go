// Package normalize maps heterogeneous backend JSON onto fixed local shapes.
//
// Backends for the console disagree on field names (name vs full_name, dbId vs id), so every
// DTO field is read through an ordered fallback chain of gjson paths.
package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Placeholder is shown for values the backend did not send
const Placeholder = "—"

// truthy mirrors the falsy set of the web console: missing, null, false, 0 and ""
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null:
		return false
	case gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case gjson.String:
		return v.Str != ""
	case gjson.True, gjson.JSON:
		return true
	}
	return false
}

// present reports whether v exists and is not null
func present(v gjson.Result) bool {
	return v.Exists() && v.Type != gjson.Null
}

// String returns the first path holding a truthy value, else def.
// An empty string or a zero moves on to the next path.
func String(r gjson.Result, def string, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); truthy(v) {
			return v.String()
		}
	}
	return def
}

// Coalesce returns the first path that is present and not null, else def.
// Unlike String, an empty string or a zero stops the chain.
func Coalesce(r gjson.Result, def string, paths ...string) string {
	if v, ok := First(r, paths...); ok {
		return v.String()
	}
	return def
}

// First returns the first path that is present and not null
func First(r gjson.Result, paths ...string) (gjson.Result, bool) {
	for _, p := range paths {
		if v := r.Get(p); present(v) {
			return v, true
		}
	}
	return gjson.Result{}, false
}

// Int reads the first present path as an integer. Numeric strings are accepted;
// anything else, or no present path, yields def. Fractions are floored.
func Int(r gjson.Result, def int, paths ...string) int {
	v, ok := First(r, paths...)
	if !ok {
		return def
	}
	f, ok := number(v)
	if !ok {
		return def
	}
	return int(math.Floor(f))
}

// Float reads the first present path as a number, else def
func Float(r gjson.Result, def float64, paths ...string) float64 {
	v, ok := First(r, paths...)
	if !ok {
		return def
	}
	f, ok := number(v)
	if !ok {
		return def
	}
	return f
}

// OptionalInt reads the first present path as an integer, or nil
func OptionalInt(r gjson.Result, paths ...string) *int {
	v, ok := First(r, paths...)
	if !ok {
		return nil
	}
	f, ok := number(v)
	if !ok {
		return nil
	}
	n := int(math.Floor(f))
	return &n
}

// OptionalFloat reads the first present path as a number, or nil
func OptionalFloat(r gjson.Result, paths ...string) *float64 {
	v, ok := First(r, paths...)
	if !ok {
		return nil
	}
	f, ok := number(v)
	if !ok {
		return nil
	}
	return &f
}

// ID reads a numeric record id. The first present path decides: if it does not hold
// a finite integer the id is unusable, and later paths are not consulted.
func ID(r gjson.Result, paths ...string) (int64, bool) {
	v, ok := First(r, paths...)
	if !ok {
		return 0, false
	}
	f, ok := number(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// Bool returns true only for an explicit JSON true on the first present path
func Bool(r gjson.Result, paths ...string) bool {
	v, ok := First(r, paths...)
	return ok && v.Type == gjson.True
}

func number(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return 0, false
		}
		return v.Num, true
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Items returns the elements of the first path that holds an array. A body that is
// itself an array is returned as is when no path is given.
func Items(body []byte, paths ...string) []gjson.Result {
	parsed := gjson.ParseBytes(body)
	if len(paths) == 0 {
		if parsed.IsArray() {
			return parsed.Array()
		}
		return nil
	}
	for _, p := range paths {
		if v := parsed.Get(p); v.IsArray() {
			return v.Array()
		}
	}
	return nil
}

// Object returns the first path that holds a JSON object, else the body itself
func Object(body []byte, paths ...string) gjson.Result {
	parsed := gjson.ParseBytes(body)
	for _, p := range paths {
		if v := parsed.Get(p); v.IsObject() {
			return v
		}
	}
	return parsed
}

// Strings reads an array of strings, skipping blanks
func Strings(r gjson.Result, path string) []string {
	v := r.Get(path)
	if !v.IsArray() {
		return nil
	}
	var out []string
	for _, item := range v.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}
