package lotusrpc

import (
	"strconv"

	"github.com/tidwall/gjson"
)

// Extractor converts a raw result into a typed value. ok is false when the
// result is absent or has the wrong shape.
type Extractor[T any] func(res gjson.Result) (v T, ok bool)

// AsString accepts JSON strings only.
func AsString(res gjson.Result) (string, bool) {
	if res.Type != gjson.String {
		return "", false
	}
	return res.Str, true
}

// AsUint64 accepts JSON numbers written as plain non-negative integers that
// fit in 64 bits. 21.0, -1 and 1e3 are all rejected.
func AsUint64(res gjson.Result) (uint64, bool) {
	if res.Type != gjson.Number {
		return 0, false
	}
	n, err := strconv.ParseUint(res.Raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
