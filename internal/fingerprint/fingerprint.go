// Package fingerprint computes the content-derived integrity token
// returned to callers after an event is persisted. The token is a
// pure function of the event's scalar field values: two records with
// the same values produce the same fingerprint on any platform, any
// process, any run. Callers must exclude the generated primary key
// and the fingerprint field itself before hashing.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"
)

// Compute hashes the scalar entries of values. Nil entries and
// non-scalar entries (nested objects, lists) are discarded; the
// remaining pairs are sorted by field name and serialized as
// "name=value\n" lines into sha256. The first eight bytes of the
// digest, big endian, are the fingerprint.
func Compute(values map[string]interface{}) uint64 {
	names := make([]string, 0, len(values))
	for name, v := range values {
		if !scalar(v) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		io.WriteString(h, name)
		io.WriteString(h, "=")
		io.WriteString(h, canonical(values[name]))
		io.WriteString(h, "\n")
	}
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}

func scalar(v interface{}) bool {
	switch v.(type) {
	case nil, map[string]interface{}, []interface{}:
		return false
	}
	return true
}

// canonical renders a value in a representation that does not depend
// on the runtime. Floats use the shortest round-trippable form,
// times are normalized to UTC.
func canonical(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", t)
	}
}
