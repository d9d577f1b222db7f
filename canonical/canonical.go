// Package canonical produces deterministic serializations and content hashes
// for audit records.
//
// Two records with the same field values canonicalize to byte-identical
// strings regardless of field insertion order, so the SHA-256 digest of the
// canonical form is a stable content identifier. Sequence order is preserved:
// only object keys are sorted, never array elements, because array order is
// semantically meaningful (timelines, rule traces).
//
// Volatile fields that must not participate in a record's own hash (the
// record's hash field itself, wall-clock generation timestamps) are removed
// via an explicit dot-path exclusion list rather than ad hoc deletion, so the
// exclusion set can be echoed in exports for independent re-verification.
package canonical

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/caselight/caselight/errors"
)

// Canonicalize renders a JSON-like value as its canonical string form.
// The input may be a struct, map, slice, or scalar; anything encoding/json
// can marshal. Values that cannot be serialized at all return an error
// wrapping errors.ErrInvalidInput.
func Canonicalize(v any) (string, error) {
	return CanonicalizeExcluding(v, nil)
}

// CanonicalizeExcluding canonicalizes v after removing the fields named by
// excludeFields. Each entry is a dot-separated path rooted at the top-level
// object, e.g. "metadata.generatedAt" or "packetHash". Paths that do not
// resolve are ignored: exclusion is a guarantee about what is absent from the
// output, not an assertion about the input.
func CanonicalizeExcluding(v any, excludeFields []string) (string, error) {
	normalized, err := normalize(v)
	if err != nil {
		return "", err
	}

	for _, path := range excludeFields {
		normalized = excludePath(normalized, strings.Split(path, "."))
	}

	var sb strings.Builder
	if err := emit(&sb, normalized); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// normalize round-trips v through encoding/json into the generic
// map/slice/scalar representation. Numbers are decoded as json.Number so the
// canonical form preserves the exact literal the encoder produced instead of
// drifting through float64.
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WrapInvalidInput(err, "canonicalize: value is not serializable")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, errors.WrapInvalidInput(err, "canonicalize: re-decode failed")
	}
	return out, nil
}

// excludePath removes the field addressed by path from the normalized tree.
// Only object keys are traversed; exclusion paths never address into arrays.
func excludePath(v any, path []string) any {
	obj, ok := v.(map[string]any)
	if !ok || len(path) == 0 {
		return v
	}

	key := path[0]
	if len(path) == 1 {
		delete(obj, key)
		return obj
	}

	if child, ok := obj[key]; ok {
		obj[key] = excludePath(child, path[1:])
	}
	return obj
}

// emit writes the canonical form of a normalized value.
func emit(sb *strings.Builder, v any) error {
	switch val := v.(type) {
	case nil:
		sb.WriteString("null")
	case bool:
		if val {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case json.Number:
		sb.WriteString(val.String())
	case string:
		encoded, err := json.Marshal(val)
		if err != nil {
			return errors.WrapInvalidInput(err, "canonicalize: string encoding failed")
		}
		sb.Write(encoded)
	case []any:
		sb.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := emit(sb, elem); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			encodedKey, err := json.Marshal(k)
			if err != nil {
				return errors.WrapInvalidInput(err, "canonicalize: key encoding failed")
			}
			sb.Write(encodedKey)
			sb.WriteByte(':')
			if err := emit(sb, val[k]); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	default:
		return errors.Newf("canonicalize: unexpected normalized type %T", v)
	}
	return nil
}
