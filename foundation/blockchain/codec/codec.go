// Package codec implements the canonical byte encoding used for all hashing
// and signing needs on the cypher blockchain. Any record is encoded as JSON
// with lexicographically sorted object keys, compact separators and stable
// numeric representation so that two structurally equal records always
// produce the identical byte sequence.
package codec

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// Encode returns the canonical byte encoding for the specified value. The
// value is first flattened through the standard JSON representation and then
// rewritten with sorted keys and no insignificant whitespace.
func Encode(value any) ([]byte, error) {

	// Use an encoder so HTML characters are not escaped. The escaping rules
	// the standard library applies by default are not part of the canonical
	// format.
	var data bytes.Buffer
	enc := json.NewEncoder(&data)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}

	// Re-read the document into generic form, keeping numbers in their
	// original textual representation. Integers stay plain decimals and
	// floating point timestamps keep their canonical shortest form.
	dec := json.NewDecoder(bytes.NewReader(data.Bytes()))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}

	var buf bytes.Buffer
	if err := write(&buf, doc); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Hash returns the lowercase hex encoded SHA-256 hash over the canonical
// encoding of the specified value.
func Hash(value any) string {
	data, err := Encode(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// =============================================================================

// write appends the canonical form of the specified document to the buffer.
func write(buf *bytes.Buffer, doc any) error {
	switch v := doc.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, key := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, key)
			buf.WriteByte(':')
			if err := write(buf, v[key]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')

	case []any:
		buf.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := write(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')

	case json.Number:
		buf.WriteString(v.String())

	case string:
		writeString(buf, v)

	case bool:
		buf.WriteString(strconv.FormatBool(v))

	case nil:
		buf.WriteString("null")

	default:
		return fmt.Errorf("unsupported value of type %T", doc)
	}

	return nil
}

// writeString appends the JSON encoding of the string without HTML escaping.
func writeString(buf *bytes.Buffer, s string) {
	var data bytes.Buffer
	enc := json.NewEncoder(&data)
	enc.SetEscapeHTML(false)
	enc.Encode(s)

	buf.Write(bytes.TrimRight(data.Bytes(), "\n"))
}
