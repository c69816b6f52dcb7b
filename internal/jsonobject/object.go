// Package jsonobject decodes and encodes JSON objects while keeping the
// order of their keys, so files owned by other programs are rewritten with
// minimal churn and registries are walked in document order.
package jsonobject

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// indent is the indentation used when writing objects back to disk.
const indent = "  "

var (
	errNotObject    = errors.New("json value is not an object")
	errTrailingData = errors.New("unexpected data after json object")
)

// Object is a JSON object that remembers key order.
type Object struct {
	keys   []string
	values map[string]json.RawMessage
}

// New returns an empty object.
func New() *Object {
	return &Object{
		values: make(map[string]json.RawMessage),
	}
}

// Parse decodes data into an Object. A key that appears twice keeps its
// first position and its last value.
func Parse(data []byte) (*Object, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))

	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}

	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, errNotObject
	}

	obj := New()

	for decoder.More() {
		token, err = decoder.Token()
		if err != nil {
			return nil, err
		}

		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v: %w", token, errNotObject)
		}

		var raw json.RawMessage
		if err = decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode %q: %w", key, err)
		}

		var compact bytes.Buffer
		if err = json.Compact(&compact, raw); err != nil {
			return nil, fmt.Errorf("compact %q: %w", key, err)
		}

		obj.setRaw(key, compact.Bytes())
	}

	// Closing brace.
	if _, err = decoder.Token(); err != nil {
		return nil, err
	}

	if _, err = decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}

	return obj, nil
}

// Keys returns the keys in document order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Raw returns the encoded value stored under key.
func (o *Object) Raw(key string) (json.RawMessage, bool) {
	raw, ok := o.values[key]

	return raw, ok
}

// String returns the value under key when it is a JSON string.
func (o *Object) String(key string) (string, bool) {
	raw, ok := o.values[key]
	if !ok {
		return "", false
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}

	return value, true
}

// Set stores value under key, appending the key if it is new.
func (o *Object) Set(key string, value any) error {
	encoded, err := encode(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	o.setRaw(key, encoded)

	return nil
}

// MarshalJSON implements json.Marshaler.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		encodedKey, err := encode(key)
		if err != nil {
			return nil, err
		}

		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(o.values[key])
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MarshalIndent renders the object with two-space indentation.
func (o *Object) MarshalIndent() ([]byte, error) {
	compact, err := o.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err = json.Indent(&out, compact, "", indent); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

func (o *Object) setRaw(key string, raw []byte) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}

	o.values[key] = raw
}

// encode marshals value without HTML escaping so shell operators stay readable.
func encode(value any) ([]byte, error) {
	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(value); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
