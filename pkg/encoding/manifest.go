package encoding

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Jeffail/gabs/v2"
	omap "github.com/iancoleman/orderedmap"
)

// Entry is a named rectangle read from a manifest.
type Entry struct {
	Name   string
	Width  float64
	Height float64
}

// ReadManifest parses a JSON manifest of sizes.
//
// The manifest is either an array of {"name", "w", "h"} objects or an object
// mapping names to {"w", "h"}. "width" and "height" are accepted as long keys.
// Entries are returned in document order.
func ReadManifest(b []byte) ([]*Entry, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("ReadManifest: empty manifest")
	}

	if trimmed[0] == '{' {
		return readManifestObject(trimmed)
	}
	return readManifestArray(trimmed)
}

func readManifestArray(b []byte) ([]*Entry, error) {
	parsed, err := parseNumberJSON(b)
	if err != nil {
		return nil, err
	}
	if _, ok := parsed.Data().([]interface{}); !ok {
		return nil, fmt.Errorf("readManifestArray: expected array or object at top level")
	}

	var entries []*Entry
	for idx, child := range parsed.Children() {
		name, ok := child.Search("name").Data().(string)
		if !ok {
			name = fmt.Sprintf("%d", idx)
		}
		entry, err := parseEntry(name, child)
		if err != nil {
			return nil, fmt.Errorf("readManifestArray: idx=%d, %w", idx, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func readManifestObject(b []byte) ([]*Entry, error) {
	o, err := shallowUnmarshalJSONObject(b)
	if err != nil {
		return nil, err
	}

	var entries []*Entry
	for _, name := range o.Keys() {
		raw, _ := o.Get(name)
		child, err := parseNumberJSON(raw.(json.RawMessage))
		if err != nil {
			return nil, fmt.Errorf("readManifestObject: name=%s, %w", name, err)
		}
		entry, err := parseEntry(name, child)
		if err != nil {
			return nil, fmt.Errorf("readManifestObject: name=%s, %w", name, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func parseNumberJSON(b []byte) (*gabs.Container, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return gabs.ParseJSONDecoder(dec)
}

func parseEntry(name string, c *gabs.Container) (*Entry, error) {
	width, err := searchNumber(c, "w", "width")
	if err != nil {
		return nil, fmt.Errorf("parseEntry: unable to parse width, name=%s, %w", name, err)
	}
	height, err := searchNumber(c, "h", "height")
	if err != nil {
		return nil, fmt.Errorf("parseEntry: unable to parse height, name=%s, %w", name, err)
	}

	return &Entry{Name: name, Width: width, Height: height}, nil
}

func searchNumber(c *gabs.Container, keys ...string) (float64, error) {
	for _, key := range keys {
		if !c.Exists(key) {
			continue
		}
		n, ok := c.Search(key).Data().(json.Number)
		if !ok {
			return 0, fmt.Errorf("searchNumber: not a number, key=%s", key)
		}
		return n.Float64()
	}
	return 0, fmt.Errorf("searchNumber: missing key, keys=%v", keys)
}

// shallowUnmarshalJSONObject reads the top-level keys of a JSON object in order,
// keeping the values raw.
func shallowUnmarshalJSONObject(b []byte) (*omap.OrderedMap, error) {
	dec := json.NewDecoder(bytes.NewReader(b))

	// read '{'
	t, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := t.(json.Delim)
	if !ok || delim != '{' {
		return nil, fmt.Errorf("shallowUnmarshalJSONObject: unexpected token, expected='{', found='%v'", t)
	}

	o := omap.New()

	for dec.More() {
		// read key
		t, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := t.(string)

		// read value
		var value json.RawMessage
		err = dec.Decode(&value)
		if err != nil {
			return nil, err
		}

		o.Set(key, value)
	}

	// read '}'
	t, err = dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok = t.(json.Delim)
	if !ok || delim != '}' {
		return nil, fmt.Errorf("shallowUnmarshalJSONObject: unexpected token, expected='}', found='%v'", t)
	}

	return o, nil
}
