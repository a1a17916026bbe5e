package npm

import (
	"bytes"
	"encoding/json"
	"sort"
)

const digestIndent = "    "

// Digest maps the package name to its version and "MD5 (<file>)" to a hex digest.
type Digest map[string]string

// NewDigest starts a payload with the package name and version.
func NewDigest(name, version string) Digest {
	return Digest{name: version}
}

// DigestKey is the payload key for a bundle file.
func DigestKey(filename string) string {
	return "MD5 (" + filename + ")"
}

// Add records the checksum of a bundle file.
func (d Digest) Add(filename, checksum string) {
	d[DigestKey(filename)] = checksum
}

// Keys returns the payload keys in sorted order.
func (d Digest) Keys() []string {
	keys := make([]string, 0, len(d))
	for key := range d {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// MarshalFile renders the payload the way digest.json has always looked:
// sorted keys, four-space indent, no space after the colon and no trailing newline.
func (d Digest) MarshalFile() ([]byte, error) {
	if len(d) == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer

	buf.WriteString("{\n")

	for i, key := range d.Keys() {
		k, err := encodeString(key)
		if err != nil {
			return nil, err
		}

		v, err := encodeString(d[key])
		if err != nil {
			return nil, err
		}

		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString(digestIndent)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}

	buf.WriteString("\n}")

	return buf.Bytes(), nil
}

// Pretty renders the payload for log output.
func (d Digest) Pretty() string {
	data, err := json.MarshalIndent(map[string]string(d), "", digestIndent)
	if err != nil {
		return ""
	}

	return string(data)
}

// encodeString quotes s as a JSON string without HTML escaping.
func encodeString(s string) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(s); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
