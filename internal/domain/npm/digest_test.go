package npm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDigest_MarshalFile checks the exact byte layout of digest.json.
func TestDigest_MarshalFile(t *testing.T) {
	t.Parallel()

	digest := NewDigest("dash-renderer", "1.0.0")
	digest.Add("react@18.2.0.min.js", "0123456789abcdef0123456789abcdef")
	digest.Add("dash_renderer.min.js.map", "fedcba9876543210fedcba9876543210")

	data, err := digest.MarshalFile()
	require.NoError(t, err)

	want := "{\n" +
		`    "MD5 (dash_renderer.min.js.map)":"fedcba9876543210fedcba9876543210",` + "\n" +
		`    "MD5 (react@18.2.0.min.js)":"0123456789abcdef0123456789abcdef",` + "\n" +
		`    "dash-renderer":"1.0.0"` + "\n" +
		"}"
	require.Equal(t, want, string(data))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, map[string]string(digest), decoded)
}

// TestDigest_Empty renders an empty object.
func TestDigest_Empty(t *testing.T) {
	t.Parallel()

	data, err := Digest{}.MarshalFile()
	require.NoError(t, err)
	require.Equal(t, "{}", string(data))
}

// TestDigest_Pretty renders the log form with spaced separators.
func TestDigest_Pretty(t *testing.T) {
	t.Parallel()

	require.Equal(t, "{\n    \"a\": \"1\"\n}", NewDigest("a", "1").Pretty())
}
