package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSafeSubstitute covers known, unknown, braced, escaped and malformed placeholders.
func TestSafeSubstitute(t *testing.T) {
	t.Parallel()

	values := map[string]string{
		"version":  "1.0.0",
		"react":    "18.2.0",
		"reactdom": "18.2.0",
	}

	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `__version__ = "$version"`, want: `__version__ = "1.0.0"`},
		{name: "braced", in: `react@${react}.js`, want: `react@18.2.0.js`},
		{name: "longest identifier", in: `$reactdom`, want: `18.2.0`},
		{name: "unknown kept", in: `$proptypes and ${polyfill}`, want: `$proptypes and ${polyfill}`},
		{name: "escaped dollar", in: `cost: $$5`, want: `cost: $5`},
		{name: "lone dollar", in: `a $ b`, want: `a $ b`},
		{name: "unclosed brace", in: `${react`, want: `${react`},
		{name: "digit start", in: `$1abc`, want: `$1abc`},
		{name: "trailing dollar", in: `end$`, want: `end$`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, SafeSubstitute(tc.in, values))
		})
	}
}

// TestSafeSubstitute_NilValues leaves every placeholder untouched.
func TestSafeSubstitute_NilValues(t *testing.T) {
	t.Parallel()

	require.Equal(t, "$a ${b}", SafeSubstitute("$a ${b}", nil))
}

// TestRenderFile reads the template from disk.
func TestRenderFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "init.template")
	require.NoError(t, os.WriteFile(path, []byte("__version__ = \"$version\"\n$missing\n"), 0o600))

	got, err := RenderFile(path, map[string]string{"version": "2.0.0"})
	require.NoError(t, err)
	require.Equal(t, "__version__ = \"2.0.0\"\n$missing\n", got)

	_, err = RenderFile(filepath.Join(t.TempDir(), "nope"), nil)
	require.ErrorIs(t, err, os.ErrNotExist)
}
