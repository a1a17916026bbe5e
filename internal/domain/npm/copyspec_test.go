package npm

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCopyEntry_Names covers keys, source paths and target names.
func TestCopyEntry_Names(t *testing.T) {
	t.Parallel()

	polyfill := CopyEntry{Scope: "@babel", Name: "polyfill", Subfolder: "dist", Filename: "polyfill.min.js"}
	require.Equal(t, "@babel/polyfill", polyfill.Key())
	require.Equal(t, filepath.Join("nm", "@babel", "polyfill", "dist", "polyfill.min.js"), polyfill.SourcePath("nm"))
	require.Equal(t, "polyfill@7.12.1.min.js", polyfill.TargetName("7.12.1"))

	propTypes := CopyEntry{Name: "prop-types", Filename: "prop-types.js"}
	require.Equal(t, "prop-types", propTypes.Key())
	require.Equal(t, filepath.Join("nm", "prop-types", "prop-types.js"), propTypes.SourcePath("nm"))
	require.Equal(t, "prop-types@15.8.1.js", propTypes.TargetName("15.8.1"))
	require.Equal(t, "proptypes", propTypes.SquashedName())
}

// TestCopyEntry_Ext only treats a whole "min" token as minified.
func TestCopyEntry_Ext(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"react.production.min.js": "min.js",
		"react.development.js":    "js",
		"minimal.js":              "js",
		"admin.js":                "js",
	}
	for filename, want := range cases {
		require.Equal(t, want, CopyEntry{Name: "x", Filename: filename}.Ext(), filename)
	}
}

// TestCopyEntry_Extras renders the extras placeholder and value.
func TestCopyEntry_Extras(t *testing.T) {
	t.Parallel()

	entry := CopyEntry{Name: "react-dom", Filename: "react-dom.development.js", Extras: []string{"16.14.0", "18.2.0"}}
	require.Equal(t, "extra_reactdom_versions", entry.ExtrasPlaceholder())
	require.Equal(t, `"16.14.0", "18.2.0"`, entry.ExtrasValue())
}

// TestRendererCopySpec keeps the shipped bundle list in order.
func TestRendererCopySpec(t *testing.T) {
	t.Parallel()

	spec := RendererCopySpec()
	require.Len(t, spec, 7)
	require.Equal(t, "@babel/polyfill", spec[0].Key())
	require.Equal(t, []string{"18.2.0"}, spec[1].Extras)
	require.Empty(t, spec[5].Extras)
}
