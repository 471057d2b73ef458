package assets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	out, err := Render()
	require.NoError(t, err)

	page := string(out)
	assert.Contains(t, page, "<title>GeoConvert</title>")
	assert.Contains(t, page, "/api/convert/dms")
	assert.Contains(t, page, "--accent")
	assert.NotContains(t, page, "{{")
	assert.Less(t, len(out), len(indexTemplate)+len(styleCSS)+len(scriptJS)+len(faviconSVG))
}

func TestFavicon(t *testing.T) {
	out, err := Favicon()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "<svg"))
	assert.Less(t, len(out), len(faviconSVG))
}

// Picks on a world copy past the antimeridian must be wrapped back into
// [-180, 180] before they reach the conversion API.
func TestRenderWrapsPickedLongitude(t *testing.T) {
	out, err := Render()
	require.NoError(t, err)
	assert.Contains(t, string(out), "latlng.wrap()")
}
