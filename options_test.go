package pagedriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToParamsNilOptions(t *testing.T) {
	params := toParams(nil)
	require.NotNil(t, params)
	params["url"] = "https://example.com/"
	assert.Equal(t, "https://example.com/", params["url"])
}

func TestToParamsTypedNilPointer(t *testing.T) {
	// firstOption on an empty slice yields a typed nil *GotoOptions, which
	// marshals to "null" instead of "{}".
	opts := firstOption([]GotoOptions{})
	require.Nil(t, opts)
	params := toParams(opts)
	require.NotNil(t, params)
	params["url"] = "https://example.com/"
	assert.Equal(t, "https://example.com/", params["url"])
}

func TestToParamsMergesOptionFields(t *testing.T) {
	opts := firstOption([]GotoOptions{{WaitUntil: String("networkidle")}})
	require.NotNil(t, opts)
	params := toParams(opts)
	assert.Equal(t, "networkidle", params["waitUntil"])
	assert.NotContains(t, params, "referer")
}
