package artifact

import (
	"testing"

	"github.com/DRSN-tech/product-intelligence/pkg/e"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Tags []string `json:"tags"`
}

func TestEncodeDecode(t *testing.T) {
	data, err := Encode(KindTagModel, samplePayload{Tags: []string{"leather", "wallet"}})
	require.NoError(t, err)

	var out samplePayload
	env, err := Decode(data, KindTagModel, &out)
	require.NoError(t, err)
	assert.Equal(t, Version, env.Version)
	assert.Equal(t, []string{"leather", "wallet"}, out.Tags)
}

func TestDecode_RejectsForeignContainers(t *testing.T) {
	data, err := Encode(KindIndex, samplePayload{})
	require.NoError(t, err)

	_, err = Decode(data, KindEmbeddings, &samplePayload{})
	assert.ErrorIs(t, err, e.ErrKindMismatch)

	var env map[string]any
	require.NoError(t, json.Unmarshal(data, &env))

	env["version"] = Version + 1
	bumped, err := json.Marshal(env)
	require.NoError(t, err)
	_, err = Decode(bumped, KindIndex, &samplePayload{})
	assert.ErrorIs(t, err, e.ErrVersionMismatch)

	env["version"] = Version
	env["format"] = "pickle"
	foreign, err := json.Marshal(env)
	require.NoError(t, err)
	_, err = Decode(foreign, KindIndex, &samplePayload{})
	assert.ErrorIs(t, err, e.ErrFormatMismatch)

	_, err = Decode([]byte("\x80\x04garbage"), KindIndex, &samplePayload{})
	assert.ErrorIs(t, err, e.ErrArtifactCorrupt)
}
