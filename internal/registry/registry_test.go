package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderd/pkg/types"
)

func TestBuild(t *testing.T) {
	dets := Build("acme/tox-es", "acme/spam-es")
	require.Len(t, dets, 2)

	assert.Equal(t, DetectorToxicity, dets[0].ID)
	assert.Equal(t, "text-classification", dets[0].Task)
	assert.Equal(t, "acme/tox-es", dets[0].Model)
	assert.Equal(t, types.LabelToxic, dets[0].PositiveLabel)
	assert.Equal(t, types.LabelNonToxic, dets[0].NegativeLabel)

	assert.Equal(t, DetectorSpam, dets[1].ID)
	assert.Equal(t, "acme/spam-es", dets[1].Model)
	assert.Equal(t, types.LabelSpam, dets[1].PositiveLabel)
	assert.Equal(t, types.LabelNotSpam, dets[1].NegativeLabel)
}
