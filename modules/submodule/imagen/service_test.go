package imagen

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yash-Yashwant/CosplayAI/modules/generation"
)

func TestBuildPredictRequest(t *testing.T) {
	photo := []byte{0x89, 0x50, 0x4E, 0x47}
	payload := buildPredictRequest(&generation.SubmitRequest{
		Prompt: "cosplay portrait of a knight",
		Photo:  photo,
	})

	require.Len(t, payload.Instances, 1)
	inst := payload.Instances[0]
	assert.Equal(t, "cosplay portrait of a knight", inst.Prompt)
	require.NotNil(t, inst.Image)
	assert.Equal(t, base64.StdEncoding.EncodeToString(photo), inst.Image.BytesBase64Encoded)

	p := payload.Parameters
	assert.Equal(t, 1, p.SampleCount)
	assert.Equal(t, "1:1", p.AspectRatio)
	assert.Equal(t, "block_some", p.SafetyFilterLevel)
	assert.Equal(t, "allow_adult", p.PersonGeneration)
	assert.Equal(t, "image/png", p.OutputOptions.MimeType)
	assert.Equal(t, "lossless", p.OutputOptions.CompressionQuality)

	require.NotNil(t, p.EditConfig)
	assert.Equal(t, "inpainting-replace", p.EditConfig.EditMode)
	assert.Equal(t, 120, p.EditConfig.GuidanceScale)
	assert.Equal(t, "EDITED_IMAGE", p.EditConfig.OutputImageType)
	assert.Equal(t, 100, p.StylizationLevel)
}
