package intake_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yash-Yashwant/CosplayAI/modules/intake"
)

func makeAsset(name, mimeType string, size int) *intake.PhotoAsset {
	return &intake.PhotoAsset{
		FileName: name,
		MimeType: mimeType,
		Data:     bytes.Repeat([]byte{0xAB}, size),
	}
}

func TestValidate(t *testing.T) {
	v := intake.NewValidator(10 * 1024 * 1024)

	tests := []struct {
		name    string
		asset   *intake.PhotoAsset
		wantErr error
	}{
		{
			name:  "5MiB jpeg passes",
			asset: makeAsset("selfie.jpg", "image/jpeg", 5*1024*1024),
		},
		{
			name:  "png at exactly the limit passes",
			asset: makeAsset("photo.png", "image/png", 10*1024*1024),
		},
		{
			name:    "12MiB png rejected",
			asset:   makeAsset("big.png", "image/png", 12*1024*1024),
			wantErr: intake.ErrTooLarge,
		},
		{
			name:    "non-image declared type rejected",
			asset:   makeAsset("doc.pdf", "application/pdf", 1024),
			wantErr: intake.ErrInvalidType,
		},
		{
			name:    "image type with disallowed extension rejected",
			asset:   makeAsset("anim.gif", "image/gif", 1024),
			wantErr: intake.ErrInvalidType,
		},
		{
			name:    "nil asset rejected",
			asset:   nil,
			wantErr: intake.ErrInvalidType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validated, err := v.Validate(tt.asset)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, intake.IsValidationError(err))
				assert.Nil(t, validated)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, validated)
			assert.NotEmpty(t, validated.Fingerprint)
			assert.NotEmpty(t, validated.SniffedType)
			assert.Equal(t, tt.asset.Size(), validated.Size())
		})
	}
}

func TestValidateDoesNotMutateAsset(t *testing.T) {
	v := intake.NewValidator(0) // 기본 상한 사용

	asset := makeAsset("selfie.jpeg", "image/jpeg", 2048)
	before := append([]byte(nil), asset.Data...)

	_, err := v.Validate(asset)
	require.NoError(t, err)
	assert.Equal(t, before, asset.Data)
}

func TestFingerprintStable(t *testing.T) {
	v := intake.NewValidator(0)

	asset := makeAsset("selfie.jpg", "image/jpeg", 4096)
	first, err := v.Validate(asset)
	require.NoError(t, err)
	second, err := v.Validate(asset)
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint, second.Fingerprint)
}
