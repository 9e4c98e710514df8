package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Yash-Yashwant/CosplayAI/modules/prompt"
)

func TestEstimateSeconds(t *testing.T) {
	// 기본: 30초 × 품질 배수
	assert.Equal(t, 45, EstimateSeconds("sailor-moon", prompt.QualityHigh, 1024))
	assert.Equal(t, 30, EstimateSeconds("sailor-moon", prompt.QualityMedium, 1024))
	assert.Equal(t, 21, EstimateSeconds("sailor-moon", prompt.QualityLow, 1024))
}

func TestEstimateSecondsLargePhoto(t *testing.T) {
	small := EstimateSeconds("sailor-moon", prompt.QualityMedium, 1024)
	large := EstimateSeconds("sailor-moon", prompt.QualityMedium, 3*1024*1024)
	assert.Greater(t, large, small)
}

func TestEstimateSecondsComplexCharacter(t *testing.T) {
	simple := EstimateSeconds("sailor-moon", prompt.QualityHigh, 1024)
	detailed := EstimateSeconds("wonder-woman", prompt.QualityHigh, 1024)
	assert.Greater(t, detailed, simple)
}

func TestEstimateSecondsFloor(t *testing.T) {
	// 어떤 조합도 최소치 아래로 내려가지 않는다
	assert.GreaterOrEqual(t, EstimateSeconds("sailor-moon", prompt.QualityLow, 1), minEstimateSeconds)
}
