package generation

import (
	"github.com/Yash-Yashwant/CosplayAI/modules/prompt"
)

const (
	baseEstimateSeconds = 30
	minEstimateSeconds  = 15
	largePhotoBytes     = 2 * 1024 * 1024
)

var qualityTimeMultipliers = map[prompt.QualityTag]float64{
	prompt.QualityHigh:   1.5,
	prompt.QualityMedium: 1.0,
	prompt.QualityLow:    0.7,
}

// 디테일이 많아 생성이 오래 걸리는 캐릭터들
var complexCharacters = map[string]bool{
	"wonder-woman": true,
	"zelda":        true,
	"2b":           true,
}

// EstimateSeconds - 예상 생성 시간(초). 진행 표시용 추정치일 뿐 보장은 아니다.
func EstimateSeconds(characterID string, quality prompt.QualityTag, photoBytes int64) int {
	estimate := float64(baseEstimateSeconds)

	if mult, ok := qualityTimeMultipliers[quality]; ok {
		estimate *= mult
	}

	if photoBytes > largePhotoBytes {
		estimate *= 1.2
	}

	if complexCharacters[characterID] {
		estimate *= 1.1
	}

	if int(estimate) < minEstimateSeconds {
		return minEstimateSeconds
	}
	return int(estimate)
}
