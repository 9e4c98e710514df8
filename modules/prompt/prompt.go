package prompt

import (
	"regexp"
	"strings"

	"github.com/Yash-Yashwant/CosplayAI/modules/catalog"
)

// StyleTag - 렌더링 스타일 (닫힌 집합)
type StyleTag string

const (
	StyleAnime     StyleTag = "anime"
	StyleRealistic StyleTag = "realistic"
	StyleComic     StyleTag = "comic"
	StyleFantasy   StyleTag = "fantasy"
	StyleGaming    StyleTag = "gaming"
)

// QualityTag - 품질 등급 (닫힌 집합)
type QualityTag string

const (
	QualityLow    QualityTag = "low"
	QualityMedium QualityTag = "medium"
	QualityHigh   QualityTag = "high"
)

// Options - 프롬프트 생성 옵션
type Options struct {
	Style   StyleTag
	Quality QualityTag
}

// ParseStyleTag - 요청 문자열을 스타일 태그로, 알 수 없으면 anime
func ParseStyleTag(s string) StyleTag {
	switch StyleTag(strings.ToLower(strings.TrimSpace(s))) {
	case StyleRealistic:
		return StyleRealistic
	case StyleComic:
		return StyleComic
	case StyleFantasy:
		return StyleFantasy
	case StyleGaming:
		return StyleGaming
	default:
		return StyleAnime
	}
}

// ParseQualityTag - 요청 문자열을 품질 태그로, 알 수 없으면 high
func ParseQualityTag(s string) QualityTag {
	switch QualityTag(strings.ToLower(strings.TrimSpace(s))) {
	case QualityLow:
		return QualityLow
	case QualityMedium:
		return QualityMedium
	default:
		return QualityHigh
	}
}

var styleModifiers = map[StyleTag]string{
	StyleAnime:     "anime style, cel-shaded, vibrant colors, anime-realistic hybrid",
	StyleRealistic: "photorealistic, detailed textures, natural lighting, hyperrealistic",
	StyleComic:     "comic book style, bold lines, dynamic colors, comic accurate",
	StyleFantasy:   "fantasy art style, magical atmosphere, ethereal lighting, mystical",
	StyleGaming:    "game art style, digital painting, vibrant colors, video game accurate",
}

var qualityModifiers = map[QualityTag]string{
	QualityHigh:   "ultra detailed, 8k resolution, professional grade",
	QualityMedium: "detailed, high resolution, good quality",
	QualityLow:    "basic, standard quality",
}

// 허용 문자 밖의 입력 제거용 (단어/공백/쉼표/점/하이픈)
var unsafeChars = regexp.MustCompile(`[^\w\s,.\-]`)

const maxPromptLength = 500

// Build composes the provider-facing prompt from a character template and
// options. Pure and deterministic: identical inputs yield byte-identical
// output. Fragment order is fixed - costume, hair, pose, description, then
// style and quality qualifiers.
func Build(template catalog.CharacterTemplate, opts Options) string {
	parts := []string{
		"Transform this person into a perfect cosplay of " + template.Name,
		template.Costume,
		template.Hair,
		template.Pose,
		template.Description,
		styleModifiers[normalizeStyle(opts.Style)],
		qualityModifiers[normalizeQuality(opts.Quality)],
	}

	var kept []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			kept = append(kept, part)
		}
	}

	return sanitize(strings.Join(kept, ", "))
}

func normalizeStyle(s StyleTag) StyleTag {
	if _, ok := styleModifiers[s]; ok {
		return s
	}
	return StyleAnime
}

func normalizeQuality(q QualityTag) QualityTag {
	if _, ok := qualityModifiers[q]; ok {
		return q
	}
	return QualityHigh
}

// sanitize - 특수 문자 제거, 500자 초과 시 마지막 쉼표에서 절단
func sanitize(prompt string) string {
	prompt = unsafeChars.ReplaceAllString(prompt, "")

	if len(prompt) > maxPromptLength {
		truncated := prompt[:maxPromptLength]
		if i := strings.LastIndex(truncated, ","); i > 0 {
			truncated = truncated[:i]
		}
		prompt = truncated
	}

	return strings.TrimSpace(prompt)
}
