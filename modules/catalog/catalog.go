package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ErrUnknownCharacter is returned by Resolve for ids absent from the active list.
var ErrUnknownCharacter = errors.New("unknown character")

// Style - 캐릭터 스타일 카테고리 (닫힌 집합)
type Style string

const (
	StyleAnime     Style = "anime"
	StyleSuperhero Style = "superhero"
	StyleGaming    Style = "gaming"
	StyleComic     Style = "comic"
	StyleFantasy   Style = "fantasy"
)

// CharacterTemplate - 프롬프트 조각을 담는 캐릭터 정의 (로드 후 불변)
type CharacterTemplate struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Style       Style    `json:"style"`
	Costume     string   `json:"costume"`
	Accessories string   `json:"accessories"`
	Hair        string   `json:"hair"`
	Pose        string   `json:"pose"`
	Description string   `json:"description"`
	Colors      []string `json:"colors,omitempty"`
}

// Catalog - 캐릭터 목록. 원격 소스 우선, 실패 시 내장 기본 목록 사용
type Catalog struct {
	url        string
	httpClient *http.Client

	mu      sync.RWMutex
	entries []CharacterTemplate
	index   map[string]int
	source  string // "remote" 또는 "embedded"
}

// New - 카탈로그 생성. URL이 있으면 원격 목록을 한 번 가져오고,
// 실패하면 내장 목록으로 폴백 (자동 재시도 없음)
func New(url string) *Catalog {
	c := &Catalog{
		url:        url,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	if url == "" {
		c.useEmbedded()
		log.Printf("🎭 Character catalog: %d embedded characters (no CATALOG_URL)", len(c.entries))
		return c
	}

	if err := c.Refresh(); err != nil {
		log.Printf("⚠️  Remote catalog fetch failed, falling back to embedded list: %v", err)
		c.useEmbedded()
	}
	log.Printf("🎭 Character catalog ready: %d characters (source: %s)", c.Len(), c.Source())
	return c
}

// Refresh - 원격 카탈로그 재조회. 실패하면 현재 목록을 유지하고 에러 반환
func (c *Catalog) Refresh() error {
	if c.url == "" {
		return fmt.Errorf("no catalog URL configured")
	}

	resp, err := c.httpClient.Get(c.url)
	if err != nil {
		return fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read catalog response: %w", err)
	}

	var entries []CharacterTemplate
	if err := json.Unmarshal(body, &entries); err != nil {
		return fmt.Errorf("failed to parse catalog payload: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("catalog payload is empty")
	}

	c.install(entries, "remote")
	return nil
}

func (c *Catalog) useEmbedded() {
	c.install(defaultCharacters(), "embedded")
}

func (c *Catalog) install(entries []CharacterTemplate, source string) {
	index := make(map[string]int, len(entries))
	for i, entry := range entries {
		index[entry.ID] = i
	}

	c.mu.Lock()
	c.entries = entries
	c.index = index
	c.source = source
	c.mu.Unlock()
}

// Resolve - ID로 캐릭터 템플릿 조회
func (c *Catalog) Resolve(characterID string) (CharacterTemplate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[characterID]
	if !ok {
		return CharacterTemplate{}, fmt.Errorf("%w: %s", ErrUnknownCharacter, characterID)
	}
	return c.entries[i], nil
}

// List - 전체 캐릭터 목록 (복사본)
func (c *Catalog) List() []CharacterTemplate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]CharacterTemplate, len(c.entries))
	copy(out, c.entries)
	return out
}

// ListByStyle - 스타일 카테고리로 필터링
func (c *Catalog) ListByStyle(style Style) []CharacterTemplate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []CharacterTemplate
	for _, entry := range c.entries {
		if entry.Style == style {
			out = append(out, entry)
		}
	}
	return out
}

// Search - 이름/설명/스타일 부분 문자열 검색 (대소문자 무시)
func (c *Catalog) Search(query string) []CharacterTemplate {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.List()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []CharacterTemplate
	for _, entry := range c.entries {
		if strings.Contains(strings.ToLower(entry.Name), q) ||
			strings.Contains(strings.ToLower(entry.Description), q) ||
			strings.Contains(strings.ToLower(string(entry.Style)), q) {
			out = append(out, entry)
		}
	}
	return out
}

// Len - 현재 목록 크기
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Source - 현재 목록의 출처 ("remote" 또는 "embedded")
func (c *Catalog) Source() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source
}
