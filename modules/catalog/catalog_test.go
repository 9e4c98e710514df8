package catalog_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yash-Yashwant/CosplayAI/modules/catalog"
)

func TestEmbeddedDefaults(t *testing.T) {
	c := catalog.New("")

	entries := c.List()
	require.NotEmpty(t, entries)
	assert.Equal(t, "embedded", c.Source())

	// 중복 ID가 없어야 한다
	seen := map[string]bool{}
	for _, entry := range entries {
		assert.False(t, seen[entry.ID], "duplicate character id: %s", entry.ID)
		seen[entry.ID] = true
		assert.NotEmpty(t, entry.Name)
		assert.NotEmpty(t, entry.Costume)
		assert.NotEmpty(t, entry.Hair)
	}

	// 다섯 개 스타일 카테고리가 모두 커버되어야 한다
	for _, style := range []catalog.Style{
		catalog.StyleAnime, catalog.StyleSuperhero, catalog.StyleGaming,
		catalog.StyleComic, catalog.StyleFantasy,
	} {
		assert.NotEmpty(t, c.ListByStyle(style), "no characters for style %s", style)
	}
}

func TestRemoteFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"link","name":"Link","style":"fantasy","costume":"green tunic","hair":"blonde hair","pose":"sword drawn","description":"Hero of Hyrule"}
		]`))
	}))
	defer srv.Close()

	c := catalog.New(srv.URL)

	assert.Equal(t, "remote", c.Source())
	require.Equal(t, 1, c.Len())

	tmpl, err := c.Resolve("link")
	require.NoError(t, err)
	assert.Equal(t, "Link", tmpl.Name)
	assert.Equal(t, catalog.StyleFantasy, tmpl.Style)
}

func TestRemoteFetchFailureFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"not":"an array"`))
			},
		},
		{
			name: "empty payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[]`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := catalog.New(srv.URL)

			// 폴백된 내장 목록과 정확히 같아야 한다
			assert.Equal(t, "embedded", c.Source())
			assert.Equal(t, catalog.New("").List(), c.List())
		})
	}
}

func TestRemoteFetchNetworkErrorFallsBack(t *testing.T) {
	// 닫힌 서버 주소로 연결 실패 유도
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := catalog.New(url)
	assert.Equal(t, "embedded", c.Source())
	assert.NotZero(t, c.Len())
}

func TestResolveUnknown(t *testing.T) {
	c := catalog.New("")

	_, err := c.Resolve("no-such-character")
	assert.ErrorIs(t, err, catalog.ErrUnknownCharacter)
}

func TestRefreshFailureKeepsActiveList(t *testing.T) {
	fail := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[{"id":"link","name":"Link","style":"fantasy","costume":"green tunic","hair":"blonde hair","pose":"sword drawn","description":"Hero of Hyrule"}]`))
	}))
	defer srv.Close()

	c := catalog.New(srv.URL)
	require.Equal(t, "remote", c.Source())

	fail = true
	err := c.Refresh()
	require.Error(t, err)

	// 실패한 Refresh는 기존 목록을 건드리지 않는다
	assert.Equal(t, "remote", c.Source())
	assert.Equal(t, 1, c.Len())
}

func TestSearch(t *testing.T) {
	c := catalog.New("")

	results := c.Search("scarf")
	require.Len(t, results, 1)
	assert.Equal(t, "mikasa", results[0].ID)

	assert.Empty(t, c.Search("zzz-no-match"))
	assert.Len(t, c.Search(""), c.Len())
}
