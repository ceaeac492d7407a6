package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/search", r.URL.Path)
		assert.Equal(t, "west lake", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"count":1,"data":[{"id":7,"title":"West Lake at dawn","slug":"west-lake"}]}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/", WithLang("en"))
	require.NoError(t, err)

	articles, err := c.Search(context.Background(), "west lake", 5)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.EqualValues(t, 7, articles[0].ID)
	assert.Equal(t, "west-lake", articles[0].Slug)
}

func TestClientSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"请输入搜索关键词"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "", 0)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "请输入搜索关键词", apiErr.Message)
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("localhost")
	assert.Error(t, err)
}

func TestHighlight(t *testing.T) {
	cases := []struct{ text, q, want string }{
		{"West Lake <b>", "lake", "West <mark>Lake</mark> &lt;b&gt;"},
		{"西湖与西溪", "西", "<mark>西</mark>湖与<mark>西</mark>溪"},
		{"a+b", "+", "a<mark>+</mark>b"},
		{"x<b>y", "<b>", "x<mark>&lt;b&gt;</mark>y"},
		{"Tom & Jerry", "  ", "Tom &amp; Jerry"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Highlight(c.text, c.q), c.text)
	}
}
