package webpage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vittaya051733-boop/tungtong1/internal/connectors/fetch"
	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

func TestClient_PageURL(t *testing.T) {
	c := NewClient("", nil)

	got, err := c.PageURL("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, "https://www.lottery.co.th/lotto/01-06-67", got)

	got, err = c.PageURL("2043-01-17")
	require.NoError(t, err)
	assert.Equal(t, "https://www.lottery.co.th/lotto/17-01-86", got)

	_, err = c.PageURL("junk")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestClient_Text(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/16-06-67", r.URL.Path)
		_, _ = w.Write([]byte(`<html><head><title>x</title></head><body>
			<script>var a = 1;</script>
			<div>รางวัลที่ 1</div><p>123 456</p>
			<div>เลขท้าย&nbsp;2&nbsp;ตัว</div>
		</body></html>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, fetch.NewClient(srv.Client(), nil))
	text, err := c.Text(context.Background(), "2024-06-16")
	require.NoError(t, err)

	assert.Contains(t, text, "รางวัลที่ 1")
	assert.Contains(t, text, "123456")
	assert.Contains(t, text, "เลขท้าย 2 ตัว")
	assert.NotContains(t, text, "var a")
}

func TestClient_Text_Upstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, fetch.NewClient(srv.Client(), nil))
	_, err := c.Text(context.Background(), "2024-06-16")
	assert.True(t, domain.IsUpstreamStatus(err, http.StatusServiceUnavailable))
}
