package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownRouteRendersNotFoundPage(t *testing.T) {
	a := newTestApp(t)
	b := a.browser(t)

	resp := b.get("/definitely/not/here")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	page := body(t, resp)
	assert.Contains(t, page, "Page not found")
	assert.Contains(t, page, "Back to the shop")
	assert.NotContains(t, page, "/definitely/not/here")
}

func TestMissingProductAndCategory(t *testing.T) {
	a := newTestApp(t)
	b := a.browser(t)

	assert.Equal(t, http.StatusNotFound, b.get("/product/999").StatusCode)
	assert.Equal(t, http.StatusNotFound, b.get("/product/abc").StatusCode)
	assert.Equal(t, http.StatusNotFound, b.get("/category/42").StatusCode)
	assert.Equal(t, http.StatusNotFound, b.get("/category/-1").StatusCode)
}

func TestCatalogPages(t *testing.T) {
	a := newTestApp(t)
	b := a.browser(t)

	page := body(t, b.get("/"))
	for _, name := range []string{"Perfume", "Body Cream", "Hair Cream", "Chanel No. 5", "Himalava"} {
		assert.Contains(t, page, name)
	}

	page = body(t, b.get("/category/3"))
	assert.Contains(t, page, "Hair Cream")
	assert.NotContains(t, page, "Chanel No. 5")

	page = body(t, b.get("/product/11"))
	assert.Contains(t, page, "Dolce &amp; Gabban")
	assert.Contains(t, page, "4000.00")
}

func TestPostWithoutCSRFIsRejected(t *testing.T) {
	a := newTestApp(t)
	b := a.browser(t)
	b.csrf()

	req := httptest.NewRequest(http.MethodPost, "/cart/add/1", strings.NewReader(url.Values{"csrf": {"forged"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := b.do(req)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Security check failed")
	assert.Empty(t, b.cookies["cart"])
}

func TestHealthAndMetrics(t *testing.T) {
	a := newTestApp(t)
	b := a.browser(t)

	resp := b.get("/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, body(t, resp))

	b.post("/cart/add/1", nil)
	metrics := body(t, b.get("/metrics"))
	assert.Contains(t, metrics, `storefront_cart_operations_total{op="add"} 1`)
	assert.Contains(t, metrics, "go_goroutines")
}

func TestSecurityHeaders(t *testing.T) {
	a := newTestApp(t)
	resp := a.browser(t).get("/")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Frame-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}
