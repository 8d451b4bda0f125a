package httpserver

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productFormBody(t *testing.T, name, price, filename string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	require.NoError(t, w.WriteField("name", name))
	require.NoError(t, w.WriteField("description", "drewniany wiatrak ogrodowy"))
	require.NoError(t, w.WriteField("category", "mills"))
	require.NoError(t, w.WriteField("price", price))
	if filename != "" {
		fw, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake-image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func (a *testApp) doMultipart(t *testing.T, method, target, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) addProduct(t *testing.T, token, name string) uint {
	t.Helper()
	body, ct := productFormBody(t, name, "40", "mill.jpg")
	rec := a.doMultipart(t, http.MethodPost, "/feed/add-product", token, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeBody(t, rec)["data"].(map[string]any)
	return uint(data["id"].(float64))
}

func TestGetUser(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	userID, token := app.signup(t, "a@x.com", "Abcde!")

	rec := app.do(t, http.MethodGet, "/feed/user", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fmt.Sprintf("%d", userID), decodeBody(t, rec)["userId"])
}

func TestGetUser_Anonymous(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	// No header and the storefront's explicit no-token sentinel both
	// resolve to the anonymous marker.
	rec := app.do(t, http.MethodGet, "/feed/user", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "notregistered", decodeBody(t, rec)["userId"])

	rec = app.do(t, http.MethodGet, "/feed/user", "null", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "notregistered", decodeBody(t, rec)["userId"])
}

func TestAddProduct(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	userID, token := app.signup(t, "a@x.com", "Abcde!")

	body, ct := productFormBody(t, "Wiatrak", "40", "mill.jpg")
	rec := app.doMultipart(t, http.MethodPost, "/feed/add-product", token, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Wiatrak", data["name"])
	assert.Equal(t, float64(userID), data["creator_id"])
	assert.Contains(t, data["imageUrl"], "https://cdn.test/images/")
	assert.Len(t, app.Storage.Objects, 1)
}

func TestAddProduct_RequiresSession(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	body, ct := productFormBody(t, "Wiatrak", "40", "mill.jpg")
	rec := app.doMultipart(t, http.MethodPost, "/feed/add-product", "", body, ct)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddProduct_Validation(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	_, token := app.signup(t, "a@x.com", "Abcde!")

	// Missing image.
	body, ct := productFormBody(t, "Wiatrak", "40", "")
	rec := app.doMultipart(t, http.MethodPost, "/feed/add-product", token, body, ct)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Disallowed extension.
	body, ct = productFormBody(t, "Wiatrak", "40", "script.exe")
	rec = app.doMultipart(t, http.MethodPost, "/feed/add-product", token, body, ct)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Unparsable price.
	body, ct = productFormBody(t, "Wiatrak", "cheap", "mill.jpg")
	rec = app.doMultipart(t, http.MethodPost, "/feed/add-product", token, body, ct)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestEditProduct_OnlyCreator(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	_, creator := app.signup(t, "a@x.com", "Abcde!")
	_, other := app.signup(t, "b@x.com", "Abcde!")
	productID := app.addProduct(t, creator, "Wiatrak")

	body, ct := productFormBody(t, "Młyn", "55", "")
	rec := app.doMultipart(t, http.MethodPut, fmt.Sprintf("/feed/editProduct/%d", productID), other, body, ct)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body, ct = productFormBody(t, "Młyn", "55", "")
	rec = app.doMultipart(t, http.MethodPut, fmt.Sprintf("/feed/editProduct/%d", productID), creator, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodGet, fmt.Sprintf("/feed/product/%d", productID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeBody(t, rec)["productDetail"].(map[string]any)
	assert.Equal(t, "Młyn", detail["name"])
	assert.Equal(t, float64(55), detail["price"])
}

func TestDeleteProduct(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	_, creator := app.signup(t, "a@x.com", "Abcde!")
	_, other := app.signup(t, "b@x.com", "Abcde!")
	productID := app.addProduct(t, creator, "Wiatrak")

	rec := app.do(t, http.MethodDelete, fmt.Sprintf("/feed/delete/%d", productID), other, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodDelete, fmt.Sprintf("/feed/delete/%d", productID), creator, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, app.Storage.Objects)

	rec = app.do(t, http.MethodGet, fmt.Sprintf("/feed/product/%d", productID), "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProducts_Pagination(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	_, token := app.signup(t, "a@x.com", "Abcde!")
	for i := 0; i < 3; i++ {
		app.addProduct(t, token, fmt.Sprintf("Wiatrak %d", i))
	}

	rec := app.do(t, http.MethodGet, "/feed/products?page=1&size=2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["products"], 2)

	meta := body["meta"].(map[string]any)
	assert.Equal(t, float64(3), meta["total"])

	rec = app.do(t, http.MethodGet, "/feed/products?page=2&size=2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["products"], 1)
}

func TestGetCategoryProducts(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	_, token := app.signup(t, "a@x.com", "Abcde!")
	app.addProduct(t, token, "Wiatrak")

	rec := app.do(t, http.MethodGet, "/feed/products/mills", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["products"], 1)

	rec = app.do(t, http.MethodGet, "/feed/products/empty-shelf", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec)["products"])
}

func TestSearchProducts(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	_, token := app.signup(t, "a@x.com", "Abcde!")
	app.addProduct(t, token, "Wiatrak ogrodowy")
	app.addProduct(t, token, "Karmnik")

	rec := app.do(t, http.MethodGet, "/feed/search?q=wiatrak", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["total"])
	products := body["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, "Wiatrak ogrodowy", products[0].(map[string]any)["name"])
}

func TestSearchProducts_EmptyQuery(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/feed/search", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSearchProducts_NoHits(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	_, token := app.signup(t, "a@x.com", "Abcde!")
	app.addProduct(t, token, "Wiatrak")

	rec := app.do(t, http.MethodGet, "/feed/search?q=traktor", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(0), body["total"])
	assert.Empty(t, body["products"])
}

func TestDeleteProduct_DropsSearchDocument(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	_, token := app.signup(t, "a@x.com", "Abcde!")
	productID := app.addProduct(t, token, "Wiatrak")

	rec := app.do(t, http.MethodDelete, fmt.Sprintf("/feed/delete/%d", productID), token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/feed/search?q=wiatrak", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["total"])
}

func TestGetProductDetails_InvalidID(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/feed/product/abc", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
