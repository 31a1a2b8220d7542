package subnet

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func setupHTTPTest() (*Manager, http.Handler) {
	m := newManagerForPlatform(newFakePlatform(), nil)
	r := chi.NewRouter()
	NewHandler(m).Routes(r)
	return m, r
}

func TestHTTPHandler_CreateAndList(t *testing.T) {
	_, r := setupHTTPTest()

	body, _ := json.Marshal(createSubnetRequest{CIDR: "10.5.0.0/24"})
	req := httptest.NewRequest(http.MethodPost, "/subnet", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created subnetResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "10.5.0.0/24", created.CIDR)

	listReq := httptest.NewRequest(http.MethodGet, "/subnet", nil)
	listW := httptest.NewRecorder()
	r.ServeHTTP(listW, listReq)

	var list []subnetResponse
	require.NoError(t, json.Unmarshal(listW.Body.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestHTTPHandler_CreateInvalidCIDR(t *testing.T) {
	_, r := setupHTTPTest()

	body, _ := json.Marshal(createSubnetRequest{CIDR: "192.168.0.0/24"})
	req := httptest.NewRequest(http.MethodPost, "/subnet", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHTTPHandler_RemoveUnknown(t *testing.T) {
	_, r := setupHTTPTest()

	req := httptest.NewRequest(http.MethodDelete, "/subnet/10.5.0.0%2F24", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHTTPHandler_RemoveExisting(t *testing.T) {
	m, r := setupHTTPTest()

	_, err := m.Allocate("10.5.0.0/24")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/subnet/10.5.0.0%2F24", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
}

func TestHTTPHandler_Healthz(t *testing.T) {
	m, r := setupHTTPTest()
	_, err := m.Allocate("10.5.0.0/24")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "healthy", resp.Status)
	require.Equal(t, 1, resp.ActiveSubnets)
}
