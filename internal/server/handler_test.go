package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anupamd/billsplit/internal/receipt"
	"github.com/anupamd/billsplit/internal/service"
	"github.com/anupamd/billsplit/internal/storage/sqlite"
)

type stubExtractor struct {
	rcpt *receipt.Receipt
	err  error
}

func (s *stubExtractor) ExtractReceipt(_ context.Context, _ string) (*receipt.Receipt, error) {
	return s.rcpt, s.err
}

func newTestServer(t *testing.T, extractor receipt.Extractor) *httptest.Server {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "billsplit-http-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	handler := NewHandler(service.NewBillService(store, extractor))
	r := chi.NewRouter()
	r.Mount("/api/v1/bills", handler.Routes())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var envelope map[string]interface{}
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	}
	return resp, envelope
}

func createBill(t *testing.T, srv *httptest.Server, body interface{}) string {
	t.Helper()

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/bills", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data := envelope["data"].(map[string]interface{})
	return data["id"].(string)
}

func TestCreateBill(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("empty session", func(t *testing.T) {
		resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/bills", map[string]interface{}{})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		data := envelope["data"].(map[string]interface{})
		assert.NotEmpty(t, data["id"])
		assert.Empty(t, data["people"])
		assert.Empty(t, data["items"])
	})

	t.Run("with people and items", func(t *testing.T) {
		resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/bills", map[string]interface{}{
			"people": []string{"A", "B"},
			"items": []map[string]interface{}{
				{"name": "Pizza", "price": 20.00, "shared_by": []string{"A", "B"}},
			},
			"tip": map[string]interface{}{"kind": "percentage", "value": 10},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		data := envelope["data"].(map[string]interface{})
		items := data["items"].([]interface{})
		require.Len(t, items, 1)
		item := items[0].(map[string]interface{})
		assert.Equal(t, 20.00, item["price"])
		assert.NotEmpty(t, item["id"])
	})

	t.Run("duplicate person is a conflict", func(t *testing.T) {
		resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/bills", map[string]interface{}{
			"people": []string{"A", "A"},
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, false, envelope["success"])
	})

	t.Run("bad charge kind is rejected", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/bills", map[string]interface{}{
			"tip": map[string]interface{}{"kind": "flat", "value": 5},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/v1/bills", "application/json", strings.NewReader("{nope"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestBillNotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/v1/bills/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/bills/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPeopleEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	billID := createBill(t, srv, map[string]interface{}{
		"people": []string{"Alice", "Bob"},
		"items": []map[string]interface{}{
			{"name": "Pizza", "price": 20.00, "shared_by": []string{"Alice", "Bob"}},
		},
	})

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/bills/"+billID+"/people",
		map[string]interface{}{"name": "Carol"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := envelope["data"].(map[string]interface{})
	assert.Len(t, data["people"], 3)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/bills/"+billID+"/people",
		map[string]interface{}{"name": "Alice"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Removal cascades into item shares.
	resp, envelope = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/bills/"+billID+"/people/Bob", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = envelope["data"].(map[string]interface{})
	item := data["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, []interface{}{"Alice"}, item["shared_by"])

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/bills/"+billID+"/people/Bob", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestItemEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	billID := createBill(t, srv, map[string]interface{}{"people": []string{"Alice"}})

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/bills/"+billID+"/items",
		map[string]interface{}{"name": "Ramen", "price": 14.00, "shared_by": []string{"Alice"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := envelope["data"].(map[string]interface{})
	itemID := data["items"].([]interface{})[0].(map[string]interface{})["id"].(string)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/bills/"+billID+"/items",
		map[string]interface{}{"name": "Gyoza", "price": 6.00, "shared_by": []string{"Ghost"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, envelope = doJSON(t, http.MethodPut, srv.URL+"/api/v1/bills/"+billID+"/items/"+itemID,
		map[string]interface{}{"name": "Ramen XL", "price": 16.00, "shared_by": []string{"Alice"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = envelope["data"].(map[string]interface{})
	assert.Equal(t, "Ramen XL", data["items"].([]interface{})[0].(map[string]interface{})["name"])

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/v1/bills/"+billID+"/items/missing",
		map[string]interface{}{"name": "X", "price": 1.00})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, envelope = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/bills/"+billID+"/items/"+itemID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = envelope["data"].(map[string]interface{})
	assert.Empty(t, data["items"])
}

func TestSplitAndSummaryEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	billID := createBill(t, srv, map[string]interface{}{
		"people": []string{"A", "B"},
		"items": []map[string]interface{}{
			{"name": "Pizza", "price": 20.00, "shared_by": []string{"A", "B"}},
			{"name": "Soda", "price": 4.00, "shared_by": []string{"A"}},
		},
		"tip": map[string]interface{}{"kind": "percentage", "value": 10},
		"tax": map[string]interface{}{"kind": "percentage", "value": 5},
	})

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/api/v1/bills/"+billID+"/split", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, 24.00, data["subtotal"])
	assert.Equal(t, 27.60, data["total"])
	perPerson := data["per_person"].(map[string]interface{})
	assert.Equal(t, 16.10, perPerson["A"])
	assert.Equal(t, 11.50, perPerson["B"])

	resp, err := http.Get(srv.URL + "/api/v1/bills/" + billID + "/summary")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Bill Split Summary")
	assert.Contains(t, buf.String(), "A: $16.10")
}

func TestChargesEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	billID := createBill(t, srv, map[string]interface{}{
		"people": []string{"A"},
		"items": []map[string]interface{}{
			{"name": "Pizza", "price": 20.00, "shared_by": []string{"A"}},
		},
	})

	resp, envelope := doJSON(t, http.MethodPut, srv.URL+"/api/v1/bills/"+billID+"/charges",
		map[string]interface{}{
			"tip": map[string]interface{}{"kind": "fixed_amount", "value": 3.00},
			"tax": map[string]interface{}{"kind": "percentage", "value": 5},
		})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := envelope["data"].(map[string]interface{})
	tip := data["tip"].(map[string]interface{})
	assert.Equal(t, "fixed_amount", tip["kind"])
	assert.Equal(t, 3.00, tip["value"])

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/v1/bills/"+billID+"/charges",
		map[string]interface{}{
			"tip": map[string]interface{}{"kind": "percentage", "value": -1},
			"tax": map[string]interface{}{"kind": "percentage", "value": 0},
		})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScanEndpoint(t *testing.T) {
	tip := 7.30
	extractor := &stubExtractor{rcpt: &receipt.Receipt{
		VendorInfo: receipt.VendorInfo{Name: "Luigi's", Date: "2025-02-01"},
		LineItems: []receipt.LineItem{
			{ItemName: "Margherita", Subtotal: 18.50},
			{ItemName: "House Red", Subtotal: 18.00},
		},
		Totals: receipt.Totals{Subtotal: 36.50, Tax: 3.20, Tip: &tip},
	}}

	srv := newTestServer(t, extractor)
	billID := createBill(t, srv, map[string]interface{}{"people": []string{"Alice"}})

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/bills/"+billID+"/scan",
		map[string]interface{}{"image_base64": "aGVsbG8="})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := envelope["data"].(map[string]interface{})
	assert.Len(t, data["items"], 2)
	assert.Equal(t, "Luigi's", data["vendor"].(map[string]interface{})["name"])

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/bills/"+billID+"/scan",
		map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScanEndpointUpstreamFailure(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{err: receipt.ErrUnparsable})
	billID := createBill(t, srv, map[string]interface{}{"people": []string{"Alice"}})

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/api/v1/bills/"+billID+"/scan",
		map[string]interface{}{"image_base64": "aGVsbG8="})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, false, envelope["success"])
}

func TestDeleteBill(t *testing.T) {
	srv := newTestServer(t, nil)
	billID := createBill(t, srv, map[string]interface{}{"people": []string{"Alice"}})

	resp, _ := doJSON(t, http.MethodDelete, srv.URL+"/api/v1/bills/"+billID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/bills/"+billID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
