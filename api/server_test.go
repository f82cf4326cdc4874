package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-list/core/catalog"
	"price-list/core/output"
	"price-list/core/types"
)

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Build(catalog.Data{
		Units: []types.Unit{
			{ID: "kilogram", Category: "weight", Factor: decimal.NewFromInt(1)},
			{ID: "gram", Category: "weight", Factor: decimal.RequireFromString("0.001")},
			{ID: "liter", Category: "volume", Factor: decimal.NewFromInt(1)},
		},
		Categories: []types.Category{{ID: "fruit"}},
		Products: []types.Product{
			{ID: "apple", DefaultUnit: "kilogram", ListPrice: dp("10"), CostPrice: dp("4"), Categories: []string{"fruit"}},
			{ID: "pear", DefaultUnit: "kilogram", ListPrice: dp("12")},
		},
		PriceLists: []types.PriceList{
			{
				ID:     "retail",
				Name:   "Retail",
				Active: true,
				Lines: []types.PriceListLine{
					{Sequence: 10, Product: types.Ptr("apple"), Quantity: dp("10"), Formula: "unit_price * 0.8"},
					{Sequence: 20, Product: types.Ptr("pear"), Formula: "cost_price / 0"},
					{Sequence: 30, Formula: "unit_price"},
				},
			},
			{
				ID:          "wholesale",
				Name:        "Wholesale",
				Active:      true,
				TaxIncluded: true,
				Lines:       []types.PriceListLine{{Sequence: 10, Category: types.Ptr("fruit"), Formula: "cost_price * 1.5"}},
			},
			{ID: "old", Name: "Old", Active: false},
		},
	})
	require.NoError(t, err)
	return c
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Version == "" {
		opts.Version = "test"
	}
	return NewServer(testCatalog(t), opts)
}

func post(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/compute", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestCompute(t *testing.T) {
	s := newTestServer(t, Options{Places: -1})

	tests := []struct {
		name        string
		body        string
		price       *string
		matched     bool
		sequence    int
		taxIncluded bool
	}{
		{
			name:     "bulk discount",
			body:     `{"price_list":"retail","product":"apple","base_price":"10","quantity":"12","unit":"kilogram"}`,
			price:    types.Ptr("8"),
			matched:  true,
			sequence: 10,
		},
		{
			name:     "grams reach the kilogram threshold",
			body:     `{"price_list":"retail","product":"apple","base_price":10,"quantity":10000,"unit":"gram"}`,
			price:    types.Ptr("8"),
			matched:  true,
			sequence: 10,
		},
		{
			name:     "incompatible unit skips threshold",
			body:     `{"price_list":"retail","product":"apple","base_price":"10","quantity":"12","unit":"liter"}`,
			price:    types.Ptr("10"),
			matched:  true,
			sequence: 30,
		},
		{
			name:        "category line with cost price",
			body:        `{"price_list":"wholesale","party":"acme","product":"apple","quantity":"1","unit":"kilogram"}`,
			price:       types.Ptr("6"),
			matched:     true,
			sequence:    10,
			taxIncluded: true,
		},
		{
			name:        "no match passes null base price through",
			body:        `{"price_list":"wholesale","product":"pear","quantity":"1","unit":"kilogram"}`,
			price:       nil,
			taxIncluded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp ComputeResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.price, resp.Price)
			assert.Equal(t, tt.matched, resp.Matched)
			assert.Equal(t, tt.taxIncluded, resp.TaxIncluded)
			if tt.matched {
				require.NotNil(t, resp.Line)
				assert.Equal(t, tt.sequence, resp.Line.Sequence)
			} else {
				assert.Nil(t, resp.Line)
			}
			_, err := uuid.Parse(resp.RequestID)
			assert.NoError(t, err)
			assert.Equal(t, resp.RequestID, rec.Header().Get(RequestIDHeader))
		})
	}
}

func TestComputeUsesDefaultListAndPlaces(t *testing.T) {
	s := newTestServer(t, Options{DefaultList: "retail", Places: 2})

	rec := post(t, s, `{"product":"apple","base_price":"10","quantity":"1","unit":"kilogram"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ComputeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "retail", resp.PriceList)
	require.NotNil(t, resp.Price)
	assert.Equal(t, "10.00", *resp.Price)
}

func TestComputeKeepsClientRequestID(t *testing.T) {
	s := newTestServer(t, Options{DefaultList: "retail"})
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodPost, "/compute",
		strings.NewReader(`{"product":"apple","quantity":"1","unit":"kilogram","base_price":"1"}`))
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
}

func TestComputeErrors(t *testing.T) {
	s := newTestServer(t, Options{})

	tests := []struct {
		name    string
		body    string
		status  int
		code    string
		message string
	}{
		{name: "malformed json", body: `{"product":`, status: http.StatusBadRequest, code: "INPUT_ERROR"},
		{name: "unknown field", body: `{"product":"apple","qty":1}`, status: http.StatusBadRequest, code: "INPUT_ERROR"},
		{name: "missing fields", body: `{"price_list":"retail"}`, status: http.StatusBadRequest, code: "INPUT_ERROR", message: "product, quantity, unit"},
		{name: "no list and no default", body: `{"product":"apple","quantity":"1","unit":"kilogram"}`, status: http.StatusBadRequest, code: "INPUT_ERROR", message: "price_list is required"},
		{name: "unknown list", body: `{"price_list":"vip","product":"apple","quantity":"1","unit":"kilogram"}`, status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "inactive list", body: `{"price_list":"old","product":"apple","quantity":"1","unit":"kilogram"}`, status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "unknown product", body: `{"price_list":"retail","product":"kiwi","quantity":"1","unit":"kilogram"}`, status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "division by zero", body: `{"price_list":"retail","product":"pear","base_price":"12","quantity":"1","unit":"kilogram"}`, status: http.StatusUnprocessableEntity, code: "FORMULA_EVALUATION_ERROR", message: "division by zero"},
		{name: "unit_price unbound", body: `{"price_list":"retail","product":"apple","quantity":"1","unit":"kilogram"}`, status: http.StatusUnprocessableEntity, code: "FORMULA_EVALUATION_ERROR", message: "unit_price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
			if tt.message != "" {
				assert.Contains(t, resp.Error.Message, tt.message)
			}
		})
	}
}

func TestFormulaErrorCarriesLineContext(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := post(t, s, `{"price_list":"retail","product":"pear","base_price":"12","quantity":"1","unit":"kilogram"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "retail", resp.Error.Context["price_list"])
	assert.Equal(t, float64(20), resp.Error.Context["sequence"])
}

func TestListPriceLists(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/price-lists", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PriceListsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "retail", resp.PriceLists[0].ID)
	assert.Equal(t, "wholesale", resp.PriceLists[1].ID)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/price-lists?all=true", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
}

func TestGetPriceList(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/price-lists/retail", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var view output.PriceListView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "Retail", view.Name)
	require.Len(t, view.Lines, 3)
	assert.Equal(t, "10", *view.Lines[0].Quantity)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/price-lists/old", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t, Options{Version: "1.2.3"})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "1.2.3", health["version"])
	assert.Len(t, health["fingerprint"], 64)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	var version map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &version))
	assert.Equal(t, "1.2.3", version["version"])
}

func TestSetCatalogSwapsData(t *testing.T) {
	s := newTestServer(t, Options{})

	replacement, err := catalog.Build(catalog.Data{
		Units:      []types.Unit{{ID: "kilogram", Category: "weight", Factor: decimal.NewFromInt(1)}},
		Products:   []types.Product{{ID: "apple", DefaultUnit: "kilogram"}},
		PriceLists: []types.PriceList{{ID: "flat", Name: "Flat", Active: true, Lines: []types.PriceListLine{{Formula: "5"}}}},
	})
	require.NoError(t, err)
	s.SetCatalog(replacement)

	rec := post(t, s, `{"price_list":"flat","product":"apple","quantity":"1","unit":"kilogram"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"price":"5"`)

	rec = post(t, s, `{"price_list":"retail","product":"apple","quantity":"1","unit":"kilogram"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, Options{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, &http.Server{Addr: addr}, time.Second)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
