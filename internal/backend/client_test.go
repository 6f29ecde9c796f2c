package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(strings.TrimPrefix(srv.URL, "http://"), 2*time.Second)
}

func TestCallSuccessReturnsPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/ozon/parsing-items" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"link":"https://ozon.ru/x"}]`))
	})

	payload, errText, err := c.Call(context.Background(), http.MethodGet, "parsing-items", "ozon", "tok-1", nil, nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if errText != "" {
		t.Fatalf("errText = %q", errText)
	}
	var items []Item
	if err := json.Unmarshal(payload, &items); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if len(items) != 1 || items[0].Link != "https://ozon.ru/x" {
		t.Fatalf("items = %+v", items)
	}
}

func TestCallNon2xxReturnsBodyText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("Link already registered"))
	})

	payload, errText, err := c.Call(context.Background(), http.MethodPost, "parsing-items", "wb", "tok", Item{Link: "x"}, nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if payload != nil {
		t.Fatalf("payload must be nil on failure, got %s", payload)
	}
	if errText != "Link already registered" {
		t.Fatalf("errText = %q", errText)
	}
}

func TestCallTransportErrorIsError(t *testing.T) {
	c := New("127.0.0.1:1", 300*time.Millisecond)
	_, _, err := c.Call(context.Background(), http.MethodGet, "parsing-items", "ozon", "tok", nil, nil)
	if err == nil {
		t.Fatal("expected transport error")
	}
}

func TestCallHonorsContextCancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, _, err := c.Call(ctx, http.MethodGet, "parsing-items", "ozon", "tok", nil, nil)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if time.Since(start) > time.Second {
		t.Fatal("call was not cancelled promptly")
	}
}

func TestSearchProducts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mvideo/products/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if q := r.URL.Query().Get("query"); q != "ssd" {
			t.Errorf("query = %q", q)
		}
		_, _ = w.Write([]byte(`[{"name":"SSD 1TB","price":"9990","productUrl":"https://m.example/p/1"}]`))
	})

	products, errText, err := c.SearchProducts(context.Background(), "mvideo", "tok", "ssd")
	if err != nil || errText != "" {
		t.Fatalf("SearchProducts: (%q, %v)", errText, err)
	}
	if len(products) != 1 || products[0].Name != "SSD 1TB" {
		t.Fatalf("products = %+v", products)
	}
}

func TestDeleteItemDecodesResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %q", r.Method)
		}
		var body Item
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Link == "" {
			t.Errorf("bad body: %v (%+v)", err, body)
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"Removed"}`))
	})

	res, errText, err := c.DeleteItem(context.Background(), "ozon", "tok", "https://ozon.ru/x")
	if err != nil || errText != "" {
		t.Fatalf("DeleteItem: (%q, %v)", errText, err)
	}
	if !res.Success || res.Message != "Removed" {
		t.Fatalf("res = %+v", res)
	}
}

func TestProductsByURLPassesParam(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("product_urls"); got != "https://m.example/p/1" {
			t.Errorf("product_urls = %q", got)
		}
		_, _ = w.Write([]byte(`[{"name":"SSD","price":"1","brandName":"Acme","details":{"Capacity":"1TB"},"productUrl":"https://m.example/p/1"}]`))
	})

	products, errText, err := c.ProductsByURL(context.Background(), "mvideo", "tok", "https://m.example/p/1")
	if err != nil || errText != "" {
		t.Fatalf("ProductsByURL: (%q, %v)", errText, err)
	}
	if products[0].Details["Capacity"] != "1TB" {
		t.Fatalf("details = %+v", products[0].Details)
	}
}
