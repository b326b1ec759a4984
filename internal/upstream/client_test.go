package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront_system/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch_InstantCodeHitsCodeEndpoint(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{"reference": "ref-1", "code": "XYZ-99"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "secret-key", time.Second)
	res, err := c.Dispatch(context.Background(), InstantCodeRequest{
		UpstreamProductID: "gk-1", Reference: "ref-1", Quantity: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, "/fulfill/code", gotPath)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "gk-1", gotBody["product_id"])
	assert.Equal(t, "ref-1", gotBody["reference"])
	assert.Equal(t, float64(2), gotBody["quantity"])
	assert.Equal(t, "ref-1", res.Reference)
	assert.Equal(t, "XYZ-99", res.Code)
}

func TestDispatch_TypeSpecificFields(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{"reference": "ref-2"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "k", time.Second)

	_, err := c.Dispatch(context.Background(), GameTopupRequest{
		UpstreamProductID: "dm-1", Reference: "ref-2", Quantity: 1, PlayerUID: "uid-7",
	})
	require.NoError(t, err)
	assert.Equal(t, "/fulfill/game", gotPath)
	assert.Equal(t, "uid-7", gotBody["player_uid"])

	_, err = c.Dispatch(context.Background(), MobileTopupRequest{
		UpstreamProductID: "mt-1", Reference: "ref-2", Quantity: 1, PhoneNumber: "15550001111",
	})
	require.NoError(t, err)
	assert.Equal(t, "/fulfill/mobile", gotPath)
	assert.Equal(t, "15550001111", gotBody["phone"])
}

func TestDispatch_EmptyReferenceInReplyKeepsOurs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "k", time.Second)
	res, err := c.Dispatch(context.Background(), CashcardRequest{
		UpstreamProductID: "cc-1", Reference: "ref-3", Quantity: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, "ref-3", res.Reference)
}

func TestDispatch_NonSuccessStatusIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "k", time.Second)
	_, err := c.Dispatch(context.Background(), GenericRequest{
		UpstreamProductID: "x-1", Reference: "ref-4", Quantity: 1,
	})

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestDispatch_TimeoutIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond) // Longer than the client timeout
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "k", 20*time.Millisecond)
	_, err := c.Dispatch(context.Background(), PreorderCodeRequest{
		UpstreamProductID: "pc-1", Reference: "ref-5", Quantity: 1,
	})

	assert.ErrorIs(t, err, domain.ErrUpstream)
}
