package ipfs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blues/wcs/internal/config"
	"github.com/blues/wcs/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService(apiUrl, gateway string) *Service {
	return New(config.IpfsConfig{
		ApiUrl:    apiUrl,
		ApiKey:    "key",
		SecretKey: "secret",
		Gateway:   gateway,
	})
}

func TestUploadJSON(t *testing.T) {
	var got struct {
		PinataContent  map[string]interface{} `json:"pinataContent"`
		PinataMetadata map[string]string      `json:"pinataMetadata"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinJSONToIPFS", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("pinata_api_key"))
		assert.Equal(t, "secret", r.Header.Get("pinata_secret_api_key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"IpfsHash":"QmTest123"}`))
	}))
	defer srv.Close()

	cid, err := testService(srv.URL, "").UploadJSON(context.Background(), "spec-guild-1", map[string]string{"task": "do work"})
	require.NoError(t, err)
	assert.Equal(t, "QmTest123", cid)
	assert.Equal(t, "spec-guild-1", got.PinataMetadata["name"])
	assert.Equal(t, "do work", got.PinataContent["task"])
}

func TestUploadJSONUnconfigured(t *testing.T) {
	svc := New(config.IpfsConfig{})
	_, err := svc.UploadJSON(context.Background(), "x", nil)
	require.Error(t, err)
	assert.Equal(t, errs.KindUnavailable, errs.KindOf(err))
}

func TestUploadJSONServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testService(srv.URL, "").UploadJSON(context.Background(), "x", nil)
	require.Error(t, err)
	assert.Equal(t, errs.KindTransport, errs.KindOf(err))
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/QmKnown":
			w.Write([]byte(`{"ok":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	svc := testService("", srv.URL)

	body, err := svc.Fetch(context.Background(), "QmKnown")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	_, err = svc.Fetch(context.Background(), "QmMissing")
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	_, err = svc.Fetch(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestGatewayURL(t *testing.T) {
	svc := testService("", "https://gateway.pinata.cloud/ipfs")
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/QmX", svc.GatewayURL("QmX"))
}
