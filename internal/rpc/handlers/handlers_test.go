package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T, handlersMap MethodHandlers) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	SetupHandlers(mux, handlersMap)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func decodeErrorBody(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestCreateApiV1Path(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  Path
	}{
		{"EmptyInput", "", Path("/api/v1/")},
		{"LeadingSlash", "/myResource", Path("/api/v1/myResource")},
		{"NoLeadingSlash", "myResource", Path("/api/v1/myResource")},
		{"Subtree", "markets/", Path("/api/v1/markets/")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CreateApiV1Path(tc.input)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSetupHandlers_ValidMethod(t *testing.T) {
	server := setupTestServer(t, MethodHandlers{
		CreateApiV1Path("test"): {
			HTTP_GET: func(r *http.Request) (any, error) {
				return map[string]string{"message": "hello"}, nil
			},
		},
	})

	resp, err := http.Get(server.URL + "/api/v1/test")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "hello", body["message"])
}

func TestSetupHandlers_MethodNotAllowed(t *testing.T) {
	server := setupTestServer(t, MethodHandlers{
		CreateApiV1Path("test"): {
			HTTP_GET: func(r *http.Request) (any, error) { return nil, nil },
		},
	})

	resp, err := http.Post(server.URL+"/api/v1/test", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSetupHandlers_PlainErrorRendersAs500JSON(t *testing.T) {
	server := setupTestServer(t, MethodHandlers{
		CreateApiV1Path("boom"): {
			HTTP_GET: func(r *http.Request) (any, error) {
				return nil, errors.New("upstream exploded")
			},
		},
	})

	resp, err := http.Get(server.URL + "/api/v1/boom")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeErrorBody(t, resp)
	assert.Equal(t, "internal server error", body.Error)
	assert.Equal(t, "upstream exploded", body.Details)
}

func TestSetupHandlers_HTTPErrorPicksStatusAndMessage(t *testing.T) {
	server := setupTestServer(t, MethodHandlers{
		CreateApiV1Path("bad"): {
			HTTP_GET: func(r *http.Request) (any, error) {
				return nil, BadRequest("missing parameter")
			},
		},
		CreateApiV1Path("fail"): {
			HTTP_GET: func(r *http.Request) (any, error) {
				return nil, Internal("failed to fetch NFTs", errors.New("timeout"))
			},
		},
	})

	resp, err := http.Get(server.URL + "/api/v1/bad")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeErrorBody(t, resp)
	assert.Equal(t, "missing parameter", body.Error)
	assert.Empty(t, body.Details)

	resp2, err := http.Get(server.URL + "/api/v1/fail")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp2.StatusCode)
	body2 := decodeErrorBody(t, resp2)
	assert.Equal(t, "failed to fetch NFTs", body2.Error)
	assert.Equal(t, "timeout", body2.Details)
}

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 50, 0},
		{"explicit", "limit=20&offset=40", 20, 40},
		{"invalid falls back", "limit=abc&offset=-5", 50, 0},
		{"zero limit falls back", "limit=0", 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/x?"+tt.query, nil)
			limit, offset := ExtractLimitOffset(r, 50)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestExtractOptionalUint64(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?bondId=7", nil)
	v := ExtractOptionalUint64(r, "bondId")
	require.NotNil(t, v)
	assert.Equal(t, uint64(7), *v)

	r = httptest.NewRequest(http.MethodGet, "/x", nil)
	assert.Nil(t, ExtractOptionalUint64(r, "bondId"))

	r = httptest.NewRequest(http.MethodGet, "/x?bondId=-1", nil)
	assert.Nil(t, ExtractOptionalUint64(r, "bondId"))
}
