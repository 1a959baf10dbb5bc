package evidence

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPubMedOracleStudyCount(t *testing.T) {
	var gotParams map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotParams = map[string]string{
			"db":      r.URL.Query().Get("db"),
			"term":    r.URL.Query().Get("term"),
			"retmode": r.URL.Query().Get("retmode"),
			"retmax":  r.URL.Query().Get("retmax"),
			"api_key": r.URL.Query().Get("api_key"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"esearchresult":{"count":"1234"}}`))
	}))
	defer server.Close()

	oracle := NewPubMedOracle(WithBaseURL(server.URL), WithAPIKey("test-key"))

	count, err := oracle.StudyCount(context.Background(), "Creatine")
	require.NoError(t, err)
	assert.Equal(t, 1234, count.Count)
	assert.Equal(t, `"Creatine"[Title/Abstract]`, count.OracleQuery)
	assert.False(t, count.CachedAt.IsZero())

	assert.Equal(t, "pubmed", gotParams["db"])
	assert.Equal(t, `"Creatine"[Title/Abstract]`, gotParams["term"])
	assert.Equal(t, "json", gotParams["retmode"])
	assert.Equal(t, "0", gotParams["retmax"])
	assert.Equal(t, "test-key", gotParams["api_key"])
}

func TestPubMedOracleServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	oracle := NewPubMedOracle(WithBaseURL(server.URL))

	_, err := oracle.StudyCount(context.Background(), "Creatine")
	assert.ErrorIs(t, err, ErrOracleUnavailable)
}

func TestPubMedOracleMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	oracle := NewPubMedOracle(WithBaseURL(server.URL))

	_, err := oracle.StudyCount(context.Background(), "Creatine")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestPubMedOracleNonNumericCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"esearchresult":{"count":"many"}}`))
	}))
	defer server.Close()

	oracle := NewPubMedOracle(WithBaseURL(server.URL))

	_, err := oracle.StudyCount(context.Background(), "Creatine")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestPubMedOracleUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	oracle := NewPubMedOracle(WithBaseURL(server.URL))

	_, err := oracle.StudyCount(context.Background(), "Creatine")
	assert.ErrorIs(t, err, ErrOracleUnavailable)
}
