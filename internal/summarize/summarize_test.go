// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeStep(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req claudeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "found PMID 36602862")

		fmt.Fprint(w, `{"content":[{"type":"text","text":" Found PMID 36602862 on the GEO page. "}]}`)
	}))
	t.Cleanup(srv.Close)

	oldURL := claudeAPIURL
	claudeAPIURL = srv.URL
	t.Cleanup(func() { claudeAPIURL = oldURL })

	s := &ClaudeSummarizer{APIKey: "test-key"}
	summary, err := s.SummarizeStep(context.Background(), "found PMID 36602862 on the GEO page for GSE159812")
	require.NoError(t, err)
	assert.Equal(t, "Found PMID 36602862 on the GEO page.", summary)
}

func TestSummarizeStepAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"type":"authentication_error"}}`)
	}))
	t.Cleanup(srv.Close)

	oldURL := claudeAPIURL
	claudeAPIURL = srv.URL
	t.Cleanup(func() { claudeAPIURL = oldURL })

	s := &ClaudeSummarizer{APIKey: "bad-key"}
	_, err := s.SummarizeStep(context.Background(), "a step")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestMock(t *testing.T) {
	summary, err := Mock{}.SummarizeStep(context.Background(), "tried elink")
	require.NoError(t, err)
	assert.Equal(t, "step summary (mock): tried elink", summary)
}
