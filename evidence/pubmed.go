// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/poiesic/evidentia/core"
)

// DefaultPubMedURL is the NCBI E-utilities search endpoint.
const DefaultPubMedURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"

// defaultPubMedTimeout bounds a single count lookup. The endpoint usually
// answers in well under a second; anything slower is treated as unavailable.
const defaultPubMedTimeout = 10 * time.Second

// PubMedOracle queries the NCBI E-utilities API for study counts.
type PubMedOracle struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

// PubMedOption configures a PubMedOracle.
type PubMedOption func(*PubMedOracle)

// WithAPIKey sets the NCBI API key, which raises the rate limit from 3 to
// 10 requests per second.
func WithAPIKey(key string) PubMedOption {
	return func(o *PubMedOracle) {
		o.apiKey = key
	}
}

// WithBaseURL overrides the E-utilities endpoint. Used in tests.
func WithBaseURL(url string) PubMedOption {
	return func(o *PubMedOracle) {
		o.baseURL = url
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) PubMedOption {
	return func(o *PubMedOracle) {
		o.client = client
	}
}

// NewPubMedOracle creates an oracle backed by the NCBI E-utilities API.
func NewPubMedOracle(opts ...PubMedOption) *PubMedOracle {
	oracle := &PubMedOracle{
		client:  &http.Client{Timeout: defaultPubMedTimeout},
		baseURL: DefaultPubMedURL,
		logger:  slog.Default().With("component", "pubmed-oracle"),
	}
	for _, opt := range opts {
		opt(oracle)
	}
	return oracle
}

// esearchResponse mirrors the subset of the E-utilities JSON envelope we
// read. The count comes back as a decimal string.
type esearchResponse struct {
	ESearchResult struct {
		Count string `json:"count"`
	} `json:"esearchresult"`
}

// StudyCount queries the endpoint with retmax=0 so only the hit count is
// transferred, never the result set.
func (o *PubMedOracle) StudyCount(ctx context.Context, term string) (*core.EvidenceCount, error) {
	query := BuildQuery(term)

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", query)
	params.Set("retmode", "json")
	params.Set("retmax", "0")
	if o.apiKey != "" {
		params.Set("api_key", o.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrOracleUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}

	var parsed esearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	count, err := strconv.Atoi(parsed.ESearchResult.Count)
	if err != nil {
		return nil, fmt.Errorf("%w: count %q", ErrMalformedResponse, parsed.ESearchResult.Count)
	}

	o.logger.Debug("study count fetched", "term", term, "query", query, "count", count)

	return &core.EvidenceCount{
		Count:       count,
		OracleQuery: query,
		CachedAt:    time.Now(),
	}, nil
}
