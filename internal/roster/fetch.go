package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMembershipURL is the unitedstates.io dump of current committee
	// membership, the primary fetch source. It requires no credentials.
	DefaultMembershipURL = "https://theunitedstates.io/congress/committee-membership-current.json"

	// DefaultCongressAPIBaseURL is the Congress.gov v3 API root, used as a
	// fallback when the membership dump does not cover the committee.
	DefaultCongressAPIBaseURL = "https://api.congress.gov/v3"

	// DefaultCongress is the congress number stamped on fetched records when
	// the caller does not specify one.
	DefaultCongress = 119

	defaultFetchTimeout = 30 * time.Second
)

// FetchOption configures a Fetcher.
type FetchOption func(*Fetcher)

// WithHTTPClient replaces the HTTP client used for all requests.
func WithHTTPClient(client *http.Client) FetchOption {
	return func(f *Fetcher) {
		f.httpClient = client
	}
}

// WithMembershipURL overrides the membership dump URL.
func WithMembershipURL(rawURL string) FetchOption {
	return func(f *Fetcher) {
		f.membershipURL = rawURL
	}
}

// WithCongressAPIBaseURL overrides the Congress.gov API root.
func WithCongressAPIBaseURL(rawURL string) FetchOption {
	return func(f *Fetcher) {
		f.congressBaseURL = rawURL
	}
}

// Fetcher retrieves committee membership over HTTP. The unitedstates.io
// dump is tried first; when it yields nothing, the Congress.gov API is
// consulted, which requires an API key.
type Fetcher struct {
	apiKey          string
	membershipURL   string
	congressBaseURL string
	httpClient      *http.Client
}

// NewFetcher returns a Fetcher. congressAPIKey may be empty, in which case
// the Congress.gov fallback is skipped and only the membership dump is used.
func NewFetcher(congressAPIKey string, opts ...FetchOption) *Fetcher {
	f := &Fetcher{
		apiKey:          congressAPIKey,
		membershipURL:   DefaultMembershipURL,
		congressBaseURL: DefaultCongressAPIBaseURL,
		httpClient:      &http.Client{Timeout: defaultFetchTimeout},
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// CommitteeMembers fetches the member roster for one committee. Records are
// stamped with committee id, chamber, congress number, and source URL when
// the upstream data does not already carry them. An empty chamber is
// derived from the committee code prefix (H/S/J).
//
// Every source that answers but comes up empty is not an error; the caller
// sees an empty roster. Errors from the attempted sources are combined.
func (f *Fetcher) CommitteeMembers(ctx context.Context, committeeID, chamber string, congress int) ([]Record, error) {
	if chamber == "" {
		chamber = chamberForCode(strings.ToUpper(strings.TrimSpace(committeeID)))
	}

	records, usErr := f.fromUnitedStates(ctx, committeeID, chamber, congress)
	if len(records) > 0 {
		return records, nil
	}

	var cgErr error
	if f.apiKey == "" {
		if usErr == nil {
			// The dump answered but lacks the committee; without an API key
			// there is no further source to consult.
			return nil, nil
		}
		cgErr = errors.New("roster: congress.gov fallback skipped: no api key configured")
	} else {
		records, cgErr = f.fromCongressGov(ctx, committeeID, chamber, congress)
		if len(records) > 0 {
			return records, nil
		}
	}

	if err := errors.Join(usErr, cgErr); err != nil {
		return nil, fmt.Errorf("roster: fetch committee %s: %w", committeeID, err)
	}
	return nil, nil
}

func (f *Fetcher) fromUnitedStates(ctx context.Context, committeeID, chamber string, congress int) ([]Record, error) {
	payload, err := f.getJSON(ctx, f.membershipURL, nil, false)
	if err != nil {
		return nil, err
	}

	var byCode map[string]json.RawMessage
	if err := json.Unmarshal(payload, &byCode); err != nil {
		return nil, fmt.Errorf("roster: parse membership dump: %w", err)
	}

	code := strings.ToUpper(strings.TrimSpace(committeeID))
	raw, ok := byCode[code]
	if !ok {
		return nil, nil
	}

	var stats LoadStats
	records := decodeCommitteeValue(raw, code, &stats)
	stampProvenance(records, f.membershipURL, chamber, congress)
	return records, nil
}

func (f *Fetcher) fromCongressGov(ctx context.Context, committeeID, chamber string, congress int) ([]Record, error) {
	code := normalizeCommitteeCode(committeeID)
	params := url.Values{"congress": {strconv.Itoa(congress)}}

	// The members sub-endpoint carries the roster when Congress.gov exposes
	// it; the committee item endpoint is the fallback shape.
	membersURL := fmt.Sprintf("%s/committee/%s/%s/members", f.congressBaseURL, chamber, code)
	payload, membersErr := f.getJSON(ctx, membersURL, params, true)
	if membersErr == nil {
		if records := f.decodeCongressMembers(payload, committeeID, chamber, congress, membersURL); len(records) > 0 {
			return records, nil
		}
	}

	itemURL := fmt.Sprintf("%s/committee/%s/%s", f.congressBaseURL, chamber, code)
	payload, itemErr := f.getJSON(ctx, itemURL, params, true)
	if itemErr != nil {
		return nil, errors.Join(membersErr, itemErr)
	}
	return f.decodeCongressMembers(payload, committeeID, chamber, congress, itemURL), nil
}

func (f *Fetcher) decodeCongressMembers(payload json.RawMessage, committeeID, chamber string, congress int, source string) []Record {
	code := strings.ToUpper(strings.TrimSpace(committeeID))

	var records []Record
	for _, raw := range extractMemberList(payload) {
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		if strings.TrimSpace(rec.Name) == "" {
			continue
		}
		// Congress.gov spells the identifier bioguideId.
		if rec.Bioguide == "" {
			if id, ok := rec.Extra["bioguideId"].(string); ok {
				rec.Bioguide = id
				delete(rec.Extra, "bioguideId")
			}
		}
		applyCommitteeDefaults(&rec, code)
		records = append(records, rec)
	}
	stampProvenance(records, source, chamber, congress)
	return records
}

// extractMemberList digs a member array out of the variable Congress.gov
// payload shapes: "members" as a list, as {"item": [...]}, or nested once
// more under "members"; a bare "member" list; or the whole structure
// wrapped in a "committee" object.
func extractMemberList(payload json.RawMessage) []json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil
	}

	if raw, ok := obj["members"]; ok {
		if list := asRawList(raw); list != nil {
			return list
		}
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(raw, &inner); err == nil {
			if item, ok := inner["item"]; ok {
				if list := asRawList(item); list != nil {
					return list
				}
			}
			if nested, ok := inner["members"]; ok {
				if list := asRawList(nested); list != nil {
					return list
				}
			}
		}
	}
	if raw, ok := obj["member"]; ok {
		if list := asRawList(raw); list != nil {
			return list
		}
	}
	if raw, ok := obj["committee"]; ok {
		return extractMemberList(raw)
	}
	return nil
}

func asRawList(raw json.RawMessage) []json.RawMessage {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}

func stampProvenance(records []Record, source, chamber string, congress int) {
	for i := range records {
		rec := &records[i]
		if rec.Chamber == "" {
			rec.Chamber = chamber
		}
		if rec.Source == "" {
			rec.Source = source
		}
		if congress <= 0 {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]any)
		}
		if _, ok := rec.Extra["congress"]; !ok {
			rec.Extra["congress"] = congress
		}
	}
}

// normalizeCommitteeCode converts a short committee id to the Congress.gov
// systemCode form: HSAG becomes hsag00. Codes already in systemCode form
// pass through unchanged apart from lower-casing.
func normalizeCommitteeCode(committeeID string) string {
	code := strings.ToLower(strings.TrimSpace(committeeID))
	if len(code) == 4 && isAlpha(code) {
		code += "00"
	}
	return code
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func (f *Fetcher) getJSON(ctx context.Context, rawURL string, params url.Values, withKey bool) (json.RawMessage, error) {
	requestURL := rawURL
	if len(params) > 0 {
		merged := url.Values{"format": {"json"}}
		for key, vals := range params {
			merged[key] = vals
		}
		requestURL = rawURL + "?" + merged.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("roster: build request for %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "application/json")
	if withKey {
		req.Header.Set("X-API-Key", f.apiKey)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("roster: get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("roster: %s returned status %d: %s", rawURL, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("roster: decode %s: %w", rawURL, err)
	}
	return payload, nil
}
