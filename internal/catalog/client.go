package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StatusError reports a non-2xx API response, carrying the status and
// body so the session can surface both to the user.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Body)
}

// TokenSource supplies the current bearer token, empty when logged out.
type TokenSource func(ctx context.Context) string

// Client talks to the MindSpace REST API under <base>/api/v1.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
}

func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		base:   strings.TrimSuffix(baseURL, "/"),
		http:   &http.Client{Timeout: 15 * time.Second},
		tokens: tokens,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type listEnvelope struct {
	Data  []TestSummary `json:"data"`
	Count int           `json:"count"`
}

// ListTests fetches one page and filters it down to tests aimed at the
// given role, optionally narrowed to a category name. Filtering is
// client-side; the API pages over the full catalog.
func (c *Client) ListTests(ctx context.Context, pageIndex, pageSize int, role, category string) ([]TestSummary, int, error) {
	q := url.Values{}
	q.Set("pageIndex", strconv.Itoa(pageIndex))
	q.Set("pageSize", strconv.Itoa(pageSize))
	var env listEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/v1/tests?"+q.Encode(), nil, &env); err != nil {
		return nil, 0, err
	}
	want := strings.ToLower(strings.TrimSpace(role))
	wantCat := strings.ToLower(strings.TrimSpace(category))
	out := make([]TestSummary, 0, len(env.Data))
	for _, t := range env.Data {
		if strings.ToLower(strings.TrimSpace(t.TargetUser)) != want {
			continue
		}
		if wantCat != "" && strings.ToLower(strings.TrimSpace(t.TestCategory.Name)) != wantCat {
			continue
		}
		out = append(out, t)
	}
	return out, env.Count, nil
}

func (c *Client) GetTestDefinition(ctx context.Context, testID int) (*TestDefinition, error) {
	var def TestDefinition
	if err := c.do(ctx, http.MethodGet, "/api/v1/tests/"+strconv.Itoa(testID), nil, &def); err != nil {
		return nil, err
	}
	if len(def.Questions) == 0 {
		return nil, fmt.Errorf("test %d has no questions", testID)
	}
	return &def, nil
}

type detailEnvelope struct {
	Data []TestResponseDetail `json:"data"`
}

func (c *Client) GetResponseDetails(ctx context.Context, testID int) ([]TestResponseDetail, error) {
	var env detailEnvelope
	err := c.do(ctx, http.MethodGet, "/api/v1/test-responses?testId="+strconv.Itoa(testID), nil, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) SubmitTestResponse(ctx context.Context, payload SubmitTestResponse) error {
	return c.do(ctx, http.MethodPost, "/api/v1/test-responses", payload, nil)
}
