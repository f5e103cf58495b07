package host

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/workflow"
)

// DefaultTimeout bounds each request a Remote makes.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// Remote is a Source backed by the HTTP admin API of `jobdesk serve`.
type Remote struct {
	base   *url.URL
	client *http.Client
}

// NewRemote returns a Remote for the server at baseURL. A nil client gets
// DefaultTimeout.
func NewRemote(baseURL string, client *http.Client) (*Remote, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote url %q: scheme must be http or https", baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Remote{base: u, client: client}, nil
}

// URL returns the server address.
func (c *Remote) URL() string { return c.base.String() }

// envelope mirrors the server's response wrapper with Data left raw.
type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Remote) endpoint(query url.Values, parts ...string) string {
	u := *c.base
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	u.Path = u.Path + APIPrefix + "/" + strings.Join(escaped, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends a request and decodes the envelope's data into out.
func (c *Remote) do(ctx context.Context, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if jerr := json.Unmarshal(raw, &env); jerr != nil {
		if resp.StatusCode >= 300 {
			return &StatusError{Code: resp.StatusCode}
		}
		return fmt.Errorf("decode response: %w", jerr)
	}
	if resp.StatusCode >= 300 || !env.OK {
		se := &StatusError{Code: resp.StatusCode}
		if env.Error != nil {
			se.Kind = env.Error.Code
			se.Message = env.Error.Message
		}
		return se
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func (c *Remote) List(ctx context.Context, r models.Resource, q models.ListQuery) (models.Page, error) {
	var page models.Page
	if err := c.do(ctx, http.MethodGet, c.endpoint(EncodeListQuery(q), string(r)), nil, &page); err != nil {
		return models.Page{}, &FetchError{Resource: r, Err: err}
	}
	if page.Rows == nil {
		page.Rows = []models.Record{}
	}
	return page, nil
}

func (c *Remote) Get(ctx context.Context, r models.Resource, id string) (*models.Record, error) {
	var rec models.Record
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, string(r), id), nil, &rec); err != nil {
		return nil, &FetchError{Resource: r, Err: err}
	}
	return &rec, nil
}

func (c *Remote) Delete(ctx context.Context, r models.Resource, id string) error {
	if err := c.do(ctx, http.MethodDelete, c.endpoint(nil, string(r), id), nil, nil); err != nil {
		return &ActionError{Action: "delete", Resource: r, ID: id, Err: err}
	}
	return nil
}

func (c *Remote) SetStatus(ctx context.Context, r models.Resource, id string, to models.Status, force bool) ([]workflow.GuardResult, error) {
	var resp StatusResponse
	body := StatusRequest{Status: string(to), Force: force}
	if err := c.do(ctx, http.MethodPatch, c.endpoint(nil, string(r), id, "status"), body, &resp); err != nil {
		return nil, &ActionError{Action: "status", Resource: r, ID: id, Err: err}
	}
	return warningsFromDTO(resp.Warnings), nil
}

func (c *Remote) Update(ctx context.Context, r models.Resource, id string, values map[string]string) error {
	body := UpdateRequest{Fields: values}
	if err := c.do(ctx, http.MethodPut, c.endpoint(nil, string(r), id), body, nil); err != nil {
		return &ActionError{Action: "update", Resource: r, ID: id, Err: err}
	}
	return nil
}

func (c *Remote) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	if err := c.do(ctx, http.MethodGet, c.endpoint(nil, "stats"), nil, &stats); err != nil {
		return models.Stats{}, &FetchError{Resource: "stats", Err: err}
	}
	return stats, nil
}

// IsNotFound reports whether err is a missing record, from either the local
// store or a remote server.
func IsNotFound(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusNotFound
	}
	return isLocalNotFound(err)
}
