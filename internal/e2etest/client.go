package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/evidenx/evidenx/internal/errors"
)

type Client struct {
	client *http.Client
	url    string
}

// NewClient creates an HTTP client with a cookie jar that keeps the session and CSRF cookies of the server.
func NewClient(url string) (*Client, error) {
	jar, err := newUnsafeCookieJar()
	if err != nil {
		return nil, errors.Wrap(err, "create unsafe cookie jar")
	}
	return &Client{
		client: &http.Client{Jar: jar},
		url:    url,
	}, nil
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			c.url+urlPath,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = c.client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response. Redirects are followed.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	if req, err = c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil); err != nil {
		return nil, errors.Wrap(err, "create request with context")
	}
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// GetDoc fetches a URL and returns a goquery document. Any other status than 200 is an error.
func (c *Client) GetDoc(ctx context.Context, urlPath string) (*goquery.Document, error) {
	doc, status, err := c.GetDocStatus(ctx, urlPath)
	if err != nil {
		return nil, err
	}
	if http.StatusOK != status {
		return nil, errors.New("unexpected status code", slog.Int("status", status))
	}
	return doc, nil
}

// GetDocStatus fetches a URL and returns a goquery document together with the response status.
func (c *Client) GetDocStatus(ctx context.Context, urlPath string) (*goquery.Document, int, error) {
	var (
		err  error
		resp *http.Response
		doc  *goquery.Document
	)
	if resp, err = c.Get(ctx, urlPath); err != nil {
		return nil, 0, errors.Wrap(err, "client get")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if doc, err = goquery.NewDocumentFromReader(resp.Body); err != nil {
		return nil, 0, errors.Wrap(err, "create document from reader")
	}
	return doc, resp.StatusCode, nil
}

// newRequestWithContext creates a new HTTP request to the server that respects the given context.
func (c *Client) newRequestWithContext(
	ctx context.Context,
	method, urlPath string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+urlPath, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	return req, nil
}

// Login signs in with an access token through the sign-in form and returns the dashboard document.
func (c *Client) Login(ctx context.Context, token string) (*goquery.Document, error) {
	doc, err := c.SubmitForm(ctx, "/login", "/login", neturl.Values{"token": {token}})
	if err != nil {
		return nil, errors.Wrap(err, "submit login form")
	}
	return doc, nil
}

func (c *Client) Logout(ctx context.Context) (*goquery.Document, error) {
	var (
		doc *goquery.Document
		err error
	)
	if doc, err = c.SubmitForm(ctx, "/", "/logout", nil); err != nil {
		return nil, errors.Wrap(err, "submit form")
	}
	return doc, nil
}

func (c *Client) extractCSRFToken(doc *goquery.Document, formActionURLPath string) (string, error) {
	formSelector := fmt.Sprintf("form[action='%s']", formActionURLPath)
	form := doc.Find(formSelector)
	csrfToken, ok := form.Find("input[name=csrf_token]").Attr("value")
	if !ok {
		return "", errors.New("csrf_token not found in form", slog.String("action", formActionURLPath))
	}
	return csrfToken, nil
}

// SubmitForm submits a form at formUrlPath with action formActionUrlPath and returns the response document.
// The hidden inputs of the form are submitted along with the given values.
func (c *Client) SubmitForm(
	ctx context.Context,
	formURLPath string,
	formActionURLPath string,
	values neturl.Values,
) (*goquery.Document, error) {
	doc, status, err := c.SubmitFormStatus(ctx, formURLPath, formActionURLPath, values)
	if err != nil {
		return nil, err
	}
	if http.StatusOK != status {
		return nil, errors.New("unexpected status code", slog.Int("status", status))
	}
	return doc, nil
}

// SubmitFormStatus is like SubmitForm but returns the document of any response status.
func (c *Client) SubmitFormStatus(
	ctx context.Context,
	formURLPath string,
	formActionURLPath string,
	values neturl.Values,
) (*goquery.Document, int, error) {
	resp, err := c.postForm(ctx, c.client, formURLPath, formActionURLPath, values, nil)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, 0, errors.Wrap(err, "create document from reader")
	}
	return doc, resp.StatusCode, nil
}

// SubmitHxForm submits a form the way htmx does and returns the swapped fragment as a document.
func (c *Client) SubmitHxForm(
	ctx context.Context,
	formURLPath string,
	formActionURLPath string,
	values neturl.Values,
) (*goquery.Document, int, error) {
	header := http.Header{}
	header.Set("HX-Request", "true")
	header.Set("HX-Current-URL", c.url+formURLPath)
	resp, err := c.postForm(ctx, c.client, formURLPath, formActionURLPath, values, header)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, 0, errors.Wrap(err, "create document from reader")
	}
	return doc, resp.StatusCode, nil
}

// SubmitFormNoRedirect submits a form without following a redirect and returns the status and location.
func (c *Client) SubmitFormNoRedirect(
	ctx context.Context,
	formURLPath string,
	formActionURLPath string,
	values neturl.Values,
) (int, string, error) {
	client := *c.client
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	resp, err := c.postForm(ctx, &client, formURLPath, formActionURLPath, values, nil)
	if err != nil {
		return 0, "", err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return resp.StatusCode, resp.Header.Get("Location"), nil
}

// postForm fetches the page holding the form and posts the form with its hidden inputs and the given values.
// The caller closes the response body.
func (c *Client) postForm(
	ctx context.Context,
	client *http.Client,
	formURLPath string,
	formActionURLPath string,
	values neturl.Values,
	header http.Header,
) (*http.Response, error) {
	doc, err := c.GetDoc(ctx, formURLPath)
	if err != nil {
		return nil, errors.Wrap(err, "get document")
	}

	formData := neturl.Values{}
	doc.Find(fmt.Sprintf("form[action='%s'] input[type=hidden]", formActionURLPath)).Each(
		func(_ int, s *goquery.Selection) {
			name, _ := s.Attr("name")
			value, _ := s.Attr("value")
			formData.Set(name, value)
		})
	if _, err = c.extractCSRFToken(doc, formActionURLPath); err != nil {
		return nil, errors.Wrap(err, "extract CSRF token")
	}
	for k, v := range values {
		formData[k] = v
	}

	req, err := c.newRequestWithContext(
		ctx,
		http.MethodPost,
		formActionURLPath,
		strings.NewReader(formData.Encode()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "new request with context")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request", slog.String("action", formActionURLPath))
	}
	return resp, nil
}

// API calls a JSON endpoint with a bearer token. A non-nil body is sent as JSON and the response is decoded into
// out when given. The response status is returned.
func (c *Client) API(ctx context.Context, method, urlPath, token string, body any, out any) (int, error) {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, errors.Wrap(err, "marshal request body")
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := c.newRequestWithContext(ctx, method, urlPath, reqBody)
	if err != nil {
		return 0, errors.Wrap(err, "new request with context")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if out != nil {
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, errors.Wrap(err, "decode response body")
		}
	}
	return resp.StatusCode, nil
}
