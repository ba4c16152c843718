// Package proxmox is a minimal client for the Proxmox VE cluster API,
// covering the endpoints needed to manage SDN resources.
package proxmox

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const apiBase = "/api2/json"

// Config holds the connection settings for one cluster.
type Config struct {
	// Host is the cluster API address, e.g. "https://pve.example.com:8006".
	// A missing scheme defaults to https.
	Host string
	// User in user@realm form, e.g. "root@pam".
	User string
	// Password selects ticket authentication. Ignored when a token is set.
	Password string
	// TokenID and TokenSecret select API token authentication. The header
	// identity is built as user!tokenid.
	TokenID     string
	TokenSecret string
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
}

// Client talks to one Proxmox VE cluster. Requests run sequentially; the
// client holds the authentication ticket once obtained.
type Client struct {
	baseURL     string
	user        string
	password    string
	tokenID     string
	tokenSecret string
	httpc       *http.Client

	ticket string
	csrf   string
}

// NewClient builds a client from cfg. No connection is made until the
// first request.
func NewClient(cfg Config) *Client {
	host := strings.TrimRight(cfg.Host, "/")
	if host != "" && !strings.Contains(host, "://") {
		host = "https://" + host
	}

	httpc := &http.Client{Timeout: cfg.Timeout}
	if cfg.InsecureSkipVerify {
		httpc.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Client{
		baseURL:     host + apiBase,
		user:        cfg.User,
		password:    cfg.Password,
		tokenID:     cfg.TokenID,
		tokenSecret: cfg.TokenSecret,
		httpc:       httpc,
	}
}

type ticketData struct {
	Ticket              string `json:"ticket"`
	CSRFPreventionToken string `json:"CSRFPreventionToken"`
}

// login obtains an authentication ticket using the configured password.
func (c *Client) login(ctx context.Context) error {
	form := url.Values{}
	form.Set("username", c.user)
	form.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/access/ticket", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("requesting ticket: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("authentication failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var t ticketData
	if err := decodeData(resp.Body, &t); err != nil {
		return fmt.Errorf("decoding ticket: %w", err)
	}
	c.ticket = t.Ticket
	c.csrf = t.CSRFPreventionToken
	return nil
}

// authorize attaches credentials to req, logging in first when ticket
// authentication is selected and no ticket is held yet.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.tokenID != "" {
		req.Header.Set("Authorization", fmt.Sprintf("PVEAPIToken=%s!%s=%s", c.user, c.tokenID, c.tokenSecret))
		return nil
	}
	if c.ticket == "" {
		if err := c.login(ctx); err != nil {
			return err
		}
	}
	req.AddCookie(&http.Cookie{Name: "PVEAuthCookie", Value: c.ticket})
	if req.Method != http.MethodGet {
		req.Header.Set("CSRFPreventionToken", c.csrf)
	}
	return nil
}

// do runs one API request. A non-nil form is sent url-encoded; a non-nil
// out receives the decoded data envelope.
func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if err := c.authorize(ctx, req); err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(b)))
	}

	if out == nil {
		return nil
	}
	if err := decodeData(resp.Body, out); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
	}
	return nil
}

// decodeData unwraps the {"data": ...} envelope every API response uses.
func decodeData(r io.Reader, out any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return err
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}

// Version returns the cluster API version.
func (c *Client) Version(ctx context.Context) (string, error) {
	var v struct {
		Version string `json:"version"`
		Release string `json:"release"`
	}
	if err := c.do(ctx, http.MethodGet, "/version", nil, &v); err != nil {
		return "", err
	}
	return v.Version, nil
}
