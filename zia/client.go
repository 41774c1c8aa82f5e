// Package zia implements a thin client for the Zscaler Internet Access API,
// covering session management and the URL filtering rule resource.
package zia

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bvignesz/Network-automation/conf"
)

const sessionCookie = "JSESSIONID"

// Client talks to one ZIA cloud for the duration of a single invocation.
// The session is established once by Authenticate and carried in the cookie
// jar; it is discarded at process exit.
type Client struct {
	*http.Client
	base     string
	username string
	password string
	apiKey   string
	now      func() time.Time
}

// New builds a client from the configuration. It fails without a network call
// when any required credential field is absent.
func New(c *conf.Config) (*Client, error) {
	if missing := c.Missing(); len(missing) > 0 {
		return nil, &AuthenticationError{Reason: conf.Describe(missing)}
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		Client:   &http.Client{Jar: jar, Timeout: 60 * time.Second},
		base:     fmt.Sprintf("https://zsapi.%s.net/api/v1", c.Cloud),
		username: c.Username,
		password: c.Password,
		apiKey:   c.APIKey,
		now:      time.Now,
	}, nil
}

// obfuscateAPIKey implements the ZIA session key obfuscation: the millisecond
// timestamp selects which characters of the raw key go on the wire, so the
// key itself is never transmitted.
func obfuscateAPIKey(key string, now time.Time) (timestamp, obfuscated string, err error) {
	if len(key) < 12 {
		return "", "", &AuthenticationError{Reason: "ZIA_API_KEY is too short to be a valid key"}
	}
	timestamp = strconv.FormatInt(now.UnixMilli(), 10)
	n := timestamp[len(timestamp)-6:]
	high, _ := strconv.Atoi(n)
	r := fmt.Sprintf("%06d", high>>1)
	var b strings.Builder
	for i := 0; i < len(n); i++ {
		b.WriteByte(key[n[i]-'0'])
	}
	for i := 0; i < len(r); i++ {
		b.WriteByte(key[r[i]-'0'+2])
	}
	return timestamp, b.String(), nil
}

type authRequest struct {
	APIKey    string `json:"apiKey"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Timestamp string `json:"timestamp"`
}

// Authenticate obtains the session cookie for this invocation. A rejected
// login is terminal - the engine never retries authentication.
func (c *Client) Authenticate() error {
	ts, key, err := obfuscateAPIKey(c.apiKey, c.now())
	if err != nil {
		return err
	}
	body, err := json.Marshal(&authRequest{APIKey: key, Username: c.username, Password: c.password, Timestamp: ts})
	if err != nil {
		return err
	}
	req, err := http.NewRequest("POST", c.base+"/authenticatedSession", strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		return &AuthenticationError{Reason: fmt.Sprintf("could not reach the gateway: %v", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var ae apiError
		_ = json.Unmarshal(data, &ae)
		reason := fmt.Sprintf("gateway returned %d (%s)", resp.StatusCode, http.StatusText(resp.StatusCode))
		if ae.Message != "" {
			reason += ": " + ae.Message
		}
		return &AuthenticationError{Reason: reason + " - check the ZIA_* credentials"}
	}
	session := false
	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookie {
			session = true
		}
	}
	if !session {
		return &AuthenticationError{Reason: "login response carried no session cookie"}
	}
	logrus.WithField("user", c.username).Info("Authenticated to ZIA")
	return nil
}

// Logout ends the session. Best effort - the session dies with the process
// anyway, so failures are only logged.
func (c *Client) Logout() {
	if err := c.req("DELETE", "/authenticatedSession", nil, nil); err != nil {
		logrus.WithError(err).Debug("Logout failed")
	}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) req(method, path string, body io.Reader, result interface{}) error {
	op := method + " " + path
	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if err = c.handleError(op, resp); err != nil {
		return err
	}
	if result != nil {
		if err = json.NewDecoder(resp.Body).Decode(result); err != nil {
			return &TransportError{Op: op, Detail: "malformed response body", Err: err}
		}
	}
	return nil
}

// handleError maps non-success responses onto the engine error taxonomy,
// keeping whatever detail the service put in the body.
func (c *Client) handleError(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var ae apiError
	_ = json.Unmarshal(data, &ae)
	detail := ae.Message
	if detail == "" {
		detail = strings.TrimSpace(string(data))
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &AuthenticationError{Reason: fmt.Sprintf("gateway returned %d for %s - the session is not valid", resp.StatusCode, op)}
	}
	return &TransportError{Op: op, Status: resp.StatusCode, Code: ae.Code, Detail: detail}
}
