// Package remotehttp holds JSON-over-HTTP clients for the remote quiz and
// survey session services. Errors bubble up raw; the strategies wrap them as
// upstream failures.
package remotehttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"compezze/contexts/contest-live/stage-registry/ports"
)

const defaultTimeout = 5 * time.Second

// QuizClient talks to the quiz service's internal room API.
type QuizClient struct {
	BaseURL string
	http    *http.Client
}

func NewQuizClient(baseURL string, timeout time.Duration) *QuizClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &QuizClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *QuizClient) CreateRoom(ctx context.Context, req ports.CreateQuizRoomRequest) (ports.CreateQuizRoomResponse, error) {
	var out ports.CreateQuizRoomResponse
	err := doJSON(ctx, c.http, http.MethodPost, c.BaseURL+"/internal/rooms", req, &out)
	return out, err
}

func (c *QuizClient) CloseRoom(ctx context.Context, roomID string) error {
	path := c.BaseURL + "/internal/rooms/" + url.PathEscape(roomID) + "/close"
	return doJSON(ctx, c.http, http.MethodPost, path, nil, nil)
}

func (c *QuizClient) GetRoomDetails(ctx context.Context, roomID string) (ports.QuizRoomDetails, error) {
	var out ports.QuizRoomDetails
	path := c.BaseURL + "/internal/rooms/" + url.PathEscape(roomID)
	err := doJSON(ctx, c.http, http.MethodGet, path, nil, &out)
	return out, err
}

func doJSON(ctx context.Context, client *http.Client, method, target string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("remote session service status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
