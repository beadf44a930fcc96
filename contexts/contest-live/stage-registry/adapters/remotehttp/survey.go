package remotehttp

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"compezze/contexts/contest-live/stage-registry/ports"
)

// SurveyClient talks to the survey service's internal room API.
type SurveyClient struct {
	BaseURL string
	http    *http.Client
}

func NewSurveyClient(baseURL string, timeout time.Duration) *SurveyClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &SurveyClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *SurveyClient) CreateRoom(ctx context.Context, req ports.CreateSurveyRoomRequest) (ports.CreateSurveyRoomResponse, error) {
	var out ports.CreateSurveyRoomResponse
	err := doJSON(ctx, c.http, http.MethodPost, c.BaseURL+"/internal/rooms", req, &out)
	return out, err
}

func (c *SurveyClient) CloseRoom(ctx context.Context, roomID string) error {
	path := c.BaseURL + "/internal/rooms/" + url.PathEscape(roomID) + "/close"
	return doJSON(ctx, c.http, http.MethodPost, path, nil, nil)
}

func (c *SurveyClient) GetRoomDetails(ctx context.Context, roomID string) (ports.SurveyRoomDetails, error) {
	var out ports.SurveyRoomDetails
	path := c.BaseURL + "/internal/rooms/" + url.PathEscape(roomID)
	err := doJSON(ctx, c.http, http.MethodGet, path, nil, &out)
	return out, err
}
