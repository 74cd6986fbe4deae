package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/foxseedlab/voicecap/internal/capture"
	"github.com/foxseedlab/voicecap/internal/transport"
	"github.com/go-resty/resty/v2"
)

const (
	defaultCapturePath = "/api/voice/capture"
	defaultTimeout     = 90 * time.Second
)

type ClientConfig struct {
	BaseURL      string
	CapturePath  string
	Timeout      time.Duration
	HostTimezone func() string
}

// Client uploads one capture per call and relays the server's answer.
type Client struct {
	http         *resty.Client
	path         string
	hostTimezone func() string
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CapturePath == "" {
		cfg.CapturePath = defaultCapturePath
	}
	if cfg.HostTimezone == nil {
		cfg.HostTimezone = transport.HostTimezone
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)
	return &Client{http: c, path: cfg.CapturePath, hostTimezone: cfg.HostTimezone}
}

// Submit returns the decoded response for both success and typed failure
// bodies. Only network errors and undecodable bodies become TransportError.
func (c *Client) Submit(ctx context.Context, req capture.Request) (*capture.Response, error) {
	req, err := transport.Prepare(req, c.hostTimezone)
	if err != nil {
		return nil, err
	}

	slog.Debug("uploading capture", "user_id", req.UserID, "mode", req.Mode.String(), "timezone", req.Timezone, "audio_bytes", req.Audio.Size())
	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartField("audio", transport.UploadFilename(req.Audio.MimeType), req.Audio.MimeType, bytes.NewReader(req.Audio.Bytes)).
		SetMultipartFormData(map[string]string{
			"userId":   req.UserID,
			"mode":     req.Mode.String(),
			"timezone": req.Timezone,
		}).
		Post(c.path)
	if err != nil {
		return nil, capture.NewError(capture.CodeTransportError, "upload failed", err)
	}

	var out capture.Response
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, capture.NewError(capture.CodeTransportError, fmt.Sprintf("undecodable response with status %d", resp.StatusCode()), err)
	}
	if !out.OK && out.Error == "" {
		return nil, capture.NewError(capture.CodeTransportError, fmt.Sprintf("unexpected response with status %d", resp.StatusCode()), nil)
	}
	return &out, nil
}
