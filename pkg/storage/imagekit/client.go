package imagekit

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vallyhouse/vally-backend/pkg/config"
	"github.com/vallyhouse/vally-backend/pkg/logger"
)

const pingTimeout = 5 * time.Second

// Client talks to the ImageKit media API over plain HTTP. Uploads return the
// provider file id needed for later deletion; serving URLs are built from the
// configured endpoint.
type Client struct {
	httpClient  *http.Client
	uploadURL   string
	apiURL      string
	urlEndpoint string
	privateKey  string
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// UploadResult carries the provider handle for an uploaded object.
type UploadResult struct {
	FileID   string `json:"fileId"`
	URL      string `json:"url"`
	FilePath string `json:"filePath"`
}

// NewClient validates the configuration and verifies credentials.
func NewClient(ctx context.Context, cfg config.ImageKitConfig, logg *logger.Logger) (*Client, error) {
	if cfg.URLEndpoint == "" {
		return nil, errors.New("imagekit url endpoint is required")
	}
	if cfg.PrivateKey == "" {
		return nil, errors.New("imagekit private key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		uploadURL:   cfg.UploadURL,
		apiURL:      strings.TrimRight(cfg.APIURL, "/"),
		urlEndpoint: strings.TrimRight(cfg.URLEndpoint, "/"),
		privateKey:  cfg.PrivateKey,
	}

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("imagekit health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "imagekit client initialized")
	}

	return client, nil
}

// Upload pushes the raw bytes under the given file name and optional folder.
func (c *Client) Upload(ctx context.Context, fileName string, data []byte, folder string) (*UploadResult, error) {
	if fileName == "" {
		return nil, errors.New("file name is required")
	}
	if len(data) == 0 {
		return nil, errors.New("file data is required")
	}

	form := url.Values{}
	form.Set("file", base64.StdEncoding.EncodeToString(data))
	form.Set("fileName", fileName)
	if folder != "" {
		form.Set("folder", folder)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.privateKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("upload failed: %s", readErrorBody(resp.Body, resp.StatusCode))
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}
	if result.FileID == "" {
		return nil, errors.New("upload response missing file id")
	}
	return &result, nil
}

// Delete removes the object identified by the provider file id.
func (c *Client) Delete(ctx context.Context, fileID string) error {
	if fileID == "" {
		return errors.New("file id is required")
	}

	endpoint := fmt.Sprintf("%s/%s", c.apiURL, url.PathEscape(fileID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.privateKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Already gone; deletion is idempotent from the caller's view.
		return nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("delete failed: %s", readErrorBody(resp.Body, resp.StatusCode))
	}
	return nil
}

// URL joins a storage-relative path onto the configured endpoint.
func (c *Client) URL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.urlEndpoint + "/" + strings.TrimLeft(path, "/")
}

// RelativePath strips the configured endpoint from an absolute URL so only the
// storage-relative path is persisted.
func (c *Client) RelativePath(value string) string {
	trimmed := strings.TrimPrefix(value, c.urlEndpoint)
	return "/" + strings.TrimLeft(trimmed, "/")
}

// Ping lists a single file to verify credentials and reachability.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.httpClient == nil {
		return errors.New("imagekit client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?limit=1", nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.privateKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping failed: %s", readErrorBody(resp.Body, resp.StatusCode))
	}
	return nil
}

func readErrorBody(body io.Reader, status int) string {
	raw, err := io.ReadAll(io.LimitReader(body, 512))
	if err != nil || len(raw) == 0 {
		return fmt.Sprintf("status %d", status)
	}
	return fmt.Sprintf("status %d: %s", status, strings.TrimSpace(string(raw)))
}
