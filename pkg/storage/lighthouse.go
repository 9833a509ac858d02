package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// maxContentSize caps the size of a metadata document or image read into memory.
const maxContentSize = 16 << 20

// GetLighthouseFileCtx fetches a blob from a Lighthouse HTTP gateway.
//
// It performs a GET to {lighthouseEndpoint}{path}; the path is appended
// directly, so the endpoint should carry its trailing slash (e.g.
// "https://gateway.lighthouse.storage/ipfs/"). A nil client means
// http.DefaultClient.
func GetLighthouseFileCtx(ctx context.Context, client *http.Client, lighthouseEndpoint, path string) ([]byte, error) {
	if lighthouseEndpoint == "" {
		return nil, fmt.Errorf("lighthouse gateway not configured")
	}
	zap.L().Debug("Getting lighthouse file", zap.String("path", path))
	return GetURL(ctx, client, lighthouseEndpoint+path)
}

// GetURL downloads url and returns the response body. Non-2xx responses are
// reported as errors.
func GetURL(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			zap.L().Debug("failed to close response body", zap.String("url", url), zap.Error(err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("GET %s: %s: %s", url, resp.Status, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxContentSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxContentSize {
		return nil, fmt.Errorf("GET %s: content exceeds %d bytes", url, maxContentSize)
	}
	return data, nil
}
