package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"sitedocs/internal/config"
)

const uploadScope = "bucket:create bucket:read data:create data:write data:read"

// OSSService stores CAD source files in a Forge Object Storage Service
// bucket so the Model Derivative service can translate them.
type OSSService struct {
	cfg        *config.ForgeConfig
	client     *Client
	httpClient *http.Client
	logger     *slog.Logger
}

// UploadResult describes an object stored in the configured bucket.
// ObjectID is the URN-like identifier the derivative service consumes.
type UploadResult struct {
	BucketKey string `json:"bucketKey"`
	ObjectID  string `json:"objectId"`
	ObjectKey string `json:"objectKey"`
	SHA1      string `json:"sha1"`
	Size      int64  `json:"size"`
	Location  string `json:"location"`
}

// NewOSSService creates a new object storage service backed by client
// for token exchange.
func NewOSSService(cfg *config.ForgeConfig, client *Client, logger *slog.Logger) *OSSService {
	return &OSSService{
		cfg:    cfg,
		client: client,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
		logger: logger,
	}
}

// UploadObject ensures the configured bucket exists and uploads the
// object under objectKey. A fresh token is exchanged for the call.
func (s *OSSService) UploadObject(ctx context.Context, objectKey string, data []byte) (*UploadResult, error) {
	token, err := s.client.GetToken(ctx, uploadScope)
	if err != nil {
		return nil, err
	}

	if err := s.ensureBucket(ctx, token); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/oss/v2/buckets/%s/objects/%s",
		s.cfg.BaseURL, s.cfg.BucketKey, url.PathEscape(objectKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = int64(len(data))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload object: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upload response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("object upload returned %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var result UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse upload response: %w", err)
	}

	s.logger.Info("uploaded object to forge bucket",
		"bucket", s.cfg.BucketKey,
		"object_key", objectKey,
		"size", result.Size)

	return &result, nil
}

// ensureBucket checks for the configured bucket and creates it with a
// persistent retention policy when it does not exist yet.
func (s *OSSService) ensureBucket(ctx context.Context, token *Token) error {
	detailsURL := fmt.Sprintf("%s/oss/v2/buckets/%s/details", s.cfg.BaseURL, s.cfg.BucketKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, detailsURL, nil)
	if err != nil {
		return fmt.Errorf("create bucket details request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return s.createBucket(ctx, token)
	default:
		return fmt.Errorf("bucket details returned %d", resp.StatusCode)
	}
}

func (s *OSSService) createBucket(ctx context.Context, token *Token) error {
	payload, err := json.Marshal(map[string]string{
		"bucketKey": s.cfg.BucketKey,
		"policyKey": "persistent",
	})
	if err != nil {
		return fmt.Errorf("marshal bucket request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/oss/v2/buckets", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create bucket request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	defer resp.Body.Close()

	// 409 means another request created it first, which is fine.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusConflict {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bucket creation returned %d: %s", resp.StatusCode, truncate(body, 200))
	}

	s.logger.Info("created forge bucket", "bucket", s.cfg.BucketKey)
	return nil
}
