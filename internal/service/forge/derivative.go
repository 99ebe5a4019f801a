package forge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"sitedocs/internal/config"
	"sitedocs/internal/domain"
)

const derivativeScope = "data:read data:write"

// TranslationStatus is the canonical state of a Model Derivative job.
type TranslationStatus string

const (
	StatusPendingTranslation TranslationStatus = "pending"
	StatusInProgress         TranslationStatus = "inprogress"
	StatusSuccess            TranslationStatus = "success"
	StatusFailedTranslation  TranslationStatus = "failed"
	StatusTimeout            TranslationStatus = "timeout"
)

// terminal reports whether no further polling can change the status.
func (s TranslationStatus) terminal() bool {
	return s == StatusSuccess || s == StatusFailedTranslation || s == StatusTimeout
}

// DerivativeService drives SVF translation jobs against the Model
// Derivative API so uploaded CAD files become viewable in a browser.
type DerivativeService struct {
	cfg        *config.ForgeConfig
	client     *Client
	httpClient *http.Client
	logger     *slog.Logger
}

// Job identifies a submitted translation. URN is the base64-encoded
// object id that manifest polling and the viewer both use.
type Job struct {
	URN    string `json:"urn"`
	Result string `json:"result"`
}

// Manifest is the subset of the translation manifest the service
// inspects; Raw carries the full response for passthrough.
type Manifest struct {
	Type     string            `json:"type"`
	URN      string            `json:"urn"`
	Status   TranslationStatus `json:"status"`
	Progress string            `json:"progress"`

	Raw json.RawMessage `json:"-"`
}

// NewDerivativeService creates a new translation service backed by
// client for token exchange.
func NewDerivativeService(cfg *config.ForgeConfig, client *Client, logger *slog.Logger) *DerivativeService {
	return &DerivativeService{
		cfg:    cfg,
		client: client,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// EncodeURN converts an OSS object id into the base64 form the
// derivative endpoints address jobs by.
func EncodeURN(objectID string) string {
	return base64.StdEncoding.EncodeToString([]byte(objectID))
}

// StartTranslation submits an SVF translation job for the given OSS
// object id, producing both 2D and 3D viewables.
func (s *DerivativeService) StartTranslation(ctx context.Context, objectID string) (*Job, error) {
	token, err := s.client.GetToken(ctx, derivativeScope)
	if err != nil {
		return nil, err
	}

	urn := EncodeURN(objectID)
	payload, err := json.Marshal(map[string]any{
		"input": map[string]any{
			"urn": urn,
		},
		"output": map[string]any{
			"formats": []map[string]any{
				{
					"type":  "svf",
					"views": []string{"2d", "3d"},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal job request: %w", err)
	}

	endpoint := s.cfg.BaseURL + "/modelderivative/v2/designdata/job"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create job request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-ads-force", "true")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit translation job: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read job response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("translation job returned %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("parse job response: %w", err)
	}
	if job.URN == "" {
		job.URN = urn
	}

	s.logger.Info("submitted translation job", "urn", job.URN, "result", job.Result)
	return &job, nil
}

// GetManifest fetches the translation manifest for a job urn.
func (s *DerivativeService) GetManifest(ctx context.Context, urn string) (*Manifest, error) {
	token, err := s.client.GetToken(ctx, derivativeScope)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/modelderivative/v2/designdata/%s/manifest", s.cfg.BaseURL, urn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create manifest request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read manifest response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: no manifest for urn %s", domain.ErrNotFound, urn)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("manifest returned %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var manifest Manifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	manifest.Raw = body

	return &manifest, nil
}

// WaitForTranslation polls the manifest on a fixed interval until the
// job reaches a terminal status, the attempt budget runs out, or ctx is
// cancelled. A failed or timed-out job yields ErrConversionFailed.
func (s *DerivativeService) WaitForTranslation(ctx context.Context, urn string) (*Manifest, error) {
	var last *Manifest

	operation := func() error {
		manifest, err := s.GetManifest(ctx, urn)
		if err != nil {
			// A missing manifest right after submission resolves on a
			// later poll; everything else aborts.
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		last = manifest

		switch {
		case manifest.Status == StatusSuccess:
			return nil
		case manifest.Status.terminal():
			return backoff.Permanent(fmt.Errorf("%w: translation of %s ended with status %q",
				domain.ErrConversionFailed, urn, manifest.Status))
		default:
			s.logger.Debug("translation in progress",
				"urn", urn,
				"status", manifest.Status,
				"progress", manifest.Progress)
			return fmt.Errorf("translation still %s", manifest.Status)
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(s.cfg.PollInterval),
			uint64(s.cfg.PollMaxAttempts),
		),
		ctx,
	)

	if err := backoff.Retry(operation, policy); err != nil {
		if last != nil && !last.Status.terminal() {
			return last, fmt.Errorf("translation of %s did not finish within %d polls: %w",
				urn, s.cfg.PollMaxAttempts, err)
		}
		return last, err
	}

	return last, nil
}
