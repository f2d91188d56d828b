package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/rtao-god/solsignal-reports/pkg/adapters"
	"github.com/rtao-god/solsignal-reports/pkg/models/api"
	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
)

var ErrUpstream = errors.New("report backend request failed")

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("report backend returned %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUpstream
}

type Options struct {
	Timeout  time.Duration
	RetryMax int
	RetryMin time.Duration
	RetryCap time.Duration
}

func DefaultOptions() Options {
	return Options{
		Timeout:  30 * time.Second,
		RetryMax: 1,
		RetryMin: 200 * time.Millisecond,
		RetryCap: 2 * time.Second,
	}
}

type ReportClient struct {
	http    *retryablehttp.Client
	profile domain.UpstreamProfile
}

func NewReportClient(profile domain.UpstreamProfile, opts Options, logger zerolog.Logger) (*ReportClient, error) {
	if profile.BaseURL == "" {
		return nil, fmt.Errorf("profile %q has no base url", profile.Name)
	}
	if _, err := url.Parse(profile.BaseURL); err != nil {
		return nil, fmt.Errorf("profile %q has invalid base url: %w", profile.Name, err)
	}

	c := retryablehttp.NewClient()
	c.RetryMax = opts.RetryMax
	c.RetryWaitMin = opts.RetryMin
	c.RetryWaitMax = opts.RetryCap
	c.HTTPClient.Timeout = opts.Timeout
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.Logger = &leveledLogger{logger: logger.With().Str("upstream", profile.Name).Logger()}

	return &ReportClient{http: c, profile: profile}, nil
}

// FetchReport loads <base>/reports/<endpoint>.
func (c *ReportClient) FetchReport(ctx context.Context, endpoint string) (*domain.ReportDocument, error) {
	target, err := url.JoinPath(c.profile.BaseURL, "reports", endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to build report url: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create report request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.profile.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.profile.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return decodeReport(resp.Body)
}

// FileSource serves a report document stored on disk, ignoring the endpoint.
type FileSource struct {
	Path string
}

func (f FileSource) FetchReport(_ context.Context, _ string) (*domain.ReportDocument, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file: %w", err)
	}
	defer file.Close()

	return decodeReport(file)
}

func decodeReport(r io.Reader) (*domain.ReportDocument, error) {
	var doc api.ReportDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode report document: %w", err)
	}

	report, err := adapters.MapAPIReportToDomain(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to map report document: %w", err)
	}
	return report, nil
}

type leveledLogger struct {
	logger zerolog.Logger
}

func (l *leveledLogger) Error(msg string, kv ...interface{}) { l.log(l.logger.Error(), msg, kv) }
func (l *leveledLogger) Warn(msg string, kv ...interface{})  { l.log(l.logger.Warn(), msg, kv) }
func (l *leveledLogger) Info(msg string, kv ...interface{})  { l.log(l.logger.Debug(), msg, kv) }
func (l *leveledLogger) Debug(msg string, kv ...interface{}) { l.log(l.logger.Trace(), msg, kv) }

func (l *leveledLogger) log(e *zerolog.Event, msg string, kv []interface{}) {
	e.Fields(kv).Msg(msg)
}
