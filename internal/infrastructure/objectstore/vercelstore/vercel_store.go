package vercelstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ignatzorin/proposal-intake/internal/domain/repository"
	"github.com/ignatzorin/proposal-intake/internal/infrastructure/objectstore"
)

const (
	apiVersion = "7"
	listLimit  = 1000
)

// Store работает с Vercel Blob через REST API. Публичные URL выдаёт сам провайдер.
type Store struct {
	client *resty.Client
}

type putResponse struct {
	URL         string `json:"url"`
	DownloadURL string `json:"downloadUrl"`
	Pathname    string `json:"pathname"`
	ContentType string `json:"contentType"`
}

type listResponse struct {
	Blobs []struct {
		URL      string `json:"url"`
		Pathname string `json:"pathname"`
		Size     int64  `json:"size"`
	} `json:"blobs"`
	Cursor  string `json:"cursor"`
	HasMore bool   `json:"hasMore"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func New(apiURL, token string, timeout time.Duration) *Store {
	client := resty.New().
		SetBaseURL(apiURL).
		SetAuthToken(token).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("x-api-version", apiVersion).
		SetError(&errorResponse{})

	return &Store{client: client}
}

func (s *Store) Put(ctx context.Context, key string, content []byte, opts repository.PutOptions) (string, error) {
	key, err := objectstore.CleanKey(key)
	if err != nil {
		return "", err
	}
	if !opts.Public {
		return "", fmt.Errorf("vercelstore: поддерживаются только публичные объекты")
	}

	req := s.client.R().
		SetContext(ctx).
		SetHeader("x-add-random-suffix", "0").
		SetHeader("x-allow-overwrite", "1").
		SetBody(content).
		SetResult(&putResponse{})
	if opts.ContentType != "" {
		req.SetHeader("x-content-type", opts.ContentType)
	}

	resp, err := req.Put("/" + key)
	if err != nil {
		return "", fmt.Errorf("vercelstore: put %s: %w", key, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("vercelstore: put %s: %s", key, describe(resp))
	}

	result := resp.Result().(*putResponse)
	if result.URL == "" {
		return "", fmt.Errorf("vercelstore: put %s: пустой url в ответе", key)
	}
	return result.URL, nil
}

// List проходит все страницы ответа по курсору.
func (s *Store) List(ctx context.Context, prefix string) ([]repository.Object, error) {
	objects := make([]repository.Object, 0)
	cursor := ""

	for {
		params := url.Values{}
		params.Set("prefix", prefix)
		params.Set("limit", strconv.Itoa(listLimit))
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		resp, err := s.client.R().
			SetContext(ctx).
			SetQueryParamsFromValues(params).
			SetResult(&listResponse{}).
			Get("/")
		if err != nil {
			return nil, fmt.Errorf("vercelstore: list %s: %w", prefix, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("vercelstore: list %s: %s", prefix, describe(resp))
		}

		page := resp.Result().(*listResponse)
		for _, b := range page.Blobs {
			objects = append(objects, repository.Object{Pathname: b.Pathname, URL: b.URL})
		}
		if !page.HasMore || page.Cursor == "" {
			break
		}
		cursor = page.Cursor
	}
	return objects, nil
}

func describe(resp *resty.Response) string {
	if e, ok := resp.Error().(*errorResponse); ok && e.Error.Message != "" {
		return fmt.Sprintf("status %d: %s", resp.StatusCode(), e.Error.Message)
	}
	return fmt.Sprintf("status %d", resp.StatusCode())
}
