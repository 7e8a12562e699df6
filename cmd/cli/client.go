package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"albumhub/pkg/models"
)

type apiClient struct {
	BaseURL string
	HTTP    *http.Client
}

type listQuery struct {
	Genre  string
	Date   string
	Search string
	Page   int
}

func (c *apiClient) listAlbums(ctx context.Context, q listQuery) ([]models.Album, error) {
	u, err := url.Parse(strings.TrimRight(c.BaseURL, "/") + "/api/albums")
	if err != nil {
		return nil, err
	}
	qv := u.Query()
	if q.Genre != "" {
		qv.Set("genre", q.Genre)
	}
	if q.Date != "" {
		qv.Set("date", q.Date)
	}
	if q.Search != "" {
		qv.Set("q", q.Search)
	}
	qv.Set("p", strconv.Itoa(q.Page))
	u.RawQuery = qv.Encode()

	var out []models.Album
	if err := c.getJSON(ctx, u.String(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// allAlbums walks pages until an empty one comes back.
func (c *apiClient) allAlbums(ctx context.Context, q listQuery) ([]models.Album, error) {
	var out []models.Album
	for q.Page = 0; ; q.Page++ {
		page, err := c.listAlbums(ctx, q)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return out, nil
		}
		out = append(out, page...)
	}
}

func (c *apiClient) getAlbum(ctx context.Context, id string) (models.Album, error) {
	var out models.Album
	err := c.getJSON(ctx, strings.TrimRight(c.BaseURL, "/")+"/api/albums/"+url.PathEscape(id), &out)
	return out, err
}

func (c *apiClient) genres(ctx context.Context) ([]string, error) {
	var out []string
	err := c.getJSON(ctx, strings.TrimRight(c.BaseURL, "/")+"/genres", &out)
	return out, err
}

func (c *apiClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s failed: %s", endpoint, strings.TrimSpace(string(data)))
	}
	return json.Unmarshal(data, out)
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}
