package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

type (
	Coordinates struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}

	// Geocoder resolves a free-text address to coordinates. Its errors are
	// HttpErrors and are forwarded to the client unchanged.
	Geocoder interface {
		Geocode(ctx context.Context, address string) (*Coordinates, error)
	}

	HTTPGeocoder struct {
		host   string
		apiKey string
		client *http.Client
	}

	geocodeResponse struct {
		Status  string `json:"status"`
		Results []struct {
			Geometry struct {
				Location Coordinates `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
)

func NewHTTPGeocoder(host, apiKey string, timeout time.Duration) *HTTPGeocoder {
	return &HTTPGeocoder{
		host:   host,
		apiKey: apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 600 * time.Second,
			},
		},
	}
}

func (g *HTTPGeocoder) Geocode(ctx context.Context, address string) (*Coordinates, error) {
	endpoint := fmt.Sprintf("%s/maps/api/geocode/json?address=%s&key=%s",
		g.host, url.QueryEscape(address), url.QueryEscape(g.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewHttpError("Something went wrong, could not locate the address.", http.StatusInternalServerError)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		logrus.WithError(err).Error("geocoding request failed")
		return nil, NewHttpError("Something went wrong, could not locate the address.", http.StatusInternalServerError)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		logrus.WithError(err).Error("geocoding response unreadable")
		return nil, NewHttpError("Something went wrong, could not locate the address.", http.StatusInternalServerError)
	}

	if decoded.Status == "ZERO_RESULTS" || len(decoded.Results) == 0 {
		return nil, NewHttpError("Could not find location for the specified address.", http.StatusUnprocessableEntity)
	}
	if decoded.Status != "OK" {
		return nil, NewHttpError("Something went wrong, could not locate the address.", http.StatusInternalServerError)
	}

	location := decoded.Results[0].Geometry.Location
	return &location, nil
}
