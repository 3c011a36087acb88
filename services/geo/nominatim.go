package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// NominatimClient looks up addresses against a Nominatim-compatible reverse
// geocoding endpoint.
type NominatimClient struct {
	BaseURL string
	client  *http.Client
}

func NewNominatimClient(baseURL string) *NominatimClient {
	return &NominatimClient{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: 8 * time.Second},
	}
}

func (n *NominatimClient) Lookup(ctx context.Context, c Coordinate) (string, error) {
	url := fmt.Sprintf("%s/reverse?lat=%f&lon=%f&format=json", n.BaseURL, c.Lat, c.Lng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "citizenreport/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var body struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.DisplayName == "" {
		return "", fmt.Errorf("geocoder returned no address for %.6f, %.6f", c.Lat, c.Lng)
	}
	return body.DisplayName, nil
}
