package camsync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"

	"alpencams/internal/models"
)

const panomaxListURL = "https://api.panomax.com/1.0/instances/lists"

// PanomaxSource fetches the Panomax instance list and keeps the Austrian cameras.
type PanomaxSource struct {
	fetcher *Fetcher
	baseURL string
	logger  *log.Logger
}

// NewPanomaxSource creates the source. An empty baseURL uses the public API.
func NewPanomaxSource(fetcher *Fetcher, baseURL string, logger *log.Logger) *PanomaxSource {
	if baseURL == "" {
		baseURL = panomaxListURL
	}
	return &PanomaxSource{fetcher: fetcher, baseURL: baseURL, logger: logger}
}

type panomaxList struct {
	Instances []struct {
		PublicURL string `json:"publicUrl"`
		Cam       struct {
			Name      string  `json:"name"`
			Country   string  `json:"country"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"cam"`
	} `json:"instances"`
}

// Cams returns all Austrian Panomax cameras.
func (s *PanomaxSource) Cams(ctx context.Context) ([]models.Webcam, error) {
	s.logger.Info("fetching camera list", "source", "panomax")

	data, err := s.fetcher.Fetch(ctx, s.baseURL)
	if err != nil {
		return nil, err
	}

	var list panomaxList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse panomax list: %w", err)
	}

	var cams []models.Webcam
	for _, instance := range list.Instances {
		if instance.Cam.Country != "at" {
			continue
		}
		cams = append(cams, models.Webcam{
			Name:      instance.Cam.Name,
			URL:       instance.PublicURL,
			Provider:  "panomax",
			Latitude:  instance.Cam.Latitude,
			Longitude: instance.Cam.Longitude,
		})
	}

	s.logger.Info("found cameras", "source", "panomax", "count", len(cams))
	return cams, nil
}
