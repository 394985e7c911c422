package camsync

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"alpencams/internal/models"
)

const bergfexBaseURL = "https://www.bergfex.at"

// BergfexSource walks the Bergfex webcam directory: the area overview page,
// then each area's webcam links, then each camera's detail page.
type BergfexSource struct {
	fetcher *Fetcher
	baseURL string
	maxCams int
	logger  *log.Logger
}

// NewBergfexSource creates the source. An empty baseURL uses the public
// site; maxCams <= 0 means no limit.
func NewBergfexSource(fetcher *Fetcher, baseURL string, maxCams int, logger *log.Logger) *BergfexSource {
	if baseURL == "" {
		baseURL = bergfexBaseURL
	}
	return &BergfexSource{fetcher: fetcher, baseURL: baseURL, maxCams: maxCams, logger: logger}
}

// Cams fetches all camera detail pages and extracts their metadata.
// Detail pages that have gone 404 are skipped.
func (s *BergfexSource) Cams(ctx context.Context) ([]models.Webcam, error) {
	links, err := s.camLinks(ctx)
	if err != nil {
		return nil, err
	}

	limit := len(links)
	if s.maxCams > 0 && s.maxCams < limit {
		limit = s.maxCams
	}
	s.logger.Info("fetching camera details", "source", "bergfex", "count", limit)

	var cams []models.Webcam
	for i := 0; i < limit; i++ {
		cam, err := s.camDetail(ctx, links[i])
		if err != nil {
			if errors.Is(err, ErrNotFound404) {
				s.logger.Warn("camera page gone, skipping", "url", links[i])
				continue
			}
			return nil, err
		}
		if cam != nil {
			cams = append(cams, *cam)
		}
	}

	s.logger.Info("fetched cameras", "source", "bergfex", "count", len(cams))
	return cams, nil
}

// camLinks collects webcam detail links from every area page.
func (s *BergfexSource) camLinks(ctx context.Context) ([]string, error) {
	s.logger.Info("fetching area list", "source", "bergfex")

	overview, err := s.fetchDoc(ctx, s.baseURL+"/sommer/oesterreich/webcams/")
	if err != nil {
		return nil, err
	}

	type area struct{ link, title string }
	var areas []area
	overview.Find("div.list-webcams li a").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			areas = append(areas, area{link: href, title: strings.TrimSpace(sel.Text())})
		}
	})
	s.logger.Info("found areas", "source", "bergfex", "count", len(areas))

	var links []string
	for _, a := range areas {
		s.logger.Debug("processing area", "area", a.title)
		doc, err := s.fetchDoc(ctx, s.baseURL+"/"+strings.TrimPrefix(a.link, "/"))
		if err != nil {
			return nil, err
		}
		doc.Find(`a[data-tracking-event="webcam-overview-click"]`).Each(func(_ int, sel *goquery.Selection) {
			if href, ok := sel.Attr("href"); ok {
				links = append(links, href)
			}
		})
	}

	s.logger.Info("found camera links", "source", "bergfex", "count", len(links))
	return links, nil
}

// camDetail extracts one camera from its detail page. Returns nil (no error)
// when the page lacks a name or stream iframe.
func (s *BergfexSource) camDetail(ctx context.Context, link string) (*models.Webcam, error) {
	doc, err := s.fetchDoc(ctx, s.baseURL+"/"+strings.TrimPrefix(link, "/"))
	if err != nil {
		return nil, err
	}

	var lat, long float64
	if content, ok := doc.Find(`meta[name="geoposition"]`).Attr("content"); ok {
		lat, long = parseGeoposition(content)
	}

	name := strings.TrimSpace(doc.Find("h1.tw-text-4xl span").Eq(1).Text())
	iframeSrc, _ := doc.Find("iframe").Attr("src")

	if name == "" || iframeSrc == "" {
		return nil, nil
	}

	return &models.Webcam{
		Name:      name,
		URL:       iframeSrc,
		Provider:  "bergfex",
		Latitude:  lat,
		Longitude: long,
	}, nil
}

func (s *BergfexSource) fetchDoc(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// parseGeoposition splits a "lat,long" meta content pair.
func parseGeoposition(content string) (float64, float64) {
	parts := strings.SplitN(content, ",", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	lat, _ := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	long, _ := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	return lat, long
}
