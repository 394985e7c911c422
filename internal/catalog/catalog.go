// Package catalog loads the scraped webcam list and answers lookups against it.
//
// The catalog is immutable once loaded. Ordinal ids are assigned by array
// position and are not stable across catalog regenerations; only the camera
// name is a durable cross-reference key.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"alpencams/internal/models"
)

//go:embed assets/austria-cams.json
var embeddedCams []byte

// Catalog is the immutable, process-loaded webcam list.
type Catalog struct {
	cams   []models.Webcam
	byName map[string]int
}

// Load reads a catalog from the JSON file at path.
// An empty path loads the catalog embedded in the binary.
func Load(path string) (*Catalog, error) {
	data := embeddedCams
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
	}
	return Parse(data)
}

// Parse builds a catalog from a JSON array of {name, url, provider, latitude, longitude}.
func Parse(data []byte) (*Catalog, error) {
	var cams []models.Webcam
	if err := json.Unmarshal(data, &cams); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	byName := make(map[string]int, len(cams))
	for i := range cams {
		cams[i].ID = i
		byName[cams[i].Name] = i
	}

	return &Catalog{cams: cams, byName: byName}, nil
}

// Len returns the number of cameras in the catalog.
func (c *Catalog) Len() int {
	return len(c.cams)
}

// All returns every camera in catalog order.
func (c *Catalog) All() []models.Webcam {
	return c.cams
}

// ByName looks a camera up by its name.
func (c *Catalog) ByName(name string) (models.Webcam, bool) {
	i, ok := c.byName[name]
	if !ok {
		return models.Webcam{}, false
	}
	return c.cams[i], true
}

// ByID looks a camera up by its catalog ordinal.
func (c *Catalog) ByID(id int) (models.Webcam, bool) {
	if id < 0 || id >= len(c.cams) {
		return models.Webcam{}, false
	}
	return c.cams[id], true
}

// Search returns all cameras whose name contains q, case-insensitively.
func (c *Catalog) Search(q string) []models.Webcam {
	s := strings.ToLower(q)
	var matches []models.Webcam
	for _, cam := range c.cams {
		if strings.Contains(strings.ToLower(cam.Name), s) {
			matches = append(matches, cam)
		}
	}
	return matches
}

// Random returns n cameras drawn uniformly and independently.
// Duplicates are possible. Returns nil when the catalog is empty.
func (c *Catalog) Random(n int) []models.Webcam {
	if len(c.cams) == 0 {
		return nil
	}
	cams := make([]models.Webcam, n)
	for i := range cams {
		cams[i] = c.cams[rand.Intn(len(c.cams))]
	}
	return cams
}

// Resolve maps camera names to catalog entries, returning resolved cameras
// in input order plus the names that had no catalog match. Callers decide
// whether unresolved names warrant a warning.
func (c *Catalog) Resolve(camIDs []string) ([]models.Webcam, []string) {
	var cams []models.Webcam
	var unresolved []string
	for _, name := range camIDs {
		cam, ok := c.ByName(name)
		if !ok {
			unresolved = append(unresolved, name)
			continue
		}
		cams = append(cams, cam)
	}
	return cams, unresolved
}
