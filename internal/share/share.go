// Package share encodes camera selections into copyable share links.
//
// A token is the base64 of the JSON array of catalog ordinals. Tokens are
// short-lived by nature: ordinals shift when the catalog is regenerated, so
// a stale link may resolve to different cameras.
package share

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"alpencams/internal/models"
)

// Encode builds a share token for the given cameras.
func Encode(cams []models.Webcam) (string, error) {
	ids := make([]int, len(cams))
	for i, cam := range cams {
		ids[i] = cam.ID
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to encode share token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode returns the catalog ordinals packed into a share token.
func Decode(token string) ([]int, error) {
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("malformed share token: %w", err)
	}

	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("malformed share token: %w", err)
	}
	return ids, nil
}

// Link builds a full share URL under baseURL.
func Link(baseURL string, cams []models.Webcam) (string, error) {
	token, err := Encode(cams)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/share?c=%s", baseURL, token), nil
}
