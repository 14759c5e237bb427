// Package services holds HTTP clients for external collaborators. The media
// service owns ingestion and transcoding; this client only creates direct
// uploads and reads asset state, everything else arrives via its webhook.
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

type DirectUpload struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type MediaAsset struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	UploadID    string  `json:"upload_id"`
	PlaybackID  string  `json:"playback_id"`
	DurationSec float64 `json:"duration"`
}

var httpClient = &http.Client{Timeout: 15 * time.Second}

func mediaRequest(method, path string, body interface{}, out interface{}) error {
	baseURL := os.Getenv("MEDIA_API_URL")
	if baseURL == "" {
		return fmt.Errorf("MEDIA_API_URL is not set")
	}

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+os.Getenv("MEDIA_API_TOKEN"))

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("media service returned %d for %s %s", resp.StatusCode, method, path)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// CreateDirectUpload asks the media service for a browser-uploadable URL. The
// owner id rides along as passthrough so webhook events can be traced back.
func CreateDirectUpload(ownerID string) (*DirectUpload, error) {
	payload := map[string]interface{}{
		"passthrough":     ownerID,
		"playback_policy": []string{"public"},
		"generated_subtitles": []map[string]string{
			{"language_code": "en", "name": "English"},
		},
	}

	var upload DirectUpload
	if err := mediaRequest(http.MethodPost, "/uploads", payload, &upload); err != nil {
		return nil, err
	}
	return &upload, nil
}

// GetUploadAsset fetches the asset spawned by a direct upload, for the studio
// revalidate path when a webhook was missed. Returns nil when the upload has
// not produced an asset yet.
func GetUploadAsset(uploadID string) (*MediaAsset, error) {
	var wrapper struct {
		AssetID string `json:"asset_id"`
	}
	if err := mediaRequest(http.MethodGet, "/uploads/"+uploadID, nil, &wrapper); err != nil {
		return nil, err
	}
	if wrapper.AssetID == "" {
		return nil, nil
	}

	var asset MediaAsset
	if err := mediaRequest(http.MethodGet, "/assets/"+wrapper.AssetID, nil, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// ReadTranscript fetches the subtitle track rendered as plain text, the input
// for title/description generation.
func ReadTranscript(playbackID, trackID string) (string, error) {
	streamURL := os.Getenv("MEDIA_STREAM_URL")
	if streamURL == "" {
		return "", fmt.Errorf("MEDIA_STREAM_URL is not set")
	}

	resp, err := httpClient.Get(fmt.Sprintf("%s/%s/text/%s.txt", streamURL, playbackID, trackID))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcript fetch returned %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ThumbnailURL derives the service-hosted still for a playback id.
func ThumbnailURL(playbackID string) string {
	return fmt.Sprintf("%s/image/%s/thumbnail.jpg", os.Getenv("MEDIA_IMAGE_URL"), playbackID)
}

// PreviewURL derives the animated preview for a playback id.
func PreviewURL(playbackID string) string {
	return fmt.Sprintf("%s/image/%s/animated.gif", os.Getenv("MEDIA_IMAGE_URL"), playbackID)
}
