package convert

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/text/unicode/norm"
)

// HTTPConverter delegates conversion to an external document service.
type HTTPConverter struct {
	BaseURL string
	Client  *http.Client
}

type requestBody struct {
	Filename string `json:"filename"`
	Content  string `json:"content_base64"`
}

type responseBody struct {
	Chunks []string `json:"chunks"`
}

func (h HTTPConverter) Convert(ctx context.Context, filename string, data []byte) ([]string, error) {
	if h.Client == nil {
		h.Client = &http.Client{Timeout: 15 * time.Second}
	}

	b, _ := json.Marshal(requestBody{Filename: filename, Content: base64.StdEncoding.EncodeToString(data)})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/convert", bytes.NewBuffer(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnsupportedMediaType {
		return nil, ErrUnsupportedFormat
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("converter service error: status %d", resp.StatusCode)
	}

	var r responseBody
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, err
	}
	for i, c := range r.Chunks {
		r.Chunks[i] = norm.NFC.String(c)
	}
	return r.Chunks, nil
}
