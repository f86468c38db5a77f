package curator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// response is the document the model is asked for. selected_sequence is the
// older sentence-id form and is still accepted.
type response struct {
	Title            string        `json:"title"`
	SEOTitle         string        `json:"seo_title"`
	Reasoning        string        `json:"reasoning"`
	Segments         []segmentJSON `json:"segments"`
	SelectedSequence []int         `json:"selected_sequence"`
}

type segmentJSON struct {
	Start   flexSeconds `json:"start"`
	End     flexSeconds `json:"end"`
	Topic   string      `json:"topic"`
	Tags    []string    `json:"tags"`
	Summary string      `json:"summary"`
	Text    string      `json:"text"`
}

// flexSeconds accepts 12.5, "12.5" and "00:00:12.500".
type flexSeconds time.Duration

func (f *flexSeconds) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return errors.New("missing time value")
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		d, err := parseClock(s)
		if err != nil {
			return err
		}
		*f = flexSeconds(d)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("time value %s: %w", data, err)
	}
	*f = flexSeconds(seconds(v))
	return nil
}

// maxModelSeconds bounds time values from the model so that absurd answers
// clamp to the clip instead of overflowing time.Duration.
const maxModelSeconds = 1e6

func seconds(v float64) time.Duration {
	v = min(max(v, -maxModelSeconds), maxModelSeconds)
	return time.Duration(v * float64(time.Second))
}

func parseClock(s string) (time.Duration, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "s")
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	var total float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		total = total*60 + v
	}
	return seconds(total), nil
}

var errEmptyResponse = errors.New("response contains no segments")

// parseResponse decodes the model's answer, tolerating code fences and
// surrounding prose.
func parseResponse(raw string) (response, error) {
	text := stripFences(raw)
	if text == "" {
		return response{}, errors.New("empty response")
	}

	var resp response
	err := decode(text, &resp)
	if err != nil {
		if fixed := extractFirstJSONObject(text); fixed != "" && fixed != text {
			err = decode(fixed, &resp)
		}
	}
	if err != nil {
		return response{}, fmt.Errorf("decode response: %w", err)
	}

	if len(resp.Segments) == 0 && len(resp.SelectedSequence) == 0 {
		return response{}, errEmptyResponse
	}
	return resp, nil
}

// decode accepts either the full object or a bare array of segments.
func decode(text string, resp *response) error {
	if strings.HasPrefix(text, "[") {
		return json.Unmarshal([]byte(text), &resp.Segments)
	}
	return json.Unmarshal([]byte(text), resp)
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

func extractFirstJSONObject(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func (r response) title() string {
	if t := strings.TrimSpace(r.Title); t != "" {
		return t
	}
	return strings.TrimSpace(r.SEOTitle)
}
