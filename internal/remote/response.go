package remote

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rs/zerolog/log"
)

// ParseAnalyzeResponse decodes a success payload. LLM-backed services
// occasionally emit slightly malformed JSON, so decoding falls back to repair,
// and finally to treating the whole body as the summary text.
func ParseAnalyzeResponse(body []byte) *AnalyzeResponse {
	var resp AnalyzeResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		return &resp
	}

	repaired, err := jsonrepair.JSONRepair(string(body))
	if err == nil {
		var fixed AnalyzeResponse
		if err := json.Unmarshal([]byte(repaired), &fixed); err == nil {
			log.Debug().Int("original_bytes", len(body)).Msg("remote payload repaired before decoding")
			return &fixed
		}
	}

	// Same fallback as the service's own parser: raw text becomes the summary.
	return &AnalyzeResponse{Summary: strings.TrimSpace(string(body))}
}
