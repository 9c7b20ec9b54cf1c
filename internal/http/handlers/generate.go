package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"server/internal/mcp"
)

// pixelsPerInch converts physical template dimensions to pixels.
const pixelsPerInch = 300

// Generate validates a design request and forwards it to the MCP server
// as a generate_template command. Unknown body fields travel along in the
// command payload untouched.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON payload")
		return
	}

	name := stringField(body, "name")
	if name == "" {
		name = stringField(body, "prompt")
	}
	if name == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "name or prompt is required")
		return
	}

	width, height, ok := dimensions(body)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "width/height in pixels or widthInches/heightInches are required")
		return
	}

	payload := mcp.Payload{"name": name, "width": width, "height": height}
	for k, v := range body {
		switch k {
		case "name", "prompt", "width", "height", "widthInches", "heightInches":
			continue
		}
		payload[k] = v
	}

	design, raw, err := a.MCP.GenerateTemplate(r.Context(), payload)
	if err != nil {
		a.Logger.Error().Err(err).Str("name", name).Msg("generate proxy failed")
		a.json(w, http.StatusBadGateway, map[string]any{
			"success": false,
			"error":   "mcp request failed",
			"details": upstreamDetails(raw, err),
		})
		return
	}

	resp := map[string]any{
		"success":    true,
		"url":        design.URL,
		"design_url": design.URL,
		"response":   json.RawMessage(raw),
	}
	if design.ID != "" {
		resp["design_id"] = design.ID
	}
	a.json(w, http.StatusOK, resp)
}

func stringField(body map[string]any, key string) string {
	if v, ok := body[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func numberField(body map[string]any, key string) float64 {
	if v, ok := body[key].(float64); ok {
		return v
	}
	return 0
}

// dimensions resolves the template size, preferring explicit pixels and
// falling back to physical inches at 300 px/inch.
func dimensions(body map[string]any) (int, int, bool) {
	if w, h := numberField(body, "width"), numberField(body, "height"); w > 0 && h > 0 {
		return int(w), int(h), true
	}
	if w, h := numberField(body, "widthInches"), numberField(body, "heightInches"); w > 0 && h > 0 {
		return int(math.Round(w * pixelsPerInch)), int(math.Round(h * pixelsPerInch)), true
	}
	return 0, 0, false
}

// upstreamDetails echoes the upstream error payload when one exists so
// the front-end can display what the MCP server reported.
func upstreamDetails(raw []byte, err error) any {
	if len(raw) > 0 && json.Valid(raw) {
		return json.RawMessage(raw)
	}
	if len(raw) > 0 {
		return string(raw)
	}
	return err.Error()
}
