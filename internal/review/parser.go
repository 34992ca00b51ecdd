package review

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// maxResponseBytes caps how much provider output the parser will attempt to
// interpret as JSON. Larger payloads fall straight through to the degraded
// path instead of being fed to the decoder.
const maxResponseBytes = 1 << 20

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

type rawReview struct {
	Summary  string       `json:"summary"`
	Comments []rawComment `json:"comments"`
}

type rawComment struct {
	File       string          `json:"file"`
	Line       json.RawMessage `json:"line"`
	Severity   string          `json:"severity"`
	Message    string          `json:"message"`
	Suggestion string          `json:"suggestion"`
}

// ParseResponse turns raw provider output into a Result. It never fails:
// when no structured review can be recovered the raw text is preserved as a
// single info-level finding and the result is marked degraded.
func ParseResponse(text, provider, model string) *Result {
	result := &Result{
		Provider: provider,
		Model:    model,
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		result.Summary = "provider returned no usable output"
		result.Degraded = true
		result.Anomalies = append(result.Anomalies, "empty response")
		return result
	}
	if len(trimmed) > maxResponseBytes {
		result.Summary = "provider response exceeded the size limit"
		result.Degraded = true
		result.Anomalies = append(result.Anomalies,
			fmt.Sprintf("response of %d bytes exceeds %d byte limit", len(trimmed), maxResponseBytes))
		result.Findings = append(result.Findings, fallbackFinding(trimmed[:200]+"..."))
		return result
	}

	raw, ok := extractReview(trimmed)
	if !ok {
		result.Summary = "provider response was not valid JSON"
		result.Degraded = true
		result.Anomalies = append(result.Anomalies, "no JSON object found in response")
		result.Findings = append(result.Findings, fallbackFinding(trimmed))
		return result
	}

	result.Summary = strings.TrimSpace(raw.Summary)
	for i, c := range raw.Comments {
		if strings.TrimSpace(c.Message) == "" {
			result.Anomalies = append(result.Anomalies,
				fmt.Sprintf("comment %d dropped: empty message", i))
			continue
		}
		if strings.TrimSpace(c.File) == "" {
			result.Anomalies = append(result.Anomalies,
				fmt.Sprintf("comment %d dropped: no file path", i))
			continue
		}

		sev, known := ParseSeverity(c.Severity)
		if !known {
			result.Anomalies = append(result.Anomalies,
				fmt.Sprintf("comment %d: unknown severity %q coerced to info", i, c.Severity))
		}

		line, lineOK := coerceLine(c.Line)
		if !lineOK {
			result.Anomalies = append(result.Anomalies,
				fmt.Sprintf("comment %d: unusable line %s dropped", i, string(c.Line)))
		}

		result.Findings = append(result.Findings, Finding{
			Severity:   sev,
			File:       strings.TrimSpace(c.File),
			Line:       line,
			Message:    strings.TrimSpace(c.Message),
			Suggestion: strings.TrimSpace(c.Suggestion),
		})
	}

	if len(result.Anomalies) > 0 {
		result.Degraded = true
	}
	return result
}

// extractReview attempts three recoveries in order: the whole text as JSON,
// a fenced code block, then the outermost brace-delimited span.
func extractReview(text string) (rawReview, bool) {
	var raw rawReview
	if err := json.Unmarshal([]byte(text), &raw); err == nil {
		return raw, true
	}

	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil {
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &raw); err == nil {
			return raw, true
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err == nil {
			return raw, true
		}
	}

	return rawReview{}, false
}

// coerceLine accepts a JSON number, a numeric string, or nothing. Anything
// else is treated as absent. The bool reports whether the raw value was
// usable (absent counts as usable).
func coerceLine(raw json.RawMessage) (int, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, true
	}
	s = strings.Trim(s, `"`)
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return int(f), true
	}
	return 0, false
}

func fallbackFinding(text string) Finding {
	return Finding{
		Severity: SeverityInfo,
		File:     "",
		Message:  "unstructured reviewer output: " + text,
	}
}
