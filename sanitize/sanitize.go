// Package sanitize cleans up code returned by the generation model.
package sanitize

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	openingFenceLine = regexp.MustCompile("(?m)^```[A-Za-z0-9_+-]*[ \t]*\r?\n")
	closingFenceLine = regexp.MustCompile("(?m)\r?\n```[ \t]*$")
	languageFence    = regexp.MustCompile("```html")
)

const fence = "```"

// Report describes the truncation heuristics for a cleaned document.
type Report struct {
	MissingClosingTag bool // does not end with </html>
	TrailingEllipsis  bool // ends with "..."
}

// Truncated reports whether any heuristic fired.
func (r Report) Truncated() bool {
	return r.MissingClosingTag || r.TrailingEllipsis
}

// Inspect runs the truncation heuristics against already cleaned text.
func Inspect(cleaned string) Report {
	return Report{
		MissingClosingTag: !strings.HasSuffix(strings.ToLower(cleaned), "</html>"),
		TrailingEllipsis:  strings.HasSuffix(cleaned, "..."),
	}
}

// Clean removes markdown code fences from raw and trims surrounding
// whitespace.
func Clean(raw string) string {
	text := openingFenceLine.ReplaceAllString(raw, "")
	text = closingFenceLine.ReplaceAllString(text, "")
	text = languageFence.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, fence, "")
	return strings.TrimSpace(text)
}

// ExtractHTML cleans a model response and logs a warning when the result
// looks truncated. It never fails.
func ExtractHTML(logger *zap.Logger, raw string) string {
	cleaned := Clean(raw)
	if logger == nil {
		return cleaned
	}

	logger.Debug("cleaned model response",
		zap.Int("original_length", len(raw)),
		zap.Int("cleaned_length", len(cleaned)))

	report := Inspect(cleaned)
	if report.MissingClosingTag {
		logger.Warn("HTML response appears to be truncated: missing closing </html> tag",
			zap.Int("cleaned_length", len(cleaned)))
	}
	if report.TrailingEllipsis {
		logger.Warn("response appears to be truncated: ends with ...",
			zap.Int("cleaned_length", len(cleaned)))
	}
	return cleaned
}
