package scam_detector

import (
	"fmt"
	"strings"
	"time"
)

var nowFn = time.Now

const verdictMessage = `Verdict: %s
Intent: %s
Risk factors: %s

Reasoning:
%s
`

const slackVerdictMessage = `:rotating_light: Scam detected (%s)
*Checked at*: %s
*Message*: %s
*Intent*: %s
*Risk factors*: %s`

// FormatVerdict renders a validated output for humans.
func FormatVerdict(output *ScamDetectionOutput) string {
	return fmt.Sprintf(verdictMessage,
		output.Label,
		fallbackValue(output.Intent, "not provided"),
		formatRiskFactors(output.RiskFactors, 0),
		fallbackValue(strings.TrimSpace(output.Reasoning), "not provided"),
	)
}

func formatSlackVerdict(requestID, message string, output *ScamDetectionOutput) string {
	checkedAt := nowFn().UTC().Format(time.RFC3339)
	return fmt.Sprintf(slackVerdictMessage,
		fallbackValue(requestID, "N/A"),
		checkedAt,
		truncate(strings.TrimSpace(message), 280),
		fallbackValue(output.Intent, "not provided"),
		formatRiskFactors(output.RiskFactors, 3),
	)
}

func fallbackValue(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// formatRiskFactors joins the factors; max > 0 limits the number listed.
func formatRiskFactors(factors []string, max int) string {
	if len(factors) == 0 {
		return "none"
	}
	if max <= 0 || len(factors) <= max {
		return strings.Join(factors, "; ")
	}
	shown := append([]string{}, factors[:max]...)
	shown = append(shown, fmt.Sprintf("...and %d more", len(factors)-max))
	return strings.Join(shown, "; ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
