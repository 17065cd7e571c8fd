package verify

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/greenaudit/greenaudit/internal/classify"
	"github.com/greenaudit/greenaudit/internal/model"
)

// Assessment is the engine's verdict for one claim.
type Assessment struct {
	Verified   bool
	Confidence float64 // in [0,1]
	Evidence   string
}

// Engine applies mode/intent-specific thresholds to imagery analysis results.
// It is stateless; all inputs arrive as arguments.
type Engine struct{}

// NewEngine creates a verification engine.
func NewEngine() *Engine {
	return &Engine{}
}

// VerifySpatial decides whether the satellite analysis supports the claim.
// An absent change delta is treated as 0.0.
func (e *Engine) VerifySpatial(claim model.EnvironmentalClaim, mode classify.Mode, intent classify.Intent, analysis *model.SatelliteAnalysis) Assessment {
	change := analysis.Change()

	var a Assessment
	switch mode {
	case classify.ModeSolar:
		a = assessSolar(intent, change)
	case classify.ModeWater:
		a = assessWater(intent, change)
	default:
		a = assessVegetation(intent, change, analysis != nil && analysis.FeatureDetected)
	}

	a.Evidence = appendClaimed(a.Evidence, claim)
	return a
}

// assessSolar: maintenance claims are visually unremarkable, so preservation
// always passes. New installations must show substantial surface change.
func assessSolar(intent classify.Intent, change float64) Assessment {
	if intent == classify.IntentPreservation {
		return Assessment{true, 0.80, evidence("maintenance-consistent visual change %s%%", change)}
	}
	if change > 20.0 {
		return Assessment{true, math.Min(change/100+0.5, 0.95), evidence("new infrastructure detected, change %s%%", change)}
	}
	return Assessment{false, 0.60, evidence("claimed new installation but low visual change %s%%", change)}
}

// assessWater: restoration expects growth above noise; preservation only
// requires the zone not to degrade beyond -5 points.
func assessWater(intent classify.Intent, change float64) Assessment {
	if intent == classify.IntentEstablishment {
		if change > 1.0 {
			return Assessment{true, 0.85, evidence("coastal vegetation expansion %s%%", change)}
		}
		return Assessment{false, 0.50, evidence("expected restoration not observed, change %s%%", change)}
	}
	if change > -5.0 {
		return Assessment{true, 0.90, evidence("zone stable/protected, change %s%%", change)}
	}
	return Assessment{false, 0.70, evidence("significant degradation, change %s%%", change)}
}

func assessVegetation(intent classify.Intent, change float64, featureDetected bool) Assessment {
	if intent == classify.IntentEstablishment {
		switch {
		case change > 5.0:
			return Assessment{true, 0.80 + math.Min(change/100, 0.15), evidence("reforestation verified, growth %s%%", change)}
		case change > 0.1:
			return Assessment{false, 0.50, "weak signal, below establishment threshold"}
		default:
			return Assessment{false, 0.40, "flagged: zero/negative change despite claim"}
		}
	}
	if featureDetected && change > -5.0 {
		return Assessment{true, 0.90, "protection verified, area stable/growing"}
	}
	return Assessment{false, 0.85, "protection failed: vegetation loss detected"}
}

// evidence renders one change-bearing evidence template. Kept in one place so
// the mode branches cannot drift apart in formatting.
func evidence(format string, change float64) string {
	return fmt.Sprintf(format, formatNumber(change))
}

// appendClaimed attaches the claimed quantity for audit comparison. Units
// arrive bare ("trees", not " trees"); the separator lives here.
func appendClaimed(text string, claim model.EnvironmentalClaim) string {
	if claim.MeasureValue == nil {
		return text
	}
	quantity := formatNumber(*claim.MeasureValue)
	if unit := strings.TrimSpace(claim.MeasureUnit); unit != "" {
		quantity += " " + unit
	}
	return fmt.Sprintf("%s (claimed: %s)", text, quantity)
}

// formatNumber drops insignificant trailing zeros (10.0 -> "10", 12.5 -> "12.5").
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
