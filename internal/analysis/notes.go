package analysis

import (
	"fmt"
	"math"
	"strconv"
)

func formatRatio(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Recommendations returns coaching suggestions for symmetry, V-taper and
// upper-body development.
func Recommendations(m *BodyMeasurements) []Recommendation {
	sym := int(math.Round(m.LeftRightSymmetry))
	ratio := formatRatio(m.VTaperRatio)
	recs := make([]Recommendation, 0, 3)

	switch {
	case sym >= 92:
		recs = append(recs, Recommendation{
			Type:        TierStrength,
			Title:       "Excellent Symmetry",
			Description: fmt.Sprintf("Outstanding left-right balance at %d%%. Equal development between both sides of the body.", sym),
		})
	case sym >= 85:
		recs = append(recs, Recommendation{
			Type:        TierAttention,
			Title:       "Good Symmetry - Minor Adjustments",
			Description: fmt.Sprintf("Symmetry at %d%%. Small imbalances detected. Include more unilateral exercises.", sym),
		})
	default:
		recs = append(recs, Recommendation{
			Type:        TierWeakness,
			Title:       "Improve Symmetry",
			Description: fmt.Sprintf("Symmetry score is %d%%. Significant imbalance detected. Focus on single-arm/leg exercises to correct asymmetry.", sym),
		})
	}

	switch {
	case m.VTaperRatio >= 1.5:
		recs = append(recs, Recommendation{
			Type:        TierStrength,
			Title:       "Elite V-Taper",
			Description: fmt.Sprintf("V-taper ratio of %s exceeds IFBB Gold Standard. Exceptional shoulder-to-waist proportion.", ratio),
		})
	case m.VTaperRatio >= 1.4:
		recs = append(recs, Recommendation{
			Type:        TierStrength,
			Title:       "Excellent V-Taper",
			Description: fmt.Sprintf("V-taper ratio of %s meets competitive IFBB standards.", ratio),
		})
	case m.VTaperRatio >= 1.3:
		recs = append(recs, Recommendation{
			Type:        TierAttention,
			Title:       "Improve V-Taper",
			Description: fmt.Sprintf("V-taper ratio of %s. Build wider shoulders with lateral raises and overhead presses, while maintaining tight waist.", ratio),
		})
	default:
		recs = append(recs, Recommendation{
			Type:        TierWeakness,
			Title:       "Develop V-Taper",
			Description: fmt.Sprintf("V-taper ratio of %s needs improvement. Prioritize lat development and shoulder width while reducing waist size.", ratio),
		})
	}

	if float64(m.ShoulderWidth) > float64(m.WaistWidth)*1.5 {
		recs = append(recs, Recommendation{
			Type:        TierStrength,
			Title:       "Strong Upper Body Development",
			Description: "Excellent shoulder width indicates good muscularity in upper body. Maintain current chest, shoulder, and back training.",
		})
	}

	return recs
}

// JudgeNotes returns short judge-style observations on the measurements.
func JudgeNotes(m *BodyMeasurements) []JudgeNote {
	sym := int(math.Round(m.LeftRightSymmetry))
	ratio := formatRatio(m.VTaperRatio)

	notes := []JudgeNote{{
		Type: TierStrength,
		Text: fmt.Sprintf("Shoulder width: %d (proportional muscle development)", m.ShoulderWidth),
	}}

	symTier, symText := TierWeakness, "needs correction"
	switch {
	case sym >= 90:
		symTier, symText = TierStrength, "excellent balance"
	case sym >= 85:
		symTier, symText = TierAttention, "minor imbalances"
	}
	notes = append(notes, JudgeNote{
		Type: symTier,
		Text: fmt.Sprintf("Left-right symmetry: %d%% (%s)", sym, symText),
	})

	level := "needs development"
	switch {
	case m.VTaperRatio >= 1.5:
		level = "elite level"
	case m.VTaperRatio >= 1.4:
		level = "competitive level"
	case m.VTaperRatio >= 1.3:
		level = "good but improvable"
	}
	taperTier := TierAttention
	if m.VTaperRatio >= 1.4 {
		taperTier = TierStrength
	}
	notes = append(notes, JudgeNote{
		Type: taperTier,
		Text: fmt.Sprintf("V-taper ratio: %s (%s conditioning)", ratio, level),
	})

	appeal := "developing"
	if m.VTaperRatio >= 1.4 {
		appeal = "excellent"
	}
	notes = append(notes, JudgeNote{
		Type: TierStrength,
		Text: fmt.Sprintf("Shoulder-to-waist proportion indicates %s aesthetic appeal", appeal),
	})

	return notes
}
