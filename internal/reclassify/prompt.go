package reclassify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/analysis"
)

// ClassifyPrompt asks a vision model for a Verdict in JSON.
const ClassifyPrompt = `You are judging a bodybuilding routine. Identify which mandatory pose this frame shows.

Poses:
- front-double-biceps: facing front, upper arms at shoulder height, elbows bent, biceps flexed
- front-lat-spread: facing front, fists at the waist, elbows driven forward to widen the lats
- side-chest: side on, front arm bent across the body, hands clasped
- back-double-biceps: facing away, arms raised as in the front double biceps
- back-lat-spread: facing away, fists at the waist, lats spread wide
- side-triceps: side on, near arm locked straight behind the torso, other hand gripping the wrist
- abs-and-thighs: facing front, hands behind the head, one leg forward and flexed
- most-muscular: facing front, arms in front of the torso, everything contracted
- general-transition-pose: relaxed stance or moving between poses

Rate quality 0-100 on muscularity, symmetry, conditioning and presentation.

Respond with JSON only:
{"poseName": "<one name from the list>", "confidence": <0-100>, "quality": <0-100>, "notes": "<two sentences>"}`

// BuildCoachingPrompt summarizes a result for a text model.
func BuildCoachingPrompt(r *analysis.Result) string {
	var b strings.Builder

	b.WriteString("You are an experienced bodybuilding coach. Review this competitor's judged routine.\n\n")
	b.WriteString("Scores (0-100):\n")
	fmt.Fprintf(&b, "- Overall: %d\n", r.OverallScore)
	fmt.Fprintf(&b, "- Muscularity: %d\n", r.CategoryScores.Muscularity)
	fmt.Fprintf(&b, "- Symmetry: %d\n", r.CategoryScores.Symmetry)
	fmt.Fprintf(&b, "- Conditioning: %d\n", r.CategoryScores.Conditioning)
	fmt.Fprintf(&b, "- Posing: %d\n", r.CategoryScores.Posing)
	fmt.Fprintf(&b, "- Aesthetics: %d\n", r.CategoryScores.Aesthetics)

	m := r.Measurements
	fmt.Fprintf(&b, "\nMeasurements: shoulder width %d, waist width %d, V-taper %.2f, left/right symmetry %.0f%%\n",
		m.ShoulderWidth, m.WaistWidth, m.VTaperRatio, m.LeftRightSymmetry)

	names := make([]string, 0, len(r.PoseScores))
	for name := range r.PoseScores {
		names = append(names, string(name))
	}
	sort.Strings(names)
	if len(names) == 0 {
		b.WriteString("Detected poses: none\n")
	} else {
		b.WriteString("Detected poses (best quality):\n")
		for _, name := range names {
			fmt.Fprintf(&b, "- %s: %d\n", name, r.PoseScores[analysis.PoseName(name)])
		}
	}

	if len(r.MuscleGroups) > 0 {
		groups := make([]string, 0, len(r.MuscleGroups))
		for g, tier := range r.MuscleGroups {
			groups = append(groups, fmt.Sprintf("%s=%s", g, tier))
		}
		sort.Strings(groups)
		fmt.Fprintf(&b, "Muscle development: %s\n", strings.Join(groups, ", "))
	}

	b.WriteString("\nGive the competitor their main strengths, the areas to improve, specific training and posing recommendations, and one sentence on overall training focus. Use plain text.")
	return b.String()
}
