package telemetry

import (
	"context"

	"github.com/jqian-ml/agent-finie/internal/metrics"
)

// EmitQuestionFeatures records size features of the user's question so turn
// cost can be correlated with input shape without persisting the text itself.
func EmitQuestionFeatures(ctx context.Context, question string) {
	if !ObserveEnabled() {
		return
	}
	turnID, _ := TurnIDFromContext(ctx)
	f := metrics.CountFeatures(question)
	Emit("question_features", map[string]any{
		"turn_id":          turnID,
		"features_version": "1",
		"question": map[string]any{
			"bytes": f.Bytes,
			"runes": f.Runes,
			"words": f.Words,
			"lines": f.Lines,
		},
	})
}
