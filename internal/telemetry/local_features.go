package telemetry

import (
	"context"

	"github.com/petasbytes/frontogether/internal/metrics"
)

// EmitLocalFeatures records size features of the user's input for a turn.
// The text itself is never written.
func EmitLocalFeatures(ctx context.Context, user string) {
	if !Enabled() {
		return
	}
	turnID, _ := TurnIDFromContext(ctx)
	Emit("local_features", map[string]any{
		"turn_id":          turnID,
		"features_version": "1",
		"user":             metrics.CountFeatures(user).Fields(),
	})
}
