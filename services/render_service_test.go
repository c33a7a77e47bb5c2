package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRenderSlideCountMismatch(t *testing.T) {
	rs := NewRenderService(NewTimelineService(5.0), "1280x720", "fast", 0, zap.NewNop().Sugar())

	_, err := rs.Render(context.Background(), t.TempDir(),
		[]string{"a.jpg", "b.jpg", "c.jpg"},
		[]float64{5, 5},
		"narration.mp3",
	)
	assert.ErrorIs(t, err, ErrSlideCountMismatch)
}
