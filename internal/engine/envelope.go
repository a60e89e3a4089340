package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/resumatch/resumatch-mcp/internal/engine/render"
)

// newEnvelope wraps a rendered document in the artifact envelope. Metadata
// beyond tool and status is filled in by the caller; the directive flags
// are fixed so every path hands the client the same shape.
func newEnvelope(tool, status string, doc render.Document, quota Decision, started time.Time) *Envelope {
	return &Envelope{
		RenderAsArtifact:   true,
		SuppressCommentary: true,
		Artifact: Artifact{
			Type:  "text/markdown",
			ID:    tool + "_" + uuid.NewString(),
			Title: doc.Title,
		},
		Content: doc.Markdown(),
		Metadata: EnvelopeMeta{
			Tool:   tool,
			Status: status,
		},
		Performance: Performance{
			RequestID:  uuid.NewString(),
			DurationMS: time.Since(started).Milliseconds(),
			RateLimit: QuotaInfo{
				Limit:     quota.Limit,
				Remaining: quota.Remaining,
				ResetTime: quota.ResetTime,
			},
		},
	}
}
