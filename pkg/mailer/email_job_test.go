package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	bodies []any
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.bodies = append(p.bodies, body)
	return nil
}

func TestPublisherQueue_Enqueue(t *testing.T) {
	pub := &recordingPublisher{}
	q := PublisherQueue{Pub: pub}

	job := EmailJob{To: "ada@example.com", Template: "verify_email"}
	require.NoError(t, q.Enqueue(context.Background(), job))
	require.Len(t, pub.bodies, 1)
	assert.Equal(t, job, pub.bodies[0])
}

func TestPublisherQueue_RejectsIncompleteJob(t *testing.T) {
	pub := &recordingPublisher{}
	q := PublisherQueue{Pub: pub}

	err := q.Enqueue(context.Background(), EmailJob{To: "ada@example.com"})
	assert.ErrorIs(t, err, ErrInvalidJob)
	assert.Empty(t, pub.bodies)
}
