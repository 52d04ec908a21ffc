package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type statusNote struct {
	ItemID string
	Status string
}

func newTestQueue(buffer int) *Queue[statusNote] {
	config := DefaultConfig()
	config.RetryDelay = 10 * time.Millisecond
	config.QueueBuffer = buffer
	return NewQueue[statusNote](config)
}

func TestPublishConsumeAck(t *testing.T) {
	queue := newTestQueue(10)
	ctx := context.Background()

	err := queue.Publish(ctx, &statusNote{ItemID: "item-1", Status: "pending"})
	assert.Nil(t, err)
	assert.EqualValues(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	assert.Nil(t, err)
	assert.EqualValues(t, 0, queue.Size())
	assert.EqualValues(t, "item-1", message.T().ItemID)
	assert.EqualValues(t, "pending", message.T().Status)

	assert.Nil(t, message.Ack())
	assert.NotNil(t, message.Ack(), "double ack must fail")
}

func TestNackRetriesThenDeadLetters(t *testing.T) {
	queue := newTestQueue(10)
	queue.config.MaxRetries = 2
	ctx := context.Background()

	err := queue.Publish(ctx, &statusNote{ItemID: "item-1", Status: "failed"})
	assert.Nil(t, err)

	// original delivery plus MaxRetries redeliveries
	for attempt := 0; attempt <= 2; attempt++ {
		message, err := queue.Consume(ctx)
		if !assert.Nil(t, err, "attempt %d", attempt) {
			return
		}
		assert.Nil(t, message.Nack(nil))
		time.Sleep(20 * time.Millisecond)
	}

	assert.EqualValues(t, 0, queue.Size(), "retries exhausted")
	assert.EqualValues(t, 1, queue.DLQSize(), "final failure lands in the dead letter queue")
}

func TestConcurrentProducersAndConsumers(t *testing.T) {
	queue := newTestQueue(100)
	ctx := context.Background()
	const workers = 10
	const perWorker = 10

	var wg sync.WaitGroup
	wg.Add(workers * 2)

	var mu sync.Mutex
	consumed := 0

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				message, err := queue.Consume(ctx)
				if err != nil {
					t.Errorf("consume: %v", err)
					return
				}
				assert.Nil(t, message.Ack())
				mu.Lock()
				consumed++
				mu.Unlock()
			}
		}()
	}
	for i := 0; i < workers; i++ {
		go func(producer int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				note := statusNote{ItemID: fmt.Sprintf("p%d-m%d", producer, j), Status: "in_progress"}
				if err := queue.Publish(ctx, &note); err != nil {
					t.Errorf("publish: %v", err)
					return
				}
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for workers")
	}

	assert.EqualValues(t, workers*perWorker, consumed)
	assert.EqualValues(t, 0, queue.Size())
}

func TestContextCancellation(t *testing.T) {
	queue := newTestQueue(10)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	err := queue.Publish(canceled, &statusNote{ItemID: "item-1"})
	assert.NotNil(t, err)

	short, cancelShort := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancelShort()
	_, err = queue.Consume(short)
	assert.NotNil(t, err)

	// the queue survives canceled contexts
	ctx := context.Background()
	assert.Nil(t, queue.Publish(ctx, &statusNote{ItemID: "item-2"}))
	message, err := queue.Consume(ctx)
	assert.Nil(t, err)
	assert.EqualValues(t, "item-2", message.T().ItemID)
}
