package stream

import (
	"context"
	"sync"
	"time"
)

type fakeClient struct {
	mu          sync.Mutex
	queue       []Message
	pending     []Message
	acked       []string
	claims      int
	readErr     error
	onEmpty     func()
	groupErr    error
	publishErr  error
	published   []map[string]string
	publishedTo []string
	deliveries  map[string]int64
}

func (f *fakeClient) delivered(id string) {
	if f.deliveries == nil {
		f.deliveries = make(map[string]int64)
	}

	f.deliveries[id]++
}

func (f *fakeClient) CreateGroup(context.Context, string, string) error {
	return f.groupErr
}

func (f *fakeClient) ReadGroup(context.Context, string, string, string, time.Duration) ([]Message, error) {
	f.mu.Lock()
	if f.readErr != nil {
		err := f.readErr
		f.readErr = nil
		f.mu.Unlock()
		return nil, err
	}

	if len(f.queue) == 0 {
		onEmpty := f.onEmpty
		f.mu.Unlock()
		if onEmpty != nil {
			onEmpty()
		}
		return nil, nil
	}

	msg := f.queue[0]
	f.queue = f.queue[1:]
	f.pending = append(f.pending, msg)
	f.delivered(msg.ID)
	f.mu.Unlock()

	return []Message{msg}, nil
}

func (f *fakeClient) AutoClaim(context.Context, string, string, string, time.Duration, int) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.claims++
	claimed := append([]Message(nil), f.pending...)
	for _, msg := range claimed {
		f.delivered(msg.ID)
	}

	return claimed, nil
}

func (f *fakeClient) Pending(context.Context, string, string, time.Duration, int) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := make(map[string]int64, len(f.pending))
	for _, msg := range f.pending {
		counts[msg.ID] = f.deliveries[msg.ID]
	}

	return counts, nil
}

func (f *fakeClient) Ack(_ context.Context, _, _ string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.acked = append(f.acked, id)
	for i, msg := range f.pending {
		if msg.ID == id {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			break
		}
	}

	return nil
}

func (f *fakeClient) Publish(_ context.Context, stream string, fields map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.publishErr != nil {
		return "", f.publishErr
	}

	f.published = append(f.published, fields)
	f.publishedTo = append(f.publishedTo, stream)

	return "1-0", nil
}

func (f *fakeClient) ackedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.acked...)
}
