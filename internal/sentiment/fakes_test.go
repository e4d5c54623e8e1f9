package sentiment

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spacesedan/reviewpulse/internal/models"
)

// fakeClassifier answers from fixed tables keyed by text, or text and aspect.
type fakeClassifier struct {
	general map[string]models.Prediction
	aspect  map[string]models.Prediction
	errs    map[string]error
	calls   atomic.Int32
}

func aspectKey(text, aspect string) string { return text + "|" + aspect }

func (f *fakeClassifier) ClassifyGeneral(_ context.Context, text string) (models.Prediction, error) {
	f.calls.Add(1)
	if err, ok := f.errs[text]; ok {
		return models.Prediction{}, err
	}
	p, ok := f.general[text]
	if !ok {
		return models.Prediction{}, fmt.Errorf("no fixture for %q", text)
	}
	return p, nil
}

func (f *fakeClassifier) ClassifyAspect(_ context.Context, text, aspect string) (models.Prediction, error) {
	f.calls.Add(1)
	key := aspectKey(text, aspect)
	if err, ok := f.errs[key]; ok {
		return models.Prediction{}, err
	}
	p, ok := f.aspect[key]
	if !ok {
		return models.Prediction{}, fmt.Errorf("no fixture for %q", key)
	}
	return p, nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func ptr(s string) *string { return &s }

func reviewOrEmpty(s *string) string { return models.ReviewText(s) }
