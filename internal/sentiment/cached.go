package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/spacesedan/reviewpulse/internal/models"
)

const DefaultCacheTTL = 24 * time.Hour

// Cache stores raw classifier predictions between runs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedClassifier puts a cache in front of a general and/or aspect
// classifier. Cache failures are logged and fall through to the classifier.
type CachedClassifier struct {
	namespace string
	cache     Cache
	ttl       time.Duration
	general   GeneralClassifier
	aspect    AspectClassifier
}

// NewCachedClassifier wraps the classifiers. namespace separates backends so
// that two models never share entries.
func NewCachedClassifier(namespace string, cache Cache, ttl time.Duration, general GeneralClassifier, aspect AspectClassifier) *CachedClassifier {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedClassifier{
		namespace: namespace,
		cache:     cache,
		ttl:       ttl,
		general:   general,
		aspect:    aspect,
	}
}

func (c *CachedClassifier) ClassifyGeneral(ctx context.Context, text string) (models.Prediction, error) {
	return c.cached(ctx, c.key("general", text, ""), func() (models.Prediction, error) {
		return c.general.ClassifyGeneral(ctx, text)
	})
}

func (c *CachedClassifier) ClassifyAspect(ctx context.Context, text, aspect string) (models.Prediction, error) {
	return c.cached(ctx, c.key("aspect", text, foldKey(aspect)), func() (models.Prediction, error) {
		return c.aspect.ClassifyAspect(ctx, text, aspect)
	})
}

func (c *CachedClassifier) key(mode, text, aspect string) string {
	hash := sha256.Sum256([]byte(aspect + "\x00" + text))
	return "reviews:sentiment:" + c.namespace + ":" + mode + ":" + hex.EncodeToString(hash[:])
}

func (c *CachedClassifier) cached(ctx context.Context, key string, classify func() (models.Prediction, error)) (models.Prediction, error) {
	var prediction models.Prediction

	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("[CachedClassifier] Cache lookup failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
	if ok {
		if err := json.Unmarshal(raw, &prediction); err == nil {
			return prediction, nil
		}
		slog.Warn("[CachedClassifier] Discarding unreadable cache entry", slog.String("key", key))
	}

	prediction, err = classify()
	if err != nil {
		return prediction, err
	}

	if raw, err := json.Marshal(prediction); err == nil {
		if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
			slog.Warn("[CachedClassifier] Cache store failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}
	return prediction, nil
}
