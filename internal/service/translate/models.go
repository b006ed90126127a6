// internal/service/translate/models.go

package translate

import (
	"context"
	"fmt"
	"sync"

	"tweetmood/internal/domain/pipeline"
)

// EnglishLanguage batches are already in the target language
const EnglishLanguage = "en"

// Model translates one text into English, returning candidates in model order
type Model interface {
	Translate(ctx context.Context, text string) ([]string, error)
}

// ModelFactory builds the model for a source language
type ModelFactory func(lang string) (Model, error)

// Identity returns its input as the only candidate
type Identity struct{}

// Translate implements Model
func (Identity) Translate(_ context.Context, text string) ([]string, error) {
	return []string{text}, nil
}

// ModelCache holds one model per source language for the life of the
// process. Models are built on first use and never evicted.
type ModelCache struct {
	mu      sync.Mutex
	factory ModelFactory
	models  map[string]Model
}

// NewModelCache creates a new model cache
func NewModelCache(factory ModelFactory) *ModelCache {
	return &ModelCache{
		factory: factory,
		models:  make(map[string]Model),
	}
}

// Get returns the model for lang, building it on first use. English maps to
// Identity. Factory failures are not cached.
func (c *ModelCache) Get(lang string) (Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.models[lang]; ok {
		return m, nil
	}

	var m Model
	if lang == EnglishLanguage {
		m = Identity{}
	} else {
		if c.factory == nil {
			return nil, fmt.Errorf("%s: %w", lang, pipeline.ErrNoModel)
		}
		var err error
		m, err = c.factory(lang)
		if err != nil {
			return nil, fmt.Errorf("model for %s: %w", lang, err)
		}
		if m == nil {
			return nil, fmt.Errorf("%s: %w", lang, pipeline.ErrNoModel)
		}
	}

	c.models[lang] = m
	return m, nil
}

// Len returns the number of cached models
func (c *ModelCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.models)
}
