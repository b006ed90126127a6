// internal/domain/topic/model.go

package topic

import (
	"fmt"
	"iter"
)

// Topic is one configured search query with a stable index within its language
type Topic struct {
	ID       int
	Language string
	Query    string
}

// SearchQuery builds the recent search query: the topic text restricted to
// the topic language, retweets excluded
func (t Topic) SearchQuery() string {
	return fmt.Sprintf("%s lang:%s -is:retweet", t.Query, t.Language)
}

// Tweet is one search result
type Tweet struct {
	ID   string
	Text string
}

// Catalog holds the static topic lists, grouped per language.
// A Catalog is never mutated after construction.
type Catalog struct {
	languages []string
	topics    map[string][]string
}

// NewCatalog creates a catalog. Languages are enumerated in the given order.
func NewCatalog(languages []string, topics map[string][]string) (*Catalog, error) {
	c := &Catalog{
		languages: make([]string, 0, len(languages)),
		topics:    make(map[string][]string, len(languages)),
	}

	for _, lang := range languages {
		queries, ok := topics[lang]
		if !ok {
			return nil, fmt.Errorf("no topics for language %q", lang)
		}
		if len(lang) != 2 {
			return nil, fmt.Errorf("language code must have two characters: %q", lang)
		}
		c.languages = append(c.languages, lang)
		c.topics[lang] = append([]string(nil), queries...)
	}

	return c, nil
}

// Languages returns the catalog languages in enumeration order
func (c *Catalog) Languages() []string {
	return append([]string(nil), c.languages...)
}

// Len returns the total number of topics across all languages
func (c *Catalog) Len() int {
	n := 0
	for _, queries := range c.topics {
		n += len(queries)
	}
	return n
}

// Lookup resolves a topic by language and index
func (c *Catalog) Lookup(lang string, id int) (Topic, bool) {
	queries, ok := c.topics[lang]
	if !ok || id < 0 || id >= len(queries) {
		return Topic{}, false
	}
	return Topic{ID: id, Language: lang, Query: queries[id]}, true
}

// All yields every topic, language by language, in index order
func (c *Catalog) All() iter.Seq[Topic] {
	return func(yield func(Topic) bool) {
		for _, lang := range c.languages {
			for id, q := range c.topics[lang] {
				if !yield(Topic{ID: id, Language: lang, Query: q}) {
					return
				}
			}
		}
	}
}
