package cache

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jekabolt/ecomm-insights/internal/entity"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const unknownCategoryLabel = "Desconhecida"

type CategoryCache struct {
	LabelCache map[string]string // code to label
	CodeCache  map[string]string // label to code
	Mutex      sync.RWMutex
}

func newCategoryCache(translations []entity.CategoryTranslation) (*CategoryCache, error) {
	c := &CategoryCache{
		LabelCache: make(map[string]string),
		CodeCache:  make(map[string]string),
	}
	c.Mutex.Lock()
	defer c.Mutex.Unlock()

	title := cases.Title(language.BrazilianPortuguese)
	for _, t := range translations {
		if t.NameEnglish == "" {
			return nil, fmt.Errorf("empty english name for category %q", t.Name)
		}
		label := title.String(strings.ReplaceAll(t.Name, "_", " "))
		c.LabelCache[t.NameEnglish] = label
		// first code wins so reverse lookups stay deterministic
		if _, ok := c.CodeCache[label]; !ok {
			c.CodeCache[label] = t.NameEnglish
		}
	}
	c.LabelCache[entity.UnknownCategory] = unknownCategoryLabel
	c.CodeCache[unknownCategoryLabel] = entity.UnknownCategory

	return c, nil
}

// GetLabel returns the display label of a category code. Codes without a
// translation are returned unchanged.
func (c *CategoryCache) GetLabel(code string) string {
	c.Mutex.RLock()
	defer c.Mutex.RUnlock()

	if label, ok := c.LabelCache[code]; ok {
		return label
	}
	return code
}

// GetCode returns the category code of a display label. Unknown labels are
// treated as codes.
func (c *CategoryCache) GetCode(label string) string {
	c.Mutex.RLock()
	defer c.Mutex.RUnlock()

	if code, ok := c.CodeCache[label]; ok {
		return code
	}
	return label
}
