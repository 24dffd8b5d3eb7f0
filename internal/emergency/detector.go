package emergency

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrEmptyKeyword is returned when a blank keyword or category name is registered
var ErrEmptyKeyword = errors.New("keyword and category must not be empty")

// Match is the single most urgent emergency found in a message
type Match struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Priority int    `json:"priority"`
}

// Detector classifies free text against an ordered category table.
// Reads use an immutable snapshot; AddCustomKeyword swaps in a new one.
type Detector struct {
	table  atomic.Pointer[[]Category]
	mu     sync.Mutex
	logger *zap.Logger
}

// NewDetector creates a detector. Without categories it uses DefaultCategories.
func NewDetector(logger *zap.Logger, categories ...Category) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(categories) == 0 {
		categories = DefaultCategories()
	}

	table := make([]Category, 0, len(categories))
	for _, c := range categories {
		c = c.clone()
		for i, kw := range c.Keywords {
			c.Keywords[i] = strings.ToLower(kw)
		}
		table = append(table, c)
	}

	d := &Detector{logger: logger}
	d.table.Store(&table)
	return d
}

// Detect returns the lowest-priority-number match, or nil.
// Matching is case-insensitive substring containment, not word-boundary aware.
func (d *Detector) Detect(text string) *Match {
	if text == "" {
		return nil
	}

	msg := strings.ToLower(text)
	var best *Match

	for _, c := range *d.table.Load() {
		for _, kw := range c.Keywords {
			if !strings.Contains(msg, kw) {
				continue
			}

			d.logger.Debug("emergency keyword matched",
				zap.String("category", c.Name),
				zap.String("keyword", kw),
			)

			if best == nil || c.Priority < best.Priority {
				best = &Match{
					Type:     c.Type,
					Message:  c.Message,
					Category: c.Name,
					Priority: c.Priority,
				}
			}
		}
	}

	return best
}

// DetectValue is Detect for loosely typed input. Anything that is not a string
// or a non-nil *string yields no match.
func (d *Detector) DetectValue(v any) *Match {
	switch s := v.(type) {
	case string:
		return d.Detect(s)
	case *string:
		if s == nil {
			return nil
		}
		return d.Detect(*s)
	default:
		return nil
	}
}

// HasEmergencyKeywords reports whether Detect finds anything
func (d *Detector) HasEmergencyKeywords(text string) bool {
	return d.Detect(text) != nil
}

// Priority returns the priority of the match Detect would return
func (d *Detector) Priority(text string) (int, bool) {
	m := d.Detect(text)
	if m == nil {
		return 0, false
	}
	return m.Priority, true
}

// AddCustomKeyword appends keyword to category, creating the category at the end
// of the table if it does not exist. Priority and message of an existing category
// are left unchanged.
func (d *Detector) AddCustomKeyword(category, keyword string, defaults CategoryDefaults) error {
	category = strings.TrimSpace(category)
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if category == "" || keyword == "" {
		return ErrEmptyKeyword
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	current := *d.table.Load()
	next := make([]Category, 0, len(current)+1)
	found := false
	for _, c := range current {
		c = c.clone()
		if c.Name == category {
			c.Keywords = append(c.Keywords, keyword)
			found = true
		}
		next = append(next, c)
	}

	if !found {
		c := Category{
			Name:     category,
			Keywords: []string{keyword},
			Type:     defaults.Type,
			Message:  defaults.Message,
			Priority: defaults.Priority,
		}
		if c.Type == "" {
			c.Type = DefaultCustomType
		}
		if c.Message == "" {
			c.Message = DefaultCustomMessage
		}
		if c.Priority <= 0 {
			c.Priority = DefaultCustomPriority
		}
		next = append(next, c)
	}

	d.table.Store(&next)

	d.logger.Info("custom emergency keyword added",
		zap.String("category", category),
		zap.String("keyword", keyword),
		zap.Bool("new_category", !found),
	)

	return nil
}

// Categories returns a copy of the current table
func (d *Detector) Categories() []Category {
	current := *d.table.Load()
	out := make([]Category, len(current))
	for i, c := range current {
		out[i] = c.clone()
	}
	return out
}
