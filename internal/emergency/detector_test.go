package emergency

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_Detect(t *testing.T) {
	d := NewDetector(nil)

	tests := []struct {
		name         string
		text         string
		wantType     string
		wantCategory string
		wantPriority int
	}{
		{
			name:         "cardiac keyword",
			text:         "I have crushing chest pain since morning",
			wantType:     "CARDIAC EMERGENCY",
			wantCategory: "cardiac",
			wantPriority: 1,
		},
		{
			name:         "case insensitive",
			text:         "CAN'T BREATHE at all",
			wantType:     "RESPIRATORY EMERGENCY",
			wantCategory: "respiratory",
			wantPriority: 1,
		},
		{
			name:         "priority two only",
			text:         "I keep vomiting blood",
			wantType:     "SEVERE ABDOMINAL EMERGENCY",
			wantCategory: "abdominal",
			wantPriority: 2,
		},
		{
			name:         "lower priority number wins over declaration order",
			text:         "worst headache of life and now I am unconscious",
			wantType:     "SEVERE TRAUMA",
			wantCategory: "trauma",
			wantPriority: 1,
		},
		{
			name:         "tie resolves to first declared category",
			text:         "chest pain and I am choking",
			wantType:     "CARDIAC EMERGENCY",
			wantCategory: "cardiac",
			wantPriority: 1,
		},
		{
			name:         "substring match inside a longer word",
			text:         "I had a heatstroke yesterday",
			wantType:     "POSSIBLE STROKE",
			wantCategory: "stroke",
			wantPriority: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := d.Detect(tt.text)
			require.NotNil(t, m)
			assert.Equal(t, tt.wantType, m.Type)
			assert.Equal(t, tt.wantCategory, m.Category)
			assert.Equal(t, tt.wantPriority, m.Priority)
			assert.True(t, strings.HasPrefix(m.Message, "🚨"))
		})
	}
}

func TestDetector_NoMatch(t *testing.T) {
	d := NewDetector(nil)

	for _, text := range []string{"", "mild headache for two days", "my knee hurts a little"} {
		assert.Nil(t, d.Detect(text), text)
		assert.False(t, d.HasEmergencyKeywords(text), text)
		_, ok := d.Priority(text)
		assert.False(t, ok, text)
	}
}

func TestDetector_DetectValue(t *testing.T) {
	d := NewDetector(nil)
	s := "chest pain"
	var nilStr *string

	assert.Nil(t, d.DetectValue(nil))
	assert.Nil(t, d.DetectValue(42))
	assert.Nil(t, d.DetectValue(struct{}{}))
	assert.Nil(t, d.DetectValue(nilStr))
	require.NotNil(t, d.DetectValue(s))
	require.NotNil(t, d.DetectValue(&s))
	assert.Equal(t, "cardiac", d.DetectValue(&s).Category)
}

func TestDetector_PriorityMatchesDetect(t *testing.T) {
	d := NewDetector(nil)

	p, ok := d.Priority("stabbing abdominal pain")
	require.True(t, ok)
	assert.Equal(t, 2, p)
	assert.Equal(t, d.Detect("stabbing abdominal pain").Priority, p)
}

func TestDetector_AddCustomKeyword(t *testing.T) {
	t.Run("new category gets defaults and is appended", func(t *testing.T) {
		d := NewDetector(nil)
		before := len(d.Categories())

		require.NoError(t, d.AddCustomKeyword("burns", "Chemical Burn", CategoryDefaults{}))

		cats := d.Categories()
		require.Len(t, cats, before+1)
		last := cats[len(cats)-1]
		assert.Equal(t, "burns", last.Name)
		assert.Equal(t, []string{"chemical burn"}, last.Keywords)
		assert.Equal(t, DefaultCustomType, last.Type)
		assert.Equal(t, DefaultCustomMessage, last.Message)
		assert.Equal(t, DefaultCustomPriority, last.Priority)

		m := d.Detect("I got a chemical burn on my hand")
		require.NotNil(t, m)
		assert.Equal(t, "EMERGENCY", m.Type)
		assert.Equal(t, 3, m.Priority)
	})

	t.Run("existing category keeps its priority and message", func(t *testing.T) {
		d := NewDetector(nil)

		require.NoError(t, d.AddCustomKeyword("cardiac", "heart stopped", CategoryDefaults{Priority: 5, Message: "x"}))

		m := d.Detect("I think my heart stopped")
		require.NotNil(t, m)
		assert.Equal(t, "cardiac", m.Category)
		assert.Equal(t, 1, m.Priority)
		assert.Equal(t, "CARDIAC EMERGENCY", m.Type)
	})

	t.Run("explicit defaults are used", func(t *testing.T) {
		d := NewDetector(nil)

		require.NoError(t, d.AddCustomKeyword("heat", "heat exhaustion", CategoryDefaults{
			Type:     "HEAT EMERGENCY",
			Message:  "Cool down now.",
			Priority: 2,
		}))

		m := d.Detect("signs of heat exhaustion")
		require.NotNil(t, m)
		assert.Equal(t, "HEAT EMERGENCY", m.Type)
		assert.Equal(t, "Cool down now.", m.Message)
		assert.Equal(t, 2, m.Priority)
	})

	t.Run("blank keyword rejected", func(t *testing.T) {
		d := NewDetector(nil)
		assert.ErrorIs(t, d.AddCustomKeyword("cardiac", "  ", CategoryDefaults{}), ErrEmptyKeyword)
		assert.ErrorIs(t, d.AddCustomKeyword("", "thing", CategoryDefaults{}), ErrEmptyKeyword)
	})

	t.Run("returned match is unaffected by later additions", func(t *testing.T) {
		d := NewDetector(nil)
		m := d.Detect("chest pain")
		require.NotNil(t, m)

		require.NoError(t, d.AddCustomKeyword("cardiac", "palpitations", CategoryDefaults{}))
		assert.Equal(t, "CARDIAC EMERGENCY", m.Type)
		assert.Equal(t, 1, m.Priority)
	})
}

func TestDetector_CategoriesIsCopy(t *testing.T) {
	d := NewDetector(nil)

	cats := d.Categories()
	cats[0].Keywords[0] = "mutated"
	cats[0].Priority = 99

	m := d.Detect("chest pain")
	require.NotNil(t, m)
	assert.Equal(t, 1, m.Priority)
}

func TestDetector_ConcurrentUse(t *testing.T) {
	d := NewDetector(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NotNil(t, d.Detect("overdose"))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, d.AddCustomKeyword("extra", "sudden collapse", CategoryDefaults{}))
		}()
	}
	wg.Wait()

	cats := d.Categories()
	assert.Equal(t, "extra", cats[len(cats)-1].Name)
	assert.Len(t, cats[len(cats)-1].Keywords, 20)
}

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	require.Len(t, cats, 10)

	seen := make(map[string]bool)
	for _, c := range cats {
		assert.False(t, seen[c.Name], "duplicate category %s", c.Name)
		seen[c.Name] = true
		assert.NotEmpty(t, c.Keywords)
		assert.Contains(t, []int{1, 2}, c.Priority)
		for _, kw := range c.Keywords {
			assert.Equal(t, strings.ToLower(kw), kw)
		}
	}
}
