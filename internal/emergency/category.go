package emergency

const (
	// DefaultCustomType is used for categories created at runtime without an explicit type
	DefaultCustomType = "EMERGENCY"
	// DefaultCustomMessage is used for categories created at runtime without an explicit message
	DefaultCustomMessage = "Emergency detected. Seek immediate medical attention."
	// DefaultCustomPriority is the lowest urgency, assigned to new categories
	DefaultCustomPriority = 3
)

// Category is a named cluster of red-flag keywords sharing one alert and urgency priority.
// Priority 1 is the most urgent.
type Category struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Type     string   `json:"type"`
	Message  string   `json:"message"`
	Priority int      `json:"priority"`
}

// CategoryDefaults describes a category created by AddCustomKeyword.
// Zero values fall back to DefaultCustomType, DefaultCustomMessage and DefaultCustomPriority.
type CategoryDefaults struct {
	Type     string
	Message  string
	Priority int
}

func (c Category) clone() Category {
	kw := make([]string, len(c.Keywords))
	copy(kw, c.Keywords)
	c.Keywords = kw
	return c
}

// DefaultCategories returns the built-in category table in declaration order.
// Order matters: equal priorities resolve to the category declared first.
func DefaultCategories() []Category {
	return []Category{
		{
			Name: "cardiac",
			Keywords: []string{
				"chest pain", "heart attack", "crushing chest", "chest pressure",
				"chest tightness", "arm pain radiating", "jaw pain with chest",
				"heart racing severely", "irregular heartbeat severe",
			},
			Type:     "CARDIAC EMERGENCY",
			Message:  "🚨 You may be experiencing a CARDIAC EMERGENCY. Call 911 immediately if you have chest pain, especially with arm/jaw pain, shortness of breath, or sweating.",
			Priority: 1,
		},
		{
			Name: "respiratory",
			Keywords: []string{
				"can't breathe", "cannot breathe", "difficulty breathing severe",
				"shortness of breath severe", "choking", "suffocating",
				"turning blue", "gasping for air", "lips blue", "face blue",
			},
			Type:     "RESPIRATORY EMERGENCY",
			Message:  "🚨 SEVERE BREATHING DIFFICULTY detected. Call 911 immediately if you cannot breathe properly, are gasping for air, or have blue lips/face.",
			Priority: 1,
		},
		{
			Name: "stroke",
			Keywords: []string{
				"stroke", "face drooping", "arm weakness sudden", "speech difficulty sudden",
				"slurred speech sudden", "sudden confusion", "sudden severe headache",
				"vision loss sudden", "numbness one side", "paralysis one side",
				"can't move arm", "can't move leg", "facial droop",
			},
			Type:     "POSSIBLE STROKE",
			Message:  "🚨 STROKE WARNING SIGNS detected (F.A.S.T.: Face drooping, Arm weakness, Speech difficulty, Time to call 911). Stroke is time-critical - call 911 NOW.",
			Priority: 1,
		},
		{
			Name: "bleeding",
			Keywords: []string{
				"severe bleeding", "won't stop bleeding", "bleeding heavily",
				"bleeding profusely", "blood gushing", "spurting blood",
				"uncontrollable bleeding", "hemorrhaging",
			},
			Type:     "SEVERE BLEEDING",
			Message:  "🚨 SEVERE BLEEDING detected. Apply direct pressure and call 911 immediately. Do not remove objects embedded in wounds.",
			Priority: 1,
		},
		{
			Name: "trauma",
			Keywords: []string{
				"severe injury", "head injury severe", "unconscious", "unresponsive",
				"seizure", "convulsing", "fell from height", "car accident",
				"motorcycle accident", "major trauma", "broken neck", "spinal injury",
			},
			Type:     "SEVERE TRAUMA",
			Message:  "🚨 SEVERE INJURY/TRAUMA detected. Call 911 immediately. Do not move the person unless in immediate danger.",
			Priority: 1,
		},
		{
			Name: "poisoning",
			Keywords: []string{
				"overdose", "poisoned", "ingested poison", "chemical exposure",
				"swallowed bleach", "carbon monoxide", "drug overdose",
				"too many pills", "accidental ingestion",
			},
			Type:     "POISONING/OVERDOSE",
			Message:  "🚨 POISONING/OVERDOSE detected. Call 911 and Poison Control (1-800-222-1222) immediately. Do not induce vomiting unless instructed.",
			Priority: 1,
		},
		{
			Name: "allergic",
			Keywords: []string{
				"anaphylaxis", "throat closing", "swelling throat", "severe allergic reaction",
				"epipen", "can't swallow", "tongue swelling", "throat swelling",
				"airway closing", "allergic shock",
			},
			Type:     "ANAPHYLAXIS",
			Message:  "🚨 SEVERE ALLERGIC REACTION (Anaphylaxis) detected. Use EpiPen if available and call 911 immediately. This is life-threatening.",
			Priority: 1,
		},
		{
			Name: "abdominal",
			Keywords: []string{
				"severe abdominal pain", "stomach pain severe", "vomiting blood",
				"blood in vomit", "black tarry stool", "rectal bleeding severe",
				"appendix burst", "stabbing abdominal pain",
			},
			Type:     "SEVERE ABDOMINAL EMERGENCY",
			Message:  "🚨 SEVERE ABDOMINAL EMERGENCY detected. Call 911 if you have severe pain, vomiting blood, or signs of internal bleeding.",
			Priority: 2,
		},
		{
			Name: "neurological",
			Keywords: []string{
				"worst headache of life", "thunderclap headache", "sudden blindness",
				"double vision sudden", "loss of consciousness", "altered mental state",
				"extreme confusion", "hallucinations severe",
			},
			Type:     "NEUROLOGICAL EMERGENCY",
			Message:  "🚨 NEUROLOGICAL EMERGENCY detected. Call 911 if experiencing sudden severe headache, vision changes, or altered consciousness.",
			Priority: 2,
		},
		{
			Name: "pregnancy",
			Keywords: []string{
				"pregnant bleeding", "pregnancy bleeding severe", "severe pregnancy pain",
				"baby not moving", "contractions severe early", "water broke early",
				"preeclampsia", "pregnancy emergency",
			},
			Type:     "PREGNANCY EMERGENCY",
			Message:  "🚨 PREGNANCY EMERGENCY detected. Call 911 or go to emergency room immediately for severe pregnancy complications.",
			Priority: 1,
		},
	}
}
