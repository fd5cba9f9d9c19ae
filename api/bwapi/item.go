package bwapi

import "encoding/json"

const QUALITY_TIERS = 5

type Item struct {
	Name                string                `json:"name"`
	Type                int                   `json:"type"`
	Level               int                   `json:"level"`
	ImageURL            string                `json:"imageUrl"`
	WorthMultiplier     int                   `json:"worthMultiplier"`
	QualityAdjectives   [QUALITY_TIERS]string `json:"qualityAdjectives"`
	QualityDescriptions [QUALITY_TIERS]string `json:"qualityDescriptions"`
	ConsumeEffects      *ConsumeEffects       `json:"consumeEffects,omitempty"`
	SkillEffects        *[]json.RawMessage    `json:"skillEffects,omitempty"`
}

// Adjective for the given quality tier, or "" when out of range.
func (i Item) Adjective(quality uint8) string {
	if int(quality) >= QUALITY_TIERS {
		return ""
	}

	return i.QualityAdjectives[quality]
}

// Description for the given quality tier, or "" when out of range.
func (i Item) Description(quality uint8) string {
	if int(quality) >= QUALITY_TIERS {
		return ""
	}

	return i.QualityDescriptions[quality]
}

// Display name with the quality adjective prefixed, e.g. "Rusty Knife".
func (i Item) DisplayName(quality uint8) string {
	if adj := i.Adjective(quality); adj != "" {
		return adj + " " + i.Name
	}

	return i.Name
}

// Effects returns the decoded consume effects, nil if the item has none.
func (i Item) Effects() []ConsumeEffect {
	if i.ConsumeEffects == nil {
		return nil
	}

	return *i.ConsumeEffects
}

// Items keyed by name. Names are unique within a catalog.
type ItemCatalog map[string]Item
