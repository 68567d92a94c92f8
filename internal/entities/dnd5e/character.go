// Package dnd5e implements the D&D 5e entities used by the character sheet form
package dnd5e

import "encoding/json"

// CharacterSheet is a validated character sheet. Only stored attributes are
// fields; every derived statistic is a method so it can never go stale.
// Construct it through charactersheet.ValidateAndConstruct.
type CharacterSheet struct {
	Name         string `json:"name"`
	Race         string `json:"race"`
	Class        string `json:"class"`
	Level        int    `json:"level"`
	Strength     int    `json:"strength"`
	Dexterity    int    `json:"dexterity"`
	Constitution int    `json:"constitution"`
	Intelligence int    `json:"intelligence"`
	Wisdom       int    `json:"wisdom"`
	Charisma     int    `json:"charisma"`
	HealthPoints int    `json:"health_points"`
	ArmorClass   int    `json:"armor_class"`
}

// AbilityModifier returns floor((score-10)/2), rounding toward negative
// infinity, so a score of 9 yields -1.
func AbilityModifier(score int) int {
	diff := score - 10
	if diff < 0 && diff%2 != 0 {
		return diff/2 - 1
	}
	return diff / 2
}

// ProficiencyBonus returns level/4+1 below level 17 and 6 from then on
func ProficiencyBonus(level int) int {
	if level < ProficiencyBreakpoint {
		return level/4 + 1
	}
	return MaxProficiencyBonus
}

// StrengthModifier is derived from Strength
func (c CharacterSheet) StrengthModifier() int { return AbilityModifier(c.Strength) }

// DexterityModifier is derived from Dexterity
func (c CharacterSheet) DexterityModifier() int { return AbilityModifier(c.Dexterity) }

// ConstitutionModifier is derived from Constitution
func (c CharacterSheet) ConstitutionModifier() int { return AbilityModifier(c.Constitution) }

// IntelligenceModifier is derived from Intelligence
func (c CharacterSheet) IntelligenceModifier() int { return AbilityModifier(c.Intelligence) }

// WisdomModifier is derived from Wisdom
func (c CharacterSheet) WisdomModifier() int { return AbilityModifier(c.Wisdom) }

// CharismaModifier is derived from Charisma
func (c CharacterSheet) CharismaModifier() int { return AbilityModifier(c.Charisma) }

// ProficiencyBonus is derived from Level
func (c CharacterSheet) ProficiencyBonus() int { return ProficiencyBonus(c.Level) }

// Initiative is the dexterity modifier plus the proficiency bonus
func (c CharacterSheet) Initiative() int {
	return c.DexterityModifier() + c.ProficiencyBonus()
}

// AbilityScore returns the score stored for an ability field name
func (c CharacterSheet) AbilityScore(field string) (int, bool) {
	switch field {
	case FieldStrength:
		return c.Strength, true
	case FieldDexterity:
		return c.Dexterity, true
	case FieldConstitution:
		return c.Constitution, true
	case FieldIntelligence:
		return c.Intelligence, true
	case FieldWisdom:
		return c.Wisdom, true
	case FieldCharisma:
		return c.Charisma, true
	default:
		return 0, false
	}
}

// Fields returns the stored attributes as a raw field mapping
func (c CharacterSheet) Fields() RawFields {
	return RawFields{
		FieldName:         c.Name,
		FieldRace:         c.Race,
		FieldClass:        c.Class,
		FieldLevel:        c.Level,
		FieldStrength:     c.Strength,
		FieldDexterity:    c.Dexterity,
		FieldConstitution: c.Constitution,
		FieldIntelligence: c.Intelligence,
		FieldWisdom:       c.Wisdom,
		FieldCharisma:     c.Charisma,
		FieldHealthPoints: c.HealthPoints,
		FieldArmorClass:   c.ArmorClass,
	}
}

// characterSheetJSON fixes the key order of the serialized sheet: stored
// fields first, derived fields after.
type characterSheetJSON struct {
	Name                 string `json:"name"`
	Race                 string `json:"race"`
	Class                string `json:"class"`
	Level                int    `json:"level"`
	Strength             int    `json:"strength"`
	Dexterity            int    `json:"dexterity"`
	Constitution         int    `json:"constitution"`
	Intelligence         int    `json:"intelligence"`
	Wisdom               int    `json:"wisdom"`
	Charisma             int    `json:"charisma"`
	HealthPoints         int    `json:"health_points"`
	ArmorClass           int    `json:"armor_class"`
	StrengthModifier     int    `json:"strength_modifier"`
	DexterityModifier    int    `json:"dexterity_modifier"`
	ConstitutionModifier int    `json:"constitution_modifier"`
	IntelligenceModifier int    `json:"intelligence_modifier"`
	WisdomModifier       int    `json:"wisdom_modifier"`
	CharismaModifier     int    `json:"charisma_modifier"`
	ProficiencyBonus     int    `json:"proficiency_bonus"`
	Initiative           int    `json:"initiative"`
}

// MarshalJSON includes the derived statistics. Unmarshalling uses the
// default decoder, which reads the stored fields and ignores derived ones.
func (c CharacterSheet) MarshalJSON() ([]byte, error) {
	return json.Marshal(characterSheetJSON{
		Name:                 c.Name,
		Race:                 c.Race,
		Class:                c.Class,
		Level:                c.Level,
		Strength:             c.Strength,
		Dexterity:            c.Dexterity,
		Constitution:         c.Constitution,
		Intelligence:         c.Intelligence,
		Wisdom:               c.Wisdom,
		Charisma:             c.Charisma,
		HealthPoints:         c.HealthPoints,
		ArmorClass:           c.ArmorClass,
		StrengthModifier:     c.StrengthModifier(),
		DexterityModifier:    c.DexterityModifier(),
		ConstitutionModifier: c.ConstitutionModifier(),
		IntelligenceModifier: c.IntelligenceModifier(),
		WisdomModifier:       c.WisdomModifier(),
		CharismaModifier:     c.CharismaModifier(),
		ProficiencyBonus:     c.ProficiencyBonus(),
		Initiative:           c.Initiative(),
	})
}
