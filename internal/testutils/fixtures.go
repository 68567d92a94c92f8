package testutils

import (
	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
)

// TestCharacterName is the default character name for fixtures
const TestCharacterName = "Aria Moonwhisper"

// ValidRawFields returns a complete candidate that passes validation
func ValidRawFields() dnd5e.RawFields {
	return dnd5e.RawFields{
		dnd5e.FieldName:         TestCharacterName,
		dnd5e.FieldRace:         dnd5e.RaceElf,
		dnd5e.FieldClass:        dnd5e.ClassWizard,
		dnd5e.FieldLevel:        5,
		dnd5e.FieldStrength:     12,
		dnd5e.FieldDexterity:    14,
		dnd5e.FieldConstitution: 12,
		dnd5e.FieldIntelligence: 18,
		dnd5e.FieldWisdom:       12,
		dnd5e.FieldCharisma:     10,
		dnd5e.FieldHealthPoints: 20,
		dnd5e.FieldArmorClass:   14,
	}
}

// ValidCharacterSheet returns the sheet ValidRawFields validates to
func ValidCharacterSheet() *dnd5e.CharacterSheet {
	return &dnd5e.CharacterSheet{
		Name:         TestCharacterName,
		Race:         dnd5e.RaceElf,
		Class:        dnd5e.ClassWizard,
		Level:        5,
		Strength:     12,
		Dexterity:    14,
		Constitution: 12,
		Intelligence: 18,
		Wisdom:       12,
		Charisma:     10,
		HealthPoints: 20,
		ArmorClass:   14,
	}
}

// IdentityOnly returns a candidate holding only name, race and class
func IdentityOnly() dnd5e.RawFields {
	return ValidRawFields().Without(append([]string{
		dnd5e.FieldLevel, dnd5e.FieldHealthPoints, dnd5e.FieldArmorClass,
	}, dnd5e.Abilities...)...)
}
