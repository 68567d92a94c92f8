package dnd5e

// Race constants
const (
	RaceHuman    = "Human"
	RaceElf      = "Elf"
	RaceDwarf    = "Dwarf"
	RaceHalfling = "Halfling"
	RaceHalfOrc  = "Half-Orc"
	RaceHalfElf  = "Half-Elf"
	RaceGnome    = "Gnome"
	RaceTiefling = "Tiefling"
)

// Class constants
const (
	ClassBarbarian = "Barbarian"
	ClassBard      = "Bard"
	ClassCleric    = "Cleric"
	ClassDruid     = "Druid"
	ClassFighter   = "Fighter"
	ClassMonk      = "Monk"
	ClassPaladin   = "Paladin"
	ClassRanger    = "Ranger"
	ClassRogue     = "Rogue"
	ClassSorcerer  = "Sorcerer"
	ClassWarlock   = "Warlock"
	ClassWizard    = "Wizard"
)

// Stored field names, as they appear in JSON and in validation reports
const (
	FieldName         = "name"
	FieldRace         = "race"
	FieldClass        = "class"
	FieldLevel        = "level"
	FieldStrength     = "strength"
	FieldDexterity    = "dexterity"
	FieldConstitution = "constitution"
	FieldIntelligence = "intelligence"
	FieldWisdom       = "wisdom"
	FieldCharisma     = "charisma"
	FieldHealthPoints = "health_points"
	FieldArmorClass   = "armor_class"
)

// Derived field names
const (
	FieldStrengthModifier     = "strength_modifier"
	FieldDexterityModifier    = "dexterity_modifier"
	FieldConstitutionModifier = "constitution_modifier"
	FieldIntelligenceModifier = "intelligence_modifier"
	FieldWisdomModifier       = "wisdom_modifier"
	FieldCharismaModifier     = "charisma_modifier"
	FieldProficiencyBonus     = "proficiency_bonus"
	FieldInitiative           = "initiative"
)

// Field bounds
const (
	NameMinLength = 1
	NameMaxLength = 50
	LevelMin      = 1
	LevelMax      = 20
	AbilityMin    = 1
	AbilityMax    = 30

	// ProficiencyBreakpoint is the first level with the flat maximum bonus
	ProficiencyBreakpoint = 17
	MaxProficiencyBonus   = 6
)

// Races lists the accepted races in display order
var Races = []string{
	RaceHuman, RaceElf, RaceDwarf, RaceHalfling,
	RaceHalfOrc, RaceHalfElf, RaceGnome, RaceTiefling,
}

// Classes lists the accepted classes in display order
var Classes = []string{
	ClassBarbarian, ClassBard, ClassCleric, ClassDruid,
	ClassFighter, ClassMonk, ClassPaladin, ClassRanger,
	ClassRogue, ClassSorcerer, ClassWarlock, ClassWizard,
}

// Abilities lists the six ability score fields in sheet order
var Abilities = []string{
	FieldStrength, FieldDexterity, FieldConstitution,
	FieldIntelligence, FieldWisdom, FieldCharisma,
}

// RequiredFields lists every stored field in sheet order
var RequiredFields = []string{
	FieldName, FieldRace, FieldClass, FieldLevel,
	FieldStrength, FieldDexterity, FieldConstitution,
	FieldIntelligence, FieldWisdom, FieldCharisma,
	FieldHealthPoints, FieldArmorClass,
}

// IntegerFields reports which stored fields hold integers
var IntegerFields = map[string]bool{
	FieldLevel:        true,
	FieldStrength:     true,
	FieldDexterity:    true,
	FieldConstitution: true,
	FieldIntelligence: true,
	FieldWisdom:       true,
	FieldCharisma:     true,
	FieldHealthPoints: true,
	FieldArmorClass:   true,
}

// IsRequiredField reports whether name is a stored sheet field
func IsRequiredField(name string) bool {
	for _, f := range RequiredFields {
		if f == name {
			return true
		}
	}
	return false
}
