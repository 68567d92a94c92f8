// Package charactersheet validates raw character sheet candidates and turns
// them into dnd5e.CharacterSheet values.
package charactersheet

import (
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/KirkDiggler/sheetform/internal/entities/dnd5e"
)

// candidate is the typed view of a RawFields mapping. A nil pointer means
// the field was absent or could not be coerced to its type.
type candidate struct {
	Name         *string `json:"name"`
	Race         *string `json:"race"`
	Class        *string `json:"class"`
	Level        *int    `json:"level"`
	Strength     *int    `json:"strength"`
	Dexterity    *int    `json:"dexterity"`
	Constitution *int    `json:"constitution"`
	Intelligence *int    `json:"intelligence"`
	Wisdom       *int    `json:"wisdom"`
	Charisma     *int    `json:"charisma"`
	HealthPoints *int    `json:"health_points"`
	ArmorClass   *int    `json:"armor_class"`
}

// Validate checks every present field. Absent fields are reported by
// MissingFields, not here.
func (c *candidate) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name,
			validation.When(c.Name != nil,
				validation.Required.Error(nameLengthMessage),
				validation.RuneLength(dnd5e.NameMinLength, dnd5e.NameMaxLength).Error(nameLengthMessage),
			),
		),
		validation.Field(&c.Race, validation.When(c.Race != nil, oneOf("Race", "races", dnd5e.Races))),
		validation.Field(&c.Class, validation.When(c.Class != nil, oneOf("Class", "Classes", dnd5e.Classes))),
		validation.Field(&c.Level, validation.When(c.Level != nil, between("Level", dnd5e.LevelMin, dnd5e.LevelMax))),
		validation.Field(&c.Strength, abilityRules(c.Strength)...),
		validation.Field(&c.Dexterity, abilityRules(c.Dexterity)...),
		validation.Field(&c.Constitution, abilityRules(c.Constitution)...),
		validation.Field(&c.Intelligence, abilityRules(c.Intelligence)...),
		validation.Field(&c.Wisdom, abilityRules(c.Wisdom)...),
		validation.Field(&c.Charisma, abilityRules(c.Charisma)...),
		validation.Field(&c.HealthPoints, validation.When(c.HealthPoints != nil, positive("Health points"))),
		validation.Field(&c.ArmorClass, validation.When(c.ArmorClass != nil, positive("Armor class"))),
	)
}

func abilityRules(score *int) []validation.Rule {
	return []validation.Rule{
		validation.When(score != nil, between("Ability score", dnd5e.AbilityMin, dnd5e.AbilityMax)),
	}
}

func (c *candidate) sheet() *dnd5e.CharacterSheet {
	return &dnd5e.CharacterSheet{
		Name:         *c.Name,
		Race:         *c.Race,
		Class:        *c.Class,
		Level:        *c.Level,
		Strength:     *c.Strength,
		Dexterity:    *c.Dexterity,
		Constitution: *c.Constitution,
		Intelligence: *c.Intelligence,
		Wisdom:       *c.Wisdom,
		Charisma:     *c.Charisma,
		HealthPoints: *c.HealthPoints,
		ArmorClass:   *c.ArmorClass,
	}
}

// ValidateAndConstruct validates every present field of raw and builds a
// sheet when nothing is invalid or missing. All violations are reported in
// sheet field order; the sheet and the failure are never both non-nil.
func ValidateAndConstruct(raw dnd5e.RawFields) (*dnd5e.CharacterSheet, *Failure) {
	c, failure := decode(raw)

	if err := c.Validate(); err != nil {
		failure.addValidationErrors(err)
	}
	failure.Missing = MissingFields(raw)

	if failure.HasProblems() {
		failure.sortViolations()
		return nil, failure
	}

	return c.sheet(), nil
}

// MissingFields returns the required fields absent from raw in sheet order.
// A field present with a nil value counts as absent.
func MissingFields(raw dnd5e.RawFields) []string {
	var missing []string
	for _, field := range dnd5e.RequiredFields {
		if !raw.Has(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// decode coerces raw values into a candidate, recording a violation for
// every value of the wrong type.
func decode(raw dnd5e.RawFields) (*candidate, *Failure) {
	c := &candidate{}
	failure := &Failure{}

	strFields := map[string]**string{
		dnd5e.FieldName:  &c.Name,
		dnd5e.FieldRace:  &c.Race,
		dnd5e.FieldClass: &c.Class,
	}
	intFields := map[string]**int{
		dnd5e.FieldLevel:        &c.Level,
		dnd5e.FieldStrength:     &c.Strength,
		dnd5e.FieldDexterity:    &c.Dexterity,
		dnd5e.FieldConstitution: &c.Constitution,
		dnd5e.FieldIntelligence: &c.Intelligence,
		dnd5e.FieldWisdom:       &c.Wisdom,
		dnd5e.FieldCharisma:     &c.Charisma,
		dnd5e.FieldHealthPoints: &c.HealthPoints,
		dnd5e.FieldArmorClass:   &c.ArmorClass,
	}

	for field, target := range strFields {
		if !raw.Has(field) {
			continue
		}
		s, ok := raw[field].(string)
		if !ok {
			failure.add(field, "must be a string")
			continue
		}
		*target = &s
	}

	for field, target := range intFields {
		if !raw.Has(field) {
			continue
		}
		n, ok := toInt(raw[field])
		if !ok {
			failure.add(field, "must be an integer")
			continue
		}
		*target = &n
	}

	return c, failure
}

func (f *Failure) addValidationErrors(err error) {
	errs, ok := err.(validation.Errors)
	if !ok {
		// Only a misdeclared rule set gets here
		f.add("character_sheet", err.Error())
		return
	}

	for field, fieldErr := range errs {
		f.add(field, fieldErr.Error())
	}
}

func (f *Failure) sortViolations() {
	sort.SliceStable(f.Violations, func(i, j int) bool {
		return fieldIndex(f.Violations[i].Field) < fieldIndex(f.Violations[j].Field)
	})
}

func fieldIndex(field string) int {
	for i, f := range dnd5e.RequiredFields {
		if f == field {
			return i
		}
	}
	return len(dnd5e.RequiredFields)
}

// FieldDescriptions documents each stored field for prompts and LLM schemas
var FieldDescriptions = map[string]string{
	dnd5e.FieldName:         "The name of the character",
	dnd5e.FieldRace:         "The race of the character. Valid values: " + strings.Join(dnd5e.Races, ", "),
	dnd5e.FieldClass:        "The class of the character. Valid values: " + strings.Join(dnd5e.Classes, ", "),
	dnd5e.FieldLevel:        "The level of the character. Must be between 1 and 20.",
	dnd5e.FieldStrength:     "The strength score of the character. Must be between 1 and 30.",
	dnd5e.FieldDexterity:    "The dexterity score of the character. Must be between 1 and 30.",
	dnd5e.FieldConstitution: "The constitution score of the character. Must be between 1 and 30.",
	dnd5e.FieldIntelligence: "The intelligence score of the character. Must be between 1 and 30.",
	dnd5e.FieldWisdom:       "The wisdom score of the character. Must be between 1 and 30.",
	dnd5e.FieldCharisma:     "The charisma score of the character. Must be between 1 and 30.",
	dnd5e.FieldHealthPoints: "The health points of the character. Must be greater than 0.",
	dnd5e.FieldArmorClass:   "The armor class of the character. Must be greater than 0.",
}
