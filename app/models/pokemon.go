// Package models defines the Pokemon document and its input shapes.
package models

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stats holds the four base stat fields. Each is validated into [0, 255]
// at write time; out-of-range values are rejected, never clamped.
type Stats struct {
	HP      int `bson:"hp" json:"hp"`
	Attack  int `bson:"attack" json:"attack"`
	Defense int `bson:"defense" json:"defense"`
	Speed   int `bson:"speed" json:"speed"`
}

// Total is the sum of the four base stats.
func (s Stats) Total() int {
	return s.HP + s.Attack + s.Defense + s.Speed
}

// Pokemon is one catalog record: the unit of storage and of REST
// addressing. `name` is the natural key, always stored lowercase and
// trimmed; it is existence-checked on create but not index-enforced unique.
type Pokemon struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Type        string             `bson:"type" json:"type"`
	Height      float64            `bson:"height" json:"height"`
	Weight      float64            `bson:"weight" json:"weight"`
	Abilities   string             `bson:"abilities" json:"abilities"`
	Stats       Stats              `bson:"stats" json:"stats"`
	Sprite      string             `bson:"sprite,omitempty" json:"sprite,omitempty"`
	PokeAPIID   int                `bson:"pokeApiId,omitempty" json:"pokeApiId,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MarshalJSON emits the derived totalStats and displayName fields alongside
// the stored ones.
func (p Pokemon) MarshalJSON() ([]byte, error) {
	type alias Pokemon
	return json.Marshal(struct {
		alias
		TotalStats  int    `json:"totalStats"`
		DisplayName string `json:"displayName"`
	}{
		alias:       alias(p),
		TotalStats:  p.TotalStats(),
		DisplayName: p.DisplayName(),
	})
}

// TotalStats is the sum of the four base stat fields.
func (p *Pokemon) TotalStats() int { return p.Stats.Total() }

// DisplayName is the name with its first rune upper-cased.
func (p *Pokemon) DisplayName() string {
	if p.Name == "" {
		return ""
	}
	runes := []rune(p.Name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// TypesArray splits the comma-joined type string into individual tags.
func (p *Pokemon) TypesArray() []string {
	return SplitTags(p.Type)
}

// PrimaryType is the first type tag.
func (p *Pokemon) PrimaryType() string {
	tags := p.TypesArray()
	if len(tags) == 0 {
		return ""
	}
	return tags[0]
}

// Normalize lowercases and trims the natural key and trims free-text
// fields. Called before every persist.
func (p *Pokemon) Normalize() {
	p.Name = strings.ToLower(strings.TrimSpace(p.Name))
	p.Type = strings.TrimSpace(p.Type)
	p.Abilities = strings.TrimSpace(p.Abilities)
	p.Description = strings.TrimSpace(p.Description)
	p.Category = strings.TrimSpace(p.Category)
}

// SplitTags splits a comma-joined tag string ("fire, flying") into trimmed
// non-empty tags.
func SplitTags(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// JoinTags joins tags into the stored comma-and-space form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// StatsInput carries the optional stat fields of a request body. Pointer
// fields distinguish "not supplied" from an explicit zero.
type StatsInput struct {
	HP      *int `json:"hp" validate:"nullable,between=0,255"`
	Attack  *int `json:"attack" validate:"nullable,between=0,255"`
	Defense *int `json:"defense" validate:"nullable,between=0,255"`
	Speed   *int `json:"speed" validate:"nullable,between=0,255"`
}

// PokemonInput is a partial candidate record as supplied by a client.
// Every field is a pointer so the merge and update paths can tell an absent
// field from a zero value.
type PokemonInput struct {
	Name        *string     `json:"name" validate:"required,min=1,max=50"`
	Type        *string     `json:"type" validate:"required"`
	Height      *float64    `json:"height" validate:"required,gte=0"`
	Weight      *float64    `json:"weight" validate:"required,gte=0"`
	Abilities   *string     `json:"abilities" validate:"required"`
	Stats       *StatsInput `json:"stats"`
	Sprite      *string     `json:"sprite" validate:"nullable,url"`
	PokeAPIID   *int        `json:"pokeApiId" validate:"nullable,gte=1"`
	Description *string     `json:"description" validate:"nullable,max=500"`
	Category    *string     `json:"category" validate:"nullable,max=50"`
}

// HasName reports whether a usable name was supplied.
func (in *PokemonInput) HasName() bool {
	return in.Name != nil && strings.TrimSpace(*in.Name) != ""
}

// NormalizedName returns the lowercase trimmed natural key, or "".
func (in *PokemonInput) NormalizedName() string {
	if in.Name == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*in.Name))
}

// ToPokemon materialises the input as a full document. Absent optional
// fields take their zero defaults (stats default to 0, matching the
// enrichment source's treatment of missing stat entries).
func (in *PokemonInput) ToPokemon() Pokemon {
	var p Pokemon
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Type != nil {
		p.Type = *in.Type
	}
	if in.Height != nil {
		p.Height = *in.Height
	}
	if in.Weight != nil {
		p.Weight = *in.Weight
	}
	if in.Abilities != nil {
		p.Abilities = *in.Abilities
	}
	if in.Stats != nil {
		if in.Stats.HP != nil {
			p.Stats.HP = *in.Stats.HP
		}
		if in.Stats.Attack != nil {
			p.Stats.Attack = *in.Stats.Attack
		}
		if in.Stats.Defense != nil {
			p.Stats.Defense = *in.Stats.Defense
		}
		if in.Stats.Speed != nil {
			p.Stats.Speed = *in.Stats.Speed
		}
	}
	if in.Sprite != nil {
		p.Sprite = *in.Sprite
	}
	if in.PokeAPIID != nil {
		p.PokeAPIID = *in.PokeAPIID
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	p.Normalize()
	return p
}

// ApplyTo overlays the supplied fields of in onto an existing document,
// leaving absent fields untouched. Used by partial updates.
func (in *PokemonInput) ApplyTo(p *Pokemon) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Type != nil {
		p.Type = *in.Type
	}
	if in.Height != nil {
		p.Height = *in.Height
	}
	if in.Weight != nil {
		p.Weight = *in.Weight
	}
	if in.Abilities != nil {
		p.Abilities = *in.Abilities
	}
	if in.Stats != nil {
		if in.Stats.HP != nil {
			p.Stats.HP = *in.Stats.HP
		}
		if in.Stats.Attack != nil {
			p.Stats.Attack = *in.Stats.Attack
		}
		if in.Stats.Defense != nil {
			p.Stats.Defense = *in.Stats.Defense
		}
		if in.Stats.Speed != nil {
			p.Stats.Speed = *in.Stats.Speed
		}
	}
	if in.Sprite != nil {
		p.Sprite = *in.Sprite
	}
	if in.PokeAPIID != nil {
		p.PokeAPIID = *in.PokeAPIID
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	p.Normalize()
}

// AsInput converts a document back into input form so the shared
// validation rules can run after an update has been applied.
func (p *Pokemon) AsInput() PokemonInput {
	in := PokemonInput{
		Height: &p.Height,
		Weight: &p.Weight,
		Stats: &StatsInput{
			HP:      &p.Stats.HP,
			Attack:  &p.Stats.Attack,
			Defense: &p.Stats.Defense,
			Speed:   &p.Stats.Speed,
		},
	}
	if p.Name != "" {
		in.Name = &p.Name
	}
	if p.Type != "" {
		in.Type = &p.Type
	}
	if p.Abilities != "" {
		in.Abilities = &p.Abilities
	}
	if p.Sprite != "" {
		in.Sprite = &p.Sprite
	}
	if p.PokeAPIID != 0 {
		in.PokeAPIID = &p.PokeAPIID
	}
	if p.Description != "" {
		in.Description = &p.Description
	}
	if p.Category != "" {
		in.Category = &p.Category
	}
	return in
}
