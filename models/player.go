package models

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// PlayerStats holds the twelve base stats, grouped physical, technical and
// mental. Values run on an open 0-100 scale.
type PlayerStats struct {
	Endurance   float64 `json:"endurance"`
	Strength    float64 `json:"strength"`
	Agility     float64 `json:"agility"`
	Speed       float64 `json:"speed"`
	Explosivity float64 `json:"explosivity"`

	Smash   float64 `json:"smash"`
	Defense float64 `json:"defense"`
	Serve   float64 `json:"serve"`
	Receive float64 `json:"receive"`

	Toughness        float64 `json:"toughness"`
	Confidence       float64 `json:"confidence"`
	InjuryPrevention float64 `json:"injury_prevention"`
}

// Physical is the mean of the five physical stats.
func (s PlayerStats) Physical() float64 {
	return (s.Endurance + s.Strength + s.Agility + s.Speed + s.Explosivity) / 5
}

// Technical is the mean of the four racket stats.
func (s PlayerStats) Technical() float64 {
	return (s.Smash + s.Defense + s.Serve + s.Receive) / 4
}

// Mental is the mean of the three mental stats.
func (s PlayerStats) Mental() float64 {
	return (s.Toughness + s.Confidence + s.InjuryPrevention) / 3
}

// Get looks a stat up by its jsonb key. Unknown names return 0.
func (s PlayerStats) Get(name string) float64 {
	switch name {
	case "endurance":
		return s.Endurance
	case "strength":
		return s.Strength
	case "agility":
		return s.Agility
	case "speed":
		return s.Speed
	case "explosivity":
		return s.Explosivity
	case "smash":
		return s.Smash
	case "defense":
		return s.Defense
	case "serve":
		return s.Serve
	case "receive":
		return s.Receive
	case "toughness":
		return s.Toughness
	case "confidence":
		return s.Confidence
	case "injury_prevention":
		return s.InjuryPrevention
	}
	return 0
}

// Equipment is one equipped item. Bonus is the flat strength contribution;
// the simulator caps the summed total.
type Equipment struct {
	Name  string  `json:"name"`
	Slot  string  `json:"slot"`
	Bonus float64 `json:"bonus"`
}

type Player struct {
	ID         int            `json:"id" db:"id"`
	ClubID     *int           `json:"club_id,omitempty" db:"club_id"`
	Name       string         `json:"name" db:"name"`
	Gender     Gender         `json:"gender" db:"gender"`
	Level      int            `json:"level" db:"level"`
	Rank       float64        `json:"rank" db:"rank"`
	RankLabel  Tier           `json:"rank_label" db:"rank_label"`
	Strategy   string         `json:"strategy" db:"strategy"`
	Stats      PlayerStats    `json:"stats" db:"-"`
	StatLevels map[string]int `json:"stat_levels,omitempty" db:"-"`
	Injuries   []Injury       `json:"injuries,omitempty" db:"-"`
	Equipment  []Equipment    `json:"equipment,omitempty" db:"-"`
	IsCPU      bool           `json:"is_cpu" db:"is_cpu"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// ActiveInjuries filters the injury list down to those still recovering.
func (p *Player) ActiveInjuries(now time.Time) []Injury {
	var active []Injury
	for _, inj := range p.Injuries {
		if inj.Active(now) {
			active = append(active, inj)
		}
	}
	return active
}

// EquipmentBonus sums the flat bonuses of all equipped items, uncapped. The
// simulator applies the cap.
func (p *Player) EquipmentBonus() float64 {
	var total float64
	for _, eq := range p.Equipment {
		total += eq.Bonus
	}
	return total
}
