package engine

import (
	"tbc-warlock-sim/internal/character"
	"tbc-warlock-sim/internal/config"
	"tbc-warlock-sim/internal/rng"
	"tbc-warlock-sim/internal/spells"
)

const petLogPrefix = "PET_"

// demon lists what a summon is called and what it attacks with.
type demon struct {
	name    string
	actions []spells.ID
}

// The felhunter has no damage worth simulating and stays a sheet only.
var demons = map[string]demon{
	config.PetImp:      {name: "Imp", actions: []spells.ID{spells.Firebolt}},
	config.PetSuccubus: {name: "Succubus", actions: []spells.ID{spells.LashOfPain, spells.Melee}},
	config.PetFelguard: {name: "Felguard", actions: []spells.ID{spells.Cleave, spells.Melee}},
}

// newPet builds the summoned demon, or returns nil when the summon does not
// fight. It draws from its own random stream so the player's rolls do not
// depend on whether a pet is out.
func newPet(owner *Combatant, summon string, seed uint64) *Combatant {
	d, ok := demons[summon]
	if !ok {
		return nil
	}
	sheet := character.NewPetSheet(owner.sheet, owner.cfg)
	pet := &Combatant{
		Name:      d.name,
		cfg:       owner.cfg,
		cat:       owner.cat,
		sheet:     sheet,
		rng:       rng.New(seed, rng.StreamPet),
		res:       character.NewResources(sheet.MaxMana(), sheet.MaxHealth()),
		owner:     owner,
		logPrefix: petLogPrefix,
		policy:    petPolicy{},
	}
	for _, id := range d.actions {
		pet.register(id, 1)
	}
	pet.registerAuras()
	return pet
}
