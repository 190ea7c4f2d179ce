package character

// Resources tracks current pools.
type Resources struct {
	Mana   float64
	Health float64

	maxMana   float64
	maxHealth float64
}

// NewResources returns full pools.
func NewResources(maxMana, maxHealth float64) Resources {
	return Resources{Mana: maxMana, Health: maxHealth, maxMana: maxMana, maxHealth: maxHealth}
}

// Refill restores both pools to their maximum.
func (r *Resources) Refill() {
	r.Mana = r.maxMana
	r.Health = r.maxHealth
}

// HasMana checks if the pool covers cost.
func (r *Resources) HasMana(cost float64) bool {
	return r.Mana >= cost
}

// SpendMana deducts mana, flooring at zero.
func (r *Resources) SpendMana(cost float64) {
	r.Mana -= cost
	if r.Mana < 0 {
		r.Mana = 0
	}
}

// GainMana adds mana up to the maximum and returns the amount actually gained.
func (r *Resources) GainMana(amount float64) float64 {
	before := r.Mana
	r.Mana += amount
	if r.Mana > r.maxMana {
		r.Mana = r.maxMana
	}
	return r.Mana - before
}

// SpendHealth deducts health, flooring at one. Health is a resource here,
// not a loss condition.
func (r *Resources) SpendHealth(amount float64) {
	r.Health -= amount
	if r.Health < 1 {
		r.Health = 1
	}
}

func (r *Resources) MaxMana() float64 { return r.maxMana }
