package domain

// Ingredient is one priced component of a recipe or loot table row.
// Source decides how the price is resolved; for SourceCoins the Literal
// value is the price and no lookup happens.
type Ingredient struct {
	Name    string  `json:"name"`
	Qty     float64 `json:"qty"`
	Source  Source  `json:"source"`
	Literal float64 `json:"literal,omitempty"`
}

// ForgeDuration is the declared crafting time of a forge recipe.
type ForgeDuration struct {
	Days    int `json:"days,omitempty"`
	Hours   int `json:"hours,omitempty"`
	Minutes int `json:"minutes,omitempty"`
	Seconds int `json:"seconds,omitempty"`
}

// TotalHours aggregates the declared parts into fractional hours.
func (d ForgeDuration) TotalHours() float64 {
	return float64(d.Days)*24 +
		float64(d.Hours) +
		float64(d.Minutes)/60 +
		float64(d.Seconds)/3600
}

// ForgeRecipe is one forge entry: inputs consumed, output produced,
// crafting time and where the output sells.
type ForgeRecipe struct {
	Name         string        `json:"name"`
	Output       Ingredient    `json:"output"`
	Inputs       []Ingredient  `json:"inputs"`
	Duration     ForgeDuration `json:"duration"`
	Category     string        `json:"category,omitempty"`
	SellLocation Source        `json:"sellLocation,omitempty"`
}

// Drop is one probability-weighted row of a corpse loot table.
type Drop struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Weight   float64 `json:"weight"`
	Source   Source  `json:"source"`
}

// CorpseType is a lootable corpse: its key item (empty for the free
// variant), how many weighted rolls opening it grants, and its table.
type CorpseType struct {
	Name           string  `json:"name"`
	KeyName        string  `json:"keyName,omitempty"`
	KeySource      Source  `json:"keySource,omitempty"`
	RollsPerCorpse float64 `json:"rollsPerCorpse"`
	Drops          []Drop  `json:"drops"`
}

// TotalWeight sums the drop weights for the corpse type.
func (c CorpseType) TotalWeight() float64 {
	var total float64
	for _, d := range c.Drops {
		total += d.Weight
	}
	return total
}
