package bank

// Item is a redeemable catalog entry. Note, when set, is appended to
// the confirmation message for items that need a follow-up.
type Item struct {
	Label string
	Cost  int64
	Code  string
	Note  string
}

// Catalog is the static prize list. Never mutated at runtime.
type Catalog []Item

// DefaultCatalog mirrors the prize menu the bot started with.
func DefaultCatalog() Catalog {
	return Catalog{
		{Label: "Kiss 💋", Cost: 100, Code: "kiss"},
		{Label: "Hug 🤗 (with bonus)", Cost: 200, Code: "hug"},
		{Label: "Back massage 💆", Cost: 300, Code: "massage"},
		{Label: "Home-baked treat 🍰", Cost: 400, Code: "coffee"},
		{Label: "Lazy morning (kindergarten run covered)", Cost: 500, Code: "breakfast"},
		{Label: "100€ bank transfer 💰 (with receipt)", Cost: 1000, Code: "cashout100", Note: "🧾 Wait for the receipt."},
		{Label: "SECRET SUPERPRIZE 💃 (get ready…)", Cost: 5000, Code: "jackpot", Note: "💃 Superprize activated! A surprise message is coming 😉"},
	}
}

// Find returns the item matching both code and cost. Cost is part of
// the match so a stale button with an outdated price cannot redeem.
func (c Catalog) Find(code string, cost int64) (Item, bool) {
	for _, it := range c {
		if it.Code == code && it.Cost == cost {
			return it, true
		}
	}
	return Item{}, false
}
