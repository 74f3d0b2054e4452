package bot

import (
	"fmt"

	"github.com/jask/lovebank/internal/bank"
	"github.com/jask/lovebank/internal/telegram"
)

const helpText = "The rules are simple:\n" +
	"• Send photos of 100€ notes. I count them and top up your balance.\n" +
	"• Open /menu and trade them for treats.\n\n" +
	"Tips:\n" +
	"• Lay the notes on a light background, no overlap.\n" +
	"• One layer works best.\n" +
	"• A whole stack in one shot is fine."

func greetingText(name string) string {
	return fmt.Sprintf("Hi %s! I am your Love Bank 💘\n\n%s", name, helpText)
}

func balanceText(balance int64) string {
	return fmt.Sprintf("Your balance: %d€", balance)
}

func menuText(balance int64) string {
	return fmt.Sprintf("Exchange rates. Your balance: %d€\nPick a prize:", balance)
}

// menuKeyboard builds one row per catalog item. Affordable rows carry a
// select payload; the rest are locked so a tap explains what is missing.
func menuKeyboard(catalog bank.Catalog, balance int64) *telegram.InlineKeyboardMarkup {
	rows := make([][]telegram.InlineKeyboardButton, 0, len(catalog))
	for _, it := range catalog {
		label := fmt.Sprintf("%s — %d€", it.Label, it.Cost)
		data := selectPayload(it.Code, it.Cost)
		if balance < it.Cost {
			label = "🔒 " + label
			data = lockPayload(it.Code, it.Cost)
		}
		rows = append(rows, []telegram.InlineKeyboardButton{{Text: label, CallbackData: data}})
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func confirmKeyboard(token string) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		{{Text: "✅ Confirm exchange", CallbackData: confirmPayload(token)}},
		{{Text: "❌ Cancel", CallbackData: cancelPayload(token)}},
	}}
}

func offerText(item bank.Item) string {
	return fmt.Sprintf("You picked: %s for %d€.\nConfirm the exchange?", item.Label, item.Cost)
}

func confirmedText(res bank.ConfirmResult) string {
	text := fmt.Sprintf("✅ Exchange confirmed: %s for %d€", res.Item.Label, res.Item.Cost)
	if res.Item.Note != "" {
		text += "\n" + res.Item.Note
	}
	return text + fmt.Sprintf("\nCurrent balance: %d€", res.NewBalance)
}

func creditText(res bank.CreditResult, noteValue int64) string {
	var text string
	if res.Album {
		text = fmt.Sprintf(
			"📸 Money photoshoot complete!\n✅ %d photo(s) accepted. Found %d notes × %d€ = +%d€\nCurrent balance: %d€",
			res.Accepted, res.Notes, noteValue, res.Amount, res.NewBalance)
	} else {
		text = fmt.Sprintf(
			"✅ Notes found: %d × %d€ = +%d€\nCurrent balance: %d€",
			res.Notes, noteValue, res.Amount, res.NewBalance)
	}
	if res.JackpotHit {
		text += "\n\n🎉 You saved up the superprize! Open /menu."
	}
	return text + "\n\nWant to exchange right away?"
}
