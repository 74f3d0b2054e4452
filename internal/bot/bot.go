// Package bot routes Telegram updates into the bank domain: commands,
// photo submissions and inline-button callbacks.
package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jask/lovebank/internal/bank"
	"github.com/jask/lovebank/internal/telegram"
)

const (
	pollTimeoutSeconds = 50
	pollBackoff        = 3 * time.Second
)

type Bot struct {
	client      *telegram.Client
	ledger      *bank.Ledger
	albums      *bank.Aggregator
	redeemer    *bank.Redeemer
	catalog     bank.Catalog
	noteValue   int64
	ownerChatID int64
	log         *zap.SugaredLogger
}

// New wires the bot into the aggregator and redeemer: credit outcomes
// flow back through the aggregator's result callback, and owner
// notifications go out through the bot's chat client.
func New(client *telegram.Client, ledger *bank.Ledger, albums *bank.Aggregator,
	redeemer *bank.Redeemer, catalog bank.Catalog, noteValue, ownerChatID int64,
	log *zap.SugaredLogger) *Bot {

	b := &Bot{
		client:      client,
		ledger:      ledger,
		albums:      albums,
		redeemer:    redeemer,
		catalog:     catalog,
		noteValue:   noteValue,
		ownerChatID: ownerChatID,
		log:         log,
	}
	albums.Results = b.creditResult
	albums.Notify = ownerNotifier{b}
	redeemer.Notify = ownerNotifier{b}
	return b
}

// Run long-polls for updates until ctx is cancelled. Each update is
// handled on its own goroutine; per-account serialization lives in the
// ledger, not here.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		updates, err := b.client.GetUpdates(ctx, offset, pollTimeoutSeconds)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Warnw("get updates failed", "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollBackoff):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			update := u
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, u telegram.Update) {
	switch {
	case u.CallbackQuery != nil:
		b.handleCallback(ctx, *u.CallbackQuery)
	case u.Message != nil && len(u.Message.Photo) > 0:
		b.handlePhoto(ctx, *u.Message)
	case u.Message != nil && strings.HasPrefix(u.Message.Text, "/"):
		b.handleCommand(ctx, *u.Message)
	}
}

func accountID(u telegram.User) string {
	return strconv.FormatInt(u.ID, 10)
}

func displayName(u telegram.User) string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return strconv.FormatInt(u.ID, 10)
}

func (b *Bot) handleCommand(ctx context.Context, msg telegram.Message) {
	if msg.From == nil {
		return
	}
	id := accountID(*msg.From)
	if err := b.ledger.Ensure(ctx, id, displayName(*msg.From)); err != nil {
		b.log.Errorw("ensure account failed", "account", id, "err", err)
		return
	}

	cmd := strings.TrimPrefix(strings.Fields(msg.Text)[0], "/")
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	switch cmd {
	case "start":
		b.send(ctx, msg.Chat.ID, greetingText(displayName(*msg.From)), nil)
	case "help":
		b.send(ctx, msg.Chat.ID, helpText, nil)
	case "balance":
		bal, err := b.ledger.Balance(ctx, id)
		if err != nil {
			b.log.Errorw("balance lookup failed", "account", id, "err", err)
			return
		}
		b.send(ctx, msg.Chat.ID, balanceText(bal), nil)
	case "menu", "love_menu":
		bal, err := b.ledger.Balance(ctx, id)
		if err != nil {
			b.log.Errorw("balance lookup failed", "account", id, "err", err)
			return
		}
		b.send(ctx, msg.Chat.ID, menuText(bal), menuKeyboard(b.catalog, bal))
	}
}

func (b *Bot) handlePhoto(ctx context.Context, msg telegram.Message) {
	if msg.From == nil {
		return
	}
	id := accountID(*msg.From)
	if err := b.ledger.Ensure(ctx, id, displayName(*msg.From)); err != nil {
		b.log.Errorw("ensure account failed", "account", id, "err", err)
		return
	}

	// Largest rendition is last.
	photo := msg.Photo[len(msg.Photo)-1]
	file, err := b.client.GetFile(ctx, photo.FileID)
	if err != nil {
		b.log.Warnw("get file failed", "account", id, "err", err)
		return
	}
	image, err := b.client.DownloadFile(ctx, file.FilePath)
	if err != nil {
		b.log.Warnw("download failed", "account", id, "err", err)
		return
	}

	err = b.albums.Submit(ctx, bank.Submission{
		AccountID:   id,
		DisplayName: displayName(*msg.From),
		ChatID:      msg.Chat.ID,
		GroupID:     msg.MediaGroupID,
		Image:       image,
	})
	if err != nil {
		b.log.Errorw("submission failed", "account", id, "err", err)
	}
}

// creditResult is the aggregator's outcome sink.
func (b *Bot) creditResult(ctx context.Context, res bank.CreditResult) {
	switch res.Outcome {
	case bank.OutcomeCredited:
		b.send(ctx, res.ChatID, creditText(res, b.noteValue), menuKeyboard(b.catalog, res.NewBalance))
	case bank.OutcomeNothingNew:
		b.send(ctx, res.ChatID, "Gotcha! No new photos in this album to credit 🤷‍♀️", nil)
	case bank.OutcomeVisionFailed:
		b.send(ctx, res.ChatID, "Oops, I could not read that photo 🙈", nil)
	case bank.OutcomeNoNotes:
		b.send(ctx, res.ChatID, "I see no banknotes here 😔", nil)
	case bank.OutcomeDuplicate:
		b.send(ctx, res.ChatID, "Gotcha! This photo was already used for a top-up 🤚\nSend another one.", nil)
	}
}

func (b *Bot) handleCallback(ctx context.Context, q telegram.CallbackQuery) {
	if err := b.client.AnswerCallbackQuery(ctx, q.ID); err != nil {
		b.log.Debugw("answer callback failed", "err", err)
	}
	if q.Message == nil {
		return
	}
	chatID := q.Message.Chat.ID
	msgID := q.Message.MessageID
	id := accountID(q.From)
	if err := b.ledger.Ensure(ctx, id, displayName(q.From)); err != nil {
		b.log.Errorw("ensure account failed", "account", id, "err", err)
		return
	}

	action, err := ParseAction(q.Data)
	if err != nil {
		b.log.Debugw("unparseable callback payload", "data", q.Data, "err", err)
		return
	}

	switch action.Verb {
	case VerbLock:
		b.edit(ctx, chatID, msgID, "Not enough funds yet. Send more photos 😉", nil)

	case VerbSelect:
		offer, err := b.redeemer.Select(ctx, id, action.Code, action.Cost)
		switch {
		case errors.Is(err, bank.ErrItemNotFound):
			b.edit(ctx, chatID, msgID, "That item is gone from the menu.", nil)
		case errors.Is(err, bank.ErrInsufficientFunds):
			b.edit(ctx, chatID, msgID, "Not enough funds. Keep saving 😉", nil)
		case err != nil:
			b.log.Errorw("select failed", "account", id, "err", err)
		default:
			b.edit(ctx, chatID, msgID, offerText(offer.Item), confirmKeyboard(offer.Token))
		}

	case VerbConfirm:
		res, err := b.redeemer.Confirm(ctx, id, action.Token)
		switch {
		case errors.Is(err, bank.ErrUnknownToken):
			b.edit(ctx, chatID, msgID, "This confirmation was not found or is already resolved.", nil)
		case errors.Is(err, bank.ErrNotOwner):
			b.edit(ctx, chatID, msgID, "This confirmation belongs to someone else.", nil)
		case errors.Is(err, bank.ErrItemNotFound):
			b.edit(ctx, chatID, msgID, "That item is gone from the menu.", nil)
		case errors.Is(err, bank.ErrInsufficientFunds):
			b.edit(ctx, chatID, msgID, "Not enough funds. Keep saving 😉", nil)
		case err != nil:
			b.log.Errorw("confirm failed", "account", id, "err", err)
		default:
			b.edit(ctx, chatID, msgID, confirmedText(res), nil)
			b.send(ctx, chatID, "Want to exchange something else?", menuKeyboard(b.catalog, res.NewBalance))
		}

	case VerbCancel:
		if err := b.redeemer.Cancel(ctx, action.Token); err != nil {
			b.log.Errorw("cancel failed", "err", err)
			return
		}
		b.edit(ctx, chatID, msgID, "Exchange cancelled. Pick another prize from the menu ❤️", nil)
	}
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) {
	if err := b.client.SendMessage(ctx, chatID, text, markup); err != nil {
		b.log.Warnw("send failed", "chat", chatID, "err", err)
	}
}

func (b *Bot) edit(ctx context.Context, chatID, messageID int64, text string, markup *telegram.InlineKeyboardMarkup) {
	if err := b.client.EditMessageText(ctx, chatID, messageID, text, markup); err != nil {
		b.log.Warnw("edit failed", "chat", chatID, "err", err)
	}
}

// ownerNotifier forwards observer notifications to the owner's private
// chat. Disabled when no owner chat id is configured; failures are
// swallowed.
type ownerNotifier struct {
	b *Bot
}

func (n ownerNotifier) Notify(ctx context.Context, text string) {
	if n.b.ownerChatID == 0 {
		return
	}
	if err := n.b.client.SendMessage(ctx, n.b.ownerChatID, text, nil); err != nil {
		n.b.log.Debugw("owner notify failed", "err", err)
	}
}
