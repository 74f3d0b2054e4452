package bank

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jask/lovebank/internal/database/repository"
	"github.com/jask/lovebank/internal/vision"
)

// DefaultQuietPeriod is how long an album waits for stragglers after
// its first photo before it is finalized.
const DefaultQuietPeriod = 1200 * time.Millisecond

// Submission is one inbound photo. GroupID groups album photos that
// must be credited as a single batch; empty means a standalone photo.
type Submission struct {
	AccountID   string
	DisplayName string
	ChatID      int64
	GroupID     string
	Image       []byte
}

// Outcome classifies what a submission batch produced.
type Outcome int

const (
	// OutcomeCredited means at least one new photo was counted and the
	// account was credited once for the whole batch.
	OutcomeCredited Outcome = iota
	// OutcomeNothingNew means an album produced no new credited photos.
	OutcomeNothingNew
	// OutcomeVisionFailed means a standalone photo could not be scored.
	OutcomeVisionFailed
	// OutcomeNoNotes means a standalone photo scored zero banknotes.
	OutcomeNoNotes
	// OutcomeDuplicate means a standalone photo was already used before.
	OutcomeDuplicate
)

// CreditResult is the single aggregate outcome of a submission batch.
type CreditResult struct {
	AccountID   string
	DisplayName string
	ChatID      int64
	Album       bool
	Outcome     Outcome

	Photos     int // photos in the batch
	Accepted   int // photos that passed scoring and dedup
	Notes      int // banknotes counted across accepted photos
	Amount     int64
	NewBalance int64
	JackpotHit bool // balance crossed the jackpot threshold on this credit
}

type albumGroup struct {
	subs []Submission
}

// Aggregator buffers album submissions per group identity, debounces
// them with a fixed quiet period and commits one aggregate credit per
// batch. Standalone submissions run the same pipeline synchronously.
type Aggregator struct {
	Vision    vision.Provider
	Prints    *repository.FingerprintRepo
	Ledger    *Ledger
	Notify    Notifier                          // optional
	Results   func(context.Context, CreditResult) // outcome sink, optional
	Log       *zap.SugaredLogger                // optional
	NoteValue int64
	Jackpot   int64
	Quiet     time.Duration // zero means DefaultQuietPeriod

	// Lifecycle bounds finalize work that outlives the submitting
	// request. Nil means context.Background.
	Lifecycle context.Context

	mu     sync.Mutex
	groups map[string]*albumGroup
}

// Submit routes one photo. Grouped photos are buffered; the first photo
// of a group arms exactly one finalize timer, later photos only append.
// The timer is not extended by later arrivals: it fires at its original
// time and picks up whatever accumulated by then.
func (a *Aggregator) Submit(ctx context.Context, sub Submission) error {
	if sub.GroupID == "" {
		return a.process(ctx, []Submission{sub}, false)
	}

	a.mu.Lock()
	if a.groups == nil {
		a.groups = make(map[string]*albumGroup)
	}
	if g, ok := a.groups[sub.GroupID]; ok {
		g.subs = append(g.subs, sub)
		a.mu.Unlock()
		return nil
	}
	a.groups[sub.GroupID] = &albumGroup{subs: []Submission{sub}}
	a.mu.Unlock()

	gid := sub.GroupID
	time.AfterFunc(a.quietPeriod(), func() { a.finalizeGroup(gid) })
	return nil
}

// Pending reports whether a group is currently buffering. Test hook.
func (a *Aggregator) Pending(groupID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.groups[groupID]
	return ok
}

func (a *Aggregator) quietPeriod() time.Duration {
	if a.Quiet > 0 {
		return a.Quiet
	}
	return DefaultQuietPeriod
}

// finalizeGroup detaches the buffered photos and removes the group
// record in one locked step, so photos arriving afterwards start a
// fresh group instead of racing with the in-flight batch.
func (a *Aggregator) finalizeGroup(gid string) {
	a.mu.Lock()
	g := a.groups[gid]
	delete(a.groups, gid)
	a.mu.Unlock()

	if g == nil || len(g.subs) == 0 {
		return
	}
	ctx := a.Lifecycle
	if ctx == nil {
		ctx = context.Background()
	}
	if err := a.process(ctx, g.subs, true); err != nil {
		a.logger().Errorw("album finalize failed", "group", gid, "err", err)
	}
}

// process runs the count -> dedup -> credit pipeline over a detached
// batch. Per-photo failures shrink the batch, they never abort it; a
// dedup storage error does abort, because crediting with unknown
// dedup status could double-credit.
func (a *Aggregator) process(ctx context.Context, subs []Submission, album bool) error {
	first := subs[0]
	res := CreditResult{
		AccountID:   first.AccountID,
		DisplayName: first.DisplayName,
		ChatID:      first.ChatID,
		Album:       album,
		Photos:      len(subs),
	}

	var notes, accepted, duplicates, failures int
	for _, sub := range subs {
		n, err := a.Vision.CountBanknotes(ctx, sub.Image)
		if err != nil {
			a.logger().Warnw("vision scoring failed", "account", sub.AccountID, "err", err)
			failures++
			continue
		}
		if n <= 0 {
			continue
		}
		fresh, err := a.Prints.MarkIfNew(ctx, sub.AccountID, Fingerprint(sub.Image))
		if err != nil {
			return fmt.Errorf("mark fingerprint: %w", err)
		}
		if !fresh {
			duplicates++
			continue
		}
		notes += n
		accepted++
	}

	if notes <= 0 {
		switch {
		case album:
			res.Outcome = OutcomeNothingNew
		case failures > 0:
			res.Outcome = OutcomeVisionFailed
		case duplicates > 0:
			res.Outcome = OutcomeDuplicate
		default:
			res.Outcome = OutcomeNoNotes
		}
		a.emit(ctx, res)
		return nil
	}

	amount := int64(notes) * a.NoteValue
	newBal, err := a.Ledger.Credit(ctx, first.AccountID, amount)
	if err != nil {
		return fmt.Errorf("credit account %s: %w", first.AccountID, err)
	}

	res.Outcome = OutcomeCredited
	res.Accepted = accepted
	res.Notes = notes
	res.Amount = amount
	res.NewBalance = newBal
	res.JackpotHit = a.Jackpot > 0 && newBal >= a.Jackpot && newBal-amount < a.Jackpot
	a.emit(ctx, res)

	if a.Notify != nil {
		if album {
			a.Notify.Notify(ctx, fmt.Sprintf(
				"💶 Credit (album): %s +%d€ (notes: %d, accepted photos: %d/%d). Balance: %d€.",
				first.DisplayName, amount, notes, accepted, len(subs), newBal))
		} else {
			a.Notify.Notify(ctx, fmt.Sprintf(
				"💶 Credit: %s +%d€ (notes: %d). Balance: %d€.",
				first.DisplayName, amount, notes, newBal))
		}
	}
	return nil
}

func (a *Aggregator) emit(ctx context.Context, res CreditResult) {
	if a.Results != nil {
		a.Results(ctx, res)
	}
}

func (a *Aggregator) logger() *zap.SugaredLogger {
	if a.Log != nil {
		return a.Log
	}
	return zap.NewNop().Sugar()
}

// Fingerprint is the content hash used for duplicate detection.
func Fingerprint(image []byte) string {
	sum := sha256.Sum256(image)
	return fmt.Sprintf("%x", sum[:])
}
