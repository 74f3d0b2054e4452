package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback verbs carried in inline-button payloads.
const (
	VerbSelect  = "select"
	VerbLock    = "lock"
	VerbConfirm = "confirm"
	VerbCancel  = "cancel"
)

// Action is a parsed button payload. select/lock carry an item code and
// its cost; confirm/cancel carry a pending-exchange token.
type Action struct {
	Verb  string
	Code  string
	Cost  int64
	Token string
}

// ParseAction parses pipe-delimited payloads: "select|code|cost",
// "lock|code|cost", "confirm|token", "cancel|token".
func ParseAction(data string) (Action, error) {
	parts := strings.Split(data, "|")
	switch parts[0] {
	case VerbSelect, VerbLock:
		if len(parts) != 3 {
			return Action{}, fmt.Errorf("parse action: %q wants 3 fields, got %d", parts[0], len(parts))
		}
		cost, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return Action{}, fmt.Errorf("parse action cost: %w", err)
		}
		return Action{Verb: parts[0], Code: parts[1], Cost: cost}, nil
	case VerbConfirm, VerbCancel:
		if len(parts) != 2 {
			return Action{}, fmt.Errorf("parse action: %q wants 2 fields, got %d", parts[0], len(parts))
		}
		return Action{Verb: parts[0], Token: parts[1]}, nil
	default:
		return Action{}, fmt.Errorf("parse action: unknown verb %q", parts[0])
	}
}

func selectPayload(code string, cost int64) string {
	return fmt.Sprintf("%s|%s|%d", VerbSelect, code, cost)
}

func lockPayload(code string, cost int64) string {
	return fmt.Sprintf("%s|%s|%d", VerbLock, code, cost)
}

func confirmPayload(token string) string {
	return VerbConfirm + "|" + token
}

func cancelPayload(token string) string {
	return VerbCancel + "|" + token
}
