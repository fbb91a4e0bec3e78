// Package chat carries roll results and user-facing notices out of the rules
// engine: cards go to a Sink, short notices to a Notifier, and yes/no
// questions to a Confirmer.
package chat

//go:generate mockgen -destination=mock/mock_chat.go -package=mockchat -source=chat.go

import (
	"context"

	"github.com/cory-johannsen/taberneiros/internal/game/dice"
)

// Level is the severity of a notification.
type Level int

const (
	Info Level = iota
	Warn
	Error
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Field is one labelled line of a card.
type Field struct {
	Label string
	Value string
}

// Card is the structured body of a chat message.
type Card struct {
	// Kind selects the CSS class of the rendered card, e.g. "check" or "spell".
	Kind  string
	Title string
	// Outcome is the outcome label, e.g. "Sucesso Crítico"; empty when the card has none.
	Outcome string
	// OutcomeKey is a stable identifier for Outcome, e.g. "critical-success".
	OutcomeKey  string
	Fields      []Field
	Description string
	// Formula is shown only when formulas are enabled.
	Formula string
	Total   string
}

// Message is one chat record.
type Message struct {
	// Speaker is the character name the message is attributed to.
	Speaker string
	// Flavor is the short caption shown above the card.
	Flavor string
	Card   Card
	// Roll is the evaluated roll the card reports, if any.
	Roll *dice.Result
}

// Sink receives chat records.
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier shows short notices to the user.
type Notifier interface {
	Notify(ctx context.Context, level Level, text string)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, title, question string) (bool, error)
}
