package usecase

import (
	"context"
	"strings"

	"RateBot/internal/domain/models"
	"RateBot/pkg/logger"
)

// Acceptor starts a report run for a command.
type Acceptor interface {
	Accept(ctx context.Context, cmd models.InboundCommand) RunState
}

// CommandDispatcher routes inbound text to the report flow when it contains the trigger.
type CommandDispatcher struct {
	trigger  string
	acceptor Acceptor
	log      *logger.Logger
}

func NewCommandDispatcher(trigger string, acceptor Acceptor, log *logger.Logger) *CommandDispatcher {
	return &CommandDispatcher{trigger: trigger, acceptor: acceptor, log: log}
}

// Matches is a case-sensitive substring test on the trimmed text.
func (d *CommandDispatcher) Matches(text string) bool {
	return d.trigger != "" && strings.Contains(strings.TrimSpace(text), d.trigger)
}

// Dispatch reports whether cmd started a run. Other messages are ignored silently.
func (d *CommandDispatcher) Dispatch(ctx context.Context, cmd models.InboundCommand) bool {
	if !d.Matches(cmd.RawText) {
		return false
	}
	if cmd.SenderID == "" {
		d.log.Warn("trigger without sender id ignored")
		return false
	}

	state := d.acceptor.Accept(ctx, cmd)
	d.log.Debug("command dispatched",
		logger.String("sender", cmd.SenderID),
		logger.Stringer("state", state))
	return true
}
