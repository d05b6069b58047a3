package usecase

import (
	"context"
	"testing"

	"RateBot/internal/domain/models"
	"RateBot/pkg/logger"

	"github.com/stretchr/testify/require"
)

type fakeAcceptor struct {
	cmds []models.InboundCommand
}

func (a *fakeAcceptor) Accept(_ context.Context, cmd models.InboundCommand) RunState {
	a.cmds = append(a.cmds, cmd)
	return StateAcknowledged
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		sender  string
		started bool
	}{
		{name: "exact trigger", text: "利率", sender: "U1", started: true},
		{name: "trigger inside sentence", text: "今日利率?", sender: "U1", started: true},
		{name: "surrounding whitespace", text: "  利率 \n", sender: "U1", started: true},
		{name: "unrelated text", text: "hello", sender: "U1", started: false},
		{name: "empty text", text: "", sender: "U1", started: false},
		{name: "no sender", text: "利率", sender: "", started: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acceptor := &fakeAcceptor{}
			d := NewCommandDispatcher("利率", acceptor, logger.Nop())

			cmd := models.InboundCommand{RawText: tt.text, SenderID: tt.sender, ReplyToken: "tok"}
			require.Equal(t, tt.started, d.Dispatch(context.Background(), cmd))
			if tt.started {
				require.Equal(t, []models.InboundCommand{cmd}, acceptor.cmds)
			} else {
				require.Empty(t, acceptor.cmds)
			}
		})
	}
}

func TestEmptyTriggerNeverMatches(t *testing.T) {
	d := NewCommandDispatcher("", &fakeAcceptor{}, logger.Nop())
	require.False(t, d.Matches("利率"))
}
