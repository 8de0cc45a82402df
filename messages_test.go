package bingo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPrinter(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{"en", "Game over"},
		{"pt", "Fim do Jogo"},
		{"pt-BR", "Fim do Jogo"},
		{"de", "Game over"},
		{"", "Game over"},
		{"not a tag", "Game over"},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			assert.Equal(t, tt.want, newPrinter(tt.lang).Sprintf(msgGameOverTitle))
		})
	}
}

func TestPortugueseCatalogIsComplete(t *testing.T) {
	keys := []string{
		msgTitle, msgLastNumber, msgProgress, msgGameOverTitle, msgAllDrawn, msgDrew,
		msgAutoCalled, msgReset, msgUnknown, msgDrawFailed, msgInvalidInput, msgGoodbye,
		msgPrompt, msgHelpHeader, msgHelpDraw, msgHelpAuto, msgHelpReset, msgHelpStats,
		msgHelpHelp, msgHelpQuit, msgStatsDraws, msgStatsResets, msgStatsSampling,
		msgStatsTime, msgStatsBreaker, msgStatsBreakerCounts,
	}
	for _, key := range keys {
		_, ok := portugueseMessages[key]
		assert.True(t, ok, "missing translation for %q", key)
	}
	assert.Len(t, portugueseMessages, len(keys))
}

func TestPrinterFormatsArguments(t *testing.T) {
	assert.Equal(t, "Drew G-50", newPrinter("en").Sprintf(msgDrew, "G-50"))
	assert.Equal(t, "Sorteado G-50", newPrinter("pt").Sprintf(msgDrew, "G-50"))
	assert.Equal(t, "Drawn: 3/75  Remaining: 72", newPrinter("en").Sprintf(msgProgress, 3, 75, 72))
}
