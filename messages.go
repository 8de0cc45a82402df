package bingo

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. The English text is the key itself.
const (
	msgTitle         = "BINGO"
	msgLastNumber    = "Last number: %s"
	msgProgress      = "Drawn: %d/%d  Remaining: %d"
	msgGameOverTitle = "Game over"
	msgAllDrawn      = "All numbers have been drawn!"
	msgDrew          = "Drew %s"
	msgAutoCalled    = "Called %d numbers: %s"
	msgReset         = "Game reset."
	msgUnknown       = "Unknown command %q. Type help to list the commands."
	msgDrawFailed    = "Could not draw a number: %v"
	msgInvalidInput  = "Invalid input: %v"
	msgGoodbye       = "Goodbye!"
	msgPrompt        = "draw / reset / auto N / stats / help / quit > "
	msgHelpHeader    = "Commands:"
	msgHelpDraw      = "  draw, d, <enter>   draw the next number"
	msgHelpAuto      = "  auto N, a N        draw N numbers in a row"
	msgHelpReset     = "  reset, r           start a new game"
	msgHelpStats     = "  stats, s           show draw statistics"
	msgHelpHelp      = "  help, h, ?         show this list"
	msgHelpQuit      = "  quit, q, exit      leave the game"
	msgStatsDraws    = "Draws: %d (numbers: %d, exhausted: %d, failed: %d)"
	msgStatsResets   = "Resets: %d"
	msgStatsSampling = "Rejected samples: %d (%.2f per number)"
	msgStatsTime     = "Average draw time: %v"
	msgStatsBreaker  = "Random source breaker: %s"

	msgStatsBreakerCounts = "Random source breaker: %s (requests: %d, failures: %d, consecutive: %d)"
)

var portugueseMessages = map[string]string{
	msgTitle:         "BINGO",
	msgLastNumber:    "Último número: %s",
	msgProgress:      "Sorteados: %d/%d  Restantes: %d",
	msgGameOverTitle: "Fim do Jogo",
	msgAllDrawn:      "Todos os números já foram sorteados!",
	msgDrew:          "Sorteado %s",
	msgAutoCalled:    "%d números sorteados: %s",
	msgReset:         "Jogo reiniciado.",
	msgUnknown:       "Comando desconhecido %q. Digite help para ver os comandos.",
	msgDrawFailed:    "Não foi possível sortear um número: %v",
	msgInvalidInput:  "Entrada inválida: %v",
	msgGoodbye:       "Até logo!",
	msgPrompt:        "sortear / reiniciar / auto N / stats / help / sair > ",
	msgHelpHeader:    "Comandos:",
	msgHelpDraw:      "  draw, d, <enter>   sortear o próximo número",
	msgHelpAuto:      "  auto N, a N        sortear N números seguidos",
	msgHelpReset:     "  reset, r           reiniciar o jogo",
	msgHelpStats:     "  stats, s           mostrar estatísticas",
	msgHelpHelp:      "  help, h, ?         mostrar esta lista",
	msgHelpQuit:      "  quit, q, exit      sair do jogo",
	msgStatsDraws:    "Sorteios: %d (números: %d, esgotados: %d, falhas: %d)",
	msgStatsResets:   "Reinícios: %d",
	msgStatsSampling: "Amostras rejeitadas: %d (%.2f por número)",
	msgStatsTime:     "Tempo médio de sorteio: %v",
	msgStatsBreaker:  "Disjuntor da fonte aleatória: %s",

	msgStatsBreakerCounts: "Disjuntor da fonte aleatória: %s (pedidos: %d, falhas: %d, consecutivas: %d)",
}

var (
	supportedLanguages = []language.Tag{language.English, language.Portuguese}
	languageMatcher    = language.NewMatcher(supportedLanguages)
)

func init() {
	for key, translated := range portugueseMessages {
		_ = message.SetString(language.English, key, key)
		_ = message.SetString(language.Portuguese, key, translated)
	}
}

// newPrinter returns a printer for the closest supported language, English by default
func newPrinter(lang string) *message.Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		return message.NewPrinter(language.English)
	}

	_, idx, _ := languageMatcher.Match(tag)
	return message.NewPrinter(supportedLanguages[idx])
}
