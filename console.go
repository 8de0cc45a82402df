package bingo

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CommandKind identifies a user intent
type CommandKind int

const (
	CommandDraw CommandKind = iota
	CommandAuto
	CommandReset
	CommandStats
	CommandHelp
	CommandQuit
)

func (k CommandKind) String() string {
	switch k {
	case CommandDraw:
		return "draw"
	case CommandAuto:
		return "auto"
	case CommandReset:
		return "reset"
	case CommandStats:
		return "stats"
	case CommandHelp:
		return "help"
	case CommandQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Command is a parsed input line
type Command struct {
	Kind  CommandKind
	Count int // auto only
}

var commandAliases = map[string]CommandKind{
	"":          CommandDraw,
	"d":         CommandDraw,
	"draw":      CommandDraw,
	"sortear":   CommandDraw,
	"a":         CommandAuto,
	"auto":      CommandAuto,
	"r":         CommandReset,
	"reset":     CommandReset,
	"reiniciar": CommandReset,
	"s":         CommandStats,
	"stats":     CommandStats,
	"h":         CommandHelp,
	"?":         CommandHelp,
	"help":      CommandHelp,
	"q":         CommandQuit,
	"quit":      CommandQuit,
	"exit":      CommandQuit,
	"sair":      CommandQuit,
}

// ParseCommand turns an input line into a Command. Case and surrounding spaces are ignored.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))

	name := ""
	if len(fields) > 0 {
		name = fields[0]
	}

	kind, ok := commandAliases[name]
	if !ok {
		return Command{}, ErrUnknownCommand.WithDetails(fmt.Sprintf("%q", strings.TrimSpace(line)))
	}

	if kind != CommandAuto {
		if len(fields) > 1 {
			return Command{}, ErrUnknownCommand.WithDetails(fmt.Sprintf("%s takes no arguments", kind))
		}
		return Command{Kind: kind}, nil
	}

	if len(fields) != 2 {
		return Command{}, ErrInvalidCount.WithDetails("usage: auto N")
	}
	count, err := strconv.Atoi(fields[1])
	if err != nil {
		return Command{}, ErrInvalidCount.WithCause(err).WithDetails(fmt.Sprintf("%q is not a number", fields[1]))
	}
	if err := ValidateCount(count); err != nil {
		return Command{}, err
	}
	return Command{Kind: CommandAuto, Count: count}, nil
}

// Console is the line-oriented front end: it renders session state on a Board
// and forwards draw, reset and quit intents to the session.
type Console struct {
	session  Drawer
	board    *Board
	logger   Logger
	handler  ErrorHandler
	recovery *ErrorRecovery
	breaker  *BreakerRandomGenerator
}

// NewConsole creates a console driving session and printing on board
func NewConsole(session Drawer, board *Board, logger Logger) *Console {
	if logger == nil {
		logger = NewSilentLogger()
	}
	handler := NewDefaultErrorHandler(logger)
	return &Console{
		session:  session,
		board:    board,
		logger:   logger,
		handler:  handler,
		recovery: NewErrorRecovery(handler, DefaultRetryAttempts, logger),
	}
}

// SetErrorHandler replaces the handler used for reporting and retrying failed draws
func (c *Console) SetErrorHandler(handler ErrorHandler, maxRetries int) {
	if handler == nil {
		return
	}
	c.handler = handler
	c.recovery = NewErrorRecovery(handler, maxRetries, c.logger)
}

// SetBreaker makes the stats screen report the random source breaker state
func (c *Console) SetBreaker(breaker *BreakerRandomGenerator) { c.breaker = breaker }

// Run renders the board and executes commands read from in until quit, end of input or ctx is done.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	// stops the reader goroutine once Run returns
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		sc := bufio.NewScanner(in)
		defer close(lines)
		defer func() { scanErr <- sc.Err() }()

		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := c.board.Render(c.session.Snapshot()); err != nil {
		return err
	}
	if err := c.prompt(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("Console stopped: %v", ctx.Err())
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				c.logger.Debug("Console input closed")
				if err := <-scanErr; err != nil {
					return ErrInputClosed.WithCause(err)
				}
				return c.board.Println(msgGoodbye)
			}

			quit, err := c.Execute(ctx, line)
			if err != nil {
				return err
			}
			if quit {
				return c.board.Println(msgGoodbye)
			}
			if err := c.prompt(); err != nil {
				return err
			}
		}
	}
}

func (c *Console) prompt() error {
	_, err := io.WriteString(c.board.out, c.board.Sprintf(msgPrompt))
	return err
}

// Execute runs a single input line. It reports whether the user asked to quit;
// the returned error is only set when output cannot be written.
func (c *Console) Execute(ctx context.Context, line string) (bool, error) {
	cmd, err := ParseCommand(line)
	if err != nil {
		handled := c.handler.HandleError(ctx, err)
		if errors.Is(err, ErrUnknownCommand) {
			return false, c.board.Println(msgUnknown, strings.TrimSpace(line))
		}
		return false, c.board.Println(msgInvalidInput, handled)
	}

	c.logger.Debug("Executing command %s", cmd.Kind)

	switch cmd.Kind {
	case CommandDraw:
		return false, c.draw(ctx)
	case CommandAuto:
		return false, c.auto(ctx, cmd.Count)
	case CommandReset:
		c.session.Reset()
		if err := c.board.Render(c.session.Snapshot()); err != nil {
			return false, err
		}
		return false, c.board.Println(msgReset)
	case CommandStats:
		return false, c.stats()
	case CommandHelp:
		return false, c.help()
	case CommandQuit:
		return true, nil
	}
	return false, nil
}

// draw retries transient random source failures; a failed Draw leaves the session untouched
func (c *Console) draw(ctx context.Context) error {
	var result DrawResult
	err := c.recovery.ExecuteWithRetry(ctx, func() error {
		var err error
		result, err = c.session.Draw()
		return err
	})
	if err != nil {
		return c.board.Println(msgDrawFailed, err)
	}
	if result.IsExhausted() {
		return c.board.Notice(msgGameOverTitle, msgAllDrawn)
	}

	if err := c.board.Render(c.session.Snapshot()); err != nil {
		return err
	}
	return c.board.Println(msgDrew, result.Label())
}

// auto retries only the draws still missing after a failure
func (c *Console) auto(ctx context.Context, count int) error {
	result := &MultiDrawResult{
		Results:        make([]int, 0, count),
		TotalRequested: count,
	}

	err := c.recovery.ExecuteWithRetry(ctx, func() error {
		r, err := c.session.DrawMultiple(count-result.Completed, nil)
		if r != nil {
			result.Results = append(result.Results, r.Results...)
			result.Completed += r.Completed
			result.Exhausted = r.Exhausted
		}
		return err
	})
	result.PartialSuccess = result.Completed > 0 && result.Completed < count

	if err != nil {
		if printErr := c.board.Println(msgDrawFailed, err); printErr != nil {
			return printErr
		}
	}

	if result.Completed > 0 {
		if err := c.board.Render(c.session.Snapshot()); err != nil {
			return err
		}
		labels := make([]string, 0, len(result.Results))
		for _, n := range result.Results {
			labels = append(labels, CallLabel(n))
		}
		if err := c.board.Println(msgAutoCalled, result.Completed, strings.Join(labels, " ")); err != nil {
			return err
		}
	}

	if result.Exhausted {
		return c.board.Notice(msgGameOverTitle, msgAllDrawn)
	}
	return nil
}

// metricsSource is implemented by sessions that collect draw metrics
type metricsSource interface {
	Monitor() *SessionMonitor
}

func (c *Console) stats() error {
	if src, ok := c.session.(metricsSource); ok {
		m := src.Monitor().GetMetrics()
		lines := [][]any{
			{msgStatsDraws, m.TotalDraws, m.SuccessfulDraws, m.ExhaustedDraws, m.FailedDraws},
			{msgStatsResets, m.Resets},
			{msgStatsSampling, m.Rejections, m.GetRejectionsPerDraw()},
			{msgStatsTime, m.GetAverageDrawTime()},
		}
		for _, l := range lines {
			if err := c.board.Println(l[0].(string), l[1:]...); err != nil {
				return err
			}
		}
	}

	if c.breaker == nil {
		return nil
	}

	health := c.breaker.Health()
	if health["state"] == "disabled" {
		return c.board.Println(msgStatsBreaker, health["state"])
	}
	return c.board.Println(msgStatsBreakerCounts,
		health["state"], health["requests"], health["total_failures"], health["consecutive_failures"])
}

func (c *Console) help() error {
	for _, key := range []string{
		msgHelpHeader, msgHelpDraw, msgHelpAuto, msgHelpReset, msgHelpStats, msgHelpHelp, msgHelpQuit,
	} {
		if err := c.board.Println(key); err != nil {
			return err
		}
	}
	return nil
}
