package infra

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
)

// Placeholders substituted into presenter command arguments.
const (
	CategoryPlaceholder = "{category}"
	MessagePlaceholder  = "{message}"
)

// CommandRunner abstracts command execution for testing
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RealCommandRunner executes real system commands
type RealCommandRunner struct{}

// Run executes a command and waits for it to complete
func (RealCommandRunner) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Output executes a command and returns its standard output
func (RealCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PresenterCommands are whitespace-separated command lines. An empty
// command turns the corresponding action into a logged no-op.
type PresenterCommands struct {
	Back    string // e.g. "adb shell input keyevent KEYCODE_BACK"
	Present string // {category} is replaced with the block category
	Notify  string // {message} is replaced with the reminder text
}

// CommandPresenter implements domain.Presenter by running shell commands.
type CommandPresenter struct {
	commands  PresenterCommands
	cmdRunner CommandRunner
	logger    *zap.Logger
}

// NewCommandPresenter creates a presenter that runs real commands.
func NewCommandPresenter(commands PresenterCommands, logger *zap.Logger) *CommandPresenter {
	return NewCommandPresenterWithRunner(commands, RealCommandRunner{}, logger)
}

// NewCommandPresenterWithRunner creates a presenter with an injectable runner (for testing)
func NewCommandPresenterWithRunner(commands PresenterCommands, runner CommandRunner, logger *zap.Logger) *CommandPresenter {
	return &CommandPresenter{
		commands:  commands,
		cmdRunner: runner,
		logger:    logger,
	}
}

// Back runs the back command.
func (p *CommandPresenter) Back(ctx context.Context) error {
	return p.run(ctx, "back", p.commands.Back, nil)
}

// Present runs the present command for category.
func (p *CommandPresenter) Present(ctx context.Context, category domain.BlockCategory) error {
	return p.run(ctx, "present", p.commands.Present, map[string]string{
		CategoryPlaceholder: string(category),
	})
}

// Notify runs the notify command with message.
func (p *CommandPresenter) Notify(ctx context.Context, message string) error {
	return p.run(ctx, "notify", p.commands.Notify, map[string]string{
		MessagePlaceholder: message,
	})
}

func (p *CommandPresenter) run(ctx context.Context, action, command string, vars map[string]string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		p.logger.Debug("no command configured", zap.String("action", action))
		return nil
	}

	args := fields[1:]
	for i, a := range args {
		for k, v := range vars {
			a = strings.ReplaceAll(a, k, v)
		}
		args[i] = a
	}

	if err := p.cmdRunner.Run(ctx, fields[0], args...); err != nil {
		return fmt.Errorf("%s command failed: %w", action, err)
	}
	return nil
}

// Ensure CommandPresenter implements domain.Presenter.
var _ domain.Presenter = (*CommandPresenter)(nil)
