// Package prompt is the presentation boundary: it asks the user to act on a
// reminder and returns their choice. The engine depends only on the Prompter
// interface; tests substitute a scripted implementation.
package prompt

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/restwell/internal/models"
)

// Response is the user's decision on one reminder occurrence.
type Response struct {
	Kind         models.ResponseKind
	DelayMinutes int
}

// Prompter shows reminder prompts and motivational notices.
type Prompter interface {
	// Ask presents a reminder and blocks until the user chooses. An
	// expired or abandoned prompt comes back as a skip.
	Ask(taskName, message string) (Response, error)
	// Notify shows a fire-and-forget motivational message.
	Notify(message string) error
}

type action int

const (
	actionDone action = iota
	actionBusy
	actionSkip
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

// TerminalPrompter renders prompts as interactive terminal forms.
type TerminalPrompter struct {
	delayOptions []int
	timeout      time.Duration
}

// New creates a terminal prompter. delayOptions are the busy-delay choices in
// minutes; autoCloseSeconds bounds how long a prompt stays open (0 disables).
func New(delayOptions []int, autoCloseSeconds int) *TerminalPrompter {
	return &TerminalPrompter{
		delayOptions: delayOptions,
		timeout:      time.Duration(autoCloseSeconds) * time.Second,
	}
}

func (p *TerminalPrompter) Ask(taskName, message string) (Response, error) {
	var choice action

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[action]().
				Title(titleStyle.Render(taskName)).
				Description(message).
				Options(
					huh.NewOption("Done", actionDone),
					huh.NewOption("Busy - remind me later", actionBusy),
					huh.NewOption("Skip", actionSkip),
				).
				Value(&choice),
		),
	).WithTheme(huh.ThemeDracula())

	if p.timeout > 0 {
		form = form.WithTimeout(p.timeout)
	}

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrTimeout) || errors.Is(err, huh.ErrUserAborted) {
			// An ignored or dismissed prompt is a skip, not an error.
			return Response{Kind: models.ResponseSkipped}, nil
		}
		return Response{}, fmt.Errorf("reminder prompt failed: %w", err)
	}

	switch choice {
	case actionDone:
		return Response{Kind: models.ResponseCompleted}, nil
	case actionBusy:
		delay, err := p.askDelay()
		if err != nil {
			return Response{}, err
		}
		return Response{Kind: models.ResponseDeferred, DelayMinutes: delay}, nil
	default:
		return Response{Kind: models.ResponseSkipped}, nil
	}
}

func (p *TerminalPrompter) askDelay() (int, error) {
	options := make([]huh.Option[int], 0, len(p.delayOptions))
	for _, d := range p.delayOptions {
		options = append(options, huh.NewOption(fmt.Sprintf("%d minutes", d), d))
	}

	var delay int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Remind me again in...").
				Options(options...).
				Value(&delay),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrTimeout) || errors.Is(err, huh.ErrUserAborted) {
			// Fall back to the first configured delay.
			if len(p.delayOptions) > 0 {
				return p.delayOptions[0], nil
			}
			return 0, nil
		}
		return 0, fmt.Errorf("delay prompt failed: %w", err)
	}

	return delay, nil
}

func (p *TerminalPrompter) Notify(message string) error {
	ack := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(titleStyle.Render("A moment for you")).
				Description(message).
				Affirmative("Got it").
				Negative("").
				Value(&ack),
		),
	).WithTheme(huh.ThemeDracula())

	if p.timeout > 0 {
		form = form.WithTimeout(p.timeout)
	}

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrTimeout) || errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return fmt.Errorf("notification dialog failed: %w", err)
	}
	return nil
}
