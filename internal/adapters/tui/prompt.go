package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"drivebak/internal/adapters/tui/views"
	"drivebak/internal/domain"
	"drivebak/internal/ports"
)

// Question is asked before a real backup starts
const Question = "Start backup? [y/n]:"

// Prompt implements ports.Confirmer. On a terminal it runs a bubbletea
// text input; otherwise it reads a single line.
type Prompt struct {
	in          io.Reader
	out         io.Writer
	interactive bool
}

// Ensure Prompt implements Confirmer
var _ ports.Confirmer = (*Prompt)(nil)

// NewPrompt creates a Prompt reading from in and writing to out
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{
		in:          in,
		out:         out,
		interactive: isTerminal(in) && isTerminal(out),
	}
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Confirm asks whether the run described by summary should start
func (p *Prompt) Confirm(ctx context.Context, summary domain.RunSummary) (bool, error) {
	if p.interactive {
		return p.confirmTUI(ctx)
	}
	return p.confirmLine()
}

func (p *Prompt) confirmTUI(ctx context.Context) (bool, error) {
	model := views.NewConfirmModel(Question)
	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)

	final, err := program.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, fmt.Errorf("failed to run prompt: %w", err)
	}

	m, ok := final.(*views.ConfirmModel)
	if !ok {
		return false, errors.New("unexpected prompt model")
	}
	return m.Confirmed(), nil
}

func (p *Prompt) confirmLine() (bool, error) {
	fmt.Fprint(p.out, Question+" ")

	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	return views.IsYes(strings.TrimRight(line, "\r\n")), nil
}
