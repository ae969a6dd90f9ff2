package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/recipient"
	"github.com/aretw0/recipient/internal/presentation/tui"
	"github.com/aretw0/recipient/internal/sanitize"
	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/presenter"
)

// EditOptions configures the interactive edit loop.
type EditOptions struct {
	In  io.Reader
	Out io.Writer

	// Renderer draws the screen. Nil prints the raw markdown.
	Renderer tui.Renderer

	// JSON prints {state, view} objects instead of the rendered screen.
	JSON bool

	// NoFetch skips the initial load.
	NoFetch bool
}

const helpText = `Commands:
  set <field> <value>   edit a field (firstName, middleName, lastName, accountNumber)
  fetch                 reload the recipient
  submit                save the recipient
  ok                    dismiss the alert
  show                  redraw the screen
  cancel | quit         leave the screen
  help                  show this help`

type editSnapshot struct {
	State *domain.State    `json:"state"`
	View  presenter.Screen `json:"view"`
}

// RunEdit drives screen from line commands read from opts.In until the user
// leaves, the input ends, or ctx is cancelled.
func RunEdit(ctx context.Context, screen *recipient.Screen, opts EditOptions) error {
	lines := readLines(ctx, opts.In)

	if !opts.NoFetch {
		screen.Fetch(ctx)
		screen.Wait()
	}
	if err := draw(screen, opts); err != nil {
		return err
	}

	for {
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			screen.Wait()
			return ctx.Err()
		case line, ok = <-lines:
			if !ok {
				screen.Wait()
				return io.EOF
			}
		}

		done, err := execute(ctx, screen, line, opts)
		if err != nil {
			printSystemMessage(opts.Out, "%v", err)
			continue
		}
		if done {
			screen.Wait()
			return nil
		}
	}
}

// execute runs one command line. It reports whether the loop should stop.
func execute(ctx context.Context, screen *recipient.Screen, line string, opts EditOptions) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	cmd, rest, _ := strings.Cut(line, " ")

	switch strings.ToLower(cmd) {
	case "set":
		name, value, _ := strings.Cut(strings.TrimLeft(rest, " "), " ")
		field, err := domain.ParseField(name)
		if err != nil {
			return false, err
		}
		clean, err := sanitize.Value(value)
		if err != nil {
			return false, fmt.Errorf("input rejected: %w", err)
		}
		if err := screen.Change(field, clean); err != nil {
			return false, err
		}
	case "fetch":
		screen.Fetch(ctx)
		screen.Wait()
	case "submit", "save":
		if err := screen.Submit(ctx); err != nil {
			if errors.Is(err, domain.ErrNotSubmittable) {
				return false, errors.New("the form cannot be saved yet")
			}
			return false, err
		}
		screen.Wait()
	case "ok", "close":
		screen.CloseAlert()
	case "show":
	case "help", "?":
		fmt.Fprintln(opts.Out, helpText)
		return false, nil
	case "cancel", "back":
		if screen.View().CancelButton().Disabled {
			return false, errors.New("a request is in flight")
		}
		return true, nil
	case "quit", "q", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, type help", cmd)
	}
	return false, draw(screen, opts)
}

func draw(screen *recipient.Screen, opts EditOptions) error {
	if opts.JSON {
		state := screen.State()
		return json.NewEncoder(opts.Out).Encode(editSnapshot{State: state, View: presenter.Present(state)})
	}

	view := screen.View()
	if opts.Renderer == nil {
		_, err := io.WriteString(opts.Out, tui.Markdown(view))
		return err
	}
	out, err := opts.Renderer.Render(view)
	if err != nil {
		return fmt.Errorf("render screen: %w", err)
	}
	_, err = io.WriteString(opts.Out, out)
	return err
}

// readLines feeds the lines of r into a channel closed at EOF or when ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
