// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"
	"go.uber.org/zap"

	"github.com/ava-labs/countervm/cli/prompt"
	"github.com/ava-labs/countervm/program"
)

// Command is a single parsed script line.
type Command struct {
	Line int
	Name string
	Args []string
}

// ParseScript splits [r] into commands. Blank lines and lines starting with
// '#' are skipped.
func ParseScript(r io.Reader) ([]*Command, error) {
	var (
		commands []*Command
		scanner  = bufio.NewScanner(r)
		parser   = shellwords.NewParser()
		line     int
	)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if len(text) == 0 || strings.HasPrefix(text, "#") {
			continue
		}
		words, err := parser.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidScriptLine, line, err)
		}
		if len(words) == 0 {
			continue
		}
		commands = append(commands, &Command{
			Line: line,
			Name: strings.ToLower(words[0]),
			Args: words[1:],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return commands, nil
}

// RunScriptFile runs the script stored at [path].
func (h *Handler) RunScriptFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return h.RunScript(ctx, f)
}

// RunScript executes every command in [r] in order and stops at the first
// command that fails. Rejected invocations are not failures unless followed
// by an expect line that does not hold.
func (h *Handler) RunScript(ctx context.Context, r io.Reader) error {
	commands, err := ParseScript(r)
	if err != nil {
		return err
	}
	for _, c := range commands {
		if err := h.run(ctx, c); err != nil {
			return fmt.Errorf("line %d (%s): %w", c.Line, c.Name, err)
		}
		h.log.Debug("ran script command",
			zap.Int("line", c.Line),
			zap.String("command", c.Name),
			zap.Strings("args", c.Args),
		)
	}
	return nil
}

func (c *Command) argCount(n int) error {
	if len(c.Args) != n {
		return fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrInvalidScriptLine, c.Name, n, len(c.Args))
	}
	return nil
}

func (c *Command) uintArg() (uint64, error) {
	if err := c.argCount(1); err != nil {
		return 0, err
	}
	return prompt.ParseUint64(c.Args[0])
}

func (c *Command) intArg() (int, error) {
	if err := c.argCount(1); err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(c.Args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an index", ErrInvalidScriptLine, c.Args[0])
	}
	return v, nil
}

func (h *Handler) run(ctx context.Context, c *Command) error {
	var err error
	switch c.Name {
	case "key":
		if err = c.argCount(0); err == nil {
			_, err = h.GenerateKey()
		}
	case "use":
		var index int
		if index, err = c.intArg(); err == nil {
			err = h.UseKey(index)
		}
	case "app":
		var appID uint64
		if appID, err = c.uintArg(); err == nil {
			err = h.UseApp(ctx, appID)
		}
	case "create":
		if err = c.argCount(0); err == nil {
			_, err = h.Create(ctx)
		}
	case "add":
		if err = c.argCount(0); err == nil {
			_, err = h.Add(ctx)
		}
	case "minus":
		if err = c.argCount(0); err == nil {
			_, err = h.Minus(ctx)
		}
	case "set":
		var v uint64
		if v, err = c.uintArg(); err == nil {
			_, err = h.Set(ctx, v)
		}
	case "update":
		err = h.invokeNoArgs(ctx, c, program.KindUpdate)
	case "delete":
		err = h.invokeNoArgs(ctx, c, program.KindDelete)
	case "optin":
		err = h.invokeNoArgs(ctx, c, program.KindOptIn)
	case "closeout":
		err = h.invokeNoArgs(ctx, c, program.KindCloseOut)
	case "clear":
		err = h.invokeNoArgs(ctx, c, program.KindClearState)
	case "show":
		var appID uint64
		if len(c.Args) > 0 {
			if appID, err = c.uintArg(); err != nil {
				return err
			}
		}
		_, err = h.Show(ctx, appID)
	case "expect":
		err = h.expect(ctx, c)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownCommand, c.Name)
	}
	return err
}

func (h *Handler) invokeNoArgs(ctx context.Context, c *Command, kind program.Kind) error {
	if err := c.argCount(0); err != nil {
		return err
	}
	_, err := h.Invoke(ctx, kind, nil)
	return err
}

// expect checks the counter of the selected application. "expect deleted"
// checks that it was deleted instead.
func (h *Handler) expect(ctx context.Context, c *Command) error {
	if err := c.argCount(1); err != nil {
		return err
	}
	appID, err := h.GetDefaultApp()
	if err != nil {
		return err
	}
	s, err := h.host.GlobalState(ctx, appID)
	if err != nil {
		return err
	}
	if c.Args[0] == program.StatusDeleted.String() {
		if s.Status != program.StatusDeleted {
			return fmt.Errorf("%w: app %d is %s", ErrExpectationFailed, appID, s.Status)
		}
		return nil
	}
	expected, err := strconv.ParseUint(c.Args[0], 10, 64)
	if err != nil {
		return err
	}
	if !s.Active() || s.Counter != expected {
		return fmt.Errorf("%w: app %d is %s with counter %d, expected %d", ErrExpectationFailed, appID, s.Status, s.Counter, expected)
	}
	return nil
}
