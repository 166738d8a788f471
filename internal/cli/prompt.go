package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/filedeck/filedeck/internal/registry"
)

// Prompt input and output. Tests replace them.
var (
	promptIn  io.Reader = os.Stdin
	promptOut io.Writer = os.Stderr

	// isTerminal reports whether stdin is interactive
	isTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

	stdinReader *bufio.Reader
)

func reader() *bufio.Reader {
	if stdinReader == nil {
		stdinReader = bufio.NewReader(promptIn)
	}
	return stdinReader
}

// promptLine prints label and returns the trimmed answer.
func promptLine(label string) (string, error) {
	fmt.Fprint(promptOut, label)
	input, err := reader().ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// promptDefault is promptLine with a value used when the answer is empty.
func promptDefault(label, def string) (string, error) {
	if def != "" {
		label = fmt.Sprintf("%s [%s]: ", label, def)
	} else {
		label += ": "
	}
	v, err := promptLine(label)
	if err != nil {
		return "", err
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}

// readPassword reads a secret without echo when stdin is a terminal.
func readPassword(label string) (string, error) {
	if !isTerminal() {
		return promptLine(label)
	}
	fmt.Fprint(promptOut, label)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(promptOut)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// promptConfirm asks a yes/no question; only "y" or "yes" approves.
func promptConfirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	answer, err := promptLine(question + " (yes/no): ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// confirmer picks the deletion confirmer for --yes.
func confirmer(assumeYes bool) registry.Confirmer {
	if assumeYes {
		return registry.AlwaysConfirm
	}
	return registry.ConfirmFunc(promptConfirm)
}
