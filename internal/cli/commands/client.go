package commands

import (
	"VaultKeeper/internal/cli/api"
	"VaultKeeper/internal/cli/auth"
	"VaultKeeper/internal/config"
	"VaultKeeper/internal/model"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// newClient создаёт API-клиента с токеном из cfg.TokenFile.
func newClient(cfg *config.Config) (*api.Client, error) {
	token, err := auth.LoadToken(cfg.TokenFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, api.ErrUnauthorized
		}
		return nil, fmt.Errorf("read token: %w", err)
	}
	return api.NewClient(cfg.ServerURL, token), nil
}

// readPassword спрашивает пароль без эха; в тестах подменяется.
var readPassword = func(prompt string) (string, error) {
	fmt.Fprint(Out, prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("password is required (stdin is not a terminal)")
	}
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(Out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// newFlagSet: флаги подкоманды; ошибки разбора превращаются в ErrUsage.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

func statusMarks(e *model.VaultEntry) string {
	var marks []string
	if e.IsCompromised {
		marks = append(marks, fmt.Sprintf("COMPROMISED(%d)", e.BreachCount))
	}
	if e.IsReused {
		marks = append(marks, "REUSED")
	}
	if e.IsURLUnsafe {
		marks = append(marks, "UNSAFE-URL")
	}
	if len(marks) == 0 {
		return "ok"
	}
	return strings.Join(marks, ",")
}

func printEntry(e *model.VaultEntry) {
	fmt.Fprintf(Out, "id:        %s\n", e.ID)
	fmt.Fprintf(Out, "website:   %s\n", e.Website)
	if e.URL != nil {
		fmt.Fprintf(Out, "url:       %s\n", *e.URL)
	}
	fmt.Fprintf(Out, "username:  %s\n", e.Username)
	if e.Notes != nil {
		fmt.Fprintf(Out, "notes:     %s\n", *e.Notes)
	}
	if len(e.Tags) > 0 {
		fmt.Fprintf(Out, "tags:      %s\n", strings.Join(e.Tags, ", "))
	}
	fmt.Fprintf(Out, "updated:   %s\n", e.LastUpdated.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(Out, "status:    %s\n", statusMarks(e))
	if len(e.URLThreatTypes) > 0 {
		fmt.Fprintf(Out, "threats:   %s\n", strings.Join(e.URLThreatTypes, ", "))
	}
	for _, r := range e.ReusedIn {
		fmt.Fprintf(Out, "reused in: %s (%s)\n", r.Website, r.Username)
	}
	if e.LastScanned != nil {
		fmt.Fprintf(Out, "scanned:   %s\n", e.LastScanned.Local().Format("2006-01-02 15:04:05"))
	}
}
