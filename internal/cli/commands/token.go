package commands

import (
	"VaultKeeper/internal/cli/auth"
	"VaultKeeper/internal/config"
	"context"
	"fmt"
)

type tokenCmd struct{}

func (tokenCmd) Name() string        { return "token" }
func (tokenCmd) Description() string { return "Сохранить токен доступа, выданный сервером" }
func (tokenCmd) Usage() string       { return "token <token>" }

func (tokenCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	if err := auth.SaveToken(cfg.TokenFile, args[0]); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	fmt.Fprintf(Out, "Token saved to %s\n", cfg.TokenFile)
	return nil
}

func init() { RegisterCmd(tokenCmd{}) }
