package commands

import (
	"VaultKeeper/internal/config"
	"context"
	"fmt"
)

type passwordCmd struct{}

func (passwordCmd) Name() string        { return "password" }
func (passwordCmd) Description() string { return "Показать расшифрованный пароль записи" }
func (passwordCmd) Usage() string       { return "password <id>" }

func (passwordCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, err := newClient(cfg)
	if err != nil {
		return err
	}
	pw, err := c.Password(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, pw)
	return nil
}

func init() { RegisterCmd(passwordCmd{}) }
