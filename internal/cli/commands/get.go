package commands

import (
	"VaultKeeper/internal/config"
	"context"
)

type getCmd struct{}

func (getCmd) Name() string        { return "get" }
func (getCmd) Description() string { return "Показать запись по id (без пароля)" }
func (getCmd) Usage() string       { return "get <id>" }

func (getCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, err := newClient(cfg)
	if err != nil {
		return err
	}
	e, err := c.Get(ctx, args[0])
	if err != nil {
		return err
	}
	printEntry(e)
	return nil
}

func init() { RegisterCmd(getCmd{}) }
