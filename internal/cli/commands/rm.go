package commands

import (
	"VaultKeeper/internal/config"
	"context"
	"fmt"
)

type rmCmd struct{}

func (rmCmd) Name() string        { return "rm" }
func (rmCmd) Description() string { return "Удалить запись (история сохраняется)" }
func (rmCmd) Usage() string       { return "rm <id>" }

func (rmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, err := newClient(cfg)
	if err != nil {
		return err
	}
	if err := c.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Deleted: %s\n", args[0])
	return nil
}

func init() { RegisterCmd(rmCmd{}) }
