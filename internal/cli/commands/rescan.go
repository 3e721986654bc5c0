package commands

import (
	"VaultKeeper/internal/config"
	"context"
	"fmt"
)

type rescanCmd struct{}

func (rescanCmd) Name() string { return "rescan" }
func (rescanCmd) Description() string {
	return "Перепроверить все записи: утечки, URL, повторы"
}
func (rescanCmd) Usage() string { return "rescan" }

func (rescanCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, err := newClient(cfg)
	if err != nil {
		return err
	}
	r, err := c.Rescan(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "scanned: %d\ncompromised: %d\nreused: %d\nunsafe urls: %d\nfailed: %d\n",
		r.Scanned, r.Compromised, r.Reused, r.UnsafeURLs, r.Failed)
	return nil
}

func init() { RegisterCmd(rescanCmd{}) }
