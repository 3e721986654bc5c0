package commands

import (
	"VaultKeeper/internal/config"
	"context"
	"fmt"
)

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Сводка безопасности хранилища" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	c, err := newClient(cfg)
	if err != nil {
		return err
	}
	list, err := c.List(ctx)
	if err != nil {
		return err
	}
	var compromised, reused, unsafe, neverScanned int
	for i := range list {
		e := &list[i]
		if e.IsCompromised {
			compromised++
		}
		if e.IsReused {
			reused++
		}
		if e.IsURLUnsafe {
			unsafe++
		}
		if e.LastScanned == nil {
			neverScanned++
		}
	}
	fmt.Fprintf(Out, "Server:        %s\n", cfg.ServerURL)
	fmt.Fprintf(Out, "Entries:       %d\n", len(list))
	fmt.Fprintf(Out, "Compromised:   %d\n", compromised)
	fmt.Fprintf(Out, "Reused:        %d\n", reused)
	fmt.Fprintf(Out, "Unsafe URLs:   %d\n", unsafe)
	fmt.Fprintf(Out, "Never scanned: %d\n", neverScanned)
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
