package commands

import (
	"VaultKeeper/internal/config"
	"context"
	"fmt"
)

type listCmd struct{}

func (listCmd) Name() string        { return "list" }
func (listCmd) Description() string { return "Показать все записи хранилища" }
func (listCmd) Usage() string       { return "list" }

func (listCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
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
	if len(list) == 0 {
		fmt.Fprintln(Out, "Нет записей")
		return nil
	}
	for i := range list {
		e := &list[i]
		fmt.Fprintf(Out, "- %s  %s  %s  [%s]\n", e.ID, e.Website, e.Username, statusMarks(e))
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(list))
	return nil
}

func init() { RegisterCmd(listCmd{}) }
