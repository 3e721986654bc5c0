package commands

import (
	"VaultKeeper/internal/config"
	"VaultKeeper/internal/service"
	"context"
	"fmt"
	"sort"
)

type historyCmd struct{}

func (historyCmd) Name() string { return "history" }
func (historyCmd) Description() string {
	return "Прежние версии записи (или всех записей), новые первыми"
}
func (historyCmd) Usage() string { return "history [<id>]" }

func (historyCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	c, err := newClient(cfg)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		views, err := c.History(ctx, args[0])
		if err != nil {
			return err
		}
		printHistory(views)
		return nil
	}

	all, err := c.AllHistory(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(Out, "История пуста")
		return nil
	}
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(Out, "%s:\n", id)
		printHistory(all[id])
	}
	return nil
}

func printHistory(views []service.HistoryView) {
	if len(views) == 0 {
		fmt.Fprintln(Out, "  (нет снимков)")
		return
	}
	for _, v := range views {
		fmt.Fprintf(Out, "  %s  %s  %s  %s\n",
			v.ReplacedAt.Local().Format("2006-01-02 15:04:05"), v.Website, v.Username, v.Password)
	}
}

func init() { RegisterCmd(historyCmd{}) }
