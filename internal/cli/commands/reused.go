package commands

import (
	"VaultKeeper/internal/config"
	"context"
	"fmt"
)

type reusedCmd struct{}

func (reusedCmd) Name() string { return "reused" }
func (reusedCmd) Description() string {
	return "Проверить, используется ли пароль в других записях"
}
func (reusedCmd) Usage() string { return "reused [-exclude <id>] [<password>]" }

func (reusedCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("reused")
	exclude := fs.String("exclude", "", "id записи, которую не учитывать")
	if err := fs.Parse(args); err != nil || fs.NArg() > 1 {
		return ErrUsage
	}
	var pw string
	if fs.NArg() == 1 {
		pw = fs.Arg(0)
	} else {
		var err error
		if pw, err = readPassword("Password: "); err != nil {
			return err
		}
	}
	if pw == "" {
		return ErrUsage
	}

	c, err := newClient(cfg)
	if err != nil {
		return err
	}
	res, err := c.CheckReused(ctx, pw, *exclude)
	if err != nil {
		return err
	}
	if !res.IsReused {
		fmt.Fprintln(Out, "Пароль нигде не используется")
		return nil
	}
	fmt.Fprintf(Out, "Пароль используется в %d записях:\n", len(res.UsedIn))
	for _, r := range res.UsedIn {
		fmt.Fprintf(Out, "- %s (%s)\n", r.Website, r.Username)
	}
	return nil
}

func init() { RegisterCmd(reusedCmd{}) }
