package commands

import (
	"VaultKeeper/internal/cli/api"
	"VaultKeeper/internal/config"
	"context"
	"fmt"
)

type addCmd struct{}

func (addCmd) Name() string { return "add" }
func (addCmd) Description() string {
	return "Добавить запись; без пароля в аргументах он спрашивается интерактивно"
}
func (addCmd) Usage() string {
	return "add [-url URL] [-notes TEXT] [-tags a,b] <website> <username> [<password>]"
}

func (addCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("add")
	url := fs.String("url", "", "адрес сайта")
	notes := fs.String("notes", "", "заметки")
	tags := fs.String("tags", "", "теги через запятую")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	rest := fs.Args()
	if len(rest) < 2 || len(rest) > 3 || rest[0] == "" || rest[1] == "" {
		return ErrUsage
	}

	entry := api.NewEntry{Website: rest[0], Username: rest[1], Tags: splitTags(*tags)}
	if *url != "" {
		entry.URL = url
	}
	if *notes != "" {
		entry.Notes = notes
	}
	if len(rest) == 3 {
		entry.Password = rest[2]
	} else {
		pw, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		entry.Password = pw
	}
	if entry.Password == "" {
		return ErrUsage
	}

	c, err := newClient(cfg)
	if err != nil {
		return err
	}
	e, err := c.Create(ctx, entry)
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, "Created:")
	printEntry(e)
	return nil
}

func init() { RegisterCmd(addCmd{}) }
