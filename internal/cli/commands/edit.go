package commands

import (
	"VaultKeeper/internal/cli/api"
	"VaultKeeper/internal/config"
	"context"
	"flag"
	"fmt"
)

type editCmd struct{}

func (editCmd) Name() string { return "edit" }
func (editCmd) Description() string {
	return "Изменить запись; передаются только заданные флаги, пустой -url/-notes очищает поле"
}
func (editCmd) Usage() string {
	return "edit <id> [-website W] [-url U] [-username U] [-notes N] [-tags a,b] [-password P | -ask-password]"
}

func (editCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	id := args[0]

	fs := newFlagSet("edit")
	website := fs.String("website", "", "")
	url := fs.String("url", "", "")
	username := fs.String("username", "", "")
	notes := fs.String("notes", "", "")
	tags := fs.String("tags", "", "")
	password := fs.String("password", "", "")
	ask := fs.Bool("ask-password", false, "")
	if err := fs.Parse(args[1:]); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}

	var ch api.EntryChanges
	set := 0
	fs.Visit(func(f *flag.Flag) {
		set++
		switch f.Name {
		case "website":
			ch.Website = website
		case "url":
			ch.URL = url
		case "username":
			ch.Username = username
		case "notes":
			ch.Notes = notes
		case "tags":
			t := splitTags(*tags)
			ch.Tags = &t
		case "password":
			ch.Password = password
		}
	})
	if set == 0 || (*ask && ch.Password != nil) {
		return ErrUsage
	}
	if *ask {
		pw, err := readPassword("New password: ")
		if err != nil {
			return err
		}
		ch.Password = &pw
	}

	c, err := newClient(cfg)
	if err != nil {
		return err
	}
	e, err := c.Update(ctx, id, ch)
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, "Updated:")
	printEntry(e)
	return nil
}

func init() { RegisterCmd(editCmd{}) }
