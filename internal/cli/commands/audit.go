package commands

import (
	"VaultKeeper/internal/config"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type auditCmd struct{}

func (auditCmd) Name() string        { return "audit" }
func (auditCmd) Description() string { return "Последние события журнала аудита" }
func (auditCmd) Usage() string       { return "audit [<limit>]" }

func (auditCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	limit := 0
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return ErrUsage
		}
		limit = n
	}
	c, err := newClient(cfg)
	if err != nil {
		return err
	}
	records, err := c.Audit(ctx, limit)
	if err != nil {
		return err
	}
	for _, r := range records {
		keys := make([]string, 0, len(r.Metadata))
		for k := range r.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		kv := make([]string, 0, len(keys))
		for _, k := range keys {
			kv = append(kv, fmt.Sprintf("%s=%v", k, r.Metadata[k]))
		}
		fmt.Fprintf(Out, "%s  %-5s  %s  %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Level, r.Message, strings.Join(kv, " "))
	}
	return nil
}

func init() { RegisterCmd(auditCmd{}) }
