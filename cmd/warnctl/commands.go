package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/database"
	"github.com/PancyStudios/PancyWarnGo/pkg/models"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"
)

type ctl struct {
	open opener
	now  func() time.Time
}

// withEngine opens the store, runs fn and closes the store again.
func (c *ctl) withEngine(cctx *cli.Context, fn func(ctx context.Context, b database.Backend, e *warn.Engine) error) error {
	ctx, cancel := context.WithTimeout(cctx.Context, cctx.Duration("timeout"))
	defer cancel()

	b, err := c.open(ctx, cctx)
	if err != nil {
		return err
	}
	defer b.Close()

	return fn(ctx, b, warn.NewEngine(b, warn.Options{}))
}

func subjectArg(cctx *cli.Context) (string, error) {
	s := strings.TrimSpace(cctx.Args().First())
	if s == "" {
		return "", fmt.Errorf("need to provide a subject id as an argument")
	}
	return s, nil
}

func printJSON(cctx *cli.Context, v any) error {
	enc := json.NewEncoder(cctx.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *ctl) runCount(cctx *cli.Context) error {
	subject, err := subjectArg(cctx)
	if err != nil {
		return err
	}
	return c.withEngine(cctx, func(ctx context.Context, _ database.Backend, e *warn.Engine) error {
		n, err := e.CountActiveWarns(ctx, subject, c.now())
		if err != nil {
			return err
		}
		next := warn.PunishmentFor(n + 1)
		if cctx.Bool("json") {
			return printJSON(cctx, map[string]any{"subjectId": subject, "active": n, "nextAction": next.String()})
		}
		fmt.Fprintf(cctx.App.Writer, "%s: %d active warns (next: %s)\n", subject, n, next)
		return nil
	})
}

func (c *ctl) runActive(cctx *cli.Context) error {
	subject, err := subjectArg(cctx)
	if err != nil {
		return err
	}
	return c.withEngine(cctx, func(ctx context.Context, _ database.Backend, e *warn.Engine) error {
		now := c.now()
		warns, err := e.GetActiveWarns(ctx, subject, now)
		if err != nil {
			return err
		}
		return c.printWarns(cctx, warns, now)
	})
}

func (c *ctl) runHistory(cctx *cli.Context) error {
	subject, err := subjectArg(cctx)
	if err != nil {
		return err
	}
	return c.withEngine(cctx, func(ctx context.Context, _ database.Backend, e *warn.Engine) error {
		warns, err := e.GetWarnHistory(ctx, subject)
		if err != nil {
			return err
		}
		return c.printWarns(cctx, warns, c.now())
	})
}

func (c *ctl) printWarns(cctx *cli.Context, warns []models.Warn, now time.Time) error {
	if cctx.Bool("json") {
		if warns == nil {
			warns = []models.Warn{}
		}
		return printJSON(cctx, warns)
	}
	if len(warns) == 0 {
		fmt.Fprintln(cctx.App.Writer, "no warns")
		return nil
	}
	for _, w := range warns {
		fmt.Fprintln(cctx.App.Writer, formatWarn(w, now))
	}
	return nil
}

// formatWarn renders one warn as a single line.
func formatWarn(w models.Warn, now time.Time) string {
	state := "active"
	if !w.IsActive(now) {
		state = "expired"
	}
	return fmt.Sprintf("#%d\t%s\tissuer=%s\tissued=%s\texpires=%s\t%s\t%q",
		w.ID, w.SubjectID, w.IssuerOr("system"),
		w.IssuedAt.UTC().Format(time.RFC3339), w.ExpiresAt.UTC().Format(time.RFC3339),
		state, w.Reason)
}

func (c *ctl) runRemove(cctx *cli.Context) error {
	id, err := strconv.ParseInt(cctx.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("need to provide a positive warn id as an argument")
	}
	return c.withEngine(cctx, func(ctx context.Context, _ database.Backend, e *warn.Engine) error {
		removed, err := e.RemoveWarn(ctx, id)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("warn #%d not found", id)
		}
		fmt.Fprintf(cctx.App.Writer, "removed warn #%d\n", id)
		return nil
	})
}

func (c *ctl) runClear(cctx *cli.Context) error {
	subject, err := subjectArg(cctx)
	if err != nil {
		return err
	}
	return c.withEngine(cctx, func(ctx context.Context, _ database.Backend, e *warn.Engine) error {
		n, err := e.ClearSubject(ctx, subject)
		if err != nil {
			return err
		}
		fmt.Fprintf(cctx.App.Writer, "removed %d warns of %s\n", n, subject)
		return nil
	})
}

func (c *ctl) runPurge(cctx *cli.Context) error {
	return c.withEngine(cctx, func(ctx context.Context, _ database.Backend, e *warn.Engine) error {
		n, err := e.PurgeExpired(ctx, c.now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cctx.App.Writer, "purged %d expired warns\n", n)
		return nil
	})
}

func (c *ctl) runStats(cctx *cli.Context) error {
	return c.withEngine(cctx, func(ctx context.Context, b database.Backend, _ *warn.Engine) error {
		stats, err := b.Stats(ctx, c.now())
		if err != nil {
			return err
		}
		if cctx.Bool("json") {
			return printJSON(cctx, stats)
		}
		fmt.Fprintf(cctx.App.Writer, "%s: total=%d active=%d expired=%d subjects=%d\n",
			b.Name(), stats.Total, stats.Active, stats.Expired, stats.Subjects)
		return nil
	})
}

func (c *ctl) runVerify(cctx *cli.Context) error {
	return c.withEngine(cctx, func(ctx context.Context, b database.Backend, _ *warn.Engine) error {
		if err := b.Verify(ctx); err != nil {
			return fmt.Errorf("%s verification failed: %w", b.Name(), err)
		}
		fmt.Fprintf(cctx.App.Writer, "%s OK\n", b.Name())
		return nil
	})
}

func (c *ctl) runReset(cctx *cli.Context) error {
	if !cctx.Bool("yes") {
		return fmt.Errorf("refusing to delete every warn without --yes")
	}
	return c.withEngine(cctx, func(ctx context.Context, b database.Backend, _ *warn.Engine) error {
		n, err := b.Reset(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cctx.App.Writer, "deleted %d warns from %s\n", n, b.Name())
		return nil
	})
}

func (c *ctl) runPolicy(cctx *cli.Context) error {
	fmt.Fprint(cctx.App.Writer, warn.SystemInfo())
	return nil
}
