// Command warnctl inspects and maintains the warn store without running the bot.
package main

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/config"
	"github.com/PancyStudios/PancyWarnGo/pkg/database"
	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp(openBackend, time.Now)
	app.RunAndExitOnError()
}

type opener func(ctx context.Context, cctx *cli.Context) (database.Backend, error)

// openBackend opens the store selected by flags, which default to the bot's environment.
func openBackend(ctx context.Context, cctx *cli.Context) (database.Backend, error) {
	return database.Open(ctx, database.Options{
		Kind:        cctx.String("store"),
		MongoURL:    cctx.String("mongo-url"),
		DBName:      cctx.String("db-name"),
		PostgresURL: cctx.String("postgres-url"),
		SQLitePath:  cctx.String("sqlite-path"),
	})
}

func newApp(open opener, now func() time.Time) *cli.App {
	cfg := config.Get()
	c := &ctl{open: open, now: now}

	app := &cli.App{
		Name:    "warnctl",
		Usage:   "inspect and maintain the PancyWarn warn store",
		Version: config.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "store",
				Usage:   "warn store backend (sqlite, postgres, mongo, memory)",
				Value:   cfg.WarnStore,
				EnvVars: []string{"WARN_STORE"},
			},
			&cli.StringFlag{
				Name:    "sqlite-path",
				Value:   cfg.SQLitePath,
				EnvVars: []string{"SQLITE_PATH"},
			},
			&cli.StringFlag{
				Name:    "postgres-url",
				Value:   cfg.PostgresURL,
				EnvVars: []string{"POSTGRES_URL"},
			},
			&cli.StringFlag{
				Name:    "mongo-url",
				Value:   cfg.MongoDBURL,
				EnvVars: []string{"mongodbUrl"},
			},
			&cli.StringFlag{
				Name:    "db-name",
				Value:   cfg.DBName,
				EnvVars: []string{"dbName"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "bound for the whole command",
				Value: 30 * time.Second,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print machine readable output",
			},
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:      "count",
			Usage:     "count the active warns of a subject and show the next sanction",
			ArgsUsage: "<subject>",
			Action:    c.runCount,
		},
		{
			Name:      "active",
			Usage:     "list the active warns of a subject",
			ArgsUsage: "<subject>",
			Action:    c.runActive,
		},
		{
			Name:      "history",
			Usage:     "list every stored warn of a subject, expired ones included",
			ArgsUsage: "<subject>",
			Action:    c.runHistory,
		},
		{
			Name:      "remove",
			Usage:     "delete one warn by id",
			ArgsUsage: "<id>",
			Action:    c.runRemove,
		},
		{
			Name:      "clear",
			Usage:     "delete every warn of a subject",
			ArgsUsage: "<subject>",
			Action:    c.runClear,
		},
		{
			Name:   "purge",
			Usage:  "delete every expired warn",
			Action: c.runPurge,
		},
		{
			Name:   "stats",
			Usage:  "show store totals",
			Action: c.runStats,
		},
		{
			Name:   "verify",
			Usage:  "check the schema and the stored warns",
			Action: c.runVerify,
		},
		{
			Name:  "reset",
			Usage: "delete ALL warns",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "yes",
					Usage: "confirm the reset",
				},
			},
			Action: c.runReset,
		},
		{
			Name:   "policy",
			Usage:  "print the expiry and sanction ladder",
			Action: c.runPolicy,
		},
	}
	return app
}
