package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jengzang/accident-risk-go/internal/database"
	"github.com/jengzang/accident-risk-go/internal/records"
	"github.com/jengzang/accident-risk-go/internal/repository"
)

func newImportCmd() *cobra.Command {
	var (
		csvPath   string
		dbPath    string
		hasHeader bool
		comma     string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy a raw CSV into the sqlite accidents table",
		Long: `Rows are stored unvalidated so the load-time filter still decides
which records enter the engine.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sep := []rune(comma)
			if len(sep) != 1 {
				return fmt.Errorf("--comma must be a single character, got %q", comma)
			}

			src := &records.CSVSource{Path: csvPath, HasHeader: hasHeader, Comma: sep[0]}
			rows, err := src.ReadRows(ctx)
			if err != nil {
				return err
			}

			db, err := database.Open(database.Config{Driver: database.DriverSQLite, DSN: dbPath})
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.NewMigrationManager(db, database.DriverSQLite).RunMigrations(); err != nil {
				return err
			}
			repo := repository.NewAccidentRepository(db, database.DriverSQLite, dbPath)
			n, err := repo.InsertRows(ctx, rows)
			if err != nil {
				return err
			}
			total, err := repo.Count(ctx)
			if err != nil {
				return err
			}
			log.Printf("[Import] %s -> %s: %d rows imported", csvPath, dbPath, n)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows (%d total)\n", n, total)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&csvPath, "csv", "", "raw accident CSV")
	f.StringVar(&dbPath, "db", "accidents.db", "sqlite database to import into")
	f.BoolVar(&hasHeader, "csv-header", false, "CSV has a header row")
	f.StringVar(&comma, "comma", ",", "CSV field separator")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}
