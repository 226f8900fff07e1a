package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"

	"github.com/moneyapps/ledger/internal/logger"
)

// migration is one numbered SQL file from the migrations directory.
type migration struct {
	Version  int
	Name     string
	Filename string
	SQL      string
	Checksum string
}

var migrationFilePattern = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

func main() {
	log := logger.New()

	projectID := flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID (required)")
	datasetID := flag.String("dataset", "ledger", "BigQuery dataset ID")
	appliedBy := flag.String("applied-by", "migrate-cli", "Name recorded against applied migrations")
	dir := flag.String("migrations", "migrations/bigquery", "Path to the migrations directory")
	flag.Parse()

	if *projectID == "" {
		log.Fatal().Msg("-project flag is required")
	}

	ctx := context.Background()

	client, err := bigquery.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer client.Close()

	m := &migrator{
		client:    client,
		projectID: *projectID,
		datasetID: *datasetID,
		appliedBy: *appliedBy,
		log:       log,
	}

	log.Info().Str("project", *projectID).Str("dataset", *datasetID).Msg("Connected to BigQuery")

	if err := m.run(ctx, *dir); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}

type migrator struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	appliedBy string
	log       zerolog.Logger
}

func (m *migrator) run(ctx context.Context, dir string) error {
	if err := m.ensureMigrationsTable(ctx); err != nil {
		return fmt.Errorf("run: ensuring schema_migrations table: %w", err)
	}

	migrations, err := m.readMigrations(dir)
	if err != nil {
		return fmt.Errorf("run: reading migrations: %w", err)
	}
	m.log.Info().Int("count", len(migrations)).Msg("Found migration files")

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("run: loading applied migrations: %w", err)
	}

	pending := 0
	for _, mig := range migrations {
		if applied[mig.Version] {
			m.log.Info().Str("migration", mig.Filename).Msg("Already applied, skipping")
			continue
		}

		m.log.Info().Str("migration", mig.Filename).Msg("Applying")
		if err := m.exec(ctx, mig.SQL, nil); err != nil {
			return fmt.Errorf("run: applying %s: %w", mig.Filename, err)
		}
		if err := m.record(ctx, mig); err != nil {
			return fmt.Errorf("run: recording %s: %w", mig.Filename, err)
		}
		pending++
	}

	if pending == 0 {
		m.log.Info().Msg("No new migrations to apply")
	} else {
		m.log.Info().Int("applied", pending).Msg("Migrations applied")
	}
	return nil
}

func (m *migrator) table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", m.projectID, m.datasetID, name)
}

func (m *migrator) ensureMigrationsTable(ctx context.Context) error {
	return m.exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version    INT64 NOT NULL,
			name       STRING NOT NULL,
			applied_at TIMESTAMP NOT NULL,
			checksum   STRING,
			applied_by STRING
		)
	`, m.table("schema_migrations")), nil)
}

// readMigrations loads NNNN_name.sql files, substitutes the project/dataset
// placeholders, and returns them sorted by version. The checksum covers the
// file before substitution so the recorded hash is deployment-independent.
func (m *migrator) readMigrations(dir string) ([]migration, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		// Allow running from inside cmd/migrate.
		dir = filepath.Join("..", "..", dir)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return nil, fmt.Errorf("readMigrations: directory not found: %s", dir)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("readMigrations: reading directory: %w", err)
	}

	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matches := migrationFilePattern.FindStringSubmatch(entry.Name())
		if matches == nil {
			m.log.Warn().Str("file", entry.Name()).Msg("Skipping file with unexpected name")
			continue
		}
		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("readMigrations: parsing version of %s: %w", entry.Name(), err)
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("readMigrations: reading %s: %w", entry.Name(), err)
		}

		sql := strings.ReplaceAll(string(content), "{{PROJECT_ID}}", m.projectID)
		sql = strings.ReplaceAll(sql, "{{DATASET_ID}}", m.datasetID)

		migrations = append(migrations, migration{
			Version:  version,
			Name:     matches[2],
			Filename: entry.Name(),
			SQL:      sql,
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func (m *migrator) appliedVersions(ctx context.Context) (map[int]bool, error) {
	q := m.client.Query(fmt.Sprintf(`
		SELECT version FROM %s ORDER BY version ASC
	`, m.table("schema_migrations")))

	it, err := q.Read(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "Not found") {
			return map[int]bool{}, nil
		}
		return nil, fmt.Errorf("appliedVersions: reading: %w", err)
	}

	applied := make(map[int]bool)
	for {
		var row struct {
			Version int64 `bigquery:"version"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("appliedVersions: iterating: %w", err)
		}
		applied[int(row.Version)] = true
	}
	return applied, nil
}

func (m *migrator) record(ctx context.Context, mig migration) error {
	return m.exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (version, name, applied_at, checksum, applied_by)
		VALUES (@version, @name, CURRENT_TIMESTAMP(), @checksum, @applied_by)
	`, m.table("schema_migrations")), []bigquery.QueryParameter{
		{Name: "version", Value: mig.Version},
		{Name: "name", Value: mig.Name},
		{Name: "checksum", Value: mig.Checksum},
		{Name: "applied_by", Value: m.appliedBy},
	})
}

func (m *migrator) exec(ctx context.Context, sql string, params []bigquery.QueryParameter) error {
	q := m.client.Query(sql)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("exec: running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("exec: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("exec: job error: %w", err)
	}
	return nil
}
