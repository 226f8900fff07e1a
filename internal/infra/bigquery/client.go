package bigquery

import (
	"context"
	"fmt"
	"math/rand/v2"

	"cloud.google.com/go/bigquery"
)

// Client wraps a BigQuery connection scoped to one project and dataset.
// All stores in this package share one Client.
type Client struct {
	bq        *bigquery.Client
	projectID string
	datasetID string
}

// NewClient creates a BigQuery client for the given project and dataset.
// It assumes Application Default Credentials are configured.
func NewClient(ctx context.Context, projectID, datasetID string) (*Client, error) {
	bq, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewClient: creating bigquery client: %w", err)
	}
	return &Client{bq: bq, projectID: projectID, datasetID: datasetID}, nil
}

// Close closes the underlying BigQuery client.
func (c *Client) Close() error {
	if c.bq != nil {
		return c.bq.Close()
	}
	return nil
}

// table returns the fully qualified table name for use in SQL.
func (c *Client) table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", c.projectID, c.datasetID, name)
}

// inserter returns a streaming inserter for the named table.
func (c *Client) inserter(name string) *bigquery.Inserter {
	return c.bq.DatasetInProject(c.projectID, c.datasetID).Table(name).Inserter()
}

// runDML runs a parameterized DML statement and waits for it to finish.
func (c *Client) runDML(ctx context.Context, query string, params []bigquery.QueryParameter) error {
	q := c.bq.Query(query)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}

// newID generates a random row ID. BigQuery has no auto-increment, so IDs
// are drawn from the positive int64 range.
func newID() int64 {
	return rand.Int64N(1<<62) + 1
}
