package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// SystemStatus fetches backend scheduler status
func (c *Client) SystemStatus(ctx context.Context) (*SystemStatus, error) {
	var status SystemStatus
	if err := c.get(ctx, "/system/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// BatchJobs lists manually executable jobs
func (c *Client) BatchJobs(ctx context.Context) ([]BatchJob, error) {
	var jobs []BatchJob
	if err := c.get(ctx, "/batch/jobs", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// ExecuteBatchJob triggers a job immediately
func (c *Client) ExecuteBatchJob(ctx context.Context, jobID string) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := c.post(ctx, fmt.Sprintf("/batch/exec/%s", url.PathEscape(jobID)), nil, &result); err != nil {
		return nil, err
	}

	c.logger.WithField("job_id", jobID).Info("Batch job triggered")
	return result, nil
}

// TradeLogs pages through the order audit log
func (c *Client) TradeLogs(ctx context.Context, skip, limit int) ([]TradeLog, error) {
	if limit <= 0 {
		limit = 100
	}
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))

	var logs []TradeLog
	if err := c.get(ctx, "/logs/trade", q, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
