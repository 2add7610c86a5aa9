// Package sheet ingests submission records from a published spreadsheet.
//
// The source is a two-column range for one task: column A is the user name
// and column B a JSON object mapping score to elapsed nanoseconds. The
// first row is a header and is skipped.
package sheet

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/heatboard/heatboard/internal/domain/model"
	"github.com/heatboard/heatboard/pkg/logger"
	"github.com/heatboard/heatboard/pkg/metrics"
)

const defaultFetchTimeout = 10 * time.Second

// Client fetches a task's submission set from the spreadsheet's CSV export.
type Client struct {
	baseURL string
	taskID  string
	client  *http.Client
	log     logger.Logger
}

// New creates a Client for the given sheet base URL (ending in "/") and
// task ID, which names the sheet tab to read.
func New(baseURL, taskID string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		taskID:  taskID,
		client:  &http.Client{Timeout: defaultFetchTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("sheet")
	}
	return c
}

// Fetch downloads and parses the task's range. Rows with malformed data
// are skipped with a warning; they never reach the core.
func (c *Client) Fetch(ctx context.Context) (model.SubmissionSet, error) {
	metrics.RecordFetch()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.rangeURL(), nil)
	if err != nil {
		metrics.RecordFetchError()
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordFetchError()
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordFetchError()
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetch, resp.StatusCode)
	}

	set, err := c.parse(ctx, resp.Body)
	if err != nil {
		metrics.RecordFetchError()
		return nil, err
	}
	return set, nil
}

// rangeURL builds the CSV export URL for the task's two-column range.
func (c *Client) rangeURL() string {
	query := url.Values{}
	query.Set("tqx", "out:csv")
	query.Set("range", c.taskID+"!A:B")
	return c.baseURL + "gviz/tq?" + query.Encode()
}

// parse reads the two-column CSV, skipping the header row and any row whose
// payload does not decode to a score map.
func (c *Client) parse(ctx context.Context, r io.Reader) (model.SubmissionSet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	set := model.SubmissionSet{}
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrParse, row, err)
		}
		row++
		if row == 1 {
			continue // header
		}
		if len(record) < 2 {
			c.skipRow(ctx, row, fmt.Errorf("expected 2 columns, got %d", len(record)))
			continue
		}

		name := record[0]
		times, err := parseScoreTimes(record[1])
		if err != nil {
			c.skipRow(ctx, row, err)
			continue
		}
		set[name] = times
	}

	metrics.UpdateSubmissionsSeen(countSubmissions(set))
	return set, nil
}

func (c *Client) skipRow(ctx context.Context, row int, err error) {
	metrics.RecordRowSkipped()
	c.log.Warn(ctx, "skipping malformed sheet row",
		logger.Int("row", row),
		logger.Error(err))
}

// parseScoreTimes decodes a {"score": elapsedNs} JSON object. Values may
// arrive as JSON numbers or as strings; both are accepted. Non-numeric
// scores are rejected here so NaN comparisons never reach the core.
func parseScoreTimes(payload string) (model.ScoreTimes, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	times := make(model.ScoreTimes, len(raw))
	for scoreStr, v := range raw {
		score, err := strconv.Atoi(scoreStr)
		if err != nil {
			return nil, fmt.Errorf("non-numeric score %q", scoreStr)
		}
		elapsed, err := toInt64(v)
		if err != nil {
			return nil, fmt.Errorf("score %d: %w", score, err)
		}
		if elapsed < 0 {
			return nil, fmt.Errorf("score %d: negative elapsed time", score)
		}
		times[score] = elapsed
	}
	return times, nil
}

func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("non-numeric elapsed time %q", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported elapsed time type %T", v)
	}
}

func countSubmissions(set model.SubmissionSet) int {
	n := 0
	for _, times := range set {
		n += len(times)
	}
	return n
}
