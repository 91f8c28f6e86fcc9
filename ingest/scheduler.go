package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/raven2t2/importiq-backend/monitoring"
	"github.com/raven2t2/importiq-backend/v1/models"
)

// maxConsecutiveFailures is the threshold after which a job is reported
// unhealthy.
const maxConsecutiveFailures = 3

// JobReport summarizes one run of an ingestion job.
type JobReport struct {
	RecordsFetched int    `json:"recordsFetched"`
	RecordsValid   int    `json:"recordsValid"`
	RecordsLoaded  int64  `json:"recordsLoaded"`
	QualityGrade   string `json:"qualityGrade"`
}

// JobFunc performs one ingestion run.
type JobFunc func(ctx context.Context) (*JobReport, error)

// Job is one scheduled ingestion job.
type Job struct {
	Name     string
	Interval time.Duration
	Run      JobFunc
}

// JobStats tracks the execution history of one job.
type JobStats struct {
	Runs                int        `json:"runs"`
	Failures            int        `json:"failures"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
	RecordsLoaded       int64      `json:"recordsLoaded"`
	LastRun             *time.Time `json:"lastRun,omitempty"`
	LastError           string     `json:"lastError,omitempty"`
}

// Scheduler runs ingestion jobs on their configured intervals. Jobs run in
// their own goroutines; Start blocks until the context is cancelled.
type Scheduler struct {
	mu    sync.Mutex
	jobs  []Job
	stats map[string]*JobStats
}

func NewScheduler(jobs []Job) *Scheduler {
	stats := make(map[string]*JobStats, len(jobs))
	for _, job := range jobs {
		stats[job.Name] = &JobStats{}
	}
	return &Scheduler{jobs: jobs, stats: stats}
}

// RunOnce executes every job a single time, in name order, and returns the
// first error encountered (remaining jobs still run).
func (s *Scheduler) RunOnce(ctx context.Context) error {
	jobs := make([]Job, len(s.jobs))
	copy(jobs, s.jobs)
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })

	var firstErr error
	for _, job := range jobs {
		if err := s.runJob(ctx, job); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Start runs every job on its interval until the context is cancelled.
// Each job also runs once immediately on startup.
func (s *Scheduler) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, job := range s.jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()

			if err := s.runJob(ctx, job); err != nil {
				slog.Error("Ingestion job failed", "job", job.Name, "error", err)
			}

			ticker := time.NewTicker(job.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := s.runJob(ctx, job); err != nil {
						slog.Error("Ingestion job failed", "job", job.Name, "error", err)
					}
				}
			}
		}(job)
	}
	wg.Wait()
}

func (s *Scheduler) runJob(ctx context.Context, job Job) error {
	start := time.Now()
	report, err := job.Run(ctx)
	monitoring.RecordExternalCall("ingest-feed", job.Name, time.Since(start), err)

	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.stats[job.Name]
	now := time.Now()
	stats.Runs++
	stats.LastRun = &now

	if err != nil {
		stats.Failures++
		stats.ConsecutiveFailures++
		stats.LastError = err.Error()
		return err
	}

	stats.ConsecutiveFailures = 0
	stats.LastError = ""
	if report != nil {
		stats.RecordsLoaded += report.RecordsLoaded
		slog.Info("Ingestion job complete",
			"job", job.Name,
			"fetched", report.RecordsFetched,
			"valid", report.RecordsValid,
			"loaded", report.RecordsLoaded,
			"grade", report.QualityGrade,
			"duration", time.Since(start))
	}
	return nil
}

// Stats returns a snapshot of per-job statistics.
func (s *Scheduler) Stats() map[string]JobStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]JobStats, len(s.stats))
	for name, stats := range s.stats {
		out[name] = *stats
	}
	return out
}

// Healthy reports false once any job has failed maxConsecutiveFailures
// times in a row.
func (s *Scheduler) Healthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stats := range s.stats {
		if stats.ConsecutiveFailures >= maxConsecutiveFailures {
			return false
		}
	}
	return true
}

// BuildJobs constructs the enabled ingestion jobs from config. Known job
// names are "auctions", "duty_rates", and "eligibility"; anything else is
// an error.
func BuildJobs(config *Config, fetcher *Fetcher, validator *Validator, loader *Loader) ([]Job, error) {
	var jobs []Job
	for name, jobConfig := range config.Jobs {
		if !jobConfig.Enabled {
			continue
		}
		if jobConfig.FeedURL == "" {
			return nil, fmt.Errorf("job %s is enabled but has no feed_url", name)
		}

		interval, err := jobConfig.IntervalDuration()
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", name, err)
		}

		var run JobFunc
		switch name {
		case "auctions":
			run = auctionSyncJob(jobConfig, fetcher, validator, loader)
		case "duty_rates":
			run = dutyRateSyncJob(jobConfig, fetcher, validator, loader)
		case "eligibility":
			run = eligibilitySyncJob(jobConfig, fetcher, validator, loader)
		default:
			return nil, fmt.Errorf("unknown ingestion job: %s", name)
		}

		jobs = append(jobs, Job{Name: name, Interval: interval, Run: run})
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs, nil
}

func auctionSyncJob(cfg JobConfig, fetcher *Fetcher, validator *Validator, loader *Loader) JobFunc {
	return func(ctx context.Context) (*JobReport, error) {
		valid, report, err := fetchAndValidate(ctx, cfg.FeedURL, fetcher, validator, "vehicle")
		if err != nil {
			return nil, err
		}

		var listings []models.VehicleAuction
		if err := remarshal(valid, &listings); err != nil {
			return nil, err
		}
		if cfg.Source != "" {
			for i := range listings {
				if listings[i].Source == "" {
					listings[i].Source = cfg.Source
				}
			}
		}

		result, err := loader.LoadAuctions(ctx, listings)
		if err != nil {
			return nil, err
		}
		report.RecordsLoaded = result.RecordsInserted
		return report, nil
	}
}

func dutyRateSyncJob(cfg JobConfig, fetcher *Fetcher, validator *Validator, loader *Loader) JobFunc {
	return func(ctx context.Context) (*JobReport, error) {
		valid, report, err := fetchAndValidate(ctx, cfg.FeedURL, fetcher, validator, "duty_rate")
		if err != nil {
			return nil, err
		}

		var rates []models.DutyRate
		if err := remarshal(valid, &rates); err != nil {
			return nil, err
		}

		result, err := loader.LoadDutyRates(ctx, rates)
		if err != nil {
			return nil, err
		}
		report.RecordsLoaded = result.RecordsInserted
		return report, nil
	}
}

func eligibilitySyncJob(cfg JobConfig, fetcher *Fetcher, validator *Validator, loader *Loader) JobFunc {
	return func(ctx context.Context) (*JobReport, error) {
		valid, report, err := fetchAndValidate(ctx, cfg.FeedURL, fetcher, validator, "eligibility")
		if err != nil {
			return nil, err
		}

		var rules []models.ComplianceRule
		if err := remarshal(valid, &rules); err != nil {
			return nil, err
		}

		result, err := loader.LoadComplianceRules(ctx, rules)
		if err != nil {
			return nil, err
		}
		report.RecordsLoaded = result.RecordsInserted
		return report, nil
	}
}

// fetchAndValidate downloads a JSON feed, validates each record, and returns
// the validated records that passed along with a partially filled report.
func fetchAndValidate(ctx context.Context, url string, fetcher *Fetcher, validator *Validator, recordType string) ([]Record, *JobReport, error) {
	body, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, nil, err
	}

	var records []Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed payload from %s: %w", url, err)
	}

	results, err := validator.ValidateBatch(records, recordType)
	if err != nil {
		return nil, nil, err
	}

	var valid []Record
	for _, result := range results {
		if result.Valid {
			valid = append(valid, result.Validated)
		}
	}

	summary := validator.Summarize(results)
	if summary.InvalidRecords > 0 {
		slog.Warn("Feed contained invalid records",
			"url", url,
			"invalid", summary.InvalidRecords,
			"total", summary.TotalRecords)
	}

	return valid, &JobReport{
		RecordsFetched: summary.TotalRecords,
		RecordsValid:   summary.ValidRecords,
		QualityGrade:   summary.QualityGrade,
	}, nil
}

func remarshal(records []Record, out interface{}) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to convert validated records: %w", err)
	}
	return nil
}
