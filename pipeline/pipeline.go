// Package pipeline runs one fetch → dedupe → rewrite → publish cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"news-forum-bot/forum"
	"news-forum-bot/memory"
	"news-forum-bot/models"
	"news-forum-bot/sources"
	"news-forum-bot/utils"
)

// ErrRunInProgress is returned by Run when another run has not finished yet.
var ErrRunInProgress = errors.New("a news run is already in progress")

const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
	TriggerStartup   = "startup"
)

// Processor rewrites fresh items.
type Processor interface {
	ProcessAll(ctx context.Context, items []models.NewsItem) []models.NewsItem
}

// Publisher reconciles items with forum channels.
type Publisher interface {
	Publish(ctx context.Context, channels []forum.ChannelRef, items []models.NewsItem, now time.Time) forum.Result
}

// StatusRecorder persists run reports.
type StatusRecorder interface {
	RecordRun(report models.RunReport)
	Save() error
}

// HealthReporter exposes the outcome of the last run.
type HealthReporter interface {
	SetPipelineHealthy(healthy bool)
}

// RunContext is the immutable input of one run.
type RunContext struct {
	Trigger  string
	Now      time.Time
	Channels []forum.ChannelRef
	Memory   []models.MemoryRecord
	Config   models.NewsConfig
}

// Pipeline wires the collaborators of a run.
type Pipeline struct {
	sources   []sources.Source
	memory    *memory.Store
	registry  *forum.Registry
	processor Processor
	publisher Publisher
	config    models.NewsConfig
	location  *time.Location

	status StatusRecorder
	health HealthReporter
	clock  func() time.Time

	running sync.Mutex
}

// New creates a Pipeline.
func New(srcs []sources.Source, store *memory.Store, registry *forum.Registry, processor Processor, publisher Publisher, cfg models.NewsConfig, loc *time.Location) *Pipeline {
	if loc == nil {
		loc = time.Local
	}
	return &Pipeline{
		sources:   srcs,
		memory:    store,
		registry:  registry,
		processor: processor,
		publisher: publisher,
		config:    cfg,
		location:  loc,
		clock:     time.Now,
	}
}

// SetStatus attaches the status file writer.
func (p *Pipeline) SetStatus(status StatusRecorder) { p.status = status }

// SetHealth attaches the health reporter.
func (p *Pipeline) SetHealth(health HealthReporter) { p.health = health }

// Memory returns the persisted memory records.
func (p *Pipeline) Memory() []models.MemoryRecord { return p.memory.Load() }

// Registry returns the forum channel registry.
func (p *Pipeline) Registry() *forum.Registry { return p.registry }

func (p *Pipeline) newRunContext(trigger string) RunContext {
	return RunContext{
		Trigger:  trigger,
		Now:      p.clock().In(p.location),
		Channels: p.registry.Snapshot(),
		Memory:   p.memory.Load(),
		Config:   p.config,
	}
}

// Run executes one full cycle. Only one run may be active at a time; a
// concurrent call returns ErrRunInProgress immediately.
func (p *Pipeline) Run(ctx context.Context, trigger string) (models.RunReport, error) {
	if !p.running.TryLock() {
		return models.RunReport{Trigger: trigger}, ErrRunInProgress
	}
	defer p.running.Unlock()

	rc := p.newRunContext(trigger)
	report := models.RunReport{Trigger: trigger, StartedAt: rc.Now}
	log.Printf("[pipeline] %s run started with %d channels and %d remembered items", trigger, len(rc.Channels), len(rc.Memory))

	err := p.run(ctx, rc, &report)
	report.Duration = p.clock().Sub(rc.Now)
	if err != nil {
		report.Error = err.Error()
		utils.Error("Pipeline", "Run", err.Error())
	}
	p.finish(report, err)
	return report, err
}

func (p *Pipeline) run(ctx context.Context, rc RunContext, report *models.RunReport) error {
	candidates := UniqueTitles(sources.FetchAll(ctx, p.sources))
	report.Candidates = len(candidates)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run cancelled while fetching: %w", err)
	}

	fresh := memory.FilterNew(candidates, rc.Memory)
	report.Fresh = len(fresh)

	updated := memory.ExtendAndPrune(rc.Memory, fresh, rc.Config.RetentionDays, rc.Now)
	report.MemorySize = len(updated)
	var saveErr error
	if err := p.memory.Save(updated); err != nil {
		saveErr = fmt.Errorf("failed to save news memory: %w", err)
		utils.Error("Pipeline", "SaveMemory", saveErr.Error())
	}

	transformed := p.processor.ProcessAll(ctx, fresh)
	result := p.publisher.Publish(ctx, rc.Channels, transformed, rc.Now)
	report.Updated = result.Updated
	report.Created = result.Created
	report.Reclaimed = result.Reclaimed
	report.Failures = result.Failures

	if len(result.Stale) > 0 {
		for _, ref := range result.Stale {
			if p.registry.Remove(ref.GuildID, ref.ChannelID) {
				report.Deregistered++
			}
		}
		if err := p.registry.Save(); err != nil {
			log.Printf("[pipeline] failed to save channel registry: %v", err)
			report.Failures++
		}
	}

	log.Printf("[pipeline] %s", Summary(*report))
	return saveErr
}

func (p *Pipeline) finish(report models.RunReport, err error) {
	if p.health != nil {
		p.health.SetPipelineHealthy(err == nil)
	}
	if p.status == nil {
		return
	}
	p.status.RecordRun(report)
	if err := p.status.Save(); err != nil {
		log.Printf("[pipeline] failed to save status: %v", err)
	}
}

// UniqueTitles drops items whose title already appeared earlier in the batch.
func UniqueTitles(items []models.NewsItem) []models.NewsItem {
	seen := make(map[string]bool, len(items))
	out := make([]models.NewsItem, 0, len(items))
	for _, item := range items {
		if item.Title == "" || seen[item.Title] {
			continue
		}
		seen[item.Title] = true
		out = append(out, item)
	}
	return out
}

// Summary renders a report for logs and operator replies.
func Summary(r models.RunReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "候選 %d 則，新新聞 %d 則，記憶 %d 則；更新 %d 篇，新建 %d 篇，清理 %d 篇",
		r.Candidates, r.Fresh, r.MemorySize, r.Updated, r.Created, r.Reclaimed)
	if r.Deregistered > 0 {
		fmt.Fprintf(&b, "，移除失效頻道 %d 個", r.Deregistered)
	}
	if r.Failures > 0 {
		fmt.Fprintf(&b, "，失敗 %d 次", r.Failures)
	}
	if r.Duration > 0 {
		fmt.Fprintf(&b, "（耗時 %s）", r.Duration.Round(time.Second))
	}
	return b.String()
}
