package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"news-forum-bot/forum"
	"news-forum-bot/memory"
	"news-forum-bot/models"
	"news-forum-bot/sources"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	items []models.NewsItem
}

func (s stubSource) Name() string { return "stub" }

func (s stubSource) Fetch(context.Context) ([]models.NewsItem, error) { return s.items, nil }

type markProcessor struct{}

func (markProcessor) ProcessAll(_ context.Context, items []models.NewsItem) []models.NewsItem {
	out := make([]models.NewsItem, 0, len(items))
	for _, item := range items {
		item.Title = "改寫：" + item.Title
		item.Comment = "評論"
		out = append(out, item)
	}
	return out
}

type recordingPublisher struct {
	mutex    sync.Mutex
	channels []forum.ChannelRef
	items    []models.NewsItem
	result   forum.Result
	block    chan struct{}
	entered  chan struct{}
}

func (p *recordingPublisher) Publish(_ context.Context, channels []forum.ChannelRef, items []models.NewsItem, _ time.Time) forum.Result {
	if p.entered != nil {
		close(p.entered)
	}
	if p.block != nil {
		<-p.block
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.channels = channels
	p.items = items
	return p.result
}

type fakeStatus struct {
	reports []models.RunReport
	saves   int
}

func (f *fakeStatus) RecordRun(r models.RunReport) { f.reports = append(f.reports, r) }

func (f *fakeStatus) Save() error { f.saves++; return nil }

type fakeHealth struct {
	healthy []bool
}

func (f *fakeHealth) SetPipelineHealthy(h bool) { f.healthy = append(f.healthy, h) }

var now = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	pipeline  *Pipeline
	store     *memory.Store
	registry  *forum.Registry
	publisher *recordingPublisher
	status    *fakeStatus
	health    *fakeHealth
}

func newFixture(t *testing.T, memoryPath string, items []models.NewsItem) *fixture {
	t.Helper()
	dir := t.TempDir()
	if memoryPath == "" {
		memoryPath = filepath.Join(dir, "news_memory.json")
	}
	store := memory.NewStore(memoryPath)
	registry := forum.LoadRegistry(filepath.Join(dir, "forum_channels.json"))
	registry.Add("g1", "c1")
	registry.Add("g1", "c2")

	publisher := &recordingPublisher{}
	cfg := models.NewsConfig{RetentionDays: 5}
	p := New([]sources.Source{stubSource{items: items}}, store, registry, markProcessor{}, publisher, cfg, time.UTC)
	p.clock = func() time.Time { return now }

	status := &fakeStatus{}
	health := &fakeHealth{}
	p.SetStatus(status)
	p.SetHealth(health)

	return &fixture{pipeline: p, store: store, registry: registry, publisher: publisher, status: status, health: health}
}

func item(title, published string) models.NewsItem {
	return models.NewsItem{Title: title, Link: "https://example.com/" + title, Published: published, Content: "內文"}
}

func TestRunFiltersRemembersAndPublishes(t *testing.T) {
	f := newFixture(t, "", []models.NewsItem{
		item("舊聞", "2024-01-09 10:00:00"),
		item("新聞", "2024-01-10 10:00:00"),
		item("新聞", "2024-01-10 11:00:00"),
	})
	require.NoError(t, f.store.Save([]models.MemoryRecord{
		{Title: "舊聞", Published: "2024-01-09 10:00:00"},
		{Title: "過期", Published: "2024-01-01 00:00:00"},
	}))

	report, err := f.pipeline.Run(context.Background(), TriggerManual)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Candidates, "duplicate titles in one batch are dropped")
	assert.Equal(t, 1, report.Fresh)
	assert.Equal(t, 2, report.MemorySize)

	require.Len(t, f.publisher.items, 1)
	assert.Equal(t, "改寫：新聞", f.publisher.items[0].Title)
	assert.Equal(t, f.registry.Snapshot(), f.publisher.channels)

	var titles []string
	for _, r := range f.store.Load() {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"舊聞", "新聞"}, titles, "memory keeps the scraped title")

	require.Len(t, f.status.reports, 1)
	assert.Equal(t, TriggerManual, f.status.reports[0].Trigger)
	assert.Equal(t, 1, f.status.saves)
	assert.Equal(t, []bool{true}, f.health.healthy)
}

func TestRunDeregistersStaleChannels(t *testing.T) {
	f := newFixture(t, "", nil)
	f.publisher.result = forum.Result{Created: 1, Stale: []forum.ChannelRef{{GuildID: "g1", ChannelID: "c2"}}}

	report, err := f.pipeline.Run(context.Background(), TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deregistered)
	assert.Equal(t, []string{"c1"}, f.registry.GuildChannels("g1"))

	path := filepath.Join(filepath.Dir(f.store.Path()), "forum_channels.json")
	reloaded := forum.LoadRegistry(path)
	assert.Equal(t, []string{"c1"}, reloaded.GuildChannels("g1"))
}

func TestRunReportsMemorySaveFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	f := newFixture(t, filepath.Join(blocker, "news_memory.json"), []models.NewsItem{item("新聞", "2024-01-10 10:00:00")})

	report, err := f.pipeline.Run(context.Background(), TriggerManual)
	require.Error(t, err)
	assert.NotEmpty(t, report.Error)
	assert.Len(t, f.publisher.items, 1, "publication continues after a persistence failure")
	assert.Equal(t, []bool{false}, f.health.healthy)
}

func TestRunRejectsConcurrentRuns(t *testing.T) {
	f := newFixture(t, "", nil)
	f.publisher.block = make(chan struct{})
	f.publisher.entered = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.pipeline.Run(context.Background(), TriggerScheduled)
		done <- err
	}()
	<-f.publisher.entered

	_, err := f.pipeline.Run(context.Background(), TriggerManual)
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(f.publisher.block)
	require.NoError(t, <-done)
}

func TestUniqueTitles(t *testing.T) {
	items := UniqueTitles([]models.NewsItem{{Title: "a"}, {Title: ""}, {Title: "b"}, {Title: "a"}})
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Title)
	assert.Equal(t, "b", items[1].Title)
}

func TestSummary(t *testing.T) {
	s := Summary(models.RunReport{Candidates: 3, Fresh: 2, MemorySize: 10, Updated: 1, Created: 1, Deregistered: 1})
	assert.Contains(t, s, "新新聞 2 則")
	assert.Contains(t, s, "移除失效頻道 1 個")
	assert.NotContains(t, s, "失敗")
}
