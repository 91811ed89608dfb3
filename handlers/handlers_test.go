package handlers

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"news-forum-bot/models"
	"news-forum-bot/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchResultMessage(t *testing.T) {
	report := models.RunReport{Candidates: 4, Fresh: 2, Created: 2}

	assert.Contains(t, fetchResultMessage(report, nil), "✅")
	assert.Contains(t, fetchResultMessage(report, nil), "新新聞 2 則")
	assert.Contains(t, fetchResultMessage(report, pipeline.ErrRunInProgress), "正在執行")
	assert.Contains(t, fetchResultMessage(report, fmt.Errorf("wrap: %w", errors.New("disk full"))), "disk full")
}

func TestFormatNewsStatusEmpty(t *testing.T) {
	out := formatNewsStatus(newsStatus{Location: time.UTC})
	assert.Contains(t, out, "記憶中的新聞：0 則")
	assert.Contains(t, out, "尚未設定")
	assert.Contains(t, out, "尚無紀錄")
	assert.NotContains(t, out, "最近發布")
}

func TestFormatNewsStatus(t *testing.T) {
	started := time.Date(2024, 1, 10, 4, 0, 0, 0, time.UTC)
	out := formatNewsStatus(newsStatus{
		MemorySize: 12,
		Channels:   []string{"c1", "c2"},
		Run: models.RunStatus{
			TotalRuns: 3,
			LastRun:   &models.RunReport{Trigger: "scheduled", StartedAt: started, Fresh: 2, Error: "failed to save news memory"},
		},
		Counts: map[string]int{models.ActionCreate: 4, models.ActionUpdate: 1},
		Recent: []models.Publication{
			{ThreadID: "t1", Title: "颱風來襲", Action: models.ActionUpdate, Timestamp: started.Unix()},
		},
		Location: time.FixedZone("UTC+8", 8*3600),
	})

	assert.Contains(t, out, "<#c1> <#c2>")
	assert.Contains(t, out, "2024-01-10 12:00:00（scheduled，共 3 次）")
	assert.Contains(t, out, "⚠️ failed to save news memory")
	assert.Contains(t, out, "新建 4 篇，更新 1 篇")
	assert.Contains(t, out, "01-10 12:00 更新 <#t1> 颱風來襲")
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "短標題", shorten("短標題", 10))
	assert.Equal(t, "一二…", shorten("一二三四", 3))
}

func TestChannelChoices(t *testing.T) {
	names := map[string]string{"1": "news", "2": "gaming"}
	lookup := func(id string) string { return names[id] }

	all := channelChoices([]string{"1", "2", "3"}, lookup, "")
	require.Len(t, all, 3)
	assert.Equal(t, "#news", all[0].Name)
	assert.Equal(t, "1", all[0].Value)
	assert.Contains(t, all[2].Name, "3")

	filtered := channelChoices([]string{"1", "2", "3"}, lookup, "GAM")
	require.Len(t, filtered, 1)
	assert.Equal(t, "2", filtered[0].Value)

	many := make([]string, 40)
	for i := range many {
		many[i] = fmt.Sprint(i)
	}
	assert.Len(t, channelChoices(many, lookup, ""), maxChoices)
}

func TestParseChannelID(t *testing.T) {
	assert.Equal(t, "123", parseChannelID(" <#123> "))
	assert.Equal(t, "456", parseChannelID("456"))
}
