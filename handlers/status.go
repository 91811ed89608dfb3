package handlers

import (
	"fmt"
	"strings"
	"time"

	"news-forum-bot/models"
	"news-forum-bot/pipeline"
)

type newsStatus struct {
	MemorySize int
	Channels   []string
	Run        models.RunStatus
	Counts     map[string]int
	Recent     []models.Publication
	Location   *time.Location
}

// maxStatusTitle keeps the /news_status reply under the message limit.
const maxStatusTitle = 60

func formatNewsStatus(st newsStatus) string {
	loc := st.Location
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder
	b.WriteString("📊 **新聞機器人狀態**\n")
	fmt.Fprintf(&b, "記憶中的新聞：%d 則\n", st.MemorySize)

	if len(st.Channels) == 0 {
		b.WriteString("發布頻道：尚未設定，請使用 /add_forum_channel\n")
	} else {
		mentions := make([]string, len(st.Channels))
		for i, id := range st.Channels {
			mentions[i] = "<#" + id + ">"
		}
		fmt.Fprintf(&b, "發布頻道：%s\n", strings.Join(mentions, " "))
	}

	if st.Run.LastRun == nil {
		b.WriteString("上次執行：尚無紀錄\n")
	} else {
		run := st.Run.LastRun
		fmt.Fprintf(&b, "上次執行：%s（%s，共 %d 次）\n", run.StartedAt.In(loc).Format(time.DateTime), run.Trigger, st.Run.TotalRuns)
		fmt.Fprintf(&b, "> %s\n", pipeline.Summary(*run))
		if run.Error != "" {
			fmt.Fprintf(&b, "> ⚠️ %s\n", run.Error)
		}
	}

	fmt.Fprintf(&b, "過去 24 小時：新建 %d 篇，更新 %d 篇\n", st.Counts[models.ActionCreate], st.Counts[models.ActionUpdate])

	if len(st.Recent) > 0 {
		b.WriteString("最近發布：\n")
		for _, p := range st.Recent {
			action := "新建"
			if p.Action == models.ActionUpdate {
				action = "更新"
			}
			when := time.Unix(p.Timestamp, 0).In(loc).Format("01-02 15:04")
			fmt.Fprintf(&b, "- %s %s <#%s> %s\n", when, action, p.ThreadID, shorten(p.Title, maxStatusTitle))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func shorten(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
