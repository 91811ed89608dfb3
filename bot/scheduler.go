package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"news-forum-bot/llm"
	"news-forum-bot/pipeline"
	"news-forum-bot/utils"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// statusTimeout bounds one presence rotation.
const statusTimeout = 30 * time.Second

// startScheduler starts the cron jobs.
func (b *Bot) startScheduler() error {
	log.Println("Initializing scheduler...")
	b.scheduler = cron.New(
		cron.WithLocation(b.Location),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	interval := b.News.FetchInterval()
	if _, err := b.scheduler.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		b.runPipeline(pipeline.TriggerScheduled)
	}); err != nil {
		return fmt.Errorf("could not set up fetch job: %w", err)
	}

	if minutes := viper.GetInt("bot.statusRotateMinutes"); minutes > 0 {
		if _, err := b.scheduler.AddFunc(fmt.Sprintf("@every %dm", minutes), b.rotateStatus); err != nil {
			return fmt.Errorf("could not set up status job: %w", err)
		}
	}

	if _, err := b.scheduler.AddFunc("@daily", b.cleanupLedger); err != nil {
		return fmt.Errorf("could not set up cleanup job: %w", err)
	}

	b.scheduler.Start()
	log.Printf("Cron job scheduled to fetch news every %s.", interval)

	// Perform an initial run on startup based on config.
	if viper.GetBool("bot.FetchAtStartup") {
		go func() {
			log.Println("Performing initial news run on startup...")
			b.runPipeline(pipeline.TriggerStartup)
			b.rotateStatus()
		}()
	} else {
		log.Println("Skipping initial news run on startup as per configuration.")
	}
	return nil
}

// stopScheduler stops the cron jobs and waits for running ones.
func (b *Bot) stopScheduler() {
	if b.scheduler == nil {
		return
	}
	<-b.scheduler.Stop().Done()
	log.Println("Scheduler stopped.")
}

func (b *Bot) runPipeline(trigger string) {
	_, err := b.Pipeline.Run(b.ctx, trigger)
	if errors.Is(err, pipeline.ErrRunInProgress) {
		log.Printf("Skipping %s run: %v", trigger, err)
	}
}

// rotateStatus picks a remembered headline and turns it into the bot's presence.
func (b *Bot) rotateStatus() {
	records := b.Pipeline.Memory()
	if len(records) == 0 {
		return
	}
	title := records[rand.Intn(len(records))].Title

	ctx, cancel := context.WithTimeout(b.ctx, statusTimeout)
	defer cancel()
	line, err := b.LLM.StatusLine(ctx, title)
	if err != nil {
		log.Printf("Error generating status line: %v", err)
		return
	}

	text, game := llm.ParseStatus(line)
	if text == "" {
		return
	}
	if game {
		err = b.Session.UpdateGameStatus(0, text)
	} else {
		err = b.Session.UpdateCustomStatus(text)
	}
	if err != nil {
		log.Printf("Error updating status: %v", err)
	}
}

func (b *Bot) cleanupLedger() {
	if _, err := b.Ledger.CleanupOldPublications(time.Now()); err != nil {
		log.Printf("Error cleaning up ledger: %v", err)
		utils.Error("Scheduler", "CleanupLedger", err.Error())
	}
}
