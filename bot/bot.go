package bot

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"news-forum-bot/config"
	"news-forum-bot/database"
	"news-forum-bot/forum"
	statusgrpc "news-forum-bot/grpc"
	"news-forum-bot/llm"
	"news-forum-bot/memory"
	"news-forum-bot/models"
	"news-forum-bot/pipeline"
	"news-forum-bot/similarity"
	"news-forum-bot/sources"
	"news-forum-bot/transform"
	"news-forum-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Command defines the interface for a bot command.
type Command interface {
	Definition() *discordgo.ApplicationCommand
}

// Bot encapsulates the bot's state.
type Bot struct {
	Session  *discordgo.Session
	Commands map[string]Command

	News     models.NewsConfig
	Forum    models.ForumConfig
	Location *time.Location
	Pipeline *pipeline.Pipeline
	LLM      *llm.Client
	Registry *forum.Registry
	Ledger   *database.Ledger
	Status   *database.StatusManager

	db        *sql.DB
	health    *statusgrpc.StatusServer
	logFile   *lumberjack.Logger
	scheduler *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewBot creates and initializes a new Bot instance.
func NewBot() (*Bot, error) {
	config.LoadConfig()
	logFile := utils.SetupLogOutput()

	token := viper.GetString("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("no bot token provided")
	}

	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	b := &Bot{
		Session:  dg,
		Commands: make(map[string]Command),
		logFile:  logFile,
	}
	if err := b.setup(); err != nil {
		b.close()
		return nil, err
	}
	return b, nil
}

// setup builds the news pipeline and its collaborators.
func (b *Bot) setup() error {
	news, err := config.News()
	if err != nil {
		return err
	}
	openaiConfig, err := config.OpenAI()
	if err != nil {
		return err
	}
	forumConfig, err := config.Forum()
	if err != nil {
		return err
	}
	b.News = news
	b.Forum = forumConfig
	b.Location = config.Location(news.Timezone)

	prompts, err := llm.LoadPrompts(openaiConfig.PromptsFile)
	if err != nil {
		return fmt.Errorf("error loading prompts: %w", err)
	}
	b.LLM = llm.NewClient(openaiConfig, prompts)

	processor := transform.NewProcessor(b.LLM)
	engine := forum.NewEngine(forum.NewDiscordBackend(b.Session), similarity.NewEngine(b.LLM), processor, news.SimilarityThreshold)

	b.db, err = database.InitDB(filepath.Join(news.DataFolder, "ledger.db"))
	if err != nil {
		return fmt.Errorf("error opening ledger: %w", err)
	}
	b.Ledger = database.NewLedger(b.db)
	engine.SetRecorder(b.Ledger)

	srcs, err := sources.New(news.Sources, sources.OptionsFromConfig(news, b.Location))
	if err != nil {
		return err
	}

	b.Registry = forum.LoadRegistry(filepath.Join(news.DataFolder, "forum_channels.json"))
	store := memory.NewStore(filepath.Join(news.DataFolder, "news_memory.json"))
	b.Pipeline = pipeline.New(srcs, store, b.Registry, processor, engine, news, b.Location)

	b.Status = database.NewStatusManager(filepath.Join(news.DataFolder, "status.json"))
	b.Pipeline.SetStatus(b.Status)

	if addr := viper.GetString("grpc.listen"); addr != "" {
		b.health = statusgrpc.NewStatusServer()
		if err := b.health.Start(addr); err != nil {
			return err
		}
		b.Pipeline.SetHealth(b.health)
	}

	log.Printf("News pipeline ready: %d sources, %d registered forum channels", len(srcs), len(b.Registry.Snapshot()))
	return nil
}

// Context is cancelled when the bot stops.
func (b *Bot) Context() context.Context {
	return b.ctx
}

// RegisterCommands registers the provided commands.
func (b *Bot) RegisterCommands(commands []Command) {
	for _, cmd := range commands {
		b.Commands[cmd.Definition().Name] = cmd
	}
}

// Start opens the bot's session and registers handlers.
func (b *Bot) Start(registerHandlers func(*Bot)) error {
	b.ctx, b.cancel = context.WithCancel(context.Background())
	registerHandlers(b)

	err := b.Session.Open()
	if err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	utils.InitLogger(b.Session)

	// Register slash commands
	for _, cmd := range b.Commands {
		_, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, "", cmd.Definition())
		if err != nil {
			log.Printf("Cannot create '%v' command: %v", cmd.Definition().Name, err)
		}
	}

	if err := b.startScheduler(); err != nil {
		return err
	}

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop gracefully closes the bot's session.
func (b *Bot) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.stopScheduler()
	if b.Session != nil {
		b.Session.Close()
	}
	b.close()
	fmt.Println("Bot stopped gracefully.")
}

func (b *Bot) close() {
	if b.health != nil {
		b.health.Stop()
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			log.Printf("Error closing ledger: %v", err)
		}
	}
	if b.logFile != nil {
		b.logFile.Close()
	}
}

// Run is the main entry point for the bot application.
func Run(registerHandlers func(*Bot), commands []Command) {
	bot, err := NewBot()
	if err != nil {
		log.Fatalf("Error initializing bot: %v", err)
	}

	bot.RegisterCommands(commands)

	if err := bot.Start(registerHandlers); err != nil {
		log.Fatalf("Error starting bot: %v", err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	bot.Stop()
}
