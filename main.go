package main

import (
	"log"

	api "github.com/taskosaur/mailroom/cmd/api"
	authdomain "github.com/taskosaur/mailroom/internal/auth/domain"
	authRepo "github.com/taskosaur/mailroom/internal/auth/repository"
	inboxdomain "github.com/taskosaur/mailroom/internal/inbox/domain"
	inboxRepo "github.com/taskosaur/mailroom/internal/inbox/repository"
	"github.com/taskosaur/mailroom/internal/inbox/scheduler"
	inboxUsecase "github.com/taskosaur/mailroom/internal/inbox/usecase"
	taskdomain "github.com/taskosaur/mailroom/internal/task/domain"
	taskRepo "github.com/taskosaur/mailroom/internal/task/repository"
	taskUsecase "github.com/taskosaur/mailroom/internal/task/usecase"
	"github.com/taskosaur/mailroom/pkg/config"
	"github.com/taskosaur/mailroom/pkg/database"
	"github.com/taskosaur/mailroom/pkg/imap"
	"github.com/taskosaur/mailroom/pkg/queue"
	"github.com/taskosaur/mailroom/pkg/smtp"
	"github.com/taskosaur/mailroom/pkg/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&inboxdomain.Inbox{},
		&inboxdomain.MailAccount{},
		&inboxdomain.InboxMessage{},
		&inboxdomain.MessageAttachment{},
		&inboxdomain.Rule{},
		&inboxdomain.SyncLog{},
		&taskdomain.Project{},
		&taskdomain.Sprint{},
		&taskdomain.Task{},
		&taskdomain.TaskComment{},
		&taskdomain.TaskAttachment{},
		&taskdomain.OrganizationMember{},
		&taskdomain.WorkspaceMember{},
		&taskdomain.ProjectMember{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize attachment storage
	store, err := storage.NewDiskStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	inboxRepository := inboxRepo.NewInboxRepository(db)
	accountRepository := inboxRepo.NewMailAccountRepository(db)
	messageRepository := inboxRepo.NewMessageRepository(db)
	ruleRepository := inboxRepo.NewRuleRepository(db)
	syncLogRepository := inboxRepo.NewSyncLogRepository(db)
	taskRepository := taskRepo.NewTaskRepository(db)
	commentRepository := taskRepo.NewCommentRepository(db)
	taskAttachmentRepository := taskRepo.NewTaskAttachmentRepository(db)
	projectRepository := taskRepo.NewProjectRepository(db)
	sprintRepository := taskRepo.NewSprintRepository(db)
	memberRepository := taskRepo.NewMemberRepository(db)

	// Initialize use cases (dependency injection)
	accountResolver := taskUsecase.NewAccountResolver(userRepository, projectRepository, memberRepository)
	materializer := taskUsecase.NewMaterializer(
		taskRepository,
		commentRepository,
		taskAttachmentRepository,
		projectRepository,
		sprintRepository,
		memberRepository,
		messageRepository,
		store,
		accountResolver,
	)
	gate := inboxUsecase.NewGate(messageRepository, store)

	timeouts := imap.Timeouts{
		Dial:   cfg.IMAPDialTimeout,
		Fetch:  cfg.IMAPFetchTimeout,
		Logout: cfg.IMAPLogoutTimeout,
	}
	orchestrator := inboxUsecase.NewOrchestrator(
		inboxRepository,
		accountRepository,
		messageRepository,
		ruleRepository,
		syncLogRepository,
		gate,
		materializer,
		smtp.NewSender(),
		inboxUsecase.OpenIMAPSession,
		cfg.EncryptionKey,
		timeouts,
	)
	queries := inboxUsecase.NewQueries(inboxRepository, accountRepository, messageRepository, syncLogRepository)

	// Start the sync job runner and scheduler
	runner := queue.NewRunner(orchestrator.Handle, cfg.SyncJobConcurrency, cfg.SyncJobConcurrency*4)
	defer runner.Stop()

	sched := scheduler.NewScheduler(accountRepository, inboxRepository, runner, cfg.SchedulerInterval)
	sched.Start()
	defer sched.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(cfg, runner, queries)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
