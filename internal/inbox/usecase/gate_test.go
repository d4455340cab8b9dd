package usecase

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	authdomain "github.com/taskosaur/mailroom/internal/auth/domain"
	"github.com/taskosaur/mailroom/internal/inbox/domain"
	"github.com/taskosaur/mailroom/internal/inbox/parser"
	"github.com/taskosaur/mailroom/internal/inbox/repository"
	taskdomain "github.com/taskosaur/mailroom/internal/task/domain"
	"github.com/taskosaur/mailroom/pkg/storage"
)

// setupTestDB creates a temp sqlite database with every model migrated.
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "inbox_usecase_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tempDir, "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to open database: %v", err)
	}

	if err := db.AutoMigrate(
		&authdomain.User{},
		&domain.Inbox{},
		&domain.MailAccount{},
		&domain.InboxMessage{},
		&domain.MessageAttachment{},
		&domain.Rule{},
		&domain.SyncLog{},
		&taskdomain.Project{},
		&taskdomain.Sprint{},
		&taskdomain.Task{},
		&taskdomain.TaskComment{},
		&taskdomain.TaskAttachment{},
		&taskdomain.OrganizationMember{},
		&taskdomain.WorkspaceMember{},
		&taskdomain.ProjectMember{},
	); err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to migrate: %v", err)
	}

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		os.RemoveAll(tempDir)
	}
	return db, cleanup
}

func newTestStore(t *testing.T) storage.BlobStore {
	t.Helper()
	store, err := storage.NewDiskStore(t.TempDir(), "http://localhost/files")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func normalizedMessage(messageID string) *parser.NormalizedMessage {
	return &parser.NormalizedMessage{
		MessageID: messageID,
		Subject:   "Bug report",
		From:      parser.Address{Name: "Jane Doe", Email: "jane@example.com"},
		To:        []parser.Address{{Email: "support@example.com"}},
		Text:      "Login is broken.",
		Date:      time.Now(),
		UID:       1,
	}
}

func TestGateAdmitIsIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	messages := repository.NewMessageRepository(db)
	gate := NewGate(messages, newTestStore(t))

	first, fresh, err := gate.Admit("run-1", "inbox-1", "m1@example.com", normalizedMessage("m1@example.com"))
	if err != nil {
		t.Fatalf("first Admit() error: %v", err)
	}
	if !fresh {
		t.Fatal("first Admit() should report fresh")
	}

	second, fresh, err := gate.Admit("run-2", "inbox-1", "m1@example.com", normalizedMessage("m1@example.com"))
	if err != nil {
		t.Fatalf("second Admit() error: %v", err)
	}
	if fresh {
		t.Error("second Admit() must not report fresh")
	}
	if second.ID != first.ID {
		t.Errorf("second Admit() returned id %s, want the original %s", second.ID, first.ID)
	}

	var count int64
	db.Model(&domain.InboxMessage{}).Where("message_id = ?", "m1@example.com").Count(&count)
	if count != 1 {
		t.Errorf("stored %d rows for one message-id, want 1", count)
	}
}

func TestGateAdmitStoresFields(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	messages := repository.NewMessageRepository(db)
	gate := NewGate(messages, newTestStore(t))

	nm := normalizedMessage("m2@example.com")
	nm.InReplyTo = "m1@example.com"
	nm.References = []string{"m0@example.com", "m1@example.com"}
	nm.Cc = []parser.Address{{Email: "ops@example.com"}, {Email: "dev@example.com"}}

	msg, _, err := gate.Admit("run-1", "inbox-1", "m0@example.com", nm)
	if err != nil {
		t.Fatalf("Admit() error: %v", err)
	}

	if msg.ThreadID != "m0@example.com" {
		t.Errorf("ThreadID = %q, want m0@example.com", msg.ThreadID)
	}
	if msg.References != "m0@example.com m1@example.com" {
		t.Errorf("References = %q", msg.References)
	}
	if msg.CcEmails != "ops@example.com,dev@example.com" {
		t.Errorf("CcEmails = %q", msg.CcEmails)
	}
	if msg.Status != domain.MessageStatusPending {
		t.Errorf("Status = %q, want PENDING", msg.Status)
	}
}

func TestGateAdmitSavesAttachments(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	messages := repository.NewMessageRepository(db)
	gate := NewGate(messages, newTestStore(t))

	nm := normalizedMessage("m3@example.com")
	nm.Attachments = []*parser.Attachment{
		{Filename: "shot.png", MimeType: "image/png", Size: 4, Data: []byte{1, 2, 3, 4}},
	}

	msg, _, err := gate.Admit("run-1", "inbox-1", "m3@example.com", nm)
	if err != nil {
		t.Fatalf("Admit() error: %v", err)
	}
	if !msg.HasAttachments {
		t.Error("HasAttachments = false, want true")
	}

	atts, err := messages.AttachmentsByMessage(msg.ID)
	if err != nil {
		t.Fatalf("AttachmentsByMessage() error: %v", err)
	}
	if len(atts) != 1 {
		t.Fatalf("stored %d attachments, want 1", len(atts))
	}
	if atts[0].Filename != "shot.png" || atts[0].StorageKey == "" {
		t.Errorf("attachment row = %+v", atts[0])
	}
}
