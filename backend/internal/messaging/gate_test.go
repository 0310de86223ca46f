package messaging

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"tsunagu/backend/internal/directory"
	"tsunagu/backend/internal/friends"
	"tsunagu/backend/internal/store"
	"tsunagu/backend/pkg/apperrors"
)

// Integration tests require a running Neo4j instance at
// bolt://localhost:7687 with neo4j/password credentials.
// Run with -short to skip them.

func createTestStore(t *testing.T) *store.Neo4jStore {
	t.Helper()

	st, err := store.Open(context.Background(), "bolt://localhost:7687", "neo4j", "password")
	if err != nil {
		t.Fatalf("Failed to connect to Neo4j: %v", err)
	}
	return st
}

func createTestUser(t *testing.T, ctx context.Context, st *store.Neo4jStore, dir *directory.Directory) *directory.User {
	t.Helper()

	email := "test-" + uuid.New().String() + "@example.com"
	user, err := dir.GetOrCreate(ctx, email, "")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	t.Cleanup(func() {
		_, _ = st.ExecuteWrite(ctx, func(ctx context.Context, tx store.Tx) (any, error) {
			return tx.Run(ctx, `
				MATCH (u:User {id: $id})
				OPTIONAL MATCH (u)-[:SENT_REQUEST|SENT]->(n)
				DETACH DELETE u, n
			`, map[string]any{"id": user.ID})
		})
	})
	return user
}

func setAcceptFrom(t *testing.T, ctx context.Context, dir *directory.Directory, userID string, policy directory.AcceptFrom) {
	t.Helper()

	_, err := dir.UpdateMessageSettings(ctx, userID, directory.SettingsUpdate{AcceptFrom: &policy})
	if err != nil {
		t.Fatalf("UpdateMessageSettings failed: %v", err)
	}
}

func befriendUsers(t *testing.T, ctx context.Context, engine *friends.Engine, fromID, toID string) {
	t.Helper()

	request, err := engine.CreateFriendRequest(ctx, fromID, toID, "")
	if err != nil {
		t.Fatalf("CreateFriendRequest failed: %v", err)
	}
	accepted, err := engine.AcceptFriendRequest(ctx, request.ID)
	if err != nil {
		t.Fatalf("AcceptFriendRequest failed: %v", err)
	}
	if !accepted {
		t.Fatal("Expected request to be accepted")
	}
}

func TestSendMessageQuery_PatternPredicates(t *testing.T) {
	// exists(<pattern>) was removed in Neo4j 5; the predicate must stay on
	// bare pattern form, which both 4.x and 5.x parse
	if strings.Contains(sendMessageQuery, "EXISTS((") {
		t.Error("Send predicate uses the removed exists() function form")
	}
	for _, pattern := range []string{
		"(sender)-[:ADDED_AS_FRIEND]->(recipient)",
		"NOT (recipient)-[:BLOCKED]->(sender)",
	} {
		if !strings.Contains(sendMessageQuery, pattern) {
			t.Errorf("Send predicate is missing pattern %q", pattern)
		}
	}
}

func TestGate_SendMessage_Validation(t *testing.T) {
	ctx := context.Background()
	gate := NewGate(nil)

	if _, err := gate.SendMessage(ctx, "u1", "", "hi"); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("Expected validation error for empty recipient, got %v", err)
	}
	if _, err := gate.SendMessage(ctx, "u1", "u1", "hi"); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("Expected validation error for self-message, got %v", err)
	}
	if _, err := gate.SendMessage(ctx, "u1", "u2", ""); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("Expected validation error for empty content, got %v", err)
	}
}

func TestGate_SendMessage_PolicyAll(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	st := createTestStore(t)
	defer st.Close(ctx)

	dir := directory.New(st)
	gate := NewGate(st)

	sender := createTestUser(t, ctx, st, dir)
	recipient := createTestUser(t, ctx, st, dir)

	// New users default to accepting from everyone
	message, err := gate.SendMessage(ctx, sender.ID, recipient.ID, "hello there")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if message.Content != "hello there" {
		t.Errorf("Expected content 'hello there', got %q", message.Content)
	}
	if message.Read {
		t.Error("Expected new message to be unread")
	}
	if message.SenderID != sender.ID || message.RecipientID != recipient.ID {
		t.Errorf("Message endpoints wrong: %s -> %s", message.SenderID, message.RecipientID)
	}
	if message.SenderName != sender.Username {
		t.Errorf("Expected sender name %q, got %q", sender.Username, message.SenderName)
	}
}

func TestGate_SendMessage_FriendsOnly(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	st := createTestStore(t)
	defer st.Close(ctx)

	dir := directory.New(st)
	engine := friends.NewEngine(st)
	gate := NewGate(st)

	sender := createTestUser(t, ctx, st, dir)
	recipient := createTestUser(t, ctx, st, dir)
	setAcceptFrom(t, ctx, dir, recipient.ID, directory.AcceptFromFriendsOnly)

	// Not friends yet: denied
	_, err := gate.SendMessage(ctx, sender.ID, recipient.ID, "hi stranger")
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("Expected forbidden error for non-friend sender, got %v", err)
	}

	befriendUsers(t, ctx, engine, sender.ID, recipient.ID)

	if _, err := gate.SendMessage(ctx, sender.ID, recipient.ID, "hi friend"); err != nil {
		t.Fatalf("SendMessage between friends failed: %v", err)
	}
}

func TestGate_SendMessage_PolicyNone(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	st := createTestStore(t)
	defer st.Close(ctx)

	dir := directory.New(st)
	engine := friends.NewEngine(st)
	gate := NewGate(st)

	sender := createTestUser(t, ctx, st, dir)
	recipient := createTestUser(t, ctx, st, dir)
	befriendUsers(t, ctx, engine, sender.ID, recipient.ID)
	setAcceptFrom(t, ctx, dir, recipient.ID, directory.AcceptFromNone)

	// 'none' denies even friends
	_, err := gate.SendMessage(ctx, sender.ID, recipient.ID, "hi")
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("Expected forbidden error under policy none, got %v", err)
	}
}

func TestGate_SendMessage_Blocked(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	st := createTestStore(t)
	defer st.Close(ctx)

	dir := directory.New(st)
	engine := friends.NewEngine(st)
	gate := NewGate(st)

	sender := createTestUser(t, ctx, st, dir)
	recipient := createTestUser(t, ctx, st, dir)

	if err := engine.BlockUser(ctx, recipient.ID, sender.ID); err != nil {
		t.Fatalf("BlockUser failed: %v", err)
	}

	// Block overrides the open acceptance policy
	_, err := gate.SendMessage(ctx, sender.ID, recipient.ID, "hi")
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("Expected forbidden error from blocked sender, got %v", err)
	}

	// The block is directional: the blocker can still message
	if _, err := gate.SendMessage(ctx, recipient.ID, sender.ID, "still works"); err != nil {
		t.Fatalf("SendMessage from blocker failed: %v", err)
	}

	if err := engine.UnblockUser(ctx, recipient.ID, sender.ID); err != nil {
		t.Fatalf("UnblockUser failed: %v", err)
	}
	if _, err := gate.SendMessage(ctx, sender.ID, recipient.ID, "unblocked"); err != nil {
		t.Fatalf("SendMessage after unblock failed: %v", err)
	}
}

func TestGate_GetMessages_MarksRead(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	st := createTestStore(t)
	defer st.Close(ctx)

	dir := directory.New(st)
	gate := NewGate(st)

	a := createTestUser(t, ctx, st, dir)
	b := createTestUser(t, ctx, st, dir)

	if _, err := gate.SendMessage(ctx, b.ID, a.ID, "first"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if _, err := gate.SendMessage(ctx, b.ID, a.ID, "second"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	threads, err := gate.GetConversations(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	if len(threads) != 1 {
		t.Fatalf("Expected 1 conversation, got %d", len(threads))
	}
	if threads[0].UserID != b.ID {
		t.Errorf("Expected conversation with b, got %s", threads[0].UserID)
	}
	if threads[0].UnreadCount != 2 {
		t.Errorf("Expected 2 unread messages, got %d", threads[0].UnreadCount)
	}
	if threads[0].LastMessage != "second" {
		t.Errorf("Expected last message 'second', got %q", threads[0].LastMessage)
	}

	// Fetching the thread returns oldest first and marks it read
	messages, err := gate.GetMessages(ctx, a.ID, b.ID, 0)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[0].Content != "first" || messages[1].Content != "second" {
		t.Errorf("Expected oldest-first order, got %q then %q", messages[0].Content, messages[1].Content)
	}

	threads, err = gate.GetConversations(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	if len(threads) != 1 {
		t.Fatalf("Expected 1 conversation, got %d", len(threads))
	}
	if threads[0].UnreadCount != 0 {
		t.Errorf("Expected 0 unread after viewing, got %d", threads[0].UnreadCount)
	}
}

func TestGate_GetMessages_DoesNotMarkOwnUnread(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	st := createTestStore(t)
	defer st.Close(ctx)

	dir := directory.New(st)
	gate := NewGate(st)

	a := createTestUser(t, ctx, st, dir)
	b := createTestUser(t, ctx, st, dir)

	if _, err := gate.SendMessage(ctx, a.ID, b.ID, "from a"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	// The sender viewing the thread must not consume the recipient's unread
	if _, err := gate.GetMessages(ctx, a.ID, b.ID, 0); err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}

	threads, err := gate.GetConversations(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetConversations failed: %v", err)
	}
	if len(threads) != 1 {
		t.Fatalf("Expected 1 conversation, got %d", len(threads))
	}
	if threads[0].UnreadCount != 1 {
		t.Errorf("Expected b to still have 1 unread, got %d", threads[0].UnreadCount)
	}
}

func TestGate_MarkAsRead(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	st := createTestStore(t)
	defer st.Close(ctx)

	dir := directory.New(st)
	gate := NewGate(st)

	a := createTestUser(t, ctx, st, dir)
	b := createTestUser(t, ctx, st, dir)

	message, err := gate.SendMessage(ctx, a.ID, b.ID, "hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	// Only the recipient can mark the message read
	marked, err := gate.MarkAsRead(ctx, message.ID, a.ID)
	if err != nil {
		t.Fatalf("MarkAsRead failed: %v", err)
	}
	if marked {
		t.Error("Expected sender's mark-as-read to return false")
	}

	marked, err = gate.MarkAsRead(ctx, message.ID, b.ID)
	if err != nil {
		t.Fatalf("MarkAsRead failed: %v", err)
	}
	if !marked {
		t.Error("Expected recipient's mark-as-read to return true")
	}

	marked, err = gate.MarkAsRead(ctx, "no-such-message", b.ID)
	if err != nil {
		t.Fatalf("MarkAsRead failed: %v", err)
	}
	if marked {
		t.Error("Expected mark-as-read of unknown message to return false")
	}
}
