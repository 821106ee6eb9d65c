package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

// memStore is an in-memory Store with real compare-and-swap semantics.
// beforeCAS, when set, runs at the start of CompareAndSet so tests can
// interleave a concurrent mutation between read and write.
type memStore struct {
	mu        sync.Mutex
	posts     map[uuid.UUID]*models.Post
	beforeCAS func()
	getErr    error
	casErr    error
}

func newMemStore(posts ...*models.Post) *memStore {
	s := &memStore{posts: make(map[uuid.UUID]*models.Post)}
	for _, p := range posts {
		cp := *p
		s.posts[p.ID] = &cp
	}
	return s
}

func (s *memStore) Get(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) CompareAndSet(ctx context.Context, id uuid.UUID, expected models.PostStatus, change models.StatusChange) (*models.Post, error) {
	if hook := s.beforeCAS; hook != nil {
		s.beforeCAS = nil
		hook()
	}
	if s.casErr != nil {
		return nil, s.casErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Status != expected {
		return nil, ErrConflict
	}

	p.Status = change.Status
	p.RejectedReason = change.RejectedReason
	p.ArchivedFrom = change.ArchivedFrom
	p.UpdatedAt = time.Now()

	cp := *p
	return &cp, nil
}

// stored returns the current stored copy for assertions.
func (s *memStore) stored(t *testing.T, id uuid.UUID) models.Post {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		t.Fatalf("post %s missing from store", id)
	}
	return *p
}

// recordingNotifier captures Notify calls on a channel so tests can wait
// for the post-commit goroutine.
type recordingNotifier struct {
	calls chan notifyCall
	err   error
}

type notifyCall struct {
	postID uuid.UUID
	status models.PostStatus
	reason string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{calls: make(chan notifyCall, 4)}
}

func (n *recordingNotifier) Notify(ctx context.Context, post *models.Post, newStatus models.PostStatus, reason string) error {
	n.calls <- notifyCall{postID: post.ID, status: newStatus, reason: reason}
	return n.err
}

func (n *recordingNotifier) waitForCall(t *testing.T) notifyCall {
	t.Helper()
	select {
	case c := <-n.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return notifyCall{}
	}
}

func (n *recordingNotifier) expectNoCall(t *testing.T) {
	t.Helper()
	select {
	case c := <-n.calls:
		t.Fatalf("unexpected notification: %+v", c)
	case <-time.After(100 * time.Millisecond):
	}
}

func newTestPost(author uuid.UUID, status models.PostStatus) *models.Post {
	now := time.Now().Add(-time.Hour)
	return &models.Post{
		ID:        uuid.New(),
		AuthorID:  author,
		Title:     "Test Post",
		Slug:      "test-post",
		Body:      "body",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRequestTransitionSubmitForReview(t *testing.T) {
	author := uuid.New()
	post := newTestPost(author, models.StatusDraft)
	store := newMemStore(post)
	svc := NewService(store, nil)

	updated, err := svc.RequestTransition(context.Background(), post.ID, models.StatusPendingReview, Actor{ID: author, Role: models.RoleAuthor}, "")
	if err != nil {
		t.Fatalf("RequestTransition: %v", err)
	}
	if updated.Status != models.StatusPendingReview {
		t.Errorf("status: got %s, want pending_review", updated.Status)
	}
	if !updated.UpdatedAt.After(post.UpdatedAt) {
		t.Error("updated_at was not advanced")
	}
	if got := store.stored(t, post.ID); got.Status != models.StatusPendingReview {
		t.Errorf("stored status: got %s, want pending_review", got.Status)
	}
}

func TestRequestTransitionIllegalPairLeavesStatus(t *testing.T) {
	author := uuid.New()
	post := newTestPost(author, models.StatusDraft)
	store := newMemStore(post)
	svc := NewService(store, nil)

	_, err := svc.RequestTransition(context.Background(), post.ID, models.StatusApproved, Actor{ID: author, Role: models.RoleModerator}, "")

	var ite *IllegalTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
	if ite.From != models.StatusDraft || ite.To != models.StatusApproved {
		t.Errorf("error pair: got %s -> %s", ite.From, ite.To)
	}
	if got := store.stored(t, post.ID); got.Status != models.StatusDraft {
		t.Errorf("stored status changed to %s on illegal transition", got.Status)
	}
}

func TestRequestTransitionAuthorization(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	tests := []struct {
		name   string
		from   models.PostStatus
		to     models.PostStatus
		actor  Actor
		reason string
		want   error
	}{
		{"author cannot approve", models.StatusPendingReview, models.StatusApproved, Actor{ID: owner, Role: models.RoleAuthor}, "", ErrUnauthorized},
		{"author cannot reject own post", models.StatusPendingReview, models.StatusRejected, Actor{ID: owner, Role: models.RoleAuthor}, "r", ErrUnauthorized},
		{"stranger cannot submit", models.StatusDraft, models.StatusPendingReview, Actor{ID: stranger, Role: models.RoleAuthor}, "", ErrUnauthorized},
		{"moderator cannot submit another author's draft", models.StatusDraft, models.StatusPendingReview, Actor{ID: stranger, Role: models.RoleModerator}, "", ErrUnauthorized},
		{"stranger cannot restore from trash", models.StatusDeleted, models.StatusDraft, Actor{ID: stranger, Role: models.RoleModerator}, "", ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := newTestPost(owner, tt.from)
			store := newMemStore(post)
			svc := NewService(store, nil)

			_, err := svc.RequestTransition(context.Background(), post.ID, tt.to, tt.actor, tt.reason)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
			if got := store.stored(t, post.ID); got.Status != tt.from {
				t.Errorf("stored status changed to %s", got.Status)
			}
		})
	}
}

func TestModeratorCanTrashAnyPost(t *testing.T) {
	owner := uuid.New()
	moderator := uuid.New()
	post := newTestPost(owner, models.StatusApproved)
	store := newMemStore(post)
	svc := NewService(store, nil)

	updated, err := svc.RequestTransition(context.Background(), post.ID, models.StatusDeleted, Actor{ID: moderator, Role: models.RoleModerator}, "")
	if err != nil {
		t.Fatalf("RequestTransition: %v", err)
	}
	if updated.Status != models.StatusDeleted {
		t.Errorf("status: got %s, want deleted", updated.Status)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	author := uuid.New()
	post := newTestPost(author, models.StatusPendingReview)
	store := newMemStore(post)
	notifier := newRecordingNotifier()
	svc := NewService(store, notifier)
	moderator := Actor{ID: uuid.New(), Role: models.RoleModerator}

	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := svc.RequestTransition(context.Background(), post.ID, models.StatusRejected, moderator, reason)
		if !errors.Is(err, ErrMissingReason) {
			t.Errorf("reason %q: got %v, want ErrMissingReason", reason, err)
		}
	}

	if got := store.stored(t, post.ID); got.Status != models.StatusPendingReview {
		t.Errorf("stored status: got %s, want pending_review", got.Status)
	}
	notifier.expectNoCall(t)
}

func TestRejectStoresReasonAndResubmitClearsIt(t *testing.T) {
	author := uuid.New()
	post := newTestPost(author, models.StatusPendingReview)
	store := newMemStore(post)
	notifier := newRecordingNotifier()
	svc := NewService(store, notifier)

	updated, err := svc.RequestTransition(context.Background(), post.ID, models.StatusRejected, Actor{ID: uuid.New(), Role: models.RoleModerator}, "needs more detail")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if updated.RejectedReason == nil || *updated.RejectedReason != "needs more detail" {
		t.Fatalf("rejected_reason: got %v, want %q", updated.RejectedReason, "needs more detail")
	}

	call := notifier.waitForCall(t)
	if call.status != models.StatusRejected || call.reason != "needs more detail" {
		t.Errorf("notification: got %+v", call)
	}

	// Author resubmits — the reason must be cleared.
	resubmitted, err := svc.RequestTransition(context.Background(), post.ID, models.StatusPendingReview, Actor{ID: author, Role: models.RoleAuthor}, "")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resubmitted.Status != models.StatusPendingReview {
		t.Errorf("status: got %s, want pending_review", resubmitted.Status)
	}
	if resubmitted.RejectedReason != nil {
		t.Errorf("rejected_reason not cleared: %q", *resubmitted.RejectedReason)
	}
}

func TestApproveNotifiesAuthor(t *testing.T) {
	author := uuid.New()
	post := newTestPost(author, models.StatusPendingReview)
	store := newMemStore(post)
	notifier := newRecordingNotifier()
	svc := NewService(store, notifier)

	updated, err := svc.RequestTransition(context.Background(), post.ID, models.StatusApproved, Actor{ID: uuid.New(), Role: models.RoleAdmin}, "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if updated.Status != models.StatusApproved {
		t.Errorf("status: got %s, want approved", updated.Status)
	}

	call := notifier.waitForCall(t)
	if call.postID != post.ID || call.status != models.StatusApproved {
		t.Errorf("notification: got %+v", call)
	}
}

func TestNotifierFailureDoesNotRevertTransition(t *testing.T) {
	author := uuid.New()
	post := newTestPost(author, models.StatusPendingReview)
	store := newMemStore(post)
	notifier := newRecordingNotifier()
	notifier.err = errors.New("gateway down")
	svc := NewService(store, notifier)

	updated, err := svc.RequestTransition(context.Background(), post.ID, models.StatusApproved, Actor{ID: uuid.New(), Role: models.RoleModerator}, "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if updated.Status != models.StatusApproved {
		t.Errorf("status: got %s, want approved", updated.Status)
	}

	notifier.waitForCall(t)
	if got := store.stored(t, post.ID); got.Status != models.StatusApproved {
		t.Errorf("stored status: got %s, want approved", got.Status)
	}
}

func TestAuthorClassTransitionsDoNotNotify(t *testing.T) {
	author := uuid.New()
	post := newTestPost(author, models.StatusDraft)
	store := newMemStore(post)
	notifier := newRecordingNotifier()
	svc := NewService(store, notifier)

	if _, err := svc.RequestTransition(context.Background(), post.ID, models.StatusPendingReview, Actor{ID: author, Role: models.RoleAuthor}, ""); err != nil {
		t.Fatalf("submit: %v", err)
	}
	notifier.expectNoCall(t)
}

func TestArchiveRestoresPriorStatus(t *testing.T) {
	for _, prior := range []models.PostStatus{models.StatusApproved, models.StatusPrivate, models.StatusDraft} {
		author := uuid.New()
		post := newTestPost(author, prior)
		store := newMemStore(post)
		svc := NewService(store, nil)
		actor := Actor{ID: author, Role: models.RoleAuthor}

		archived, err := svc.RequestTransition(context.Background(), post.ID, models.StatusArchived, actor, "")
		if err != nil {
			t.Fatalf("archive from %s: %v", prior, err)
		}
		if archived.ArchivedFrom == nil || *archived.ArchivedFrom != prior {
			t.Fatalf("archived_from: got %v, want %s", archived.ArchivedFrom, prior)
		}

		restored, err := svc.RequestTransition(context.Background(), post.ID, prior, actor, "")
		if err != nil {
			t.Fatalf("unarchive to %s: %v", prior, err)
		}
		if restored.Status != prior {
			t.Errorf("restored status: got %s, want %s", restored.Status, prior)
		}
		if restored.ArchivedFrom != nil {
			t.Error("archived_from not cleared after unarchive")
		}
	}
}

func TestUnarchiveWithoutRecordFallsBackToDraft(t *testing.T) {
	author := uuid.New()
	post := newTestPost(author, models.StatusArchived)
	// No ArchivedFrom recorded — legacy row.
	store := newMemStore(post)
	svc := NewService(store, nil)

	restored, err := svc.RequestTransition(context.Background(), post.ID, models.StatusApproved, Actor{ID: author, Role: models.RoleAuthor}, "")
	if err != nil {
		t.Fatalf("unarchive: %v", err)
	}
	if restored.Status != models.StatusDraft {
		t.Errorf("status: got %s, want draft fallback", restored.Status)
	}
}

func TestRestoreFromTrashAlwaysDraft(t *testing.T) {
	author := uuid.New()
	post := newTestPost(author, models.StatusApproved)
	store := newMemStore(post)
	svc := NewService(store, nil)
	actor := Actor{ID: author, Role: models.RoleAuthor}

	if _, err := svc.RequestTransition(context.Background(), post.ID, models.StatusDeleted, actor, ""); err != nil {
		t.Fatalf("trash: %v", err)
	}

	restored, err := svc.RequestTransition(context.Background(), post.ID, models.StatusDraft, actor, "")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	// Restore lands on draft regardless of the pre-delete status.
	if restored.Status != models.StatusDraft {
		t.Errorf("status: got %s, want draft", restored.Status)
	}
}

func TestConcurrentTransitionConflicts(t *testing.T) {
	author := uuid.New()
	post := newTestPost(author, models.StatusPendingReview)
	store := newMemStore(post)
	svc := NewService(store, nil)
	moderator := Actor{ID: uuid.New(), Role: models.RoleModerator}

	// A second moderator rejects the post between our read and write.
	store.beforeCAS = func() {
		if _, err := svc.RequestTransition(context.Background(), post.ID, models.StatusRejected, moderator, "duplicate"); err != nil {
			t.Errorf("interleaved reject: %v", err)
		}
	}

	_, err := svc.RequestTransition(context.Background(), post.ID, models.StatusApproved, moderator, "")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}

	// Exactly one transition won.
	if got := store.stored(t, post.ID); got.Status != models.StatusRejected {
		t.Errorf("stored status: got %s, want rejected", got.Status)
	}
}

func TestRequestTransitionNotFound(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)

	_, err := svc.RequestTransition(context.Background(), uuid.New(), models.StatusPendingReview, Actor{ID: uuid.New(), Role: models.RoleAuthor}, "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestStorageFailureIsRetryable(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("connection refused")
	svc := NewService(store, nil)

	_, err := svc.RequestTransition(context.Background(), uuid.New(), models.StatusPendingReview, Actor{ID: uuid.New(), Role: models.RoleAuthor}, "")

	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("got %v, want StorageError", err)
	}
	if !Retryable(err) {
		t.Error("storage errors should be retryable")
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(ErrConflict) {
		t.Error("conflict should be retryable")
	}
	for _, err := range []error{ErrNotFound, ErrUnauthorized, ErrMissingReason, &IllegalTransitionError{From: models.StatusDraft, To: models.StatusApproved}} {
		if Retryable(err) {
			t.Errorf("%v should not be retryable", err)
		}
	}
}

// Full author/moderator round trip from the product flow: draft submitted,
// rejected with a reason, resubmitted with the reason cleared.
func TestSubmitRejectResubmitScenario(t *testing.T) {
	author := uuid.New()
	post := newTestPost(author, models.StatusDraft)
	store := newMemStore(post)
	notifier := newRecordingNotifier()
	svc := NewService(store, notifier)

	authorActor := Actor{ID: author, Role: models.RoleAuthor}
	modActor := Actor{ID: uuid.New(), Role: models.RoleModerator}

	submitted, err := svc.RequestTransition(context.Background(), post.ID, models.StatusPendingReview, authorActor, "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Status != models.StatusPendingReview {
		t.Fatalf("status after submit: %s", submitted.Status)
	}

	rejected, err := svc.RequestTransition(context.Background(), post.ID, models.StatusRejected, modActor, "needs more detail")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.StatusRejected || rejected.RejectedReason == nil || *rejected.RejectedReason != "needs more detail" {
		t.Fatalf("after reject: status=%s reason=%v", rejected.Status, rejected.RejectedReason)
	}

	resubmitted, err := svc.RequestTransition(context.Background(), post.ID, models.StatusPendingReview, authorActor, "")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resubmitted.Status != models.StatusPendingReview || resubmitted.RejectedReason != nil {
		t.Fatalf("after resubmit: status=%s reason=%v", resubmitted.Status, resubmitted.RejectedReason)
	}
}
