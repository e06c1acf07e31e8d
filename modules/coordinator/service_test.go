package coordinator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/AnthonyVillarreal2001/chat-espe-backend/domain/chat"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/registry"
)

// memLocker is an in-memory Locker with the same atomicity contract as the
// Redis-backed store.
type memLocker struct {
	mu     sync.Mutex
	locks  map[string]string
	failAt string // key that errors instead of locking
}

func newMemLocker() *memLocker {
	return &memLocker{locks: make(map[string]string)}
}

func (l *memLocker) key(roomID, origin string) string {
	return origin + ":" + roomID
}

func (l *memLocker) TryAcquire(_ context.Context, roomID, origin, holder string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := l.key(roomID, origin)
	if key == l.failAt {
		return false, errors.New("lock store unavailable")
	}
	if _, held := l.locks[key]; held {
		return false, nil
	}
	l.locks[key] = holder
	return true, nil
}

func (l *memLocker) Release(_ context.Context, roomID, origin string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, l.key(roomID, origin))
	return nil
}

func (l *memLocker) held(roomID, origin string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.locks[l.key(roomID, origin)]
	return ok
}

// memDirectory verifies PINs against a fixed table.
type memDirectory struct {
	pins map[string]string // roomID -> pin
}

func (d *memDirectory) VerifyPin(roomID, pin string) bool {
	want, ok := d.pins[roomID]
	return ok && want == pin
}

// memRecorder stores session records, optionally failing inserts.
type memRecorder struct {
	mu      sync.Mutex
	recs    map[string]*chat.SessionRecord
	failing bool
}

func newMemRecorder() *memRecorder {
	return &memRecorder{recs: make(map[string]*chat.SessionRecord)}
}

func (r *memRecorder) Insert(rec *chat.SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("store unavailable")
	}
	r.recs[rec.ConnID] = rec
	return nil
}

func (r *memRecorder) DeleteByConn(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.recs, connID)
	return nil
}

func (r *memRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.recs)
}

// memHistory serves a fixed history, optionally failing.
type memHistory struct {
	msgs    []chat.Message
	failing bool
}

func (h *memHistory) History(roomID string, limit int) ([]chat.Message, error) {
	if h.failing {
		return nil, errors.New("store unavailable")
	}
	return h.msgs, nil
}

// recordingBroadcaster captures fan-out calls; safe for concurrent joins.
type recordingBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
}

type broadcastCall struct {
	roomID  string
	event   string
	payload any
}

func (b *recordingBroadcaster) BroadcastToRoom(roomID, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, broadcastCall{roomID, event, payload})
}

func (b *recordingBroadcaster) events() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.calls))
	for i, c := range b.calls {
		out[i] = c.event
	}
	return out
}

type fixture struct {
	svc     *Service
	locks   *memLocker
	reg     *registry.Registry
	records *memRecorder
	history *memHistory
	cast    *recordingBroadcaster
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	locks := newMemLocker()
	reg := registry.New()
	records := newMemRecorder()
	history := &memHistory{msgs: []chat.Message{{Username: "old", Body: "earlier"}}}
	cast := &recordingBroadcaster{}
	dir := &memDirectory{pins: map[string]string{"room0001": "1234"}}

	return &fixture{
		svc:     NewService(dir, locks, reg, records, history, cast),
		locks:   locks,
		reg:     reg,
		records: records,
		history: history,
		cast:    cast,
	}
}

func TestJoinSuccess(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Join(context.Background(), "conn-1", "10.0.0.1", "room0001", "1234", "alice")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	if !reflect.DeepEqual(res.Roster, []string{"alice"}) {
		t.Errorf("roster = %v, want [alice]", res.Roster)
	}
	if len(res.History) != 1 || res.History[0].Body != "earlier" {
		t.Errorf("unexpected history: %+v", res.History)
	}
	if !f.locks.held("room0001", "10.0.0.1") {
		t.Error("presence lock not held after join")
	}
	if f.records.count() != 1 {
		t.Errorf("expected 1 session record, got %d", f.records.count())
	}
	if got := f.cast.events(); !reflect.DeepEqual(got, []string{EventJoined, EventUserList}) {
		t.Errorf("broadcast events = %v, want [joined user_list]", got)
	}
}

func TestJoinWrongPin(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Join(context.Background(), "conn-1", "10.0.0.1", "room0001", "9999", "alice")
	if !errors.Is(err, ErrInvalidPin) {
		t.Fatalf("expected ErrInvalidPin, got %v", err)
	}

	assertNoSideEffects(t, f)
}

func TestJoinUnknownRoom(t *testing.T) {
	f := newFixture(t)

	// An unknown room fails the PIN check; the caller cannot tell it apart
	// from a wrong PIN.
	_, err := f.svc.Join(context.Background(), "conn-1", "10.0.0.1", "nosuchrm", "1234", "alice")
	if !errors.Is(err, ErrInvalidPin) {
		t.Fatalf("expected ErrInvalidPin, got %v", err)
	}

	assertNoSideEffects(t, f)
}

func TestJoinInvalidNickname(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Join(context.Background(), "conn-1", "10.0.0.1", "room0001", "1234", "")
	if !errors.Is(err, chat.ErrNicknameEmpty) {
		t.Fatalf("expected ErrNicknameEmpty, got %v", err)
	}

	assertNoSideEffects(t, f)
}

func TestJoinSameOriginTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Join(ctx, "conn-1", "10.0.0.1", "room0001", "1234", "alice"); err != nil {
		t.Fatalf("first Join failed: %v", err)
	}

	_, err := f.svc.Join(ctx, "conn-2", "10.0.0.1", "room0001", "1234", "alice2")
	if !errors.Is(err, ErrOriginAlreadyJoined) {
		t.Fatalf("expected ErrOriginAlreadyJoined, got %v", err)
	}

	// The first session is untouched and no ghost session appeared.
	if f.reg.Len() != 1 {
		t.Errorf("expected 1 live session, got %d", f.reg.Len())
	}
	if !reflect.DeepEqual(f.reg.Roster("room0001"), []string{"alice"}) {
		t.Errorf("roster changed: %v", f.reg.Roster("room0001"))
	}
}

func TestJoinSameConnTwiceReleasesLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Join(ctx, "conn-1", "10.0.0.1", "room0001", "1234", "alice"); err != nil {
		t.Fatalf("first Join failed: %v", err)
	}

	// Same connection joining again from a different origin: the registry
	// rejects it, and the lock acquired for the failed attempt must be
	// rolled back so the new origin is not blocked forever.
	_, err := f.svc.Join(ctx, "conn-1", "10.0.0.2", "room0001", "1234", "alice")
	if !errors.Is(err, registry.ErrAlreadyJoined) {
		t.Fatalf("expected ErrAlreadyJoined, got %v", err)
	}
	if f.locks.held("room0001", "10.0.0.2") {
		t.Error("lock for the rejected attempt was not released")
	}
	if !f.locks.held("room0001", "10.0.0.1") {
		t.Error("lock for the original session was lost")
	}
}

func TestJoinLockStoreUnavailable(t *testing.T) {
	f := newFixture(t)
	f.locks.failAt = "10.0.0.1:room0001"

	_, err := f.svc.Join(context.Background(), "conn-1", "10.0.0.1", "room0001", "1234", "alice")
	if err == nil || errors.Is(err, ErrOriginAlreadyJoined) {
		t.Fatalf("expected a distinct lock-store error, got %v", err)
	}
	if f.reg.Len() != 0 {
		t.Error("session registered despite lock failure")
	}
}

func TestJoinSurvivesRecordFailure(t *testing.T) {
	f := newFixture(t)
	f.records.failing = true

	res, err := f.svc.Join(context.Background(), "conn-1", "10.0.0.1", "room0001", "1234", "alice")
	if err != nil {
		t.Fatalf("Join failed despite best-effort record: %v", err)
	}
	if !reflect.DeepEqual(res.Roster, []string{"alice"}) {
		t.Errorf("roster = %v, want [alice]", res.Roster)
	}
}

func TestJoinSurvivesHistoryFailure(t *testing.T) {
	f := newFixture(t)
	f.history.failing = true

	res, err := f.svc.Join(context.Background(), "conn-1", "10.0.0.1", "room0001", "1234", "alice")
	if err != nil {
		t.Fatalf("Join failed despite history being unavailable: %v", err)
	}
	if res.History != nil {
		t.Errorf("expected empty history, got %+v", res.History)
	}
}

func TestDisconnectCleansUpEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Join(ctx, "conn-1", "10.0.0.1", "room0001", "1234", "alice"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	f.svc.Disconnect(ctx, "conn-1")

	if f.reg.Len() != 0 {
		t.Error("session still registered after disconnect")
	}
	if f.locks.held("room0001", "10.0.0.1") {
		t.Error("presence lock still held after disconnect")
	}
	if f.records.count() != 0 {
		t.Error("session record still present after disconnect")
	}
	if got := f.cast.events(); !reflect.DeepEqual(got, []string{EventJoined, EventUserList, EventUserList}) {
		t.Errorf("broadcast events = %v", got)
	}

	// The origin can rejoin immediately.
	if _, err := f.svc.Join(ctx, "conn-2", "10.0.0.1", "room0001", "1234", "alice"); err != nil {
		t.Errorf("rejoin after disconnect failed: %v", err)
	}
}

func TestDisconnectUnknownConn(t *testing.T) {
	f := newFixture(t)

	// Connections that never completed a join produce disconnect events too.
	f.svc.Disconnect(context.Background(), "never-joined")

	if len(f.cast.events()) != 0 {
		t.Errorf("disconnect of unknown conn broadcast %v", f.cast.events())
	}
}

func TestConcurrentJoinsSameOrigin(t *testing.T) {
	f := newFixture(t)
	const attempts = 16

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Join(context.Background(),
				fmt.Sprintf("conn-%d", i), "10.0.0.1", "room0001", "1234", fmt.Sprintf("user-%d", i))
		}(i)
	}
	wg.Wait()

	var wins, rejections int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrOriginAlreadyJoined):
			rejections++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if wins != 1 {
		t.Errorf("expected exactly 1 winning join, got %d", wins)
	}
	if rejections != attempts-1 {
		t.Errorf("expected %d rejections, got %d", attempts-1, rejections)
	}
	if f.reg.Len() != 1 {
		t.Errorf("expected 1 live session, got %d", f.reg.Len())
	}
}

// assertNoSideEffects checks that a failed join left nothing behind.
func assertNoSideEffects(t *testing.T, f *fixture) {
	t.Helper()

	if f.reg.Len() != 0 {
		t.Error("failed join left a registered session")
	}
	if f.locks.held("room0001", "10.0.0.1") {
		t.Error("failed join left the presence lock held")
	}
	if f.records.count() != 0 {
		t.Error("failed join left a session record")
	}
	if len(f.cast.events()) != 0 {
		t.Errorf("failed join broadcast %v", f.cast.events())
	}
}
