package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// defaultMarkerTTL is how long a marker lives before the emitter removes
// it. Long enough for watchers to pick it up, short enough that repeated
// emits never accumulate stale keys.
const defaultMarkerTTL = time.Second

// Broadcast mirrors signals across processes through self-clearing marker
// files in a shared directory. A process that is not running when a marker
// is written simply misses it; that is fine, because every view reloads in
// full on startup.
type Broadcast struct {
	dir     string
	sender  string
	ttl     time.Duration
	log     *logrus.Logger
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer // marker path -> cleanup timer
	wg      sync.WaitGroup         // one count per live cleanup timer
	closed  bool
}

// marker is the JSON written to a marker file. The sender field lets a
// process skip the markers it wrote itself, which its own bus already
// delivered.
type marker struct {
	ID     string `json:"id"`
	T      int64  `json:"t"`
	Sender string `json:"sender"`
}

// NewBroadcast opens the shared broadcast directory, creating it if needed.
func NewBroadcast(dir string, log *logrus.Logger) (*Broadcast, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create broadcast directory: %w", err)
	}

	// Crypto entropy: two processes starting in the same instant must
	// still get distinct sender ids, or they would filter each other's
	// markers as their own.
	sender := ulid.Make().String()

	return &Broadcast{
		dir:     dir,
		sender:  sender,
		ttl:     defaultMarkerTTL,
		log:     log,
		pending: make(map[string]*time.Timer),
	}, nil
}

// markerKey maps a signal to its marker file name, e.g. "issue:updated".
func markerKey(sig Signal) string {
	verb := sig.Verb
	if verb == "" {
		verb = VerbUpdated
	}
	return fmt.Sprintf("%s:%s", sig.Kind, verb)
}

// parseMarkerKey is the inverse of markerKey. ok is false for unrelated
// files in the directory.
func parseMarkerKey(name string) (Kind, Verb, bool) {
	kind, verb, found := strings.Cut(name, ":")
	if !found {
		return "", "", false
	}
	k := Kind(kind)
	v := Verb(verb)
	if k != KindIssue && k != KindProject {
		return "", "", false
	}
	if v != VerbCreated && v != VerbUpdated {
		return "", "", false
	}
	return k, v, true
}

// Publish writes the marker for sig and schedules its removal after the
// TTL. Failure to publish is not fatal to the emitting operation.
func (b *Broadcast) Publish(sig Signal) error {
	m := marker{ID: sig.ID, T: sig.At.UnixMilli(), Sender: b.sender}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode marker: %w", err)
	}

	path := filepath.Join(b.dir, markerKey(sig))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		_ = os.Remove(path)
		return nil
	}
	if t, ok := b.pending[path]; ok && t.Stop() {
		b.wg.Done()
	}
	b.wg.Add(1)
	b.pending[path] = time.AfterFunc(b.ttl, func() {
		_ = os.Remove(path)
		b.mu.Lock()
		delete(b.pending, path)
		b.mu.Unlock()
		b.wg.Done()
	})
	return nil
}

// Watch starts observing the broadcast directory and re-emits markers from
// other processes onto bus.
func (b *Broadcast) Watch(bus *Bus) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(b.dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", b.dir, err)
	}
	b.watcher = w

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
					continue
				}
				b.handleMarker(bus, ev.Name)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				b.log.Warnf("broadcast watcher: %v", err)
			}
		}
	}()

	return nil
}

func (b *Broadcast) handleMarker(bus *Bus, path string) {
	kind, verb, ok := parseMarkerKey(filepath.Base(path))
	if !ok {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// The emitter cleaned it up between the event and the read. The
		// filename alone still says what changed, so deliver that.
		if os.IsNotExist(err) {
			bus.Emit(Signal{Kind: kind, Verb: verb, At: time.Now().UTC()})
		}
		return
	}

	var m marker
	if err := json.Unmarshal(data, &m); err != nil {
		b.log.Warnf("broadcast: bad marker %s: %v", path, err)
		return
	}
	if m.Sender == b.sender {
		return
	}

	bus.Emit(Signal{Kind: kind, Verb: verb, ID: m.ID, At: time.UnixMilli(m.T)})
}

// Close waits out the TTL of any markers this process still owns, then
// stops the watcher. A command that emits and exits right away must leave
// its marker readable for the full window, or watchers in other processes
// would get the create event and find the file already gone.
func (b *Broadcast) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	// Pending markers are at most one TTL old, which bounds the wait.
	b.wg.Wait()

	if b.watcher != nil {
		return b.watcher.Close()
	}
	return nil
}
