package service

import (
	"math"
	"sync"

	"go.uber.org/zap"

	kanerr "github.com/amterp/cardman/internal/errors"
	"github.com/amterp/cardman/internal/form"
	"github.com/amterp/cardman/internal/model"
	"github.com/amterp/cardman/internal/store"
)

// Subscriber receives card snapshots. Each call gets its own copy.
//
// OnCards runs while the service holds its write lock: it must not call
// AddCard, UpdateCard, DeleteCard, Reload, Subscribe or Close.
type Subscriber interface {
	OnCards(cards []model.Card)
}

// SubscriberFunc adapts a plain function to Subscriber.
type SubscriberFunc func(cards []model.Card)

func (f SubscriberFunc) OnCards(cards []model.Card) { f(cards) }

// Completer is implemented by subscribers that want to know when the
// snapshot stream ends.
type Completer interface {
	OnComplete()
}

type subscription struct {
	id  int
	sub Subscriber
}

// CardService owns the card collection. It loads the persisted list on
// construction, persists after every mutation and pushes snapshots to
// subscribers in mutation order.
type CardService struct {
	cardStore store.CardStore
	log       *zap.SugaredLogger

	// writeMu serializes mutations, subscriptions and snapshot delivery.
	writeMu sync.Mutex

	mu         sync.RWMutex
	cards      []model.Card
	subs       []subscription
	nextSubID  int
	closed     bool
	persistErr error
}

// NewCardService creates the service and initializes it from cardStore.
// A missing or corrupt blob is replaced by the default cards.
func NewCardService(cardStore store.CardStore, log *zap.SugaredLogger) *CardService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &CardService{
		cardStore: cardStore,
		log:       log.Named("cards"),
	}

	cards, found, err := cardStore.Load()
	switch {
	case err == nil && found:
		s.cards = cards
		return s
	case err == nil:
		s.log.Debugw("no stored cards, seeding defaults")
	case kanerr.IsCorrupt(err):
		s.log.Warnw("stored cards are corrupt, seeding defaults", "error", err)
	default:
		// Don't overwrite a blob we merely failed to read.
		s.log.Warnw("failed to load cards, starting from defaults", "error", err)
		s.cards = model.DefaultCards()
		return s
	}

	s.cards = model.DefaultCards()
	s.persist(s.cards)
	return s
}

// Cards returns a copy of the current collection.
func (s *CardService) Cards() []model.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneCards(s.cards)
}

// GetCardByID looks up a card in the current collection.
func (s *CardService) GetCardByID(id int) (model.Card, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := model.IndexOf(s.cards, id); i >= 0 {
		return s.cards[i], true
	}
	return model.Card{}, false
}

// PersistErr returns the error from the most recent persist attempt, or nil
// if it succeeded.
func (s *CardService) PersistErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistErr
}

// AddCard appends a card with the next id (highest existing id + 1).
func (s *CardService) AddCard(title, description string) (model.Card, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.isClosed() {
		return model.Card{}, kanerr.ErrClosed
	}
	if errs := form.Validate(title, description); errs != nil {
		return model.Card{}, errs
	}

	current := s.Cards()
	maxID := model.MaxID(current)
	if maxID == math.MaxInt {
		return model.Card{}, kanerr.InvalidField("id", "card id space exhausted")
	}
	card := model.Card{
		ID:          maxID + 1,
		Title:       title,
		Description: description,
	}
	s.commit(append(current, card))
	return card, nil
}

// UpdateCard replaces the card with the same id. A missing id is a
// NotFoundError and changes nothing.
func (s *CardService) UpdateCard(card model.Card) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.isClosed() {
		return kanerr.ErrClosed
	}
	if errs := form.Validate(card.Title, card.Description); errs != nil {
		return errs
	}

	next := s.Cards()
	i := model.IndexOf(next, card.ID)
	if i < 0 {
		return kanerr.CardNotFound(card.ID)
	}
	next[i] = card
	s.commit(next)
	return nil
}

// DeleteCard removes the card with the given id. Deleting a missing id is a
// no-op: no notification, no persist.
func (s *CardService) DeleteCard(id int) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.isClosed() {
		return kanerr.ErrClosed
	}

	current := s.Cards()
	i := model.IndexOf(current, id)
	if i < 0 {
		return nil
	}
	next := append(current[:i:i], current[i+1:]...)
	s.commit(next)
	return nil
}

// Subscribe registers sub and immediately delivers the current snapshot.
// Later snapshots follow in mutation order. After Close, sub only receives
// OnComplete (if it implements Completer).
// The returned function unsubscribes; it is safe to call more than once and
// from inside a callback.
func (s *CardService) Subscribe(sub Subscriber) func() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if c, ok := sub.(Completer); ok {
			c.OnComplete()
		}
		return func() {}
	}
	s.nextSubID++
	id := s.nextSubID
	s.subs = append(s.subs, subscription{id: id, sub: sub})
	snapshot := model.CloneCards(s.cards)
	s.mu.Unlock()

	sub.OnCards(snapshot)

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

func (s *CardService) unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, entry := range s.subs {
		if entry.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// Reload re-reads the stored blob. A valid list that differs from the
// current one is adopted and pushed to subscribers without being written
// back. A missing or corrupt blob is overwritten with the current list.
func (s *CardService) Reload() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.isClosed() {
		return kanerr.ErrClosed
	}

	cards, found, err := s.cardStore.Load()
	if err != nil && !kanerr.IsCorrupt(err) {
		return err
	}

	current := s.Cards()
	if err != nil || !found {
		s.log.Warnw("stored cards missing or corrupt, restoring", "error", err)
		s.persist(current)
		return nil
	}
	if model.Equal(cards, current) {
		return nil
	}

	s.log.Debugw("adopting externally written cards", "count", len(cards))
	s.set(cards)
	s.deliver(cards)
	return nil
}

// Close ends every subscription. Subscribers implementing Completer are
// told; later mutations fail with ErrClosed. Close is idempotent.
func (s *CardService) Close() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, entry := range subs {
		if c, ok := entry.sub.(Completer); ok {
			c.OnComplete()
		}
	}
}

func (s *CardService) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// commit installs next, notifies subscribers and persists. Caller holds
// writeMu.
func (s *CardService) commit(next []model.Card) {
	s.set(next)
	s.deliver(next)
	s.persist(next)
}

func (s *CardService) set(cards []model.Card) {
	s.mu.Lock()
	s.cards = cards
	s.mu.Unlock()
}

func (s *CardService) deliver(cards []model.Card) {
	s.mu.RLock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, entry := range subs {
		entry.sub.OnCards(model.CloneCards(cards))
	}
}

// persist writes cards through the store. Failures are logged and recorded,
// never returned: the in-memory list stays authoritative.
func (s *CardService) persist(cards []model.Card) {
	err := s.cardStore.Save(cards)
	if err != nil {
		s.log.Warnw("failed to persist cards", "error", err, "count", len(cards))
	}
	s.mu.Lock()
	s.persistErr = err
	s.mu.Unlock()
}
