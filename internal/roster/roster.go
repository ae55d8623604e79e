// Package roster owns the set of known players.
package roster

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/gamenight/internal/models"
	"github.com/jason-s-yu/gamenight/internal/storage"
)

// SlotKey is the storage slot owned by the roster.
const SlotKey = "startPlayer.participants.v1"

// Roster is the participant store. Names are trimmed, non-empty and unique.
type Roster struct {
	mu           sync.Mutex
	slots        storage.Slots
	log          logrus.FieldLogger
	participants []models.Participant

	// NewID generates an id for a participant name.
	NewID func(name string) string
}

// New returns an empty roster persisting into slots.
func New(slots storage.Slots, logger logrus.FieldLogger) *Roster {
	return &Roster{
		slots: slots,
		log:   logger.WithField("slot", SlotKey),
		NewID: models.NewParticipantID,
	}
}

// Load restores the persisted roster. Both the legacy payload (an array of
// bare names) and the current array of {id, name} objects are accepted.
func (r *Roster) Load(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.participants = nil
	v, ok, err := storage.Load(ctx, r.slots, SlotKey)
	if err != nil {
		r.log.WithError(err).Warn("discarding unreadable roster")
		return
	}
	if !ok {
		return
	}
	items, isArray := v.([]interface{})
	if !isArray {
		r.log.Warn("discarding roster: payload is not an array")
		return
	}

	seenNames := make(map[string]bool, len(items))
	seenIDs := make(map[string]bool, len(items))
	for _, item := range items {
		var id, name string
		switch it := item.(type) {
		case string:
			name = it
		case map[string]interface{}:
			id, _ = it["id"].(string)
			name, _ = it["name"].(string)
		default:
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" || seenNames[name] {
			continue
		}
		if id == "" || seenIDs[id] {
			id = r.NewID(name)
		}
		seenNames[name] = true
		seenIDs[id] = true
		r.participants = append(r.participants, models.Participant{ID: id, Name: name})
	}
	r.log.Debugf("loaded %d participants", len(r.participants))
}

// Participants returns a copy of the roster in insertion order.
func (r *Roster) Participants() []models.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Participant, len(r.participants))
	copy(out, r.participants)
	return out
}

// IDs returns the live participant ids.
func (r *Roster) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.participants))
	for i, p := range r.participants {
		ids[i] = p.ID
	}
	return ids
}

// Get looks up a participant by id.
func (r *Roster) Get(id string) (models.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.ID == id {
			return p, true
		}
	}
	return models.Participant{}, false
}

// Add registers a participant. Blank or already-registered names are ignored.
func (r *Roster) Add(ctx context.Context, name string) (models.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return models.Participant{}, false
	}
	for _, p := range r.participants {
		if p.Name == name {
			return models.Participant{}, false
		}
	}
	p := models.Participant{ID: r.NewID(name), Name: name}
	next := make([]models.Participant, len(r.participants), len(r.participants)+1)
	copy(next, r.participants)
	r.participants = append(next, p)
	r.persist(ctx)
	return p, true
}

// Remove drops the participant with the given id.
func (r *Roster) Remove(ctx context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]models.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		if p.ID != id {
			next = append(next, p)
		}
	}
	if len(next) == len(r.participants) {
		return false
	}
	r.participants = next
	r.persist(ctx)
	return true
}

// Clear empties the roster and removes its slot.
func (r *Roster) Clear(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.participants = nil
	if err := r.slots.Delete(ctx, SlotKey); err != nil {
		r.log.WithError(err).Warn("failed to clear roster slot")
	}
}

func (r *Roster) persist(ctx context.Context) {
	var err error
	if len(r.participants) == 0 {
		err = r.slots.Delete(ctx, SlotKey)
	} else {
		err = storage.SaveJSON(ctx, r.slots, SlotKey, r.participants)
	}
	if err != nil {
		r.log.WithError(err).Warn("failed to persist roster")
	}
}
