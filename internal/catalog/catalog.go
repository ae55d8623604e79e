// Package catalog owns the set of games the group knows about.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/gamenight/internal/models"
	"github.com/jason-s-yu/gamenight/internal/storage"
)

// SlotKey is the storage slot owned by the catalog.
const SlotKey = "boardgame.games.v1"

var (
	ErrImportNotArray = errors.New("import payload is not a JSON array")
	ErrImportEmpty    = errors.New("import payload has no valid games")
)

// Catalog is the game catalog store. Names are trimmed, non-empty and unique.
type Catalog struct {
	mu    sync.Mutex
	slots storage.Slots
	log   logrus.FieldLogger
	games []models.Game

	// NewID generates ids for new games; tests may replace it.
	NewID func() string
}

// New returns an empty catalog persisting into slots. Call Load to restore saved state.
func New(slots storage.Slots, logger logrus.FieldLogger) *Catalog {
	return &Catalog{
		slots: slots,
		log:   logger.WithField("slot", SlotKey),
		NewID: models.NewID,
	}
}

// Load replaces the in-memory catalog with the persisted one. Unreadable or
// malformed data leaves the catalog empty.
func (c *Catalog) Load(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.games = nil
	v, ok, err := storage.Load(ctx, c.slots, SlotKey)
	if err != nil {
		c.log.WithError(err).Warn("discarding unreadable game catalog")
		return
	}
	if !ok {
		return
	}
	items, isArray := v.([]interface{})
	if !isArray {
		c.log.Warn("discarding game catalog: payload is not an array")
		return
	}
	c.games = normalizeGames(items, c.NewID)
	c.log.Debugf("loaded %d games", len(c.games))
}

// Games returns a copy of the catalog in insertion order.
func (c *Catalog) Games() []models.Game {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Game, len(c.games))
	copy(out, c.games)
	return out
}

// IDs returns the live game ids.
func (c *Catalog) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, len(c.games))
	for i, g := range c.games {
		ids[i] = g.ID
	}
	return ids
}

// Get looks up a game by id.
func (c *Catalog) Get(id string) (models.Game, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.games[i], true
	}
	return models.Game{}, false
}

// Len returns the number of games.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.games)
}

// Add appends a new game. It is a no-op (false) when the trimmed name is empty
// or already taken. An invalid weight falls back to Light.
func (c *Catalog) Add(ctx context.Context, name, genre string, weight models.Weight) (models.Game, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.addLocked(name, genre, weight)
	if ok {
		c.persist(ctx)
	}
	return g, ok
}

// Update merges patch into the game with the given id. The whole update is
// rejected when the id is unknown, the merged name is empty, or the merged
// name belongs to another game.
func (c *Catalog) Update(ctx context.Context, id string, patch models.GamePatch) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.updateLocked(id, patch) {
		return false
	}
	c.persist(ctx)
	return true
}

// Remove deletes the game with the given id.
func (c *Catalog) Remove(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	next := make([]models.Game, 0, len(c.games)-1)
	next = append(next, c.games[:i]...)
	next = append(next, c.games[i+1:]...)
	c.games = next
	c.persist(ctx)
	return true
}

// Clear empties the catalog and removes its slot.
func (c *Catalog) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.games = nil
	if err := c.slots.Delete(ctx, SlotKey); err != nil {
		c.log.WithError(err).Warn("failed to clear game catalog slot")
	}
}

// Import applies a JSON array of games. With replace the catalog is cleared
// first and every item is added; otherwise an item whose name already exists
// updates that game's genre and weight, and anything else is added. It returns
// the number of items that changed the catalog.
func (c *Catalog) Import(ctx context.Context, data []byte, replace bool) (int, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, err
	}
	items, isArray := raw.([]interface{})
	if !isArray {
		return 0, ErrImportNotArray
	}
	parsed := normalizeGames(items, func() string { return "" })
	if len(parsed) == 0 {
		return 0, ErrImportEmpty
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if replace {
		c.games = nil
	}
	applied := 0
	for _, g := range parsed {
		if existing := c.indexOfName(g.Name); existing >= 0 {
			genre, weight := g.Genre, g.Weight
			if c.updateLocked(c.games[existing].ID, models.GamePatch{Genre: &genre, Weight: &weight}) {
				applied++
			}
			continue
		}
		if _, ok := c.addLocked(g.Name, g.Genre, g.Weight); ok {
			applied++
		}
	}
	c.persist(ctx)
	c.log.Infof("imported %d games (replace=%t)", applied, replace)
	return applied, nil
}

func (c *Catalog) addLocked(name, genre string, weight models.Weight) (models.Game, bool) {
	name = strings.TrimSpace(name)
	if name == "" || c.indexOfName(name) >= 0 {
		return models.Game{}, false
	}
	if !weight.Valid() {
		weight = models.WeightLight
	}
	g := models.Game{
		ID:     c.NewID(),
		Name:   name,
		Genre:  strings.TrimSpace(genre),
		Weight: weight,
	}
	c.games = append(c.games, g)
	return g, true
}

func (c *Catalog) updateLocked(id string, patch models.GamePatch) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	target := c.games[i]

	name, genre, weight := target.Name, target.Genre, target.Weight
	if patch.Name != nil {
		name = *patch.Name
	}
	if patch.Genre != nil {
		genre = *patch.Genre
	}
	if patch.Weight != nil && patch.Weight.Valid() {
		weight = *patch.Weight
	}
	name = strings.TrimSpace(name)
	genre = strings.TrimSpace(genre)

	if name == "" {
		return false
	}
	if j := c.indexOfName(name); j >= 0 && j != i {
		return false
	}

	next := make([]models.Game, len(c.games))
	copy(next, c.games)
	next[i] = models.Game{ID: target.ID, Name: name, Genre: genre, Weight: weight}
	c.games = next
	return true
}

// persist writes the whole catalog, or removes the slot when it is empty.
// Failures are logged; the in-memory catalog stays authoritative.
func (c *Catalog) persist(ctx context.Context) {
	var err error
	if len(c.games) == 0 {
		err = c.slots.Delete(ctx, SlotKey)
	} else {
		err = storage.SaveJSON(ctx, c.slots, SlotKey, c.games)
	}
	if err != nil {
		c.log.WithError(err).Warn("failed to persist game catalog")
	}
}

func (c *Catalog) indexOf(id string) int {
	for i, g := range c.games {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func (c *Catalog) indexOfName(name string) int {
	for i, g := range c.games {
		if g.Name == name {
			return i
		}
	}
	return -1
}

// normalizeGames coerces untrusted records into well-formed games. Records
// without a usable name are dropped, as are later records repeating a name.
func normalizeGames(items []interface{}, newID func() string) []models.Game {
	games := make([]models.Game, 0, len(items))
	seenNames := make(map[string]bool, len(items))
	seenIDs := make(map[string]bool, len(items))

	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name := strings.TrimSpace(text(m["name"]))
		if name == "" || seenNames[name] {
			continue
		}
		id, _ := m["id"].(string)
		if id == "" || seenIDs[id] {
			id = newID()
		}
		genre := text(m["genre"])
		weight := models.WeightLight
		if w, ok := m["weight"].(string); ok && models.Weight(w).Valid() {
			weight = models.Weight(w)
		}

		seenNames[name] = true
		seenIDs[id] = true
		games = append(games, models.Game{
			ID:     id,
			Name:   name,
			Genre:  strings.TrimSpace(genre),
			Weight: weight,
		})
	}
	return games
}

// text reads a loosely typed JSON scalar as a string. Numbers and booleans are
// printed; null, objects and arrays read as empty.
func text(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64, bool:
		return fmt.Sprint(x)
	}
	return ""
}
