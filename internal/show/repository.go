package show

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/LightBlast-creator/cuex/pkg/logger"
)

// ErrNotFound signals a lookup miss (unknown show, song or check item).
// The API layer maps it to a 404.
var ErrNotFound = errors.New("not found")

// Store is the persistence hook of the repository. Mutations are written
// behind the in-memory state; the in-memory state stays authoritative.
type Store interface {
	SaveShow(s *Show) error
	DeleteShow(id int) error
	LoadShows() ([]*Show, error)
}

// Repository owns the process-wide show collection and its ID sequences.
// A single coarse lock serializes mutations: chi runs handlers
// concurrently, and the original single-threaded design relied on the
// server for that serialization.
type Repository struct {
	mu     sync.RWMutex
	shows  []*Show
	store  Store
	logger *logger.Logger

	nextShowID int
	nextSongID int
}

// NewRepository creates a repository, loading persisted shows from store.
// A nil store keeps everything in memory (used by tests).
func NewRepository(store Store, log *logger.Logger) (*Repository, error) {
	r := &Repository{
		store:      store,
		logger:     log.Named("show-repo"),
		nextShowID: 1,
		nextSongID: 1,
	}

	if store != nil {
		shows, err := store.LoadShows()
		if err != nil {
			return nil, fmt.Errorf("failed to load shows: %w", err)
		}
		r.shows = shows
	}

	for _, s := range r.shows {
		if s.ID >= r.nextShowID {
			r.nextShowID = s.ID + 1
		}
		for _, song := range s.Songs {
			// Imported songs carry offset IDs outside the sequence
			if song.ID < ImportedSongIDBase && song.ID >= r.nextSongID {
				r.nextSongID = song.ID + 1
			}
		}
	}

	r.logger.Info("Repository initialized", logger.Int("shows", len(r.shows)))
	return r, nil
}

// persist writes a show through to the store. Storage failures are logged
// but never roll back the in-memory mutation.
func (r *Repository) persist(s *Show) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveShow(s); err != nil {
		r.logger.Error("Failed to persist show",
			logger.Int("show_id", s.ID),
			logger.Error(err))
	}
}

// CreateShow creates a new show with zero-initialized songs and checklists
func (r *Repository) CreateShow(name, artist, date, venueType, genre, rigType string) *Show {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Show{
		ID:            r.nextShowID,
		Name:          name,
		Artist:        artist,
		Date:          date,
		VenueType:     venueType,
		Genre:         genre,
		RigType:       rigType,
		MA3SequenceID: DefaultMA3SequenceID,
		EosMacroID:    DefaultEosMacroID,
		EosCuelistID:  DefaultEosCuelistID,
		Songs:         []*Song{},
		Checklists: map[string][]*CheckItem{
			CategoryPreproduction: {},
			CategoryAufbau:        {},
			CategoryShow:          {},
		},
	}
	r.nextShowID++
	r.shows = append(r.shows, s)
	r.persist(s)

	r.logger.Info("Created show", logger.Int("show_id", s.ID), logger.String("name", name))
	return s.Clone()
}

// ListShows returns snapshots of all shows in creation order
func (r *Repository) ListShows() []*Show {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Show, len(r.shows))
	for i, s := range r.shows {
		out[i] = s.Clone()
	}
	return out
}

// Snapshot returns a deep copy of one show, suitable for handing to the
// format encoders
func (r *Repository) Snapshot(id int) (*Show, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := r.find(id)
	if s == nil {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

// find returns the live record; callers must hold the lock
func (r *Repository) find(id int) *Show {
	for _, s := range r.shows {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// RemoveShow deletes a show by ID
func (r *Repository) RemoveShow(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, s := range r.shows {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	r.shows = append(r.shows[:idx], r.shows[idx+1:]...)

	if r.store != nil {
		if err := r.store.DeleteShow(id); err != nil {
			r.logger.Error("Failed to delete persisted show",
				logger.Int("show_id", id), logger.Error(err))
		}
	}
	r.logger.Info("Removed show", logger.Int("show_id", id))
	return nil
}

// DuplicateShow deep-copies a show under a fresh ID. The copy gets an
// empty date, a "(Kopie)" name suffix and freshly issued song IDs while
// content and order are preserved.
func (r *Repository) DuplicateShow(id int) (*Show, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	src := r.find(id)
	if src == nil {
		return nil, ErrNotFound
	}

	dup := src.Clone()
	dup.ID = r.nextShowID
	r.nextShowID++
	dup.Name = src.Name + " (Kopie)"
	dup.Date = ""
	for _, song := range dup.Songs {
		song.ID = r.nextSongID
		r.nextSongID++
	}

	r.shows = append(r.shows, dup)
	r.persist(dup)

	r.logger.Info("Duplicated show",
		logger.Int("source_id", id),
		logger.Int("show_id", dup.ID))
	return dup.Clone(), nil
}

// MetaUpdate carries the editable show metadata. Console IDs arrive as
// raw strings; empty or malformed values fall back to the documented
// defaults.
type MetaUpdate struct {
	Name              string `json:"name"`
	Artist            string `json:"artist"`
	Date              string `json:"date"`
	VenueType         string `json:"venue_type"`
	Genre             string `json:"genre"`
	RigType           string `json:"rig_type"`
	Regie             string `json:"regie"`
	Veranstalter      string `json:"veranstalter"`
	VTFirma           string `json:"vt_firma"`
	TechnischerLeiter string `json:"technischer_leiter"`
	Notes             string `json:"notes"`
	MA3SequenceID     string `json:"ma3_sequence_id"`
	EosMacroID        string `json:"eos_macro_id"`
	EosCuelistID      string `json:"eos_cuelist_id"`
}

func parseConsoleID(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// UpdateMeta applies a metadata update. An empty name keeps the old one.
func (r *Repository) UpdateMeta(id int, upd MetaUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.find(id)
	if s == nil {
		return ErrNotFound
	}

	if name := strings.TrimSpace(upd.Name); name != "" {
		s.Name = name
	}
	s.Artist = strings.TrimSpace(upd.Artist)
	s.Date = strings.TrimSpace(upd.Date)
	s.VenueType = strings.TrimSpace(upd.VenueType)
	s.Genre = strings.TrimSpace(upd.Genre)
	s.RigType = strings.TrimSpace(upd.RigType)
	s.Regie = strings.TrimSpace(upd.Regie)
	s.Veranstalter = strings.TrimSpace(upd.Veranstalter)
	s.VTFirma = strings.TrimSpace(upd.VTFirma)
	s.TechnischerLeiter = strings.TrimSpace(upd.TechnischerLeiter)
	s.Notes = strings.TrimSpace(upd.Notes)
	s.MA3SequenceID = parseConsoleID(upd.MA3SequenceID, DefaultMA3SequenceID)
	s.EosMacroID = parseConsoleID(upd.EosMacroID, DefaultEosMacroID)
	s.EosCuelistID = parseConsoleID(upd.EosCuelistID, DefaultEosCuelistID)

	r.persist(s)
	return nil
}

// emptyItem reports whether a rig row carries no data worth keeping
func emptyItem(it RigItem) bool {
	return strings.TrimSpace(it.Count) == "" &&
		strings.TrimSpace(it.Manufacturer) == "" &&
		strings.TrimSpace(it.Model) == ""
}

func normalizeItems(items []RigItem) []RigItem {
	out := make([]RigItem, 0, len(items))
	for _, it := range items {
		if emptyItem(it) {
			continue
		}
		if it.UID == "" {
			it.UID = uuid.NewString()
		}
		out = append(out, it)
	}
	return out
}

// UpdateRig replaces the rig setup of a show. New fixture rows get a UID,
// fully empty rows are dropped, and visual-plan entries referencing a
// removed fixture are pruned so the stage plan never dangles.
func (r *Repository) UpdateRig(id int, rig *RigSetup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.find(id)
	if s == nil {
		return ErrNotFound
	}
	if rig == nil {
		rig = &RigSetup{}
	}

	rig.Spots = normalizeItems(rig.Spots)
	rig.Washes = normalizeItems(rig.Washes)
	rig.Beams = normalizeItems(rig.Beams)
	rig.Blinders = normalizeItems(rig.Blinders)
	rig.Strobes = normalizeItems(rig.Strobes)

	devices := make([]CustomDevice, 0, len(rig.CustomDevices))
	for _, cd := range rig.CustomDevices {
		if emptyItem(cd.RigItem) && strings.TrimSpace(cd.Name) == "" {
			continue
		}
		if cd.UID == "" {
			cd.UID = uuid.NewString()
		}
		devices = append(devices, cd)
	}
	rig.CustomDevices = devices

	// Carry the stage plan over when the update does not include one
	if rig.VisualPlan == nil && s.RigSetup != nil {
		rig.VisualPlan = s.RigSetup.VisualPlan
	}
	pruneVisualPlan(rig)

	s.RigSetup = rig
	r.persist(s)
	return nil
}

// pruneVisualPlan drops plan entries whose fixture UID no longer exists.
// Plan keys have the form "{uid}_{instance}".
func pruneVisualPlan(rig *RigSetup) {
	if len(rig.VisualPlan) == 0 {
		return
	}

	uids := make(map[string]bool)
	for _, cat := range rig.Categories() {
		for _, it := range cat.Items {
			uids[it.UID] = true
		}
	}
	for _, cd := range rig.CustomDevices {
		uids[cd.UID] = true
	}

	for key := range rig.VisualPlan {
		uid := key
		if i := strings.LastIndex(key, "_"); i > 0 {
			uid = key[:i]
		}
		if !uids[uid] {
			delete(rig.VisualPlan, key)
		}
	}
}

// SongInput carries the editable song fields
type SongInput struct {
	Name          string `json:"name"`
	Mood          string `json:"mood"`
	Colors        string `json:"colors"`
	MovementStyle string `json:"movement_style"`
	EyeCandy      string `json:"eye_candy"`
	SpecialNotes  string `json:"special_notes"`
	GeneralNotes  string `json:"general_notes"`
}

// CreateSong appends a new song and assigns the next global song ID
func (r *Repository) CreateSong(showID int, in SongInput) (*Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.find(showID)
	if s == nil {
		return nil, ErrNotFound
	}

	song := &Song{
		ID:            r.nextSongID,
		Name:          in.Name,
		Mood:          in.Mood,
		Colors:        in.Colors,
		MovementStyle: in.MovementStyle,
		EyeCandy:      in.EyeCandy,
		SpecialNotes:  in.SpecialNotes,
		GeneralNotes:  in.GeneralNotes,
	}
	r.nextSongID++
	s.Songs = append(s.Songs, song)
	song.OrderIndex = len(s.Songs)

	r.persist(s)
	c := *song
	return &c, nil
}

// UpdateSong edits a song in place. An empty name keeps the old one.
func (r *Repository) UpdateSong(showID, songID int, in SongInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.find(showID)
	if s == nil {
		return ErrNotFound
	}
	for _, song := range s.Songs {
		if song.ID == songID {
			if name := strings.TrimSpace(in.Name); name != "" {
				song.Name = name
			}
			song.Mood = in.Mood
			song.Colors = in.Colors
			song.MovementStyle = in.MovementStyle
			song.EyeCandy = in.EyeCandy
			song.SpecialNotes = in.SpecialNotes
			song.GeneralNotes = in.GeneralNotes
			r.persist(s)
			return nil
		}
	}
	return ErrNotFound
}

// renumber restores the dense 1..N order_index invariant
func renumber(songs []*Song) {
	for i, song := range songs {
		song.OrderIndex = i + 1
	}
}

// RemoveSong deletes a song by ID and renumbers the remainder
func (r *Repository) RemoveSong(showID, songID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.find(showID)
	if s == nil {
		return ErrNotFound
	}

	kept := s.Songs[:0]
	found := false
	for _, song := range s.Songs {
		if song.ID == songID {
			found = true
			continue
		}
		kept = append(kept, song)
	}
	if !found {
		return ErrNotFound
	}
	s.Songs = kept
	renumber(s.Songs)

	r.persist(s)
	return nil
}

// MoveSong swaps a song with its neighbor. Direction is "up" or "down";
// moves past the boundary are no-ops.
func (r *Repository) MoveSong(showID, songID int, direction string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.find(showID)
	if s == nil {
		return ErrNotFound
	}

	idx := -1
	for i, song := range s.Songs {
		if song.ID == songID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	switch direction {
	case "up":
		if idx > 0 {
			s.Songs[idx-1], s.Songs[idx] = s.Songs[idx], s.Songs[idx-1]
		}
	case "down":
		if idx < len(s.Songs)-1 {
			s.Songs[idx+1], s.Songs[idx] = s.Songs[idx], s.Songs[idx+1]
		}
	default:
		return fmt.Errorf("invalid direction %q", direction)
	}
	renumber(s.Songs)

	r.persist(s)
	return nil
}

// ClearSongs removes every song from a show
func (r *Repository) ClearSongs(showID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.find(showID)
	if s == nil {
		return ErrNotFound
	}
	s.Songs = []*Song{}
	r.persist(s)
	return nil
}

// nextCheckItemID issues a show-scoped check item ID
func nextCheckItemID(s *Show) int {
	maxID := 0
	for _, items := range s.Checklists {
		for _, it := range items {
			if it.ID > maxID {
				maxID = it.ID
			}
		}
	}
	return maxID + 1
}

// AddCheckItem appends a checklist entry to a category
func (r *Repository) AddCheckItem(showID int, category, text string) (*CheckItem, error) {
	if !ValidCategory(category) {
		return nil, fmt.Errorf("invalid checklist category %q", category)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.find(showID)
	if s == nil {
		return nil, ErrNotFound
	}
	if s.Checklists == nil {
		s.Checklists = map[string][]*CheckItem{}
	}

	item := &CheckItem{ID: nextCheckItemID(s), Text: text}
	s.Checklists[category] = append(s.Checklists[category], item)

	r.persist(s)
	c := *item
	return &c, nil
}

// ToggleCheckItem flips the done flag of a checklist entry
func (r *Repository) ToggleCheckItem(showID int, category string, itemID int) error {
	return r.withCheckItem(showID, category, itemID, func(it *CheckItem) {
		it.Done = !it.Done
	})
}

// UpdateCheckItem replaces the text of a checklist entry
func (r *Repository) UpdateCheckItem(showID int, category string, itemID int, text string) error {
	return r.withCheckItem(showID, category, itemID, func(it *CheckItem) {
		it.Text = text
	})
}

func (r *Repository) withCheckItem(showID int, category string, itemID int, apply func(*CheckItem)) error {
	if !ValidCategory(category) {
		return fmt.Errorf("invalid checklist category %q", category)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.find(showID)
	if s == nil {
		return ErrNotFound
	}
	for _, it := range s.Checklists[category] {
		if it.ID == itemID {
			apply(it)
			r.persist(s)
			return nil
		}
	}
	return ErrNotFound
}

// DeleteCheckItem removes a checklist entry by ID
func (r *Repository) DeleteCheckItem(showID int, category string, itemID int) error {
	if !ValidCategory(category) {
		return fmt.Errorf("invalid checklist category %q", category)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.find(showID)
	if s == nil {
		return ErrNotFound
	}

	items := s.Checklists[category]
	for i, it := range items {
		if it.ID == itemID {
			s.Checklists[category] = append(items[:i], items[i+1:]...)
			r.persist(s)
			return nil
		}
	}
	return ErrNotFound
}

// CommitExtractedCues appends reviewed script cues as songs. IDs are
// offset so they never collide with sequentially issued song IDs, and
// advance monotonically past every ID ever handed out in this show so
// deleting and re-committing can never reissue one; the cue text lands
// in special_notes and scene/role form the song name.
func (r *Repository) CommitExtractedCues(showID int, cues []ExtractedCue) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.find(showID)
	if s == nil {
		return 0, ErrNotFound
	}

	orderIndex := 0
	nextID := ImportedSongIDBase
	for _, song := range s.Songs {
		if song.OrderIndex > orderIndex {
			orderIndex = song.OrderIndex
		}
		if song.ID > nextID {
			nextID = song.ID
		}
	}
	orderIndex++
	nextID++

	added := 0
	for _, cue := range cues {
		s.Songs = append(s.Songs, &Song{
			ID:           nextID,
			OrderIndex:   orderIndex,
			Name:         strings.TrimSpace(cue.Scene + " " + cue.Role),
			SpecialNotes: cue.Text,
		})
		nextID++
		orderIndex++
		added++
	}

	r.persist(s)
	r.logger.Info("Committed extracted cues",
		logger.Int("show_id", showID),
		logger.Int("count", added))
	return added, nil
}
