package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/LightBlast-creator/cuex/internal/export"
	"github.com/LightBlast-creator/cuex/internal/extraction"
	"github.com/LightBlast-creator/cuex/internal/rigpower"
	"github.com/LightBlast-creator/cuex/internal/show"
	"github.com/LightBlast-creator/cuex/internal/storage/sqlite"
	"github.com/LightBlast-creator/cuex/pkg/logger"
)

// maxScriptSize caps uploaded script PDFs at 25 MB
const maxScriptSize = 25 << 20

// Handler contains the API handlers
type Handler struct {
	repo     *show.Repository
	contacts *sqlite.ContactStorage
	pipeline *extraction.Pipeline
	encoder  *export.Encoder
	logger   *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(repo *show.Repository, contacts *sqlite.ContactStorage, pipeline *extraction.Pipeline, encoder *export.Encoder, log *logger.Logger) *Handler {
	return &Handler{
		repo:     repo,
		contacts: contacts,
		pipeline: pipeline,
		encoder:  encoder,
		logger:   log.Named("api-handler"),
	}
}

// respondJSON writes v as a JSON response
func (h *Handler) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", logger.Error(err))
	}
}

// respondError writes a JSON error envelope
func (h *Handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, map[string]string{"error": msg})
}

// respondMutation maps repository errors to status codes for the common
// mutate-and-acknowledge handlers
func (h *Handler) respondMutation(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, show.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "not found")
	default:
		h.respondError(w, http.StatusBadRequest, err.Error())
	}
}

// urlInt parses a numeric URL parameter
func urlInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

// --- Shows ---

type createShowRequest struct {
	Name      string `json:"name"`
	Artist    string `json:"artist"`
	Date      string `json:"date"`
	VenueType string `json:"venue_type"`
	Genre     string `json:"genre"`
	RigType   string `json:"rig_type"`
}

// CreateShow creates a new show
func (h *Handler) CreateShow(w http.ResponseWriter, r *http.Request) {
	var req createShowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		h.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	s := h.repo.CreateShow(req.Name, req.Artist, req.Date, req.VenueType, req.Genre, req.RigType)
	h.respondJSON(w, http.StatusCreated, s)
}

// ListShows returns all shows
func (h *Handler) ListShows(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.repo.ListShows())
}

// GetShow returns one show with its contacts attached
func (h *Handler) GetShow(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s, err := h.repo.Snapshot(id)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "show not found")
		return
	}

	contacts, err := h.contacts.GetContactsByShow(id)
	if err != nil {
		h.logger.Error("Failed to load contacts", logger.Int("show_id", id), logger.Error(err))
		contacts = nil
	}

	h.respondJSON(w, http.StatusOK, struct {
		*show.Show
		Contacts []*show.ContactPerson `json:"contacts"`
	}{s, contacts})
}

// DeleteShow removes a show and its contacts
func (h *Handler) DeleteShow(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.RemoveShow(id); err != nil {
		h.respondError(w, http.StatusNotFound, "show not found")
		return
	}
	if err := h.contacts.DeleteContactsByShow(id); err != nil {
		h.logger.Error("Failed to delete contacts", logger.Int("show_id", id), logger.Error(err))
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DuplicateShow copies a show under a fresh ID
func (h *Handler) DuplicateShow(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	dup, err := h.repo.DuplicateShow(id)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "show not found")
		return
	}
	h.respondJSON(w, http.StatusCreated, dup)
}

// UpdateShowMeta applies a metadata update
func (h *Handler) UpdateShowMeta(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var upd show.MetaUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respondMutation(w, h.repo.UpdateMeta(id, upd))
}

// UpdateShowRig replaces the rig setup
func (h *Handler) UpdateShowRig(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var rig show.RigSetup
	if err := json.NewDecoder(r.Body).Decode(&rig); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respondMutation(w, h.repo.UpdateRig(id, &rig))
}

// GetShowPower returns the power calculation for a show's rig. The body
// is null when the rig carries no power data at all.
func (h *Handler) GetShowPower(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s, err := h.repo.Snapshot(id)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "show not found")
		return
	}
	h.respondJSON(w, http.StatusOK, rigpower.Calculate(s.RigSetup))
}

// --- Songs ---

// CreateSong appends a song to the cue list
func (h *Handler) CreateSong(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in show.SongInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Name == "" {
		h.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	song, err := h.repo.CreateSong(id, in)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "show not found")
		return
	}
	h.respondJSON(w, http.StatusCreated, song)
}

// UpdateSong edits a song in place
func (h *Handler) UpdateSong(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	songID, err := urlInt(r, "songID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in show.SongInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respondMutation(w, h.repo.UpdateSong(id, songID, in))
}

// DeleteSong removes a song
func (h *Handler) DeleteSong(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	songID, err := urlInt(r, "songID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondMutation(w, h.repo.RemoveSong(id, songID))
}

// MoveSong swaps a song with its neighbor
func (h *Handler) MoveSong(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	songID, err := urlInt(r, "songID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respondMutation(w, h.repo.MoveSong(id, songID, req.Direction))
}

// ClearSongs removes every song from a show
func (h *Handler) ClearSongs(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondMutation(w, h.repo.ClearSongs(id))
}

// --- Checklists ---

// AddCheckItem appends a checklist entry
func (h *Handler) AddCheckItem(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		h.respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	item, err := h.repo.AddCheckItem(id, chi.URLParam(r, "category"), req.Text)
	if err != nil {
		if errors.Is(err, show.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "show not found")
			return
		}
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondJSON(w, http.StatusCreated, item)
}

// ToggleCheckItem flips the done flag of a checklist entry
func (h *Handler) ToggleCheckItem(w http.ResponseWriter, r *http.Request) {
	id, itemID, ok := h.checkItemParams(w, r)
	if !ok {
		return
	}
	h.respondMutation(w, h.repo.ToggleCheckItem(id, chi.URLParam(r, "category"), itemID))
}

// UpdateCheckItem replaces the text of a checklist entry
func (h *Handler) UpdateCheckItem(w http.ResponseWriter, r *http.Request) {
	id, itemID, ok := h.checkItemParams(w, r)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respondMutation(w, h.repo.UpdateCheckItem(id, chi.URLParam(r, "category"), itemID, req.Text))
}

// DeleteCheckItem removes a checklist entry
func (h *Handler) DeleteCheckItem(w http.ResponseWriter, r *http.Request) {
	id, itemID, ok := h.checkItemParams(w, r)
	if !ok {
		return
	}
	h.respondMutation(w, h.repo.DeleteCheckItem(id, chi.URLParam(r, "category"), itemID))
}

func (h *Handler) checkItemParams(w http.ResponseWriter, r *http.Request) (showID, itemID int, ok bool) {
	showID, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	itemID, err = urlInt(r, "itemID")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	return showID, itemID, true
}

// --- Contacts ---

// GetContacts returns the contacts of a show
func (h *Handler) GetContacts(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.repo.Snapshot(id); err != nil {
		h.respondError(w, http.StatusNotFound, "show not found")
		return
	}

	contacts, err := h.contacts.GetContactsByShow(id)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load contacts")
		return
	}
	if contacts == nil {
		contacts = []*show.ContactPerson{}
	}
	h.respondJSON(w, http.StatusOK, contacts)
}

// CreateContact adds a contact to a show
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.repo.Snapshot(id); err != nil {
		h.respondError(w, http.StatusNotFound, "show not found")
		return
	}

	var contact show.ContactPerson
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if contact.Role == "" {
		h.respondError(w, http.StatusBadRequest, "role is required")
		return
	}
	contact.ShowID = id

	contactID, err := h.contacts.StoreContact(&contact)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to store contact")
		return
	}
	contact.ID = contactID
	h.respondJSON(w, http.StatusCreated, &contact)
}

// UpdateContact edits a contact of a show
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	contactID, err := strconv.ParseInt(chi.URLParam(r, "contactID"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid contactID")
		return
	}

	var contact show.ContactPerson
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	contact.ID = contactID
	contact.ShowID = id

	switch err := h.contacts.UpdateContact(&contact); {
	case err == nil:
		h.respondJSON(w, http.StatusOK, &contact)
	case errors.Is(err, sql.ErrNoRows):
		h.respondError(w, http.StatusNotFound, "contact not found")
	default:
		h.respondError(w, http.StatusInternalServerError, "failed to update contact")
	}
}

// DeleteContact removes a contact of a show
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	contactID, err := strconv.ParseInt(chi.URLParam(r, "contactID"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid contactID")
		return
	}

	switch err := h.contacts.DeleteContact(id, contactID); {
	case err == nil:
		h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, sql.ErrNoRows):
		h.respondError(w, http.StatusNotFound, "contact not found")
	default:
		h.respondError(w, http.StatusInternalServerError, "failed to delete contact")
	}
}

// --- Exports ---

// ExportShow encodes a show in the requested console format and serves
// it as a download
func (h *Handler) ExportShow(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s, err := h.repo.Snapshot(id)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "show not found")
		return
	}

	format := chi.URLParam(r, "format")
	var artifact *export.Artifact
	switch format {
	case "nomad-csv":
		artifact, err = h.encoder.NomadCSV(s)
	case "eos-csv":
		artifact, err = h.encoder.EosCSV(s)
	case "eos-xlsx":
		artifact, err = h.encoder.EosXLSX(s)
	case "asc":
		artifact, err = h.encoder.USITTASC(s)
	case "eos-macro":
		artifact, err = h.encoder.EosMacro(s, time.Now())
	case "mvr":
		artifact, err = h.encoder.MVR(s)
	case "ma3":
		artifact, err = h.encoder.MA3(s, time.Now())
	case "cuelist-pdf":
		artifact, err = h.encoder.CuelistPDF(s, time.Now())
	default:
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown export format %q", format))
		return
	}
	if err != nil {
		h.logger.WithShowID(id).WithError(err).Error("Export failed",
			logger.String("format", format))
		h.respondError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		h.logger.Error("Failed to write export body", logger.Error(err))
	}
}

// --- Script import ---

// ImportScript extracts roles and cues from an uploaded script PDF. The
// result is provisional; nothing touches the show until the commit call.
func (h *Handler) ImportScript(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.repo.Snapshot(id); err != nil {
		h.respondError(w, http.StatusNotFound, "show not found")
		return
	}

	if err := r.ParseMultipartForm(maxScriptSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("pdf_file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "pdf_file is required")
		return
	}
	defer file.Close()

	pdfBytes, err := io.ReadAll(io.LimitReader(file, maxScriptSize))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	result, err := h.pipeline.ExtractFromPDF(r.Context(), pdfBytes)
	if err != nil {
		h.logger.WithShowID(id).WithError(err).Error("Script extraction failed")
		h.respondError(w, http.StatusUnprocessableEntity, "failed to extract script")
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// CommitScriptImport appends reviewed cues as songs
func (h *Handler) CommitScriptImport(w http.ResponseWriter, r *http.Request) {
	id, err := urlInt(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxScriptSize))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req struct {
		Cues []show.ExtractedCue `json:"cues"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		// Echo the payload so a broken review submission can be diagnosed
		h.respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "invalid cue payload: " + err.Error(),
			"payload": string(body),
		})
		return
	}
	if len(req.Cues) == 0 {
		h.respondError(w, http.StatusBadRequest, "cues are required")
		return
	}

	added, err := h.repo.CommitExtractedCues(id, req.Cues)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "show not found")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]int{"added": added})
}

// --- Health ---

// GetHealth returns the health status
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
