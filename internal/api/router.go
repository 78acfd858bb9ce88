package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jasminevsadler/Ramp-Tracker/internal/middleware"
	"github.com/jasminevsadler/Ramp-Tracker/internal/models"
	"github.com/jasminevsadler/Ramp-Tracker/internal/services"
)

// Router exposes the data core to the form, table/dashboard and setup
// layers. The form layer posts entry drafts and must surface validation
// errors synchronously; the setup layer mutates registries directly with
// no validator.
type Router struct {
	store       Store
	entries     *services.EntryService
	views       *services.ViewService
	exports     *services.ExportService
	auth        *services.AuthService
	requireAuth bool
}

func NewRouter(store Store, requireAuth bool) *Router {
	views := services.NewViewService(store)
	return &Router{
		store:       store,
		entries:     services.NewEntryService(store),
		views:       views,
		exports:     services.NewExportService(views),
		auth:        services.NewAuthService(store, middleware.SignToken),
		requireAuth: requireAuth,
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", rt.handleRegister) // POST
	mux.HandleFunc("/api/auth/login", rt.handleLogin)       // POST
	mux.HandleFunc("/api/students", rt.handleStudents)      // GET, POST
	mux.HandleFunc("/api/students/", rt.handleStudentByID)  // DELETE /api/students/{id}
	mux.HandleFunc("/api/skills", rt.handleSkills)
	mux.HandleFunc("/api/skills/", rt.handleSkillByID)
	mux.HandleFunc("/api/reinforcers", rt.handleReinforcers)
	mux.HandleFunc("/api/reinforcers/", rt.handleReinforcerByID)
	mux.HandleFunc("/api/org", rt.handleOrg)       // GET, PUT
	mux.HandleFunc("/api/entries", rt.handleEntries)
	mux.HandleFunc("/api/entries/", rt.handleEntryByID) // DELETE /api/entries/{id}
	mux.HandleFunc("/api/summary", rt.handleSummary)    // GET
	mux.HandleFunc("/api/export", rt.handleExport)      // GET
	mux.HandleFunc("/api/options", rt.handleFormOptions)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps core errors to HTTP statuses. The two hard validation
// errors carry stable codes so the form layer can block submission with a
// specific message.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrMissingPromptDetails):
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "missing_prompt_details", "error": err.Error()})
		return
	case errors.Is(err, services.ErrInvalidRating):
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "invalid_rating", "error": err.Error()})
		return
	}
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusBadRequest
		switch se.Code {
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		}
		writeJSON(w, status, map[string]string{"code": string(se.Code), "error": se.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// allowMutation gates writes when the deployment enables auth. The default
// single-device setup keeps every endpoint open, matching the original
// single-user behavior.
func (rt *Router) allowMutation(r *http.Request) bool {
	if !rt.requireAuth {
		return true
	}
	_, ok := middleware.UserIDFromContext(r.Context())
	return ok
}

func shortID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Register(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": res.Token, "user_id": res.UserID})
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": res.Token, "user_id": res.UserID})
}

func (rt *Router) handleStudents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, rt.store.ListStudents())
	case http.MethodPost:
		if !rt.allowMutation(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		st := &models.Student{ID: shortID("s"), Name: name}
		rt.store.AddStudent(st)
		writeJSON(w, http.StatusOK, st)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (rt *Router) handleStudentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/students/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !rt.allowMutation(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if !rt.store.RemoveStudent(id) {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (rt *Router) handleSkills(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, rt.store.ListSkills())
	case http.MethodPost:
		if !rt.allowMutation(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			Short string `json:"short"`
			Label string `json:"label"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		short := strings.TrimSpace(req.Short)
		if short == "" {
			http.Error(w, "short required", http.StatusBadRequest)
			return
		}
		label := strings.TrimSpace(req.Label)
		if label == "" {
			label = short
		}
		k := &models.Skill{ID: shortID("k"), Short: short, Label: label}
		rt.store.AddSkill(k)
		writeJSON(w, http.StatusOK, k)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (rt *Router) handleSkillByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/skills/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !rt.allowMutation(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if !rt.store.RemoveSkill(id) {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (rt *Router) handleReinforcers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, rt.store.ListReinforcers())
	case http.MethodPost:
		if !rt.allowMutation(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			Label string `json:"label"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		label := strings.TrimSpace(req.Label)
		if label == "" {
			http.Error(w, "label required", http.StatusBadRequest)
			return
		}
		rf := &models.Reinforcer{ID: shortID("r"), Label: label}
		rt.store.AddReinforcer(rf)
		writeJSON(w, http.StatusOK, rf)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (rt *Router) handleReinforcerByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/reinforcers/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !rt.allowMutation(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if !rt.store.RemoveReinforcer(id) {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (rt *Router) handleOrg(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, rt.store.Org())
	case http.MethodPut:
		if !rt.allowMutation(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var org models.Org
		if err := json.NewDecoder(r.Body).Decode(&org); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rt.store.SetOrg(org)
		writeJSON(w, http.StatusOK, org)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (rt *Router) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, rt.views.Project(filterFromQuery(r)))
	case http.MethodPost:
		if !rt.allowMutation(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var draft services.EntryDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		e, err := rt.entries.Save(draft)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (rt *Router) handleEntryByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/entries/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !rt.allowMutation(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if !rt.entries.Delete(id) {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (rt *Router) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, rt.views.Summary(filterFromQuery(r)))
}

func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	res := rt.exports.ExportCSV(filterFromQuery(r))
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	_, _ = w.Write(res.Data)
}

func (rt *Router) handleFormOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{
		"prompt_levels": models.PromptLevels,
		"settings":      models.SettingOptions,
		"functions":     models.FunctionOptions,
	})
}

func filterFromQuery(r *http.Request) services.Filter {
	q := r.URL.Query()
	return services.Filter{
		StudentID: q.Get("student_id"),
		SkillID:   q.Get("skill_id"),
		From:      q.Get("from"),
		To:        q.Get("to"),
	}
}
