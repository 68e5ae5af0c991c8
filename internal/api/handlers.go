package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/assessment"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/httputil"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/letters"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/pipeline"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/report"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/version"
)

// LearnerAPI is the wire shape for one learner. The storage record carries
// raw chart cells keyed by struct; this keeps the response flat and stable.
type LearnerAPI struct {
	LearnerID      string `json:"learner_id"`
	FirstName      string `json:"name_first"`
	Surname        string `json:"name_second"`
	School         string `json:"school"`
	Grade          string `json:"grade"`
	Class          string `json:"class"`
	ClassCohort    string `json:"class_cohort"`
	TA             string `json:"ta"`
	LettersCorrect int    `json:"letters_correct"`
	Group          int    `json:"group"`
}

func learnerToAPI(rec *assessment.LearnerRecord) LearnerAPI {
	return LearnerAPI{
		LearnerID:      rec.LearnerID,
		FirstName:      rec.FirstName,
		Surname:        rec.Surname,
		School:         rec.School,
		Grade:          rec.Grade,
		Class:          rec.Class,
		ClassCohort:    rec.ClassCohort,
		TA:             rec.TA,
		LettersCorrect: rec.LettersCorrect,
		Group:          rec.Group,
	}
}

// resolveRunID picks the run to serve: the run_id query parameter when given,
// the latest finished run otherwise. A false return means the response has
// already been written.
func (s *Server) resolveRunID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if runID := r.URL.Query().Get("run_id"); runID != "" {
		return runID, true
	}
	runID, err := s.db.LatestRunID()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to resolve run: %v", err))
		return "", false
	}
	if runID == "" {
		httputil.NotFound(w, "no finished pipeline run")
		return "", false
	}
	return runID, true
}

func (s *Server) listLearners(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	runID, ok := s.resolveRunID(w, r)
	if !ok {
		return
	}

	recs, err := s.db.Learners(runID, r.URL.Query().Get("school"), r.URL.Query().Get("class_cohort"))
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve learners: %v", err))
		return
	}

	apiLearners := make([]LearnerAPI, len(recs))
	for i, rec := range recs {
		apiLearners[i] = learnerToAPI(rec)
	}
	httputil.WriteJSONOK(w, apiLearners)
}

// GroupAPI is one teaching group with its members in reading order.
type GroupAPI struct {
	School      string       `json:"school"`
	ClassCohort string       `json:"class_cohort"`
	Group       int          `json:"group"`
	Members     []LearnerAPI `json:"members"`
}

func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	runID, ok := s.resolveRunID(w, r)
	if !ok {
		return
	}

	recs, err := s.db.Learners(runID, r.URL.Query().Get("school"), r.URL.Query().Get("class_cohort"))
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve learners: %v", err))
		return
	}

	type groupKey struct {
		school, cohort string
		group          int
	}
	byGroup := make(map[groupKey][]LearnerAPI)
	for _, rec := range recs {
		key := groupKey{school: rec.School, cohort: rec.ClassCohort, group: rec.Group}
		byGroup[key] = append(byGroup[key], learnerToAPI(rec))
	}

	groups := make([]GroupAPI, 0, len(byGroup))
	for key, members := range byGroup {
		sort.Slice(members, func(i, j int) bool {
			if members[i].LettersCorrect != members[j].LettersCorrect {
				return members[i].LettersCorrect < members[j].LettersCorrect
			}
			return members[i].LearnerID < members[j].LearnerID
		})
		groups = append(groups, GroupAPI{
			School:      key.school,
			ClassCohort: key.cohort,
			Group:       key.group,
			Members:     members,
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].School != groups[j].School {
			return groups[i].School < groups[j].School
		}
		if groups[i].ClassCohort != groups[j].ClassCohort {
			return groups[i].ClassCohort < groups[j].ClassCohort
		}
		return groups[i].Group < groups[j].Group
	})
	httputil.WriteJSONOK(w, groups)
}

func (s *Server) showProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	rollup, err := s.db.GroupProgressRollup()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve progress: %v", err))
		return
	}

	response := map[string]interface{}{
		"groups": rollup,
		"flags":  pipeline.FlagSameProgress(rollup, s.cfg.GetSameProgressMinGroups()),
	}
	httputil.WriteJSONOK(w, response)
}

func (s *Server) showCohortStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	runID, ok := s.resolveRunID(w, r)
	if !ok {
		return
	}

	recs, err := s.db.Learners(runID, r.URL.Query().Get("school"), "")
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve learners: %v", err))
		return
	}
	httputil.WriteJSONOK(w, pipeline.SummarizeCohorts(recs))
}

type sessionRequest struct {
	School        string `json:"school"`
	TA            string `json:"ta"`
	GroupName     string `json:"group_name"`
	TaughtLetters string `json:"taught_letters"`
	SessionAt     string `json:"session_at,omitempty"` // RFC3339, defaults to now
}

func (s *Server) recordSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("Invalid session payload: %v", err))
		return
	}
	if req.School == "" || req.TA == "" || req.GroupName == "" {
		httputil.BadRequest(w, "school, ta and group_name are required")
		return
	}

	sessionAt := time.Now().UTC()
	if req.SessionAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.SessionAt)
		if err != nil {
			httputil.BadRequest(w, fmt.Sprintf("Invalid session_at: %v", err))
			return
		}
		sessionAt = parsed
	}

	progress := letters.CalculateProgress(req.TaughtLetters)
	if err := s.db.RecordSession(req.School, req.TA, req.GroupName, req.TaughtLetters, progress, sessionAt); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to record session: %v", err))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, progress)
}

func (s *Server) downloadTracker(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	runID, ok := s.resolveRunID(w, r)
	if !ok {
		return
	}

	recs, err := s.db.Learners(runID, "", "")
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve learners: %v", err))
		return
	}
	if len(recs) == 0 {
		httputil.NotFound(w, fmt.Sprintf("run %s has no learners", runID))
		return
	}

	httputil.SetCSVAttachment(w, fmt.Sprintf("tracker_%s.csv", runID))
	rows := assessment.BuildKnowledgeMatrix(recs)
	if err := report.WriteTrackerCSV(w, rows); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to write tracker: %v", err))
		return
	}
}

func (s *Server) progressChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	rollup, err := s.db.GroupProgressRollup()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve progress: %v", err))
		return
	}
	if len(rollup) == 0 {
		httputil.NotFound(w, "no sessions recorded")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderProgressBarChart(w, rollup); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to render chart: %v", err))
		return
	}
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	response := map[string]interface{}{
		"version":                  version.Version,
		"group_size":               s.cfg.GetGroupSize(),
		"same_progress_min_groups": s.cfg.GetSameProgressMinGroups(),
		"timezone":                 s.cfg.GetLocation().String(),
		"export_dir":               s.cfg.GetExportDir(),
		"letter_sequence":          letters.All(),
	}
	httputil.WriteJSONOK(w, response)
}
