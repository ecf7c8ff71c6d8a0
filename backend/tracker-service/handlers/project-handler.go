package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/services"
	"github.com/yyhhenry/sdu--neu-bug/models"
)

type ProjectHandler struct {
	Service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{Service: service}
}

func (h *ProjectHandler) SearchProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Service.SearchProjects(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ProjectList{Projects: projects})
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[models.CreateProjectReq](w, r)
	if !ok {
		return
	}
	project, err := h.Service.CreateProject(r.Context(), mux.Vars(r)["key"], req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[models.CreateProjectReq](w, r)
	if !ok {
		return
	}
	project, err := h.Service.UpdateProject(r.Context(), actor(r), mux.Vars(r)["key"], req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteProject(r.Context(), mux.Vars(r)["key"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, "Project deleted")
}

func (h *ProjectHandler) GetModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.Service.GetModules(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, modules)
}

func (h *ProjectHandler) UpdateModules(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[models.ModuleList](w, r)
	if !ok {
		return
	}
	if err := h.Service.UpdateModules(r.Context(), actor(r), mux.Vars(r)["key"], req.Modules); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, "Modules updated")
}

func (h *ProjectHandler) GetIssues(w http.ResponseWriter, r *http.Request) {
	search, err := models.ParseSearchIssueReq(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	issues, err := h.Service.GetIssues(r.Context(), mux.Vars(r)["key"], search)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.IssueList{Issues: issues})
}

func (h *ProjectHandler) CreateIssue(w http.ResponseWriter, r *http.Request) {
	issue, ok := decodeBody[models.IssueInfo](w, r)
	if !ok {
		return
	}
	created, err := h.Service.CreateIssue(r.Context(), actor(r), mux.Vars(r)["key"], issue)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, "Issue #"+created.ID+" created")
}

func (h *ProjectHandler) ReplaceIssues(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[models.IssueList](w, r)
	if !ok {
		return
	}
	if err := h.Service.ReplaceIssues(r.Context(), actor(r), mux.Vars(r)["key"], req.Issues); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, "Issues updated")
}

func (h *ProjectHandler) UpdateIssue(w http.ResponseWriter, r *http.Request) {
	issue, ok := decodeBody[models.IssueInfo](w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	if _, err := h.Service.UpdateIssue(r.Context(), actor(r), vars["key"], vars["id"], issue); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, "Issue updated")
}

func (h *ProjectHandler) DeleteIssue(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.Service.DeleteIssue(r.Context(), actor(r), vars["key"], vars["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, "Issue deleted")
}
