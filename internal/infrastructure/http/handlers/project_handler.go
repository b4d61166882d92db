package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/application/project"
	"github.com/taskstream/taskstream/internal/domain"
	domerrors "github.com/taskstream/taskstream/internal/domain/errors"
	"github.com/taskstream/taskstream/internal/infrastructure/http/middleware"
)

type ProjectHandler struct {
	create   *project.CreateProjectAndGrantOwnerRole
	assign   *project.AssignUserToProjectWithRole
	update   *project.UpdateProject
	get      *project.GetProject
	list     *project.ListProjectsForUser
	validate *validator.Validate
	log      zerolog.Logger
}

func NewProjectHandler(create *project.CreateProjectAndGrantOwnerRole, assign *project.AssignUserToProjectWithRole, update *project.UpdateProject, get *project.GetProject, list *project.ListProjectsForUser, log zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{
		create:   create,
		assign:   assign,
		update:   update,
		get:      get,
		list:     list,
		validate: validator.New(),
		log:      log,
	}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.AuthFromContext(r.Context())
	if claims == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	var body struct {
		Name        string `json:"name" validate:"required,max=255"`
		Description string `json:"description" validate:"max=2000"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	name := SanitizeName(body.Name)
	if name == "" {
		writeErr(w, http.StatusBadRequest, "", "invalid project name")
		return
	}
	result, err := h.create.Execute(r.Context(), project.CreateProjectInput{
		CreatedBy:   claims.UserID,
		Name:        name,
		Description: body.Description,
	})
	if err != nil {
		if errors.Is(err, domerrors.ErrUserNotFound) {
			writeErr(w, http.StatusUnauthorized, "", "unknown user")
			return
		}
		h.log.Error().Err(err).Msg("create project failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, projectJSON(result.Project))
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseProjectID(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
		return
	}
	p, err := h.get.Execute(r.Context(), id)
	if err != nil {
		if errors.Is(err, domerrors.ErrProjectNotFound) {
			writeErr(w, http.StatusNotFound, "", "project not found")
			return
		}
		h.log.Error().Err(err).Msg("get project failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, projectJSON(p))
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.AuthFromContext(r.Context())
	if claims == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	id, err := domain.ParseProjectID(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
		return
	}
	var body struct {
		Name        *string `json:"name" validate:"omitempty,max=255"`
		Description *string `json:"description" validate:"omitempty,max=2000"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	if body.Name != nil {
		name := SanitizeName(*body.Name)
		if name == "" {
			writeErr(w, http.StatusBadRequest, "", "invalid project name")
			return
		}
		body.Name = &name
	}
	p, err := h.update.Execute(r.Context(), project.UpdateProjectInput{
		ProjectID:   id,
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		if errors.Is(err, domerrors.ErrProjectNotFound) {
			writeErr(w, http.StatusNotFound, "", "project not found")
			return
		}
		h.log.Error().Err(err).Msg("update project failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, projectJSON(p))
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.AuthFromContext(r.Context())
	if claims == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	projects, err := h.list.Execute(r.Context(), claims.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("list projects failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	out := make([]map[string]interface{}, 0, len(projects))
	for i := range projects {
		entry := projectJSON(&projects[i].Project)
		entry["role"] = projects[i].RoleName
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": out})
}

func (h *ProjectHandler) Assign(w http.ResponseWriter, r *http.Request) {
	claims := middleware.AuthFromContext(r.Context())
	if claims == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	projectID, err := domain.ParseProjectID(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
		return
	}
	var body struct {
		Username string `json:"username" validate:"required,max=32"`
		Role     string `json:"role" validate:"required,max=64"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	result, err := h.assign.Execute(r.Context(), project.AssignUserInput{
		ActingUserID:   claims.UserID,
		TargetUsername: SanitizeUsername(body.Username),
		ProjectID:      projectID,
		RoleName:       body.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, domerrors.ErrUserNotFound):
			writeErr(w, http.StatusNotFound, "", "user not found")
		case errors.Is(err, domerrors.ErrProjectNotFound):
			writeErr(w, http.StatusNotFound, "", "project not found")
		case errors.Is(err, domerrors.ErrRoleNotFound):
			writeErr(w, http.StatusBadRequest, "", "unknown role")
		case errors.Is(err, domerrors.ErrRoleAlreadyGranted):
			writeErr(w, http.StatusConflict, "", "user already has a role on this project")
		default:
			h.log.Error().Err(err).Msg("assign user failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"project_id": projectID.String(),
		"user_id":    result.Target.ID.String(),
		"username":   result.Target.Username,
		"role":       body.Role,
		"granted_at": result.Grant.GrantedAt,
	})
}

func projectJSON(p *domain.Project) map[string]interface{} {
	return map[string]interface{}{
		"id":          p.ID.String(),
		"name":        p.Name,
		"description": p.Description,
		"created_by":  p.CreatedBy.String(),
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}
