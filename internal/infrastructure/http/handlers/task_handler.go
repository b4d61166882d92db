package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/application/task"
	"github.com/taskstream/taskstream/internal/domain"
	domerrors "github.com/taskstream/taskstream/internal/domain/errors"
	"github.com/taskstream/taskstream/internal/infrastructure/http/middleware"
)

const dueDateLayout = "2006-01-02"

type TaskHandler struct {
	create     *task.CreateTask
	update     *task.UpdateTask
	deleteTask *task.DeleteTask
	get        *task.GetTask
	byProject  *task.ListTasksByProject
	byAssignee *task.ListTasksByAssignee
	validate   *validator.Validate
	log        zerolog.Logger
}

func NewTaskHandler(create *task.CreateTask, update *task.UpdateTask, deleteTask *task.DeleteTask, get *task.GetTask, byProject *task.ListTasksByProject, byAssignee *task.ListTasksByAssignee, log zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		create:     create,
		update:     update,
		deleteTask: deleteTask,
		get:        get,
		byProject:  byProject,
		byAssignee: byAssignee,
		validate:   validator.New(),
		log:        log,
	}
}

type taskBody struct {
	Name        *string  `json:"name" validate:"omitempty,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Status      *string  `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority    *string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string  `json:"dueDate"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,max=64"`
	ProjectID   *string  `json:"projectId"`
	AssignedTo  *string  `json:"assignedTo"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.AuthFromContext(r.Context())
	if claims == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	var body taskBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	if body.Name == nil || SanitizeName(*body.Name) == "" {
		writeErr(w, http.StatusBadRequest, "", "task name required")
		return
	}
	if body.ProjectID == nil {
		writeErr(w, http.StatusBadRequest, "", "projectId required")
		return
	}
	projectID, err := domain.ParseProjectID(*body.ProjectID)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
		return
	}

	input := task.CreateTaskInput{
		Name:      SanitizeName(*body.Name),
		ProjectID: projectID,
		CreatedBy: claims.UserID,
		Tags:      body.Tags,
	}
	if body.Description != nil {
		input.Description = *body.Description
	}
	if body.Status != nil {
		input.Status = domain.TaskStatus(*body.Status)
	}
	if body.Priority != nil {
		input.Priority = domain.TaskPriority(*body.Priority)
	}
	if body.DueDate != nil {
		due, err := time.Parse(dueDateLayout, *body.DueDate)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "", "invalid dueDate, want YYYY-MM-DD")
			return
		}
		input.DueDate = &due
	}
	if body.AssignedTo != nil {
		assignee, err := domain.ParseUserID(*body.AssignedTo)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "", "invalid assignedTo")
			return
		}
		input.AssignedTo = &assignee
	}

	created, err := h.create.Execute(r.Context(), input)
	if err != nil {
		if errors.Is(err, domerrors.ErrProjectNotFound) {
			writeErr(w, http.StatusNotFound, "", "project not found")
			return
		}
		h.log.Error().Err(err).Msg("create task failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, taskJSON(created))
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseTaskID(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid task id")
		return
	}
	t, err := h.get.Execute(r.Context(), id)
	if err != nil {
		if errors.Is(err, domerrors.ErrTaskNotFound) {
			writeErr(w, http.StatusNotFound, "", "task not found")
			return
		}
		h.log.Error().Err(err).Msg("get task failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, taskJSON(t))
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseTaskID(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid task id")
		return
	}
	var body taskBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}

	input := task.UpdateTaskInput{
		TaskID:      id,
		Name:        body.Name,
		Description: body.Description,
		Tags:        body.Tags,
	}
	if body.Status != nil {
		status := domain.TaskStatus(*body.Status)
		input.Status = &status
	}
	if body.Priority != nil {
		priority := domain.TaskPriority(*body.Priority)
		input.Priority = &priority
	}
	if body.DueDate != nil {
		due, err := time.Parse(dueDateLayout, *body.DueDate)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "", "invalid dueDate, want YYYY-MM-DD")
			return
		}
		input.DueDate = &due
	}
	if body.AssignedTo != nil {
		assignee, err := domain.ParseUserID(*body.AssignedTo)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "", "invalid assignedTo")
			return
		}
		input.AssignedTo = &assignee
	}

	updated, err := h.update.Execute(r.Context(), input)
	if err != nil {
		if errors.Is(err, domerrors.ErrTaskNotFound) {
			writeErr(w, http.StatusNotFound, "", "task not found")
			return
		}
		h.log.Error().Err(err).Msg("update task failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, taskJSON(updated))
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseTaskID(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid task id")
		return
	}
	if err := h.deleteTask.Execute(r.Context(), id); err != nil {
		if errors.Is(err, domerrors.ErrTaskNotFound) {
			writeErr(w, http.StatusNotFound, "", "task not found")
			return
		}
		h.log.Error().Err(err).Msg("delete task failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := domain.ParseProjectID(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid project id")
		return
	}
	tasks, err := h.byProject.Execute(r.Context(), projectID)
	if err != nil {
		h.log.Error().Err(err).Msg("list tasks failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasksJSON(tasks)})
}

func (h *TaskHandler) ListAssigned(w http.ResponseWriter, r *http.Request) {
	claims := middleware.AuthFromContext(r.Context())
	if claims == nil {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	tasks, err := h.byAssignee.Execute(r.Context(), claims.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("list assigned tasks failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasksJSON(tasks)})
}

func tasksJSON(tasks []*domain.Task) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskJSON(t))
	}
	return out
}

func taskJSON(t *domain.Task) map[string]interface{} {
	entry := map[string]interface{}{
		"id":          t.ID.String(),
		"name":        t.Name,
		"description": t.Description,
		"status":      string(t.Status),
		"priority":    string(t.Priority),
		"tags":        t.Tags,
		"projectId":   t.ProjectID.String(),
		"createdBy":   t.CreatedBy.String(),
		"createdAt":   t.CreatedAt,
		"updatedAt":   t.UpdatedAt,
	}
	if t.DueDate != nil {
		entry["dueDate"] = t.DueDate.Format(dueDateLayout)
	}
	if t.AssignedTo != nil {
		entry["assignedTo"] = t.AssignedTo.String()
	}
	return entry
}
