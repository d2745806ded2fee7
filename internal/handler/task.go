package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/mongotask-api/internal/model"
	"github.com/BuzzLyutic/mongotask-api/internal/repo"
	"github.com/BuzzLyutic/mongotask-api/internal/service"
	"github.com/BuzzLyutic/mongotask-api/pkg/respond"
)

const (
	msgTitleRequired = "Title is required"
	msgTaskNotFound  = "Task not found"
)

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.List(r.Context())
	if err != nil {
		h.handleErrors(w, r, "list tasks", err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	task, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.handleErrors(w, r, "create task", err)
		return
	}
	respond.Result(w, r, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	task, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.handleErrors(w, r, "update task", err)
		return
	}
	respond.Result(w, r, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, "delete task", err)
		return
	}
	respond.Result(w, r, res)
}

func (h *TaskHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		h.logger.Warn("store ping failed", zap.Error(err))
		respond.Error(w, r, http.StatusServiceUnavailable, err.Error())
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeInput treats an unreadable body the same as a missing title.
// The whole body must be a single JSON value.
func (h *TaskHandler) decodeInput(w http.ResponseWriter, r *http.Request) (model.TaskInput, bool) {
	var in model.TaskInput
	body, err := io.ReadAll(r.Body)
	if err == nil {
		err = json.Unmarshal(body, &in)
	}
	if err != nil {
		h.logger.Debug("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, msgTitleRequired)
		return in, false
	}
	return in, true
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrTitleRequired):
		respond.Error(w, r, http.StatusBadRequest, msgTitleRequired)
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, msgTaskNotFound)
	default:
		// Malformed ids land here too and are reported like store failures.
		h.logger.Error("error in "+op, zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, err.Error())
	}
}
