package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"eventhub/internal/workflow"
	"eventhub/models"
)

// maxBodyBytes ограничивает размер тела запроса.
const maxBodyBytes = 1 << 20

// Workflow это часть workflow.Service, которую использует HTTP слой.
type Workflow interface {
	CreateProposal(ctx context.Context, np workflow.NewProposal) (*models.Proposal, error)
	GetProposal(ctx context.Context, id uuid.UUID) (*workflow.ProposalView, error)
	ListProposals(ctx context.Context, filter models.ProposalFilter) ([]workflow.ProposalView, error)
	EditProposal(ctx context.Context, id uuid.UUID, edits workflow.ProposalEdits, actorID uuid.UUID) (*models.Proposal, error)
	Review(ctx context.Context, id uuid.UUID, d workflow.Decision) (*workflow.ProposalView, error)
	AddAdvisorComment(ctx context.Context, id uuid.UUID, comment string, advisorID uuid.UUID) (*workflow.ProposalView, error)

	SubmitSponsor(ctx context.Context, ns workflow.NewSponsor) (*models.Sponsor, error)
	ReviewSponsor(ctx context.Context, id uuid.UUID, d workflow.SponsorDecision) (*models.Sponsor, error)
	ListSponsors(ctx context.Context, filter models.SponsorFilter) ([]workflow.SponsorView, error)
}

// Handler оборачивает Workflow для доступа по HTTP
type Handler struct {
	svc    Workflow
	logger *slog.Logger
}

func NewHandler(svc Workflow, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// writeError переводит ошибки workflow в HTTP статусы. Неизвестные ошибки
// логируются и отдаются как 500 без подробностей.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make(map[string]string, len(verr.Fields))
		for _, f := range verr.Fields {
			fields[f.Field] = f.Error
		}
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Validation failed", Errors: fields})
	case errors.Is(err, models.ErrNotFound):
		writeFail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidState):
		writeFail(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrForbidden):
		writeFail(w, http.StatusForbidden, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		writeFail(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON читает JSON тело ограниченного размера в dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid JSON format")
		return false
	}
	return true
}

// uuidParam парсит параметр пути chi как UUID.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

type PaginationParams struct {
	Limit  int
	Offset int
}

// parsePaginationParams парсит limit и offset из query, с дефолтами 5 и 0;
// limit не больше 50.
func parsePaginationParams(r *http.Request) PaginationParams {
	params := PaginationParams{Limit: 5}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 50 {
		params.Limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		params.Offset = o
	}
	return params
}
