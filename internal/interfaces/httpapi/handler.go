package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fantasy-live/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-live/internal/platform/logging"
	"github.com/riskibarqy/fantasy-live/internal/usecase"
)

// LiveReader is the slice of usecase.LiveService the handlers need.
type LiveReader interface {
	Latest() (usecase.GameweekLive, bool)
	Entry(ctx context.Context, entryID, gameweek int) (scoring.EntryResult, error)
	Refresh(ctx context.Context, input usecase.RefreshInput) (usecase.RefreshResult, error)
}

type Handler struct {
	live      LiveReader
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(live LiveReader, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		live:      live,
		logger:    logger.Named("httpapi"),
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetLive(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLive")
	defer span.End()

	latest, ok := h.live.Latest()
	if !ok {
		writeError(ctx, w, usecase.ErrNoLiveGameweek)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, toLiveDTO(latest))
}

func (h *Handler) GetLiveEntry(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLiveEntry")
	defer span.End()

	entryID, err := parsePositiveInt(r.PathValue("entryID"), "entryID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	gameweek := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("gameweek")); raw != "" {
		gameweek, err = parsePositiveInt(raw, "gameweek")
		if err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	result, err := h.live.Entry(ctx, entryID, gameweek)
	if err != nil {
		h.logger.WarnContext(ctx, "get live entry failed", "entry_id", entryID, "gameweek", gameweek, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

type refreshLiveRequest struct {
	Gameweek int   `json:"gameweek" validate:"gte=0,lte=38"`
	EntryIDs []int `json:"entry_ids" validate:"omitempty,max=500,dive,gt=0"`
}

// RefreshLive runs one refresh pass on demand. An empty body refreshes the
// live gameweek for the configured entrants.
func (h *Handler) RefreshLive(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshLive")
	defer span.End()

	req, err := decodeRefreshLiveRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.live.Refresh(ctx, usecase.RefreshInput{
		Gameweek: req.Gameweek,
		EntryIDs: req.EntryIDs,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "live refresh failed", "gameweek", req.Gameweek, "entries", len(req.EntryIDs), "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

var strictJSON = sonic.Config{DisallowUnknownFields: true}.Froze()

func decodeRefreshLiveRequest(r *http.Request) (refreshLiveRequest, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		return refreshLiveRequest{}, fmt.Errorf("%w: read body: %v", usecase.ErrInvalidInput, err)
	}

	var req refreshLiveRequest
	if len(bytes.TrimSpace(raw)) == 0 {
		return req, nil
	}
	if err := strictJSON.Unmarshal(raw, &req); err != nil {
		return refreshLiveRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return req, nil
}

func parsePositiveInt(raw, name string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}
