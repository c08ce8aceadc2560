package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cwrk-planet/presence-hub/internal/domain"
	"github.com/cwrk-planet/presence-hub/internal/memory"
	"github.com/cwrk-planet/presence-hub/internal/service"
	"github.com/cwrk-planet/presence-hub/pkg/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	memberSvc *service.MemberService
	chatSvc   *service.ChatService
	statusSvc *service.StatusService
	version   string
}

func NewHandler(member *service.MemberService, chat *service.ChatService, status *service.StatusService, version string) *Handler {
	return &Handler{
		memberSvc: member,
		chatSvc:   chat,
		statusSvc: status,
		version:   version,
	}
}

// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, IndexResponse{
		App:     "presence-hub",
		Version: h.version,
		Endpoints: map[string]string{
			"api_status":    "/api/status",
			"api_login":     "/api/auth/login (POST)",
			"api_chats":     "/api/chats",
			"chat_history":  "/api/chats/{id}/messages",
			"camera_status": "/api/camera/status",
			"websocket":     "/ws",
		},
	})
}

// GET /api/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.statusSvc.Statistics(r.Context())
	httputil.JSON(w, http.StatusOK, StatusResponse{
		Status:    "online",
		Timestamp: h.statusSvc.Now(),
		Statistics: Statistics{
			ActiveUsers:   st.ActiveUsers,
			ActiveCameras: st.ActiveCameras,
			ActiveChats:   st.ActiveChats,
			TotalMessages: st.TotalMessages,
		},
	})
}

// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Debug("handler.Login.Decode:", slog.Any("err", err))
		httputil.Error(r.Context(), w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	p, token := h.memberSvc.Login(r.Context(), req.Username)
	httputil.JSON(w, http.StatusOK, LoginResponse{
		UserID:   p.UserID,
		Username: p.Username,
		Token:    token,
	})
}

// GET /api/chats
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	rooms := h.statusSvc.Rooms(r.Context())
	resp := ChatsResponse{Chats: make([]ChatItem, 0, len(rooms))}
	for _, rm := range rooms {
		resp.Chats = append(resp.Chats, ChatItem{
			RoomID:       rm.RoomID,
			Users:        rm.Users,
			LastMessage:  rm.LastMessage,
			Timestamp:    rm.LastAt,
			MessageCount: rm.MessageCount,
		})
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// GET /api/chats/{id}/messages?cursor=&limit=
func (h *Handler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	cursor := r.URL.Query().Get("cursor")
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	items, next, err := h.chatSvc.History(r.Context(), roomID, cursor, limit)
	if err != nil {
		slog.Debug("handler.ChatHistory:", slog.Any("err", err))
		writeErr(w, r, err)
		return
	}

	resp := ChatHistoryResponse{Items: make([]ChatMessageItem, 0, len(items)), NextCursor: next}
	for _, m := range items {
		resp.Items = append(resp.Items, ChatMessageItem{
			ID:        m.ID,
			UserID:    m.UserID,
			Username:  m.Username,
			Text:      m.Text,
			Timestamp: m.CreatedAt.Truncate(time.Millisecond),
			Type:      m.Type,
		})
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// GET /api/camera/status
func (h *Handler) CameraStatus(w http.ResponseWriter, r *http.Request) {
	active, devices := h.statusSvc.Devices(r.Context())
	resp := CameraStatusResponse{
		ActiveCameras: active,
		Cameras:       make(map[string]CameraItem, len(devices)),
	}
	for _, d := range devices {
		resp.Cameras[d.ID] = CameraItem{
			StartTime:  d.StartedAt,
			LastActive: d.LastActive,
			FPS:        d.Frames,
			Status:     string(d.Status),
			UserID:     d.UserID,
		}
	}
	httputil.JSON(w, http.StatusOK, resp)
}

func toHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, memory.ErrInvalidCursor):
		return http.StatusBadRequest, "invalid_cursor"
	case errors.Is(err, domain.ErrInvalidPayload),
		errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrMessageTooLong):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := toHTTP(err)
	if status >= http.StatusInternalServerError {
		slog.Error("http handler failed", slog.String("path", r.URL.Path), slog.Any("err", err))
	}
	httputil.Error(r.Context(), w, status, msg, nil)
}
