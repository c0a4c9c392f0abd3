// Package handler はsignalsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"signal_backend/internal/feature/signals/domain/entity"
	"signal_backend/internal/feature/signals/transport/http/dto"
	"signal_backend/internal/feature/signals/usecase"
	jwtmw "signal_backend/internal/platform/jwt"
)

// EngineUsecase はエンジン操作のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type EngineUsecase interface {
	AnalyzeSingle(ctx context.Context, symbol string, timeframes []entity.Timeframe) (*entity.Candidate, error)
	FindBot(ctx context.Context, id string) (*entity.BotConfig, error)
	RunBot(ctx context.Context, bot entity.BotConfig) (*usecase.RunResult, error)
	SendSignalToUsers(ctx context.Context, id string) (int, error)
}

// EngineHandler は単一エントリポイント POST /engine を処理します。
type EngineHandler struct {
	uc EngineUsecase
}

// NewEngineHandler は指定されたusecaseでEngineHandlerを生成します。
func NewEngineHandler(uc EngineUsecase) *EngineHandler {
	return &EngineHandler{uc: uc}
}

// Handle は action に応じて処理を振り分けます。未知の action は処理前に 400 を返します。
//
// エンドポイント例:
// POST /engine {"action":"analyze_single","symbol":"EURUSD"}
func (h *EngineHandler) Handle(c *gin.Context) {
	var req dto.EngineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
		return
	}

	switch req.Action {
	case dto.ActionAnalyzeSingle:
		h.analyzeSingle(c, req)
	case dto.ActionRunBot:
		h.runBot(c, req)
	case dto.ActionSendSignalToUsers:
		h.sendSignalToUsers(c, req)
	default:
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: usecase.ErrUnknownAction.Error()})
	}
}

func (h *EngineHandler) analyzeSingle(c *gin.Context, req dto.EngineRequest) {
	cand, err := h.uc.AnalyzeSingle(c.Request.Context(), req.Symbol, dto.Timeframes(req.Timeframes))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AnalyzeResponse{Signal: cand})
}

func (h *EngineHandler) runBot(c *gin.Context, req dto.EngineRequest) {
	var bot entity.BotConfig
	switch {
	case req.BotID != "":
		stored, err := h.uc.FindBot(c.Request.Context(), req.BotID)
		if err != nil {
			h.fail(c, err)
			return
		}
		bot = *stored
	case req.Bot != nil:
		bot = req.Bot.ToEntity()
	default:
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "bot or bot_id is required"})
		return
	}

	// 設定に実行者がなければ認証済みの主体を使う
	if bot.ActorID == "" {
		bot.ActorID = jwtmw.UserID(c)
	}

	res, err := h.uc.RunBot(c.Request.Context(), bot)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.RunBotResponse{Count: res.Count, Signals: res.Signals})
}

func (h *EngineHandler) sendSignalToUsers(c *gin.Context, req dto.EngineRequest) {
	if req.SignalID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "signal_id is required"})
		return
	}
	n, err := h.uc.SendSignalToUsers(c.Request.Context(), req.SignalID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SendResponse{Notified: n})
}

// fail はユースケースのエラーをHTTPステータスに変換します。
func (h *EngineHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrEmptySymbol):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrMissingActor):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrSignalNotFound), errors.Is(err, usecase.ErrBotNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("engine request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
	}
}
