package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	subUsecases "github.com/homechef-inc/mealsub/internal/application/subscription/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/setting"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
	"github.com/homechef-inc/mealsub/internal/shared/utils"
)

// GroupHandler serves a consumer's subscription group: reads and the
// pause/resume/cancel transitions. Every transition has a preview that
// computes the effect without writing and a confirm that applies it.
type GroupHandler struct {
	getUseCase    getGroupUseCase
	pauseUseCase  pauseUseCase
	resumeUseCase resumeUseCase
	cancelUseCase cancelUseCase
	logger        logger.Interface
}

func NewGroupHandler(
	getUC getGroupUseCase,
	pauseUC pauseUseCase,
	resumeUC resumeUseCase,
	cancelUC cancelUseCase,
	logger logger.Interface,
) *GroupHandler {
	return &GroupHandler{
		getUseCase:    getUC,
		pauseUseCase:  pauseUC,
		resumeUseCase: resumeUC,
		cancelUseCase: cancelUC,
		logger:        logger,
	}
}

type PauseRequest struct {
	PauseDate string `json:"pause_date" validate:"omitempty,civildate"`
}

type ResumeRequest struct {
	ResumeDate string `json:"resume_date" validate:"omitempty,civildate"`
}

type CancelRequest struct {
	CancelDate       string `json:"cancel_date" validate:"omitempty,civildate"`
	Reason           string `json:"reason" validate:"max=500"`
	RefundPreference string `json:"refund_preference" validate:"omitempty,oneof=refund credit"`
	Confirm          bool   `json:"confirm"`
}

// groupRequest resolves the principal and group id and decodes an optional
// JSON body into req.
func (h *GroupHandler) groupRequest(c *gin.Context, req any) (principal, groupID uint, ok bool) {
	if principal, ok = principalID(c); !ok {
		return 0, 0, false
	}
	if groupID, ok = uintParam(c, "id"); !ok {
		return 0, 0, false
	}
	if req != nil && !bindJSON(c, req) {
		h.logger.Warnw("invalid request body", "group_id", groupID)
		return 0, 0, false
	}
	return principal, groupID, true
}

// Get handles GET /api/groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	principal, groupID, ok := h.groupRequest(c, nil)
	if !ok {
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), subUsecases.GetGroupQuery{
		PrincipalID: principal,
		GroupID:     groupID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ListCredits handles GET /api/groups/:id/credits
func (h *GroupHandler) ListCredits(c *gin.Context) {
	principal, groupID, ok := h.groupRequest(c, nil)
	if !ok {
		return
	}

	result, err := h.getUseCase.ListCredits(c.Request.Context(), subUsecases.GetGroupQuery{
		PrincipalID: principal,
		GroupID:     groupID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *GroupHandler) pauseCommand(c *gin.Context) (subUsecases.PauseCommand, bool) {
	var req PauseRequest
	principal, groupID, ok := h.groupRequest(c, &req)
	if !ok {
		return subUsecases.PauseCommand{}, false
	}
	date, ok := dateOrToday(c, req.PauseDate, "pause_date")
	if !ok {
		return subUsecases.PauseCommand{}, false
	}
	return subUsecases.PauseCommand{PrincipalID: principal, GroupID: groupID, PauseDate: date}, true
}

// PreviewPause handles POST /api/groups/:id/pause/preview
func (h *GroupHandler) PreviewPause(c *gin.Context) {
	cmd, ok := h.pauseCommand(c)
	if !ok {
		return
	}
	result, err := h.pauseUseCase.Preview(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ConfirmPause handles POST /api/groups/:id/pause
func (h *GroupHandler) ConfirmPause(c *gin.Context) {
	cmd, ok := h.pauseCommand(c)
	if !ok {
		return
	}
	result, err := h.pauseUseCase.Confirm(c.Request.Context(), cmd)
	if err != nil {
		h.logger.Errorw("failed to pause group", "error", err, "group_id", cmd.GroupID)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "subscription paused", result)
}

func (h *GroupHandler) resumeCommand(c *gin.Context) (subUsecases.ResumeCommand, bool) {
	var req ResumeRequest
	principal, groupID, ok := h.groupRequest(c, &req)
	if !ok {
		return subUsecases.ResumeCommand{}, false
	}
	date, ok := dateOrToday(c, req.ResumeDate, "resume_date")
	if !ok {
		return subUsecases.ResumeCommand{}, false
	}
	return subUsecases.ResumeCommand{PrincipalID: principal, GroupID: groupID, ResumeDate: date}, true
}

// PreviewResume handles POST /api/groups/:id/resume/preview
func (h *GroupHandler) PreviewResume(c *gin.Context) {
	cmd, ok := h.resumeCommand(c)
	if !ok {
		return
	}
	result, err := h.resumeUseCase.Preview(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ConfirmResume handles POST /api/groups/:id/resume
func (h *GroupHandler) ConfirmResume(c *gin.Context) {
	cmd, ok := h.resumeCommand(c)
	if !ok {
		return
	}
	result, err := h.resumeUseCase.Confirm(c.Request.Context(), cmd)
	if err != nil {
		h.logger.Errorw("failed to resume group", "error", err, "group_id", cmd.GroupID)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "subscription resumed", result)
}

func (h *GroupHandler) cancelCommand(c *gin.Context) (subUsecases.CancelCommand, bool) {
	var req CancelRequest
	principal, groupID, ok := h.groupRequest(c, &req)
	if !ok {
		return subUsecases.CancelCommand{}, false
	}
	date, ok := dateOrToday(c, req.CancelDate, "cancel_date")
	if !ok {
		return subUsecases.CancelCommand{}, false
	}
	return subUsecases.CancelCommand{
		PrincipalID:      principal,
		GroupID:          groupID,
		CancelDate:       date,
		Reason:           req.Reason,
		RefundPreference: setting.Settlement(req.RefundPreference),
		Confirm:          req.Confirm,
	}, true
}

// PreviewCancel handles POST /api/groups/:id/cancel/preview
func (h *GroupHandler) PreviewCancel(c *gin.Context) {
	cmd, ok := h.cancelCommand(c)
	if !ok {
		return
	}
	result, err := h.cancelUseCase.Preview(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ConfirmCancel handles POST /api/groups/:id/cancel. The body must carry
// confirm=true.
func (h *GroupHandler) ConfirmCancel(c *gin.Context) {
	cmd, ok := h.cancelCommand(c)
	if !ok {
		return
	}
	result, err := h.cancelUseCase.Confirm(c.Request.Context(), cmd)
	if err != nil {
		h.logger.Errorw("failed to cancel group", "error", err, "group_id", cmd.GroupID)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "subscription cancelled", result)
}
