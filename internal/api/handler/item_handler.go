package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"relief-hub/backend/internal/dto"
	"relief-hub/backend/internal/service"
	"relief-hub/backend/pkg/response"
)

// ItemHandler 物资目录 HTTP 处理器
type ItemHandler struct {
	catalogSvc service.CatalogService
}

// NewItemHandler 创建 ItemHandler
func NewItemHandler(catalogSvc service.CatalogService) *ItemHandler {
	return &ItemHandler{catalogSvc: catalogSvc}
}

// ListItems 物资列表，按最近更新排序
// GET /api/v1/items
func (h *ItemHandler) ListItems(c *gin.Context) {
	var req dto.ItemListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	items, total, err := h.catalogSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleItemError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetLimit())
}

// GetItem 物资详情
// GET /api/v1/items/:id
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, ok := MustGetID(c, "物资")
	if !ok {
		return
	}

	item, err := h.catalogSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleItemError(c, err)
		return
	}

	response.OK(c, item)
}

// CreateItem 直接创建目录物资（初始库存为 0）
// POST /api/v1/items/create
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	item, err := h.catalogSvc.Create(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleItemError(c, err)
		return
	}

	response.Created(c, item)
}

// UpdateItem 编辑目录物资
// PUT /api/v1/items/:id
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	id, ok := MustGetID(c, "物资")
	if !ok {
		return
	}

	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	item, err := h.catalogSvc.Update(c.Request.Context(), id, &req, caller)
	if err != nil {
		h.handleItemError(c, err)
		return
	}

	response.OK(c, item)
}

// DeleteItem 删除目录物资；历史流水保留快照
// DELETE /api/v1/items/:id
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	id, ok := MustGetID(c, "物资")
	if !ok {
		return
	}

	if err := h.catalogSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleItemError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleItemError 物资模块统一错误处理
func (h *ItemHandler) handleItemError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		response.NotFound(c, 14001, "物资不存在")
	case errors.Is(err, service.ErrInvalidCategory):
		response.BadRequest(c, 14002, "物资分类不合法")
	case errors.Is(err, service.ErrItemNameEmpty):
		response.BadRequest(c, 14003, "物资名称不能为空")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 14004, "日期范围不合法")
	default:
		response.InternalError(c)
	}
}
