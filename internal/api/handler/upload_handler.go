package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"relief-hub/backend/internal/service"
	"relief-hub/backend/pkg/response"
)

// UploadHandler 凭证附件上传
type UploadHandler struct {
	uploadSvc service.UploadService
	maxBytes  int64
}

// NewUploadHandler 创建 UploadHandler
func NewUploadHandler(uploadSvc service.UploadService, maxBytes int64) *UploadHandler {
	return &UploadHandler{uploadSvc: uploadSvc, maxBytes: maxBytes}
}

// UploadProof 上传凭证图片，返回 URL 供申报 / 审批时填写 proof_url
// POST /api/v1/uploads/proof (multipart, 字段名 file)
func (h *UploadHandler) UploadProof(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "文件过大")
			return
		}
		response.BadRequest(c, 10001, "请上传图片文件")
		return
	}
	if h.maxBytes > 0 && fileHeader.Size > h.maxBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "文件过大")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 10001, "无法读取上传文件")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(c, 10001, "无法读取上传文件")
		return
	}

	resp, err := h.uploadSvc.UploadProof(c.Request.Context(), data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadDisabled):
			response.Error(c, http.StatusServiceUnavailable, 16001, "附件上传未启用")
		case errors.Is(err, service.ErrUploadInvalid), errors.Is(err, service.ErrUploadEmpty):
			response.BadRequest(c, 16002, err.Error())
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, resp)
}
