package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"relief-hub/backend/config"
	"relief-hub/backend/internal/api/middleware"
	"relief-hub/backend/internal/dto"
	"relief-hub/backend/internal/model"
	"relief-hub/backend/internal/service"
	"relief-hub/backend/pkg/response"
	"relief-hub/backend/pkg/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *service.LoginResult
	loginErr      error
	logoutToken   string
	authenticated map[string]*service.Caller
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*service.LoginResult, error) {
	return m.loginResult, m.loginErr
}

func (m *mockAuthService) Logout(_ context.Context, token string) error {
	m.logoutToken = token
	return nil
}

func (m *mockAuthService) Authenticate(_ context.Context, token string) (*service.Caller, error) {
	if caller, ok := m.authenticated[token]; ok {
		return caller, nil
	}
	return nil, errors.New("会话无效")
}

func (m *mockAuthService) Me(_ context.Context, caller *service.Caller) (*dto.MeResponse, error) {
	if caller == nil {
		return &dto.MeResponse{}, nil
	}
	return &dto.MeResponse{User: &dto.UserResponse{ID: caller.UserID, Role: caller.Role}}, nil
}

// ── Mock IntakeService / ApprovalService / TransactionService ──

type mockIntakeService struct {
	result  *dto.SubmitResult
	err     error
	grouped bool
	caller  *service.Caller
}

func (m *mockIntakeService) Submit(_ context.Context, _ *dto.SubmitTransactionRequest, caller *service.Caller, grouped bool) (*dto.SubmitResult, error) {
	m.grouped = grouped
	m.caller = caller
	return m.result, m.err
}

type mockApprovalService struct {
	resp *dto.TransactionResponse
	err  error
}

func (m *mockApprovalService) Review(_ context.Context, _ string, _ *dto.ReviewTransactionRequest, _ *service.Caller) (*dto.TransactionResponse, error) {
	return m.resp, m.err
}

type mockTransactionService struct{}

func (m *mockTransactionService) List(_ context.Context, _ *dto.TransactionListRequest) ([]dto.TransactionResponse, int64, error) {
	return []dto.TransactionResponse{{ID: "tx-1"}}, 1, nil
}

func (m *mockTransactionService) GetByID(_ context.Context, id string) (*dto.TransactionResponse, error) {
	if id == "missing" {
		return nil, service.ErrTransactionNotFound
	}
	return &dto.TransactionResponse{ID: id}, nil
}

// ── Mock CenterService ──

type mockCenterService struct {
	updateErr error
}

func (m *mockCenterService) List(_ context.Context, _ *dto.CenterListRequest, _ *service.Caller) ([]dto.CenterResponse, int64, error) {
	return nil, 0, nil
}

func (m *mockCenterService) GetByID(_ context.Context, _ string, _ *service.Caller) (*dto.CenterResponse, error) {
	return nil, service.ErrCenterNotFound
}

func (m *mockCenterService) Create(_ context.Context, _ *dto.CreateCenterRequest, _ *service.Caller) (*dto.CenterResponse, error) {
	return &dto.CenterResponse{}, nil
}

func (m *mockCenterService) Update(_ context.Context, _ string, _ *dto.UpdateCenterRequest, _ *service.Caller) (*dto.CenterResponse, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &dto.CenterResponse{}, nil
}

func (m *mockCenterService) Delete(_ context.Context, _ string, _ *service.Caller) error {
	return nil
}

// ── Mock UploadService ──

type mockUploadService struct {
	err      error
	received int
}

func (m *mockUploadService) UploadProof(_ context.Context, data []byte) (*dto.UploadProofResponse, error) {
	m.received = len(data)
	if m.err != nil {
		return nil, m.err
	}
	return &dto.UploadProofResponse{URL: "https://cdn.example.com/proofs/a.jpg"}, nil
}

// ── 测试辅助 ──

// 32 字节测试密钥的 base64
const testCookieKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

func newTestCodec(t *testing.T) *session.Codec {
	t.Helper()
	codec, err := session.NewCodec(&config.CookieConfig{
		Name:     "relief_session",
		HashKey:  testCookieKey,
		BlockKey: testCookieKey,
	})
	if err != nil {
		t.Fatalf("创建 Codec 失败: %v", err)
	}
	return codec
}

// withCaller 模拟会话中间件注入调用方
func withCaller(caller *service.Caller) gin.HandlerFunc {
	return func(c *gin.Context) {
		if caller != nil {
			c.Set(middleware.CallerKey, caller)
			c.Set("user_id", caller.UserID)
			c.Set("role", caller.Role)
		}
		c.Next()
	}
}

// sessionCookie 生成携带 token 的会话 Cookie
func sessionCookie(t *testing.T, codec *session.Codec, token string) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	if err := codec.Write(w, token, time.Hour); err != nil {
		t.Fatalf("写入 Cookie 失败: %v", err)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("期望 1 个 Cookie，实际=%d", len(cookies))
	}
	return cookies[0]
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func multipartFile(t *testing.T, field, filename string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("创建表单失败: %v", err)
	}
	fw.Write(content)
	mw.Close()
	return &buf, mw.FormDataContentType()
}

var (
	testStaff = &service.Caller{UserID: "user-1", Name: "Staff", Role: model.RoleStaff}
	testAdmin = &service.Caller{UserID: "user-admin", Name: "Admin", Role: model.RoleAdmin}
)

const (
	testItemID   = "6f1c3a52-8d0e-4c5a-9b1e-2f4d6a8c0e12"
	testCenterID = "a3b5c7d9-1e2f-4a6b-8c0d-9e8f7a6b5c4d"
)

// ── AuthHandler 测试 ──

func TestAuthHandler_Login_SetsSessionCookie(t *testing.T) {
	codec := newTestCodec(t)
	h := NewAuthHandler(&mockAuthService{loginResult: &service.LoginResult{
		Token:    "signed-jwt",
		TTL:      time.Hour,
		Response: &dto.LoginResponse{User: dto.UserResponse{Username: "staff01"}, ExpiresIn: 3600},
	}}, codec)

	r := gin.New()
	r.POST("/login", h.Login)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", jsonBody(dto.LoginRequest{Username: "staff01", Password: "password123"}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d body=%s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "relief_session" {
		t.Fatalf("期望写入会话 Cookie，实际=%v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("会话 Cookie 须为 HttpOnly")
	}
	if cookies[0].Value == "signed-jwt" {
		t.Error("Cookie 值不应为明文 token")
	}

	// Cookie 能被同一 Codec 还原
	req2 := httptest.NewRequest("GET", "/", nil)
	req2.AddCookie(cookies[0])
	token, err := codec.Read(req2)
	if err != nil || token != "signed-jwt" {
		t.Errorf("Cookie 解码失败: token=%q err=%v", token, err)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials}, newTestCodec(t))
	r := gin.New()
	r.POST("/login", h.Login)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", jsonBody(dto.LoginRequest{Username: "x", Password: "wrong"}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11001 {
		t.Errorf("期望业务码 11001，实际=%d", resp.Code)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("登录失败不应写入 Cookie")
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, newTestCodec(t))
	r := gin.New()
	r.POST("/login", h.Login)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", w.Code)
	}
}

func TestAuthHandler_Logout_RevokesAndClears(t *testing.T) {
	codec := newTestCodec(t)
	authSvc := &mockAuthService{}
	h := NewAuthHandler(authSvc, codec)
	r := gin.New()
	r.POST("/logout", h.Logout)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/logout", nil)
	req.AddCookie(sessionCookie(t, codec, "jwt-to-revoke"))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	if authSvc.logoutToken != "jwt-to-revoke" {
		t.Errorf("期望注销 jwt-to-revoke，实际=%q", authSvc.logoutToken)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("期望清除 Cookie，实际=%v", cookies)
	}
}

func TestAuthHandler_Me_Anonymous(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, newTestCodec(t))
	r := gin.New()
	r.GET("/auth/me", h.Me)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/auth/me", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("匿名访问期望 200，实际=%d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"user":null`)) {
		t.Errorf("匿名访问 user 应为 null，实际=%s", w.Body.String())
	}
}

// ── 会话中间件 + 路由权限 ──

func TestSession_AnonymousAndLoggedIn(t *testing.T) {
	codec := newTestCodec(t)
	authSvc := &mockAuthService{authenticated: map[string]*service.Caller{"good": testStaff}}
	txHandler := NewTransactionHandler(&mockIntakeService{}, &mockApprovalService{}, &mockTransactionService{})

	r := gin.New()
	r.Use(middleware.Session(codec, authSvc))
	r.GET("/transactions", middleware.RequireLogin(), txHandler.ListTransactions)

	// 匿名
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/transactions", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("匿名期望 401，实际=%d", w.Code)
	}

	// 有效会话
	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/transactions", nil)
	req.AddCookie(sessionCookie(t, codec, "good"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("已登录期望 200，实际=%d", w.Code)
	}

	// 失效会话：按匿名处理并清除 Cookie
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/transactions", nil)
	req.AddCookie(sessionCookie(t, codec, "revoked"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("失效会话期望 401，实际=%d", w.Code)
	}
	if cookies := w.Result().Cookies(); len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("失效会话应清除 Cookie，实际=%v", cookies)
	}
}

func TestRoleAuth_StaffForbidden(t *testing.T) {
	r := gin.New()
	r.Use(withCaller(testStaff))
	r.GET("/users", middleware.RoleAuth(model.RoleAdmin), func(c *gin.Context) { response.OK(c, nil) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/users", nil))

	if w.Code != http.StatusForbidden {
		t.Errorf("staff 访问管理接口期望 403，实际=%d", w.Code)
	}
}

// ── TransactionHandler 测试 ──

func TestTransactionHandler_BulkCreate_Grouped(t *testing.T) {
	group := "GRP-abc"
	intake := &mockIntakeService{result: &dto.SubmitResult{Count: 2, GroupID: &group, TransactionIDs: []string{"t1", "t2"}}}
	h := NewTransactionHandler(intake, &mockApprovalService{}, &mockTransactionService{})

	r := gin.New()
	r.Use(withCaller(testStaff))
	r.POST("/transactions/bulk", h.BulkCreate)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/transactions/bulk", jsonBody(dto.SubmitTransactionRequest{
		Type:      model.TxTypeOut,
		Items:     []dto.SubmitLine{{ItemID: testItemID, Quantity: 2}},
		CenterIDs: []string{testCenterID},
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际=%d body=%s", w.Code, w.Body.String())
	}
	if !intake.grouped {
		t.Error("批量申报应共享 group_id")
	}
	if intake.caller != testStaff {
		t.Error("调用方应传入 Service")
	}
}

func TestTransactionHandler_Create_Anonymous(t *testing.T) {
	intake := &mockIntakeService{result: &dto.SubmitResult{Count: 1, TransactionIDs: []string{"t1"}}}
	h := NewTransactionHandler(intake, &mockApprovalService{}, &mockTransactionService{})

	r := gin.New()
	r.POST("/transactions", h.CreateTransaction)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/transactions", jsonBody(dto.CreateTransactionRequest{
		Type: model.TxTypeIn, ItemName: "Water", Quantity: 12, DonorName: "A",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际=%d", w.Code)
	}
	if intake.grouped {
		t.Error("单条申报不应分组")
	}
	if intake.caller != nil {
		t.Error("匿名提交调用方应为 nil")
	}
}

func TestTransactionHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"库存不足", fmt.Errorf("%w: Rice", service.ErrInsufficientStock), http.StatusBadRequest, 15004},
		{"需要登录", service.ErrLoginRequired, http.StatusUnauthorized, 10002},
		{"站点越权", service.ErrCenterNotAuthorized, http.StatusForbidden, 10003},
		{"提交不合法", fmt.Errorf("%w: 第 2 行", service.ErrInvalidSubmission), http.StatusBadRequest, 15005},
		{"物资不存在", service.ErrItemNotFound, http.StatusNotFound, 15002},
		{"未知错误", errors.New("db down"), http.StatusInternalServerError, 50000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewTransactionHandler(&mockIntakeService{err: tc.err}, &mockApprovalService{}, &mockTransactionService{})
			r := gin.New()
			r.POST("/transactions/bulk", h.BulkCreate)

			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/transactions/bulk", jsonBody(dto.SubmitTransactionRequest{
				Type:  model.TxTypeIn,
				Items: []dto.SubmitLine{{ItemName: "Rice", Quantity: 1}},
			}))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != tc.wantHTTP {
				t.Errorf("期望 HTTP %d，实际=%d", tc.wantHTTP, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tc.wantCode {
				t.Errorf("期望业务码 %d，实际=%d", tc.wantCode, resp.Code)
			}
		})
	}
}

func TestTransactionHandler_BulkCreate_ValidationFails(t *testing.T) {
	h := NewTransactionHandler(&mockIntakeService{}, &mockApprovalService{}, &mockTransactionService{})
	r := gin.New()
	r.POST("/transactions/bulk", h.BulkCreate)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/transactions/bulk", jsonBody(map[string]interface{}{
		"type":  "IN",
		"items": []map[string]interface{}{{"item_name": "Rice", "quantity": 0}},
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("数量为 0 期望 400，实际=%d", w.Code)
	}
}

func TestTransactionHandler_Review(t *testing.T) {
	cases := []struct {
		name     string
		caller   *service.Caller
		err      error
		wantHTTP int
		wantCode int
	}{
		{"成功", testStaff, nil, http.StatusOK, 0},
		{"未登录", nil, nil, http.StatusUnauthorized, 10002},
		{"不存在", testStaff, service.ErrTransactionNotFound, http.StatusNotFound, 15001},
		{"重复审批", testStaff, service.ErrTransactionProcessed, http.StatusBadRequest, 15003},
		{"缺少驳回原因", testStaff, service.ErrRejectionReasonRequired, http.StatusBadRequest, 15005},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			approval := &mockApprovalService{resp: &dto.TransactionResponse{ID: "tx-1", Status: model.TxStatusCompleted}, err: tc.err}
			h := NewTransactionHandler(&mockIntakeService{}, approval, &mockTransactionService{})
			r := gin.New()
			r.Use(withCaller(tc.caller))
			r.PUT("/transactions/:id", h.ReviewTransaction)

			w := httptest.NewRecorder()
			req := httptest.NewRequest("PUT", "/transactions/tx-1", jsonBody(dto.ReviewTransactionRequest{Status: model.TxStatusCompleted}))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != tc.wantHTTP {
				t.Errorf("期望 HTTP %d，实际=%d", tc.wantHTTP, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tc.wantCode {
				t.Errorf("期望业务码 %d，实际=%d", tc.wantCode, resp.Code)
			}
		})
	}
}

func TestTransactionHandler_Review_BadStatus(t *testing.T) {
	h := NewTransactionHandler(&mockIntakeService{}, &mockApprovalService{}, &mockTransactionService{})
	r := gin.New()
	r.Use(withCaller(testStaff))
	r.PUT("/transactions/:id", h.ReviewTransaction)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/transactions/tx-1", jsonBody(map[string]string{"status": "PENDING"}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("不允许回退为 PENDING，期望 400，实际=%d", w.Code)
	}
}

func TestTransactionHandler_GetTransaction_NotFound(t *testing.T) {
	h := NewTransactionHandler(&mockIntakeService{}, &mockApprovalService{}, &mockTransactionService{})
	r := gin.New()
	r.GET("/transactions/:id", h.GetTransaction)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/transactions/missing", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际=%d", w.Code)
	}
}

// ── CenterHandler 测试 ──

func TestCenterHandler_Update_Conflict(t *testing.T) {
	h := NewCenterHandler(&mockCenterService{updateErr: service.ErrCenterConflict})
	r := gin.New()
	r.Use(withCaller(testAdmin))
	r.PUT("/centers/manage/:id", h.UpdateCenter)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/centers/manage/c1", jsonBody(map[string]interface{}{"name": "ใหม่", "version": 1}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("期望 409，实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 13002 {
		t.Errorf("期望业务码 13002，实际=%d", resp.Code)
	}
}

func TestCenterHandler_Update_MissingVersion(t *testing.T) {
	h := NewCenterHandler(&mockCenterService{})
	r := gin.New()
	r.Use(withCaller(testAdmin))
	r.PUT("/centers/manage/:id", h.UpdateCenter)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/centers/manage/c1", jsonBody(map[string]interface{}{"name": "ใหม่"}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("缺少 version 期望 400，实际=%d", w.Code)
	}
}

func TestCenterHandler_GetCenter_NotFound(t *testing.T) {
	h := NewCenterHandler(&mockCenterService{})
	r := gin.New()
	r.GET("/centers/:id", h.GetCenter)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/centers/none", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际=%d", w.Code)
	}
}

// ── UploadHandler 测试 ──

func TestUploadHandler_UploadProof(t *testing.T) {
	svc := &mockUploadService{}
	h := NewUploadHandler(svc, 1<<20)
	r := gin.New()
	r.POST("/uploads/proof", h.UploadProof)

	body, contentType := multipartFile(t, "file", "proof.png", []byte("png-bytes"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/uploads/proof", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际=%d body=%s", w.Code, w.Body.String())
	}
	if svc.received != len("png-bytes") {
		t.Errorf("文件内容未完整传入，实际=%d 字节", svc.received)
	}
}

func TestUploadHandler_TooLarge(t *testing.T) {
	h := NewUploadHandler(&mockUploadService{}, 4)
	r := gin.New()
	r.POST("/uploads/proof", h.UploadProof)

	body, contentType := multipartFile(t, "file", "proof.png", []byte("more-than-four-bytes"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/uploads/proof", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("期望 413，实际=%d", w.Code)
	}
}

func TestUploadHandler_Disabled(t *testing.T) {
	h := NewUploadHandler(&mockUploadService{err: service.ErrUploadDisabled}, 1<<20)
	r := gin.New()
	r.POST("/uploads/proof", h.UploadProof)

	body, contentType := multipartFile(t, "file", "proof.png", []byte("x"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/uploads/proof", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("期望 503，实际=%d", w.Code)
	}
}

func TestUploadHandler_MissingFile(t *testing.T) {
	h := NewUploadHandler(&mockUploadService{}, 1<<20)
	r := gin.New()
	r.POST("/uploads/proof", h.UploadProof)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/uploads/proof", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", w.Code)
	}
}
