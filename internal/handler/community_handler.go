package handler

import (
	"context"
	"errors"
	"time"

	"Local_Market/internal/middleware"
	"Local_Market/internal/model"
	"Local_Market/internal/pkg"
	"Local_Market/internal/repository/mysql"
	"Local_Market/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CommunityService interface {
	Register(ctx context.Context, in service.RegisterCommunityInput) (*model.Community, error)
	Create(ctx context.Context, in service.RegisterCommunityInput) (*model.Community, error)
	Login(ctx context.Context, email, password string) (string, *mysql.CommunityProfile, error)
	Logout(ctx context.Context, id uuid.UUID) error
	Profile(ctx context.Context, id uuid.UUID) (*mysql.CommunityProfile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch model.CommunityPatch) error
	AdminUpdate(ctx context.Context, id uuid.UUID, patch model.CommunityPatch) error
	SetAnnouncement(ctx context.Context, id uuid.UUID, text string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.Community, error)
	ByCode(ctx context.Context, code string) (*mysql.CommunityCard, error)
	BySlug(ctx context.Context, slug string) (*mysql.CommunityPage, error)
	List(ctx context.Context, f mysql.CommunityListFilter) ([]mysql.CommunitySummary, error)
	AppendEvent(ctx context.Context, communityID uuid.UUID, patch model.EventPatch) (*model.CommunityEvent, error)
	MergeEvent(ctx context.Context, communityID, eventID uuid.UUID, patch model.EventPatch) error
	ListEvents(ctx context.Context, communityID uuid.UUID) ([]model.CommunityEvent, error)
}

type CommunityHandler struct {
	svc      CommunityService
	sessions middleware.SessionChecker
}

func NewCommunityHandler(svc CommunityService, sessions middleware.SessionChecker) *CommunityHandler {
	return &CommunityHandler{svc: svc, sessions: sessions}
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// profileForm 组织者可修改的字段；multipart 与 JSON 都接受
type profileForm struct {
	Name      string `form:"name" json:"name"`
	Phone     string `form:"phone" json:"phone"`
	ShortDesc string `form:"shortDesc" json:"shortDesc"`
	LongDesc  string `form:"longDesc" json:"longDesc"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, pkg.BadRequest("invalid date %q", raw)
}

// Lookup GET /communities?code=|slug=|name=&status=&from=&to=
func (h *CommunityHandler) Lookup(c *gin.Context) {
	ctx := c.Request.Context()
	if code := c.Query("code"); code != "" {
		card, err := h.svc.ByCode(ctx, code)
		if err != nil {
			pkg.Fail(c, err)
			return
		}
		pkg.OK(c, gin.H{"community": card})
		return
	}
	if slug := c.Query("slug"); slug != "" {
		page, err := h.svc.BySlug(ctx, slug)
		if err != nil {
			pkg.Fail(c, err)
			return
		}
		pkg.OK(c, gin.H{"community": page})
		return
	}

	from, err := parseDate(c.Query("from"))
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	list, err := h.svc.List(ctx, mysql.CommunityListFilter{
		Name:   c.Query("name"),
		Status: c.Query("status"),
		From:   from,
		To:     to,
	})
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"communities": list})
}

func (h *CommunityHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	community, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"community": community})
}

// Login 带 Authorization 时按 token 取资料，否则走邮箱密码
func (h *CommunityHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	if tokenStr, ok := middleware.BearerToken(c); ok {
		a, err := middleware.Authenticate(ctx, h.sessions, tokenStr)
		if err != nil {
			pkg.Fail(c, err)
			return
		}
		if a.Role != pkg.RoleOrganizer {
			pkg.Fail(c, pkg.ErrUnauthorized)
			return
		}
		profile, err := h.svc.Profile(ctx, a.ID)
		if errors.Is(err, pkg.ErrNotFound) {
			pkg.Fail(c, pkg.ErrUnauthorized)
			return
		}
		if err != nil {
			pkg.Fail(c, err)
			return
		}
		pkg.OK(c, gin.H{"profile": profile})
		return
	}

	var req LoginReq
	if !bindJSON(c, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		pkg.Fail(c, pkg.BadRequest("email and password required"))
		return
	}
	token, profile, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"profile": profile, "token": token})
}

func (h *CommunityHandler) Logout(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.svc.Logout(c.Request.Context(), a.ID); err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"msg": "logged out"})
}

func (h *CommunityHandler) Register(c *gin.Context) {
	var req service.RegisterCommunityInput
	if !bindJSON(c, &req) {
		return
	}
	community, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"community": community})
}

// Create 管理员创建社区
func (h *CommunityHandler) Create(c *gin.Context) {
	var req service.RegisterCommunityInput
	if !bindJSON(c, &req) {
		return
	}
	community, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"community": community})
}

// UpdateProfile 第一张图是 logo，第二张是背景图
func (h *CommunityHandler) UpdateProfile(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var form profileForm
	if err := c.ShouldBind(&form); err != nil {
		pkg.Fail(c, pkg.BadRequest("invalid params"))
		return
	}
	patch := model.CommunityPatch{
		Name:      optional(form.Name),
		Phone:     optional(form.Phone),
		ShortDesc: optional(form.ShortDesc),
		LongDesc:  optional(form.LongDesc),
	}
	paths := middleware.UploadedPaths(c)
	if len(paths) > 0 {
		patch.LogoURL = &paths[0]
	}
	if len(paths) > 1 {
		patch.BackgroundURL = &paths[1]
	}

	ctx := c.Request.Context()
	if err := h.svc.UpdateProfile(ctx, a.ID, patch); err != nil {
		pkg.Fail(c, err)
		return
	}
	profile, err := h.svc.Profile(ctx, a.ID)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"community": profile})
}

func (h *CommunityHandler) SetAnnouncement(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req struct {
		Announcement string `json:"announcement"`
	}
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	if err := h.svc.SetAnnouncement(ctx, a.ID, req.Announcement); err != nil {
		pkg.Fail(c, err)
		return
	}
	profile, err := h.svc.Profile(ctx, a.ID)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"community": profile})
}

// AdminUpdate PUT /communities/:id
func (h *CommunityHandler) AdminUpdate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch model.CommunityPatch
	if !bindJSON(c, &patch) {
		return
	}
	ctx := c.Request.Context()
	if err := h.svc.AdminUpdate(ctx, id, patch); err != nil {
		pkg.Fail(c, err)
		return
	}
	community, err := h.svc.Get(ctx, id)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"community": community})
}

func (h *CommunityHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"msg": "deleted"})
}

func (h *CommunityHandler) ListEvents(c *gin.Context) {
	community, ok := middleware.CommunityFrom(c)
	if !ok {
		pkg.Fail(c, pkg.ErrUnauthorized)
		return
	}
	events, err := h.svc.ListEvents(c.Request.Context(), community.ID)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"events": events})
}

// GetEvent 在已加载的社区里查找，不再查库
func (h *CommunityHandler) GetEvent(c *gin.Context) {
	community, ok := middleware.CommunityFrom(c)
	if !ok {
		pkg.Fail(c, pkg.ErrUnauthorized)
		return
	}
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	event, err := service.FindEvent(community, eventID)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"event": event})
}

func (h *CommunityHandler) AppendEvent(c *gin.Context) {
	community, ok := middleware.CommunityFrom(c)
	if !ok {
		pkg.Fail(c, pkg.ErrUnauthorized)
		return
	}
	var patch model.EventPatch
	if !bindJSON(c, &patch) {
		return
	}
	event, err := h.svc.AppendEvent(c.Request.Context(), community.ID, patch)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"event": event})
}

func (h *CommunityHandler) MergeEvent(c *gin.Context) {
	community, ok := middleware.CommunityFrom(c)
	if !ok {
		pkg.Fail(c, pkg.ErrUnauthorized)
		return
	}
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch model.EventPatch
	if !bindJSON(c, &patch) {
		return
	}
	if err := h.svc.MergeEvent(c.Request.Context(), community.ID, eventID, patch); err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"msg": "updated"})
}
