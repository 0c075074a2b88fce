package handler

import (
	"context"

	"Local_Market/internal/model"
	"Local_Market/internal/pkg"
	"Local_Market/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VendorService interface {
	Register(ctx context.Context, in service.RegisterVendorInput) (*model.Vendor, error)
	Login(ctx context.Context, email, password string) (string, *model.Vendor, error)
	Logout(ctx context.Context, id uuid.UUID) error
	Me(ctx context.Context, id uuid.UUID) (*model.Vendor, error)
	Connect(ctx context.Context, id uuid.UUID) (string, error)
}

type VendorHandler struct {
	svc VendorService
}

func NewVendorHandler(svc VendorService) *VendorHandler {
	return &VendorHandler{svc: svc}
}

func (h *VendorHandler) Register(c *gin.Context) {
	var req service.RegisterVendorInput
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"vendor": v})
}

func (h *VendorHandler) Login(c *gin.Context) {
	var req LoginReq
	if !bindJSON(c, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		pkg.Fail(c, pkg.BadRequest("email and password required"))
		return
	}
	token, v, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"vendor": v, "token": token})
}

func (h *VendorHandler) Logout(c *gin.Context) {
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

func (h *VendorHandler) Me(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	v, err := h.svc.Me(c.Request.Context(), a.ID)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"vendor": v})
}

// Connect 返回支付服务商的 onboarding 链接
func (h *VendorHandler) Connect(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	url, err := h.svc.Connect(c.Request.Context(), a.ID)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"url": url})
}
