package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"Local_Market/internal/model"
	"Local_Market/internal/payment"
	"Local_Market/internal/pkg"
	"Local_Market/internal/repository/mysql"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type VendorService struct {
	repo        *mysql.VendorRepository
	communities *mysql.CommunityRepository
	sessions    SessionStore
	gateway     payment.Gateway
}

func NewVendorService(repo *mysql.VendorRepository, communities *mysql.CommunityRepository, sessions SessionStore, gateway payment.Gateway) *VendorService {
	return &VendorService{repo: repo, communities: communities, sessions: sessions, gateway: gateway}
}

type RegisterVendorInput struct {
	CommunityID string `json:"community"`
	ShopName    string `json:"shopName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

func (s *VendorService) Register(ctx context.Context, in RegisterVendorInput) (*model.Vendor, error) {
	communityID, err := pkg.ParseID(in.CommunityID)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.TrimSpace(in.ShopName) == "":
		return nil, pkg.BadRequest("shopName required")
	case strings.TrimSpace(in.Email) == "":
		return nil, pkg.BadRequest("email required")
	case len(in.Password) < 6:
		return nil, pkg.BadRequest("password must be at least 6 characters")
	}
	// 社区必须存在
	if _, err := s.communities.FindByID(ctx, communityID); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	v := &model.Vendor{
		CommunityID: communityID,
		ShopName:    strings.TrimSpace(in.ShopName),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Password:    string(hash),
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	v.Password = ""
	return v, nil
}

func (s *VendorService) Login(ctx context.Context, email, password string) (string, *model.Vendor, error) {
	id, hash, err := s.repo.FindCredential(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, pkg.ErrNotFound) {
		return "", nil, fmt.Errorf("invalid email or password: %w", pkg.ErrUnauthorized)
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", nil, fmt.Errorf("invalid email or password: %w", pkg.ErrUnauthorized)
	}
	token, err := pkg.Issue(id.String(), pkg.RoleVendor)
	if err != nil {
		return "", nil, err
	}
	if err := s.sessions.Add(ctx, string(pkg.RoleVendor), id.String(), token); err != nil {
		return "", nil, err
	}
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return token, v, nil
}

func (s *VendorService) Logout(ctx context.Context, id uuid.UUID) error {
	return s.sessions.Delete(ctx, string(pkg.RoleVendor), id.String())
}

func (s *VendorService) Me(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	return s.repo.FindByID(ctx, id)
}

// Connect 开通收款账户：已有账户时只重新生成 onboarding 链接
func (s *VendorService) Connect(ctx context.Context, id uuid.UUID) (string, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	accountID := v.StripeAccountID
	if accountID == "" {
		if accountID, err = s.gateway.CreateAccount(ctx, v.Email); err != nil {
			return "", err
		}
		if err := s.repo.StartOnboarding(ctx, id, accountID); err != nil {
			return "", err
		}
	}
	return s.gateway.OnboardingLink(ctx, accountID)
}
