package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"Local_Market/internal/model"
	"Local_Market/internal/pkg"
	"Local_Market/internal/repository/mysql"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionStore 登录会话登记表
type SessionStore interface {
	Add(ctx context.Context, role, actorID, token string) error
	Delete(ctx context.Context, role, actorID string) error
}

type CommunityService struct {
	repo     *mysql.CommunityRepository
	sessions SessionStore
	emailSvc *EmailService
	now      func() time.Time
}

func NewCommunityService(repo *mysql.CommunityRepository, sessions SessionStore, emailSvc *EmailService) *CommunityService {
	return &CommunityService{repo: repo, sessions: sessions, emailSvc: emailSvc, now: time.Now}
}

type RegisterCommunityInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	Code      string `json:"code"`
	ShortDesc string `json:"shortDesc"`
	LongDesc  string `json:"longDesc"`
}

func (in RegisterCommunityInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return pkg.BadRequest("name required")
	case strings.TrimSpace(in.Email) == "":
		return pkg.BadRequest("email required")
	case len(in.Password) < 6:
		return pkg.BadRequest("password must be at least 6 characters")
	}
	return nil
}

// Register 自助注册，新社区一律 inactive
func (s *CommunityService) Register(ctx context.Context, in RegisterCommunityInput) (*model.Community, error) {
	c, err := s.create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.emailSvc.SendRegistrationReceived(c.Email, c.Name)
	return c, nil
}

// Create 管理员创建，同样从 inactive 开始
func (s *CommunityService) Create(ctx context.Context, in RegisterCommunityInput) (*model.Community, error) {
	return s.create(ctx, in)
}

func (s *CommunityService) create(ctx context.Context, in RegisterCommunityInput) (*model.Community, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	taken, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("email already registered: %w", pkg.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	slug, err := pkg.UniqueSlug(in.Name)
	if err != nil {
		return nil, err
	}
	code := in.Code
	if code == "" {
		if code, err = pkg.RandDigits(6); err != nil {
			return nil, err
		}
	}
	c := &model.Community{
		Name:      strings.TrimSpace(in.Name),
		Slug:      slug,
		Code:      code,
		Email:     email,
		Phone:     in.Phone,
		Password:  string(hash),
		ShortDesc: in.ShortDesc,
		LongDesc:  in.LongDesc,
		Status:    model.CommunityInactive,
		SignupAt:  s.now(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	c.Password = ""
	return c, nil
}

// Login 账号密码登录；状态不参与登录判断。邮箱不存在和密码错误返回同一个错误
func (s *CommunityService) Login(ctx context.Context, email, password string) (string, *mysql.CommunityProfile, error) {
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

	token, err := pkg.Issue(id.String(), pkg.RoleOrganizer)
	if err != nil {
		return "", nil, err
	}
	// 将token写入redis
	if err := s.sessions.Add(ctx, string(pkg.RoleOrganizer), id.String(), token); err != nil {
		return "", nil, err
	}
	profile, err := s.repo.FindProfile(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return token, profile, nil
}

func (s *CommunityService) Logout(ctx context.Context, id uuid.UUID) error {
	return s.sessions.Delete(ctx, string(pkg.RoleOrganizer), id.String())
}

// Profile 组织者资料，不含密码
func (s *CommunityService) Profile(ctx context.Context, id uuid.UUID) (*mysql.CommunityProfile, error) {
	return s.repo.FindProfile(ctx, id)
}

func (s *CommunityService) UpdateProfile(ctx context.Context, id uuid.UUID, patch model.CommunityPatch) error {
	return s.repo.Update(ctx, id, patch.Columns())
}

// AdminUpdate 管理员可额外修改状态
func (s *CommunityService) AdminUpdate(ctx context.Context, id uuid.UUID, patch model.CommunityPatch) error {
	if patch.Status != nil && *patch.Status != "" &&
		*patch.Status != model.CommunityActive && *patch.Status != model.CommunityInactive {
		return pkg.BadRequest("unknown status %q", *patch.Status)
	}
	return s.repo.Update(ctx, id, patch.Columns())
}

func (s *CommunityService) SetAnnouncement(ctx context.Context, id uuid.UUID, text string) error {
	return s.repo.SetAnnouncement(ctx, id, text, s.now())
}

func (s *CommunityService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *CommunityService) Get(ctx context.Context, id uuid.UUID) (*model.Community, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CommunityService) ByCode(ctx context.Context, code string) (*mysql.CommunityCard, error) {
	return s.repo.FindByCode(ctx, code)
}

func (s *CommunityService) BySlug(ctx context.Context, slug string) (*mysql.CommunityPage, error) {
	return s.repo.FindBySlug(ctx, slug)
}

func (s *CommunityService) List(ctx context.Context, f mysql.CommunityListFilter) ([]mysql.CommunitySummary, error) {
	return s.repo.List(ctx, f)
}

func (s *CommunityService) AppendEvent(ctx context.Context, communityID uuid.UUID, patch model.EventPatch) (*model.CommunityEvent, error) {
	ev := patch.NewEvent()
	if strings.TrimSpace(ev.Title) == "" {
		return nil, pkg.BadRequest("title required")
	}
	if err := s.repo.AppendEvent(ctx, communityID, &ev); err != nil {
		return nil, err
	}
	ev.Attendees = []model.CustomerEvent{}
	return &ev, nil
}

func (s *CommunityService) MergeEvent(ctx context.Context, communityID, eventID uuid.UUID, patch model.EventPatch) error {
	return s.repo.MergeEvent(ctx, communityID, eventID, patch.Columns())
}

func (s *CommunityService) ListEvents(ctx context.Context, communityID uuid.UUID) ([]model.CommunityEvent, error) {
	return s.repo.ListEventsWithAttendees(ctx, communityID)
}

// FindEvent 在调用方传入的、已加载的社区活动里按 id 查找，不再查库
func FindEvent(community *model.Community, eventID uuid.UUID) (*model.CommunityEvent, error) {
	if community == nil {
		return nil, fmt.Errorf("community not loaded: %w", pkg.ErrNotFound)
	}
	for i := range community.Events {
		if community.Events[i].ID == eventID {
			return &community.Events[i], nil
		}
	}
	return nil, fmt.Errorf("event %s: %w", eventID, pkg.ErrNotFound)
}
