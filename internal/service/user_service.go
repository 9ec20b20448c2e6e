package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tomwright01/dashboard/internal/dto"
	"github.com/tomwright01/dashboard/internal/model"
	"github.com/tomwright01/dashboard/internal/repository"
)

// UserService 用户与可见范围查询接口
//
// 可见范围由 study_users 授权决定：
//   - 管理员 (dashboard_admin) 可见全部研究与站点
//   - 授权 site_id 为空表示该研究下全部站点
type UserService interface {
	// FindUsers username 为空时返回全部用户
	FindUsers(ctx context.Context, username string) ([]dto.UserResponse, error)
	GetUser(ctx context.Context, id uint) (*dto.UserResponse, error)
	UserStudies(ctx context.Context, id uint) ([]dto.StudyResponse, error)
	UserSites(ctx context.Context, id uint) ([]dto.SiteResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── FindUsers ──────────────────────

func (s *userService) FindUsers(ctx context.Context, username string) ([]dto.UserResponse, error) {
	users, err := s.repo.User.Search(ctx, strings.TrimSpace(username))
	if err != nil {
		s.logger.Error("查询用户失败", zap.String("username", username), zap.Error(err))
		return nil, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, *toUserResponse(&u))
	}
	return result, nil
}

// ────────────────────── GetUser ──────────────────────

func (s *userService) GetUser(ctx context.Context, id uint) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── UserStudies ──────────────────────

func (s *userService) UserStudies(ctx context.Context, id uint) ([]dto.StudyResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	var studies []model.Study
	if user.DashboardAdmin {
		studies, err = s.repo.Study.List(ctx)
	} else {
		studies, err = s.repo.Study.ListForUser(ctx, user.ID)
	}
	if err != nil {
		s.logger.Error("查询用户研究失败", zap.Uint("user_id", id), zap.Error(err))
		return nil, err
	}

	seen := make(map[uint]bool, len(studies))
	result := make([]dto.StudyResponse, 0, len(studies))
	for _, st := range studies {
		if seen[st.ID] {
			continue
		}
		seen[st.ID] = true
		result = append(result, toStudyResponse(&st, nil))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

// ────────────────────── UserSites ──────────────────────

func (s *userService) UserSites(ctx context.Context, id uint) ([]dto.SiteResponse, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	var sites []model.Site
	if user.DashboardAdmin {
		sites, err = s.repo.Site.List(ctx)
	} else {
		sites, err = s.repo.Site.ListForUser(ctx, user.ID)
	}
	if err != nil {
		s.logger.Error("查询用户站点失败", zap.Uint("user_id", id), zap.Error(err))
		return nil, err
	}

	seen := make(map[uint]bool, len(sites))
	result := make([]dto.SiteResponse, 0, len(sites))
	for _, site := range sites {
		if seen[site.ID] {
			continue
		}
		seen[site.ID] = true
		result = append(result, dto.SiteResponse{ID: site.ID, Code: site.Code, Name: site.Name})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

// ── 内部辅助方法 ──

func (s *userService) getUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// toUserResponse 将 model.User 转换为 dto.UserResponse
func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		FullName:       user.FullName(),
		DashboardAdmin: user.DashboardAdmin,
	}
}
