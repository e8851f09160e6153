package service

import (
	"context"

	"sudooom.devconnect/internal/model"
	"sudooom.devconnect/internal/repository"
)

// UpdateProfileRequest 更新资料请求
type UpdateProfileRequest struct {
	Nickname string `json:"nickname" binding:"omitempty,min=1,max=50"`
	Avatar   string `json:"avatar" binding:"omitempty,max=500"`
	Bio      string `json:"bio" binding:"omitempty,max=500"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// UserService 用户服务
type UserService struct {
	userRepo *repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile 获取用户资料
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile 更新用户资料，空字段保留原值
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Nickname != "" {
		user.Nickname = req.Nickname
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.Email != "" {
		user.Email = req.Email
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Search 搜索用户
func (s *UserService) Search(ctx context.Context, keyword string, limit int) ([]model.PublicUser, error) {
	return s.userRepo.Search(ctx, keyword, limit)
}
