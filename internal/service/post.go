package service

import (
	"context"
	"errors"

	apperrors "sudooom.devconnect/internal/errors"
	"sudooom.devconnect/internal/model"
	"sudooom.devconnect/internal/repository"
	"sudooom.devconnect/pkg/snowflake"
)

// CreatePostRequest 创建帖子请求
type CreatePostRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Content     string `json:"content" binding:"required"`
	ImageURL    string `json:"image_url"`
	CommunityID *int64 `json:"community_id"`
}

// CreateCommunityRequest 创建社区请求
type CreateCommunityRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// PostService 帖子与社区服务
type PostService struct {
	postRepo      *repository.PostRepository
	communityRepo *repository.CommunityRepository
	idGen         *snowflake.Node
}

// NewPostService 创建帖子服务
func NewPostService(postRepo *repository.PostRepository, communityRepo *repository.CommunityRepository, idGen *snowflake.Node) *PostService {
	return &PostService{
		postRepo:      postRepo,
		communityRepo: communityRepo,
		idGen:         idGen,
	}
}

// List 获取帖子列表，按创建时间倒序
// communityID 不为 nil 时只返回该社区的帖子
func (s *PostService) List(ctx context.Context, viewerID int64, communityID *int64) ([]model.Post, error) {
	return s.postRepo.ListRecent(ctx, viewerID, communityID)
}

// Get 获取帖子详情
func (s *PostService) Get(ctx context.Context, id, viewerID int64) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, viewerID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// Create 创建帖子
// 指定社区时社区必须存在
func (s *PostService) Create(ctx context.Context, authorID int64, req *CreatePostRequest) (*model.Post, error) {
	if req.CommunityID != nil {
		exists, err := s.communityRepo.Exists(ctx, *req.CommunityID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperrors.ErrCommunityNotFound
		}
	}

	post := &model.Post{
		ID:          s.idGen.Generate().Int64(),
		Title:       req.Title,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		CommunityID: req.CommunityID,
		AuthorID:    authorID,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete 删除帖子，仅作者可删
func (s *PostService) Delete(ctx context.Context, id, authorID int64) error {
	if err := s.postRepo.Delete(ctx, id, authorID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return apperrors.ErrPostNotFound
		}
		return err
	}
	return nil
}

// Like 点赞帖子，幂等
func (s *PostService) Like(ctx context.Context, postID, userID int64) error {
	if _, err := s.Get(ctx, postID, userID); err != nil {
		return err
	}
	return s.postRepo.Like(ctx, postID, userID)
}

// Unlike 取消点赞，幂等
func (s *PostService) Unlike(ctx context.Context, postID, userID int64) error {
	if _, err := s.Get(ctx, postID, userID); err != nil {
		return err
	}
	return s.postRepo.Unlike(ctx, postID, userID)
}

// ListCommunities 获取社区列表，按创建时间倒序
func (s *PostService) ListCommunities(ctx context.Context) ([]model.Community, error) {
	return s.communityRepo.List(ctx)
}

// CreateCommunity 创建社区，名称唯一
func (s *PostService) CreateCommunity(ctx context.Context, creatorID int64, req *CreateCommunityRequest) (*model.Community, error) {
	community := &model.Community{
		ID:          s.idGen.Generate().Int64(),
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   creatorID,
	}

	if err := s.communityRepo.Create(ctx, community); err != nil {
		if errors.Is(err, repository.ErrCommunityNameExists) {
			return nil, apperrors.ErrCommunityNameExists
		}
		return nil, err
	}
	return community, nil
}
