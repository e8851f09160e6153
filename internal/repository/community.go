package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sudooom.devconnect/internal/model"
)

var (
	ErrCommunityNotFound   = errors.New("community not found")
	ErrCommunityNameExists = errors.New("community name already exists")
)

// CommunityRepository 社区数据访问
type CommunityRepository struct {
	db *pgxpool.Pool
}

// NewCommunityRepository 创建社区仓库
func NewCommunityRepository(db *pgxpool.Pool) *CommunityRepository {
	return &CommunityRepository{db: db}
}

// Create 创建社区，名称唯一
func (r *CommunityRepository) Create(ctx context.Context, community *model.Community) error {
	query := `
		INSERT INTO communities (id, name, description, created_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		community.ID,
		community.Name,
		community.Description,
		community.CreatedBy,
	).Scan(&community.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCommunityNameExists
		}
		return err
	}
	return nil
}

// Exists 检查社区是否存在
func (r *CommunityRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM communities WHERE id = $1)
	`, id).Scan(&exists)
	return exists, err
}

// List 获取全部社区，按创建时间倒序，附带帖子数
func (r *CommunityRepository) List(ctx context.Context) ([]model.Community, error) {
	query := `
		SELECT c.id, c.name, c.description, c.created_by, c.created_at,
		       (SELECT COUNT(*) FROM posts p WHERE p.community_id = c.id) AS post_count
		FROM communities c
		ORDER BY c.created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	communities := make([]model.Community, 0)
	for rows.Next() {
		var c model.Community
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedBy, &c.CreatedAt, &c.PostCount); err != nil {
			return nil, err
		}
		communities = append(communities, c)
	}
	return communities, rows.Err()
}
