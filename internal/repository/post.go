package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sudooom.devconnect/internal/model"
)

var ErrPostNotFound = errors.New("post not found")

// PostRepository 帖子数据访问
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository 创建帖子仓库
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// Create 创建帖子
func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (id, title, content, image_url, community_id, author_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	return r.db.QueryRow(ctx, query,
		post.ID,
		post.Title,
		post.Content,
		post.ImageURL,
		post.CommunityID,
		post.AuthorID,
	).Scan(&post.CreatedAt)
}

const postColumns = `
	p.id, p.title, p.content, p.image_url, p.community_id, p.author_id, p.created_at,
	u.username, u.nickname, u.avatar,
	(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id) AS like_count,
	EXISTS(SELECT 1 FROM post_likes pl WHERE pl.post_id = p.id AND pl.user_id = $1) AS liked_by_viewer
`

func scanPost(row pgx.Row) (*model.Post, error) {
	post := &model.Post{}
	author := &model.PublicUser{}
	err := row.Scan(
		&post.ID, &post.Title, &post.Content, &post.ImageURL, &post.CommunityID,
		&post.AuthorID, &post.CreatedAt,
		&author.Username, &author.Nickname, &author.Avatar,
		&post.LikeCount, &post.LikedByViewer,
	)
	if err != nil {
		return nil, err
	}
	author.ID = post.AuthorID
	post.Author = author
	return post, nil
}

// GetByID 获取帖子，附带作者、点赞数和请求者的点赞状态
func (r *PostRepository) GetByID(ctx context.Context, id, viewerID int64) (*model.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $2
	`
	post, err := scanPost(r.db.QueryRow(ctx, query, viewerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// ListRecent 获取帖子，按创建时间倒序
// communityID 为 nil 时返回全部社区的帖子
func (r *PostRepository) ListRecent(ctx context.Context, viewerID int64, communityID *int64) ([]model.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE ($2::bigint IS NULL OR p.community_id = $2)
		ORDER BY p.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, viewerID, communityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

// Delete 删除帖子，仅作者可删
// 点赞行随帖子一起删除
func (r *PostRepository) Delete(ctx context.Context, id, authorID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM post_likes WHERE post_id = $1
	`, id); err != nil {
		return err
	}

	result, err := tx.Exec(ctx, `
		DELETE FROM posts WHERE id = $1 AND author_id = $2
	`, id, authorID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return tx.Commit(ctx)
}

// Like 点赞帖子
// (post_id, user_id) 唯一，重复点赞幂等
func (r *PostRepository) Like(ctx context.Context, postID, userID int64) error {
	query := `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, postID, userID)
	return err
}

// Unlike 取消点赞
// 记录不存在时也视为成功
func (r *PostRepository) Unlike(ctx context.Context, postID, userID int64) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2
	`, postID, userID)
	return err
}

// CountLikes 统计帖子点赞数（用于测试与监控）
func (r *PostRepository) CountLikes(ctx context.Context, postID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM post_likes WHERE post_id = $1
	`, postID).Scan(&count)
	return count, err
}
