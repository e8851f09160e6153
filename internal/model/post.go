package model

import "time"

// Community 社区
type Community struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	PostCount   int       `json:"post_count"`
}

// Post 帖子
// 内容可包含 Markdown 代码块，渲染由客户端负责；
// 点赞数在查询时聚合，LikedByViewer 相对请求者计算
type Post struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Content       string      `json:"content"`
	ImageURL      string      `json:"image_url,omitempty"`
	CommunityID   *int64      `json:"community_id,omitempty"`
	AuthorID      int64       `json:"author_id"`
	LikeCount     int         `json:"like_count"`
	LikedByViewer bool        `json:"liked_by_viewer"`
	CreatedAt     time.Time   `json:"created_at"`
	Author        *PublicUser `json:"author,omitempty"`
}
