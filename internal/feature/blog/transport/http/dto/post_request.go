// Package dto defines data transfer objects for the blog feature's HTTP transport layer.
package dto

// PostReq is the body of POST /api/blogs and PUT /api/blogs/:id.
// Any author field sent by the client is ignored.
type PostReq struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content" binding:"required"`
}
