package util

import "errors"

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrBlogNotFound       = errors.New("blog not found")
	ErrBlogNotPublished   = errors.New("blog not published")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrSessionNotFound    = errors.New("chat session not found")
	ErrTextTooShort       = errors.New("text too short to evaluate")
	ErrEmptyUpload        = errors.New("no file uploaded")
)
