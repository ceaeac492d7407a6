package i18n

const (
	MsgServerError     = "server_error"
	MsgUnauthorized    = "unauthorized"
	MsgForbidden       = "forbidden"
	MsgNotFound        = "not_found"
	MsgInvalidJSON     = "invalid_json"
	MsgInvalidQuery    = "invalid_query"
	MsgInvalidID       = "invalid_id"
	MsgDeleted         = "deleted"
	MsgTooManyRequests = "too_many_requests"

	MsgArticleNotFound        = "article.not_found"
	MsgArticleTitleRequired   = "article.title_required"
	MsgArticleTitleTooLong    = "article.title_too_long"
	MsgArticleContentRequired = "article.content_required"
	MsgArticleExcerptRequired = "article.excerpt_required"
	MsgArticleExcerptTooLong  = "article.excerpt_too_long"
	MsgArticleCategoryInvalid = "article.category_invalid"
	MsgArticleTooManyTags     = "article.too_many_tags"
	MsgArticleLocationInvalid = "article.location_invalid"

	MsgUserNotFound         = "user.not_found"
	MsgUserNameRequired     = "user.name_required"
	MsgUserNameTooLong      = "user.name_too_long"
	MsgUserEmailRequired    = "user.email_required"
	MsgUserEmailInvalid     = "user.email_invalid"
	MsgUserEmailTaken       = "user.email_taken"
	MsgUserPasswordRequired = "user.password_required"
	MsgUserPasswordTooShort = "user.password_too_short"
	MsgUserRoleInvalid      = "user.role_invalid"
	MsgUserCannotDeleteSelf = "user.cannot_delete_self"

	MsgAuthCredentialsRequired = "auth.credentials_required"
	MsgAuthInvalidCredentials  = "auth.invalid_credentials"
	MsgAuthRegistrationClosed  = "auth.registration_disabled"
	MsgAuthLoggedOut           = "auth.logged_out"
	MsgAuthWrongPassword       = "auth.wrong_password"
	MsgAuthResetSent           = "auth.reset_sent"
	MsgAuthResetInvalid        = "auth.reset_invalid"

	MsgUploadMissing  = "upload.missing"
	MsgUploadNotImage = "upload.not_image"
	MsgUploadTooLarge = "upload.too_large"
	MsgUploadFailed   = "upload.failed"
	MsgMediaTooLarge  = "media.too_large"
	MsgMediaNotFound  = "media.not_found"

	MsgCommentNotFound        = "comment.not_found"
	MsgCommentContentRequired = "comment.content_required"
	MsgCommentTooLong         = "comment.too_long"
	MsgCommentsDisabled       = "comment.disabled"
	MsgCommentInvalidParent   = "comment.invalid_parent"
	MsgCommentStatusInvalid   = "comment.status_invalid"

	MsgSettingsPerPageInvalid = "settings.per_page_invalid"
	MsgSettingsEmailInvalid   = "settings.email_invalid"
	MsgSettingsNameRequired   = "settings.name_required"

	MsgSearchQueryRequired = "search.query_required"
)

type entry struct {
	zh string
	en string
}

var catalog = map[string]entry{
	MsgServerError:     {"服务器错误", "Server error"},
	MsgUnauthorized:    {"未授权访问", "Not authorized to access this route"},
	MsgForbidden:       {"您没有权限执行此操作", "You are not allowed to perform this action"},
	MsgNotFound:        {"未找到资源", "Resource not found"},
	MsgInvalidJSON:     {"请求格式无效", "Invalid request body"},
	MsgInvalidQuery:    {"查询参数无效: %s", "Invalid query parameter: %s"},
	MsgInvalidID:       {"无效的ID", "Invalid id"},
	MsgDeleted:         {"删除成功", "Deleted successfully"},
	MsgTooManyRequests: {"请求过于频繁，请稍后再试", "Too many requests, please try again later"},

	MsgArticleNotFound:        {"未找到文章", "Article not found"},
	MsgArticleTitleRequired:   {"请提供文章标题", "Please add a title"},
	MsgArticleTitleTooLong:    {"标题不能超过100个字符", "Title can not be more than 100 characters"},
	MsgArticleContentRequired: {"请提供文章内容", "Please add some content"},
	MsgArticleExcerptRequired: {"请提供文章摘要", "Please add an excerpt"},
	MsgArticleExcerptTooLong:  {"摘要不能超过200个字符", "Excerpt can not be more than 200 characters"},
	MsgArticleCategoryInvalid: {"请选择文章分类", "Please select a valid category"},
	MsgArticleTooManyTags:     {"标签不能超过%d个", "No more than %d tags are allowed"},
	MsgArticleLocationInvalid: {"坐标格式无效", "Coordinates must be [longitude, latitude]"},

	MsgUserNotFound:         {"未找到用户", "User not found"},
	MsgUserNameRequired:     {"请提供姓名", "Please add a name"},
	MsgUserNameTooLong:      {"姓名不能超过50个字符", "Name can not be more than 50 characters"},
	MsgUserEmailRequired:    {"请提供邮箱", "Please add an email"},
	MsgUserEmailInvalid:     {"请提供有效的邮箱", "Please add a valid email"},
	MsgUserEmailTaken:       {"该邮箱已被注册", "Email is already registered"},
	MsgUserPasswordRequired: {"请提供密码", "Please add a password"},
	MsgUserPasswordTooShort: {"密码至少需要6个字符", "Password must be at least 6 characters"},
	MsgUserRoleInvalid:      {"无效的角色", "Invalid role"},
	MsgUserCannotDeleteSelf: {"不能删除当前登录用户", "You can not delete the currently logged in user"},

	MsgAuthCredentialsRequired: {"请提供邮箱和密码", "Please provide an email and password"},
	MsgAuthInvalidCredentials:  {"无效的凭据", "Invalid credentials"},
	MsgAuthRegistrationClosed:  {"注册功能已关闭", "Registration is disabled"},
	MsgAuthLoggedOut:           {"已成功退出登录", "Logged out"},
	MsgAuthWrongPassword:       {"当前密码不正确", "Password is incorrect"},
	MsgAuthResetSent:           {"如果该邮箱已注册，重置链接已发送", "If the email is registered, a reset link has been sent"},
	MsgAuthResetInvalid:        {"重置令牌无效或已过期", "Invalid or expired reset token"},

	MsgUploadMissing:  {"请上传文件", "Please upload a file"},
	MsgUploadNotImage: {"请上传图片文件", "Please upload an image file"},
	MsgUploadTooLarge: {"请上传小于%s的图片", "Please upload an image less than %s"},
	MsgUploadFailed:   {"文件上传失败", "Problem with file upload"},
	MsgMediaTooLarge:  {"文件不能超过%s", "File must be smaller than %s"},
	MsgMediaNotFound:  {"未找到媒体文件", "Media not found"},

	MsgCommentNotFound:        {"未找到评论", "Comment not found"},
	MsgCommentContentRequired: {"请提供评论内容", "Please add a comment"},
	MsgCommentTooLong:         {"评论不能超过500个字符", "Comment can not be more than 500 characters"},
	MsgCommentsDisabled:       {"评论功能已关闭", "Comments are disabled"},
	MsgCommentInvalidParent:   {"只能回复本文的顶级评论", "Replies must target a top-level comment of the same article"},
	MsgCommentStatusInvalid:   {"无效的评论状态", "Invalid comment status"},

	MsgSettingsPerPageInvalid: {"每页文章数必须在1到100之间", "Articles per page must be between 1 and 100"},
	MsgSettingsEmailInvalid:   {"请提供有效的联系邮箱", "Please add a valid contact email"},
	MsgSettingsNameRequired:   {"请提供网站名称", "Please add a site name"},

	MsgSearchQueryRequired: {"请输入搜索关键词", "Please enter a search query"},
}
