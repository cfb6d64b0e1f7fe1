package response

// 业务状态码，HTTP 状态码始终为 200
const (
	CodeOK              = 0
	CodeBadRequest      = 400 // 参数错误
	CodeNotFound        = 404 // 资源不存在或功能未开启
	CodeTooManyRequests = 429 // 触发限流
	CodeInternal        = 500
)

var defaultMessages = map[int]string{
	CodeOK:              "success",
	CodeBadRequest:      "bad request",
	CodeNotFound:        "not found",
	CodeTooManyRequests: "too many requests",
	CodeInternal:        "internal error",
}

// DefaultMessage 状态码的默认消息
func DefaultMessage(code int) string {
	if msg, ok := defaultMessages[code]; ok {
		return msg
	}
	return defaultMessages[CodeInternal]
}
