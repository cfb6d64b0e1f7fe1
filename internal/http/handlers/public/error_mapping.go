package public

import (
	"errors"

	"github.com/offeroye/internal/http/response"
	"github.com/offeroye/internal/query"
	"github.com/offeroye/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var couponQueryErrorRules = []mappedHandlerError{
	{target: query.ErrInvalidQuery, code: response.CodeBadRequest, key: "error.query_invalid"},
}

var visitErrorRules = []mappedHandlerError{
	{target: service.ErrVisitInvalid, code: response.CodeBadRequest, key: "error.visit_invalid"},
}

var refreshErrorRules = []mappedHandlerError{
	{target: service.ErrCatalogUnavailable, code: response.CodeInternal, key: "error.catalog_unavailable"},
}

func respondCouponQueryError(c *gin.Context, err error) {
	respondWithMappedError(c, err, couponQueryErrorRules, response.CodeInternal, "error.internal")
}

func respondVisitError(c *gin.Context, err error) {
	respondWithMappedError(c, err, visitErrorRules, response.CodeInternal, "error.visit_record_failed")
}

func respondRefreshError(c *gin.Context, err error) {
	respondWithMappedError(c, err, refreshErrorRules, response.CodeInternal, "error.catalog_refresh_failed")
}
