package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/wfunc/pet-game/internal/errors"
	"github.com/wfunc/pet-game/internal/middleware"
)

// Response 成功响应
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// ListResponse 分页列表
type ListResponse struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func ok(c *gin.Context, data interface{}) {
	respond(c, http.StatusOK, data)
}

func fail(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

// badRequest 请求参数绑定失败
func badRequest(c *gin.Context, err error) {
	fail(c, apperrors.Wrap(err, apperrors.ErrInvalidParam, err.Error()))
}

// pageParams 解析分页参数，非法值交给 NewPagination 兜底
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, size
}

// caller 当前调用者身份，认证中间件之后必然存在
func caller(c *gin.Context) (string, bool) {
	owner, exists := middleware.GetOwner(c)
	if !exists {
		fail(c, apperrors.New(apperrors.ErrAuthentication))
		return "", false
	}
	return owner, true
}
