package pkg

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")

	// ErrReadModelUnresolved 根文档存在，但关联（vendor/community）解析后不是恰好一条
	ErrReadModelUnresolved = errors.New("read model unresolved")
)

// BadRequest 包装参数错误，msg 会返回给客户端
func BadRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// ParseID 解析外部传入的 id，格式错误统一视为 BadRequest（与 NotFound 区分）
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, BadRequest("malformed id %q", raw)
	}
	return id, nil
}
