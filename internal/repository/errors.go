package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("not found")

// DuplicateKeyError 表示同一 habit 在同一周期内已经有一条 completion log。
// 这是预期内的业务结果，不是系统故障。
type DuplicateKeyError struct {
	HabitID   string
	PeriodKey string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("completion already logged for habit %s in period %s", e.HabitID, e.PeriodKey)
}

// StoreError 包装存储层的其它失败（网络、权限、校验等），Error() 保留原始信息
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return e.Op + ": store error"
	}
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// WrapStore 把非 nil 错误包装成 *StoreError，已经是 DuplicateKeyError/StoreError 的原样返回
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	var dup *DuplicateKeyError
	if errors.As(err, &dup) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// IsDuplicate reports whether err carries a *DuplicateKeyError.
func IsDuplicate(err error) bool {
	var dup *DuplicateKeyError
	return errors.As(err, &dup)
}
