package repository

import "fmt"

// TransportError 网络层失败（连接、超时）——请求没有到达存储端
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("store transport error (%s): %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StoreError 存储端以非 2xx 状态拒绝请求
type StoreError struct {
	Op     string
	Status int
	Body   string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error (%s): status=%d body=%s", e.Op, e.Status, e.Body)
}
