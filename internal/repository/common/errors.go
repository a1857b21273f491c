package common

import "errors"

// Общие ошибки для всех репозиториев
var (
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidInput  = errors.New("invalid input")

	// ErrStaleStatus возвращается, когда условное обновление не нашло строку
	// в ожидаемом статусе: другой оператор успел изменить дело.
	ErrStaleStatus = errors.New("status changed concurrently")
)
